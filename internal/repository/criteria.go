package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
)

const criteriaColumns = "id, user_story_id, description, created_at, updated_at"

// AcceptanceCriteriaRepository is the data-access façade for criteria.
type AcceptanceCriteriaRepository struct {
	db *sql.DB
}

// NewAcceptanceCriteriaRepository creates a repository over the shared handle.
func NewAcceptanceCriteriaRepository(db *sql.DB) *AcceptanceCriteriaRepository {
	return &AcceptanceCriteriaRepository{db: db}
}

// insertCriteria is shared between the batch transaction and the combined
// story+criteria transaction. Plain insert, no cap condition.
func insertCriteria(ctx context.Context, q dbtx, req model.CreateAcceptanceCriteriaRequest) (*model.AcceptanceCriteria, error) {
	now := model.Now()
	_, err := q.ExecContext(ctx,
		`INSERT INTO acceptance_criteria (id, user_story_id, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		req.ID, req.UserStoryID, req.Description, now, now,
	)
	if err != nil {
		return nil, mapConstraintErr(err)
	}
	return &model.AcceptanceCriteria{
		ID:          req.ID,
		UserStoryID: req.UserStoryID,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Create inserts a new criteria, but only while the owning story holds
// fewer than maxPerStory criteria. The count condition lives inside the
// insert statement itself, so the cap holds even under concurrent creates.
func (r *AcceptanceCriteriaRepository) Create(ctx context.Context, req model.CreateAcceptanceCriteriaRequest, maxPerStory int64) (*model.AcceptanceCriteria, error) {
	now := model.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO acceptance_criteria (id, user_story_id, description, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM acceptance_criteria WHERE user_story_id = ?) < ?`,
		req.ID, req.UserStoryID, req.Description, now, now,
		req.UserStoryID, maxPerStory,
	)
	if err != nil {
		return nil, mapConstraintErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrCapExceeded
	}
	return &model.AcceptanceCriteria{
		ID:          req.ID,
		UserStoryID: req.UserStoryID,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CreateBatch inserts all requests inside one transaction. If any insert
// fails, the whole batch rolls back and nothing is persisted.
func (r *AcceptanceCriteriaRepository) CreateBatch(ctx context.Context, reqs []model.CreateAcceptanceCriteriaRequest) ([]model.AcceptanceCriteria, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := []model.AcceptanceCriteria{}
	for _, req := range reqs {
		c, err := insertCriteria(ctx, tx, req)
		if err != nil {
			return nil, err
		}
		created = append(created, *c)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// GetByID returns the criteria with the given id, or (nil, nil) when absent.
func (r *AcceptanceCriteriaRepository) GetByID(ctx context.Context, id string) (*model.AcceptanceCriteria, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+criteriaColumns+` FROM acceptance_criteria WHERE id = ?`, id,
	)
	var c model.AcceptanceCriteria
	if err := row.Scan(&c.ID, &c.UserStoryID, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetByUserStoryID returns a story's criteria in creation order,
// oldest first, so the composite view preserves authoring order.
func (r *AcceptanceCriteriaRepository) GetByUserStoryID(ctx context.Context, userStoryID string) ([]model.AcceptanceCriteria, error) {
	return r.queryCriteria(ctx,
		`SELECT `+criteriaColumns+` FROM acceptance_criteria
		 WHERE user_story_id = ? ORDER BY created_at ASC`,
		userStoryID,
	)
}

// GetAll returns every criteria, newest first.
func (r *AcceptanceCriteriaRepository) GetAll(ctx context.Context) ([]model.AcceptanceCriteria, error) {
	return r.queryCriteria(ctx,
		`SELECT `+criteriaColumns+` FROM acceptance_criteria ORDER BY created_at DESC`,
	)
}

// Update applies a partial update. Returns (nil, nil) when absent.
func (r *AcceptanceCriteriaRepository) Update(ctx context.Context, id string, req model.UpdateAcceptanceCriteriaRequest) (*model.AcceptanceCriteria, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE acceptance_criteria
		 SET description = COALESCE(?, description),
		     updated_at  = ?
		 WHERE id = ?`,
		req.Description, model.Now(), id,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a criteria, reporting whether a row existed.
func (r *AcceptanceCriteriaRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM acceptance_criteria WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByUserStoryID removes all of a story's criteria and returns the
// number of rows removed.
func (r *AcceptanceCriteriaRepository) DeleteByUserStoryID(ctx context.Context, userStoryID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM acceptance_criteria WHERE user_story_id = ?`, userStoryID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Search matches the query as a substring of the description, newest first.
func (r *AcceptanceCriteriaRepository) Search(ctx context.Context, query string) ([]model.AcceptanceCriteria, error) {
	return r.queryCriteria(ctx,
		`SELECT `+criteriaColumns+` FROM acceptance_criteria
		 WHERE description LIKE ? ORDER BY created_at DESC`,
		"%"+query+"%",
	)
}

// CountByUserStoryID returns the number of criteria attached to a story.
func (r *AcceptanceCriteriaRepository) CountByUserStoryID(ctx context.Context, userStoryID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM acceptance_criteria WHERE user_story_id = ?`, userStoryID,
	).Scan(&n)
	return n, err
}

// Count returns the total number of criteria.
func (r *AcceptanceCriteriaRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM acceptance_criteria`).Scan(&n)
	return n, err
}

func (r *AcceptanceCriteriaRepository) queryCriteria(ctx context.Context, query string, args ...any) ([]model.AcceptanceCriteria, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	criteria := []model.AcceptanceCriteria{}
	for rows.Next() {
		var c model.AcceptanceCriteria
		if err := rows.Scan(&c.ID, &c.UserStoryID, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning acceptance criteria: %w", err)
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}
