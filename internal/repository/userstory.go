package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
)

const userStoryColumns = "id, title, description, persona, created_at, updated_at"

// UserStoryRepository is the data-access façade for user stories.
type UserStoryRepository struct {
	db *sql.DB
}

// NewUserStoryRepository creates a repository over the shared handle.
func NewUserStoryRepository(db *sql.DB) *UserStoryRepository {
	return &UserStoryRepository{db: db}
}

// insertUserStory is shared between standalone creates and the combined
// story+criteria transaction.
func insertUserStory(ctx context.Context, q dbtx, req model.CreateUserStoryRequest) (*model.UserStory, error) {
	now := model.Now()
	_, err := q.ExecContext(ctx,
		`INSERT INTO user_stories (id, title, description, persona, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.Title, req.Description, req.Persona, now, now,
	)
	if err != nil {
		return nil, mapConstraintErr(err)
	}
	return &model.UserStory{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Persona:     req.Persona,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Create inserts a new user story and returns it with timestamps set.
func (r *UserStoryRepository) Create(ctx context.Context, req model.CreateUserStoryRequest) (*model.UserStory, error) {
	return insertUserStory(ctx, r.db, req)
}

// GetByID returns the story with the given id, or (nil, nil) when absent.
func (r *UserStoryRepository) GetByID(ctx context.Context, id string) (*model.UserStory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userStoryColumns+` FROM user_stories WHERE id = ?`, id,
	)
	var s model.UserStory
	if err := scanUserStory(row, &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetAll returns every story, newest first.
func (r *UserStoryRepository) GetAll(ctx context.Context) ([]model.UserStory, error) {
	return r.queryStories(ctx,
		`SELECT `+userStoryColumns+` FROM user_stories ORDER BY created_at DESC`,
	)
}

// GetPaginated returns a page of stories, newest first.
func (r *UserStoryRepository) GetPaginated(ctx context.Context, limit, offset int64) ([]model.UserStory, error) {
	return r.queryStories(ctx,
		`SELECT `+userStoryColumns+` FROM user_stories
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
}

// Update applies a partial update. Unset fields retain their prior values.
// Returns (nil, nil) when no story with the given id exists.
func (r *UserStoryRepository) Update(ctx context.Context, id string, req model.UpdateUserStoryRequest) (*model.UserStory, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE user_stories
		 SET title       = COALESCE(?, title),
		     description = COALESCE(?, description),
		     persona     = COALESCE(?, persona),
		     updated_at  = ?
		 WHERE id = ?`,
		req.Title, req.Description, req.Persona, model.Now(), id,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a story, reporting whether a row existed. Dependent
// criteria go with it via the ON DELETE CASCADE foreign key.
func (r *UserStoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_stories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Search matches the query as a substring of title, description, or
// persona, newest first.
func (r *UserStoryRepository) Search(ctx context.Context, query string) ([]model.UserStory, error) {
	pattern := "%" + query + "%"
	return r.queryStories(ctx,
		`SELECT `+userStoryColumns+` FROM user_stories
		 WHERE title LIKE ? OR description LIKE ? OR persona LIKE ?
		 ORDER BY created_at DESC`,
		pattern, pattern, pattern,
	)
}

// GetByPersona returns stories whose persona matches exactly, newest first.
func (r *UserStoryRepository) GetByPersona(ctx context.Context, persona string) ([]model.UserStory, error) {
	return r.queryStories(ctx,
		`SELECT `+userStoryColumns+` FROM user_stories
		 WHERE persona = ? ORDER BY created_at DESC`,
		persona,
	)
}

// Count returns the total number of stories.
func (r *UserStoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_stories`).Scan(&n)
	return n, err
}

// GetGroupedByPersona fetches all stories and groups them by persona,
// preserving the newest-first order within each group.
func (r *UserStoryRepository) GetGroupedByPersona(ctx context.Context) (map[string][]model.UserStory, error) {
	stories, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]model.UserStory)
	for _, s := range stories {
		grouped[s.Persona] = append(grouped[s.Persona], s)
	}
	return grouped, nil
}

func (r *UserStoryRepository) queryStories(ctx context.Context, query string, args ...any) ([]model.UserStory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stories := []model.UserStory{}
	for rows.Next() {
		var s model.UserStory
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Persona, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning user story: %w", err)
		}
		stories = append(stories, s)
	}
	return stories, rows.Err()
}

func scanUserStory(row *sql.Row, s *model.UserStory) error {
	return row.Scan(&s.ID, &s.Title, &s.Description, &s.Persona, &s.CreatedAt, &s.UpdatedAt)
}
