// Package repository implements the data-access façades for the backlog.
//
// Repositories translate requests into parameterized SQL and rows back
// into entities. No validation lives here; they trust the service layer.
// Multi-row writes run inside a single transaction.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agilekit/storydeck/internal/model"
)

// ErrDuplicateID is returned when an insert collides with an existing
// primary key. The PRIMARY KEY constraint is the authority under
// concurrency; the services' existence pre-checks are advisory.
var ErrDuplicateID = errors.New("duplicate id")

// ErrCapExceeded is returned by the conditional criteria insert when the
// target story is already at its criteria cap.
var ErrCapExceeded = errors.New("criteria cap exceeded")

// dbtx is satisfied by both *sql.DB and *sql.Tx so single-row helpers can
// run standalone or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories bundles both entity repositories over one shared handle
// and hosts the operations that span both tables.
type Repositories struct {
	db       *sql.DB
	Stories  *UserStoryRepository
	Criteria *AcceptanceCriteriaRepository
}

// New creates the repository set over a shared database handle.
func New(db *sql.DB) *Repositories {
	return &Repositories{
		db:       db,
		Stories:  NewUserStoryRepository(db),
		Criteria: NewAcceptanceCriteriaRepository(db),
	}
}

// CreateStoryWithCriteria inserts a story and all of its criteria inside
// one transaction. Any failure rolls back everything, so a criteria-phase
// error never leaves an orphaned story behind.
func (r *Repositories) CreateStoryWithCriteria(
	ctx context.Context,
	storyReq model.CreateUserStoryRequest,
	criteriaReqs []model.CreateAcceptanceCriteriaRequest,
) (*model.UserStory, []model.AcceptanceCriteria, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	story, err := insertUserStory(ctx, tx, storyReq)
	if err != nil {
		return nil, nil, err
	}

	criteria := []model.AcceptanceCriteria{}
	for _, req := range criteriaReqs {
		c, err := insertCriteria(ctx, tx, req)
		if err != nil {
			return nil, nil, err
		}
		criteria = append(criteria, *c)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}
	return story, criteria, nil
}

// mapConstraintErr translates a SQLite UNIQUE/PRIMARY KEY violation into
// ErrDuplicateID and passes every other error through unchanged.
func mapConstraintErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateID
	}
	return err
}
