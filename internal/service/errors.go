// Package service implements the backlog business layer: input validation,
// cross-entity invariants, duplicate detection, and aggregate statistics.
//
// Failures are a closed set of typed errors so callers match on type and
// fields with errors.As instead of parsing message strings. Storage
// failures pass through wrapped and are never retried.
package service

import "fmt"

// Entity names used in NotFoundError and AlreadyExistsError.
const (
	EntityUserStory          = "user story"
	EntityAcceptanceCriteria = "acceptance criteria"
)

// ValidationError reports malformed input. It is always returned before
// any storage I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// NotFoundError reports that the requested entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// AlreadyExistsError reports an id collision on create.
type AlreadyExistsError struct {
	Entity string
	ID     string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Entity, e.ID)
}

// StoryNotFoundError reports a criteria operation referencing an absent
// parent story. Kept distinct from NotFoundError so callers can tell
// "the criteria is missing" from "its story is missing".
type StoryNotFoundError struct {
	StoryID string
}

func (e *StoryNotFoundError) Error() string {
	return fmt.Sprintf("user story not found: %s", e.StoryID)
}

// CapExceededError reports the criteria-per-story cap being hit.
type CapExceededError struct {
	StoryID string
	Count   int64
	Max     int64
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("user story %s already has %d acceptance criteria, maximum allowed is %d",
		e.StoryID, e.Count, e.Max)
}
