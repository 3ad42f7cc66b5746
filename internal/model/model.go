// Package model defines the backlog entities and the request/response
// shapes exchanged between the tool layer and the services.
//
// Timestamps are RFC3339 UTC strings with fixed-width nanoseconds, set
// by the repositories on create/update; the database never generates
// them. The fixed width keeps lexicographic order equal to time order,
// which the ORDER BY created_at queries rely on.
package model

import "time"

// TimeFormat is the wire and storage format for all timestamps.
const TimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// UserStory is a named feature request with a persona, title, and description.
type UserStory struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Persona     string `json:"persona"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// AcceptanceCriteria is a testable condition attached to a user story.
type AcceptanceCriteria struct {
	ID          string `json:"id"`
	UserStoryID string `json:"user_story_id"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateUserStoryRequest holds the input for creating a user story.
type CreateUserStoryRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Persona     string `json:"persona"`
}

// UpdateUserStoryRequest holds partial update fields for a user story.
// Nil fields retain their prior values.
type UpdateUserStoryRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Persona     *string `json:"persona,omitempty"`
}

// CreateAcceptanceCriteriaRequest holds the input for creating a criteria.
type CreateAcceptanceCriteriaRequest struct {
	ID          string `json:"id"`
	UserStoryID string `json:"user_story_id"`
	Description string `json:"description"`
}

// UpdateAcceptanceCriteriaRequest holds partial update fields for a criteria.
type UpdateAcceptanceCriteriaRequest struct {
	Description *string `json:"description,omitempty"`
}

// UserStoryWithCriteria is a read-only composite view: a story plus its
// criteria in creation order. Constructed on read, never persisted.
type UserStoryWithCriteria struct {
	UserStory
	AcceptanceCriteria []AcceptanceCriteria `json:"acceptance_criteria"`
}

// UserStoryStatistics is a derived snapshot of backlog-wide story metrics.
type UserStoryStatistics struct {
	TotalStories        int64            `json:"total_stories"`
	TotalCriteria       int64            `json:"total_criteria"`
	PersonasCount       int64            `json:"personas_count"`
	AvgCriteriaPerStory float64          `json:"avg_criteria_per_story"`
	StoriesByPersona    map[string]int64 `json:"stories_by_persona"`
}

// AcceptanceCriteriaStatistics is a derived snapshot of criteria metrics,
// including a per-story criteria-count distribution.
type AcceptanceCriteriaStatistics struct {
	TotalCriteria        int64            `json:"total_criteria"`
	TotalStories         int64            `json:"total_stories"`
	AvgCriteriaPerStory  float64          `json:"avg_criteria_per_story"`
	CriteriaDistribution map[string]int64 `json:"criteria_distribution"`
}

// Now returns the current UTC time formatted for storage.
func Now() string {
	return time.Now().UTC().Format(TimeFormat)
}

