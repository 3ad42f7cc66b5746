package service

import (
	"context"
	"errors"
	"strings"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/repository"
)

// Validation limits for acceptance criteria.
const (
	MaxCriteriaDescriptionLength = 1000
	MaxCriteriaPerStory          = 20
)

// AcceptanceCriteriaService enforces criteria validation, the parent-story
// invariant, and the per-story cap. Stateless and safe for concurrent use.
type AcceptanceCriteriaService struct {
	repos *repository.Repositories
}

// NewAcceptanceCriteriaService creates a service over the shared repositories.
func NewAcceptanceCriteriaService(repos *repository.Repositories) *AcceptanceCriteriaService {
	return &AcceptanceCriteriaService{repos: repos}
}

// Create validates the request and inserts a new criteria. The referenced
// story must exist, and the insert itself refuses to push the story past
// the per-story cap.
func (s *AcceptanceCriteriaService) Create(ctx context.Context, req model.CreateAcceptanceCriteriaRequest) (*model.AcceptanceCriteria, error) {
	if err := validateCreateCriteria(req); err != nil {
		return nil, err
	}

	existing, err := s.repos.Criteria.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadyExistsError{Entity: EntityAcceptanceCriteria, ID: req.ID}
	}

	story, err := s.repos.Stories.GetByID(ctx, req.UserStoryID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, &StoryNotFoundError{StoryID: req.UserStoryID}
	}

	criteria, err := s.repos.Criteria.Create(ctx, req, MaxCriteriaPerStory)
	if errors.Is(err, repository.ErrDuplicateID) {
		return nil, &AlreadyExistsError{Entity: EntityAcceptanceCriteria, ID: req.ID}
	}
	if errors.Is(err, repository.ErrCapExceeded) {
		count, countErr := s.repos.Criteria.CountByUserStoryID(ctx, req.UserStoryID)
		if countErr != nil {
			count = MaxCriteriaPerStory
		}
		return nil, &CapExceededError{StoryID: req.UserStoryID, Count: count, Max: MaxCriteriaPerStory}
	}
	return criteria, err
}

// CreateBatch validates every request, then inserts them all inside one
// transaction. Nothing is persisted unless every insert succeeds.
func (s *AcceptanceCriteriaService) CreateBatch(ctx context.Context, reqs []model.CreateAcceptanceCriteriaRequest) ([]model.AcceptanceCriteria, error) {
	if len(reqs) == 0 {
		return nil, &ValidationError{Field: "criteria", Reason: "batch cannot be empty"}
	}

	for _, req := range reqs {
		if err := validateCreateCriteria(req); err != nil {
			return nil, err
		}
	}

	for _, req := range reqs {
		existing, err := s.repos.Criteria.GetByID(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &AlreadyExistsError{Entity: EntityAcceptanceCriteria, ID: req.ID}
		}
	}

	// Each distinct story is checked once: it must exist and must have
	// room for more criteria.
	seen := map[string]bool{}
	for _, req := range reqs {
		if seen[req.UserStoryID] {
			continue
		}
		seen[req.UserStoryID] = true

		story, err := s.repos.Stories.GetByID(ctx, req.UserStoryID)
		if err != nil {
			return nil, err
		}
		if story == nil {
			return nil, &StoryNotFoundError{StoryID: req.UserStoryID}
		}
		count, err := s.repos.Criteria.CountByUserStoryID(ctx, req.UserStoryID)
		if err != nil {
			return nil, err
		}
		if count >= MaxCriteriaPerStory {
			return nil, &CapExceededError{StoryID: req.UserStoryID, Count: count, Max: MaxCriteriaPerStory}
		}
	}

	created, err := s.repos.Criteria.CreateBatch(ctx, reqs)
	if errors.Is(err, repository.ErrDuplicateID) {
		return nil, &AlreadyExistsError{Entity: EntityAcceptanceCriteria, ID: ""}
	}
	return created, err
}

// GetByID returns a criteria or NotFoundError.
func (s *AcceptanceCriteriaService) GetByID(ctx context.Context, id string) (*model.AcceptanceCriteria, error) {
	criteria, err := s.repos.Criteria.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if criteria == nil {
		return nil, &NotFoundError{Entity: EntityAcceptanceCriteria, ID: id}
	}
	return criteria, nil
}

// GetByUserStoryID returns a story's criteria in creation order. The
// story must exist even when its criteria list is empty.
func (s *AcceptanceCriteriaService) GetByUserStoryID(ctx context.Context, userStoryID string) ([]model.AcceptanceCriteria, error) {
	if err := s.requireStory(ctx, userStoryID); err != nil {
		return nil, err
	}
	return s.repos.Criteria.GetByUserStoryID(ctx, userStoryID)
}

// GetAll returns every criteria, newest first.
func (s *AcceptanceCriteriaService) GetAll(ctx context.Context) ([]model.AcceptanceCriteria, error) {
	return s.repos.Criteria.GetAll(ctx)
}

// Update validates any present fields and applies a partial update.
func (s *AcceptanceCriteriaService) Update(ctx context.Context, id string, req model.UpdateAcceptanceCriteriaRequest) (*model.AcceptanceCriteria, error) {
	if err := validateUpdateCriteria(req); err != nil {
		return nil, err
	}
	criteria, err := s.repos.Criteria.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if criteria == nil {
		return nil, &NotFoundError{Entity: EntityAcceptanceCriteria, ID: id}
	}
	return criteria, nil
}

// Delete removes a single criteria.
func (s *AcceptanceCriteriaService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repos.Criteria.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Entity: EntityAcceptanceCriteria, ID: id}
	}
	return nil
}

// DeleteByUserStoryID removes all of a story's criteria and returns the
// number removed. The story itself must exist.
func (s *AcceptanceCriteriaService) DeleteByUserStoryID(ctx context.Context, userStoryID string) (int64, error) {
	if err := s.requireStory(ctx, userStoryID); err != nil {
		return 0, err
	}
	return s.repos.Criteria.DeleteByUserStoryID(ctx, userStoryID)
}

// Search returns criteria whose description contains the query.
func (s *AcceptanceCriteriaService) Search(ctx context.Context, query string) ([]model.AcceptanceCriteria, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "cannot be empty"}
	}
	return s.repos.Criteria.Search(ctx, query)
}

// CountByUserStoryID returns the number of criteria attached to a story.
func (s *AcceptanceCriteriaService) CountByUserStoryID(ctx context.Context, userStoryID string) (int64, error) {
	if err := s.requireStory(ctx, userStoryID); err != nil {
		return 0, err
	}
	return s.repos.Criteria.CountByUserStoryID(ctx, userStoryID)
}

// GetStatistics computes a fresh criteria snapshot, including the
// per-story distribution. The distribution walks every story, one count
// query each.
func (s *AcceptanceCriteriaService) GetStatistics(ctx context.Context) (*model.AcceptanceCriteriaStatistics, error) {
	totalCriteria, err := s.repos.Criteria.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalStories, err := s.repos.Stories.Count(ctx)
	if err != nil {
		return nil, err
	}

	avg := 0.0
	if totalStories > 0 {
		avg = float64(totalCriteria) / float64(totalStories)
	}

	stories, err := s.repos.Stories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	distribution := make(map[string]int64, len(stories))
	for _, story := range stories {
		count, err := s.repos.Criteria.CountByUserStoryID(ctx, story.ID)
		if err != nil {
			return nil, err
		}
		distribution[story.ID] = count
	}

	return &model.AcceptanceCriteriaStatistics{
		TotalCriteria:        totalCriteria,
		TotalStories:         totalStories,
		AvgCriteriaPerStory:  avg,
		CriteriaDistribution: distribution,
	}, nil
}

func (s *AcceptanceCriteriaService) requireStory(ctx context.Context, userStoryID string) error {
	story, err := s.repos.Stories.GetByID(ctx, userStoryID)
	if err != nil {
		return err
	}
	if story == nil {
		return &StoryNotFoundError{StoryID: userStoryID}
	}
	return nil
}

func validateCreateCriteria(req model.CreateAcceptanceCriteriaRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return &ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.UserStoryID) == "" {
		return &ValidationError{Field: "user_story_id", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if !strings.HasPrefix(req.ID, "AC-") {
		return &ValidationError{Field: "id", Reason: "must start with 'AC-'"}
	}
	if !strings.HasPrefix(req.UserStoryID, "US-") {
		return &ValidationError{Field: "user_story_id", Reason: "must start with 'US-'"}
	}
	if len(req.Description) > MaxCriteriaDescriptionLength {
		return &ValidationError{Field: "description", Reason: "cannot exceed 1000 characters"}
	}
	return nil
}

func validateUpdateCriteria(req model.UpdateAcceptanceCriteriaRequest) error {
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return &ValidationError{Field: "description", Reason: "cannot be empty"}
		}
		if len(*req.Description) > MaxCriteriaDescriptionLength {
			return &ValidationError{Field: "description", Reason: "cannot exceed 1000 characters"}
		}
	}
	return nil
}
