package service

import (
	"context"
	"errors"
	"strings"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/repository"
)

// Validation limits for user stories.
const (
	MaxTitleLength            = 200
	MaxStoryDescriptionLength = 2000
	MaxPageLimit              = 100
)

// UserStoryService enforces user-story validation and invariants on top
// of the repositories. Stateless and safe for concurrent use.
type UserStoryService struct {
	repos *repository.Repositories
}

// NewUserStoryService creates a service over the shared repositories.
func NewUserStoryService(repos *repository.Repositories) *UserStoryService {
	return &UserStoryService{repos: repos}
}

// Create validates the request and inserts a new user story.
func (s *UserStoryService) Create(ctx context.Context, req model.CreateUserStoryRequest) (*model.UserStory, error) {
	if err := validateCreateStory(req); err != nil {
		return nil, err
	}

	existing, err := s.repos.Stories.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadyExistsError{Entity: EntityUserStory, ID: req.ID}
	}

	story, err := s.repos.Stories.Create(ctx, req)
	if errors.Is(err, repository.ErrDuplicateID) {
		return nil, &AlreadyExistsError{Entity: EntityUserStory, ID: req.ID}
	}
	return story, err
}

// CreateWithCriteria creates a story together with its acceptance
// criteria in a single transaction. Every criteria request must reference
// the story being created. A failure in the criteria phase rolls the
// story insert back too.
func (s *UserStoryService) CreateWithCriteria(
	ctx context.Context,
	storyReq model.CreateUserStoryRequest,
	criteriaReqs []model.CreateAcceptanceCriteriaRequest,
) (*model.UserStoryWithCriteria, error) {
	if err := validateCreateStory(storyReq); err != nil {
		return nil, err
	}
	for _, c := range criteriaReqs {
		if c.UserStoryID != storyReq.ID {
			return nil, &ValidationError{
				Field:  "user_story_id",
				Reason: "acceptance criteria " + c.ID + " does not belong to user story " + storyReq.ID,
			}
		}
	}

	existing, err := s.repos.Stories.GetByID(ctx, storyReq.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadyExistsError{Entity: EntityUserStory, ID: storyReq.ID}
	}

	story, criteria, err := s.repos.CreateStoryWithCriteria(ctx, storyReq, criteriaReqs)
	if errors.Is(err, repository.ErrDuplicateID) {
		return nil, &AlreadyExistsError{Entity: EntityUserStory, ID: storyReq.ID}
	}
	if err != nil {
		return nil, err
	}
	return &model.UserStoryWithCriteria{UserStory: *story, AcceptanceCriteria: criteria}, nil
}

// GetByID returns a story or NotFoundError.
func (s *UserStoryService) GetByID(ctx context.Context, id string) (*model.UserStory, error) {
	story, err := s.repos.Stories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, &NotFoundError{Entity: EntityUserStory, ID: id}
	}
	return story, nil
}

// GetWithCriteria returns the composite view of a story and its criteria
// in creation order.
func (s *UserStoryService) GetWithCriteria(ctx context.Context, id string) (*model.UserStoryWithCriteria, error) {
	story, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	criteria, err := s.repos.Criteria.GetByUserStoryID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.UserStoryWithCriteria{UserStory: *story, AcceptanceCriteria: criteria}, nil
}

// GetAll returns every story, newest first.
func (s *UserStoryService) GetAll(ctx context.Context) ([]model.UserStory, error) {
	return s.repos.Stories.GetAll(ctx)
}

// GetAllWithCriteria returns the composite view for every story. Criteria
// are fetched per story, one round trip each.
func (s *UserStoryService) GetAllWithCriteria(ctx context.Context) ([]model.UserStoryWithCriteria, error) {
	stories, err := s.repos.Stories.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := []model.UserStoryWithCriteria{}
	for _, story := range stories {
		criteria, err := s.repos.Criteria.GetByUserStoryID(ctx, story.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, model.UserStoryWithCriteria{
			UserStory:          story,
			AcceptanceCriteria: criteria,
		})
	}
	return result, nil
}

// GetPaginated returns a page of stories. Limit must be in [1,100] and
// offset non-negative.
func (s *UserStoryService) GetPaginated(ctx context.Context, limit, offset int64) ([]model.UserStory, error) {
	if limit <= 0 || limit > MaxPageLimit {
		return nil, &ValidationError{Field: "limit", Reason: "must be between 1 and 100"}
	}
	if offset < 0 {
		return nil, &ValidationError{Field: "offset", Reason: "must be non-negative"}
	}
	return s.repos.Stories.GetPaginated(ctx, limit, offset)
}

// Update validates any present fields and applies a partial update.
func (s *UserStoryService) Update(ctx context.Context, id string, req model.UpdateUserStoryRequest) (*model.UserStory, error) {
	if err := validateUpdateStory(req); err != nil {
		return nil, err
	}
	story, err := s.repos.Stories.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, &NotFoundError{Entity: EntityUserStory, ID: id}
	}
	return story, nil
}

// Delete removes a story; its criteria go with it via the cascading
// foreign key.
func (s *UserStoryService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repos.Stories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return &NotFoundError{Entity: EntityUserStory, ID: id}
	}
	return nil
}

// Search returns stories whose title, description, or persona contains
// the query.
func (s *UserStoryService) Search(ctx context.Context, query string) ([]model.UserStory, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Reason: "cannot be empty"}
	}
	return s.repos.Stories.Search(ctx, query)
}

// GetByPersona returns stories for an exact persona match.
func (s *UserStoryService) GetByPersona(ctx context.Context, persona string) ([]model.UserStory, error) {
	if strings.TrimSpace(persona) == "" {
		return nil, &ValidationError{Field: "persona", Reason: "cannot be empty"}
	}
	return s.repos.Stories.GetByPersona(ctx, persona)
}

// GetGroupedByPersona returns all stories keyed by persona.
func (s *UserStoryService) GetGroupedByPersona(ctx context.Context) (map[string][]model.UserStory, error) {
	return s.repos.Stories.GetGroupedByPersona(ctx)
}

// GetStatistics computes a fresh backlog-wide snapshot. The criteria
// total covers the whole system, not any persona subset.
func (s *UserStoryService) GetStatistics(ctx context.Context) (*model.UserStoryStatistics, error) {
	totalStories, err := s.repos.Stories.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalCriteria, err := s.repos.Criteria.Count(ctx)
	if err != nil {
		return nil, err
	}
	grouped, err := s.repos.Stories.GetGroupedByPersona(ctx)
	if err != nil {
		return nil, err
	}

	avg := 0.0
	if totalStories > 0 {
		avg = float64(totalCriteria) / float64(totalStories)
	}

	byPersona := make(map[string]int64, len(grouped))
	for persona, stories := range grouped {
		byPersona[persona] = int64(len(stories))
	}

	return &model.UserStoryStatistics{
		TotalStories:        totalStories,
		TotalCriteria:       totalCriteria,
		PersonasCount:       int64(len(grouped)),
		AvgCriteriaPerStory: avg,
		StoriesByPersona:    byPersona,
	}, nil
}

func validateCreateStory(req model.CreateUserStoryRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return &ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.Title) == "" {
		return &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.Persona) == "" {
		return &ValidationError{Field: "persona", Reason: "cannot be empty"}
	}
	if !strings.HasPrefix(req.ID, "US-") {
		return &ValidationError{Field: "id", Reason: "must start with 'US-'"}
	}
	if len(req.Title) > MaxTitleLength {
		return &ValidationError{Field: "title", Reason: "cannot exceed 200 characters"}
	}
	if len(req.Description) > MaxStoryDescriptionLength {
		return &ValidationError{Field: "description", Reason: "cannot exceed 2000 characters"}
	}
	return nil
}

func validateUpdateStory(req model.UpdateUserStoryRequest) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return &ValidationError{Field: "title", Reason: "cannot be empty"}
		}
		if len(*req.Title) > MaxTitleLength {
			return &ValidationError{Field: "title", Reason: "cannot exceed 200 characters"}
		}
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return &ValidationError{Field: "description", Reason: "cannot be empty"}
		}
		if len(*req.Description) > MaxStoryDescriptionLength {
			return &ValidationError{Field: "description", Reason: "cannot exceed 2000 characters"}
		}
	}
	if req.Persona != nil && strings.TrimSpace(*req.Persona) == "" {
		return &ValidationError{Field: "persona", Reason: "cannot be empty"}
	}
	return nil
}
