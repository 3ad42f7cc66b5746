// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it opens the store, builds the services,
// and injects them into the tools. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/agilekit/storydeck/internal/repository"
	"github.com/agilekit/storydeck/internal/service"
	"github.com/agilekit/storydeck/internal/storage"
	"github.com/agilekit/storydeck/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with every tool registered.
// This is the single place where all dependencies are resolved.
//
// The returned cleanup function closes the database connection and must
// be called on shutdown (typically via defer). It is always non-nil.
func New(cfg storage.Config) (*server.MCPServer, func(), error) {
	db, err := storage.Open(cfg)
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() { _ = db.Close() }

	repos := repository.New(db.SQL())
	stories := service.NewUserStoryService(repos)
	criteria := service.NewAcceptanceCriteriaService(repos)

	s := server.NewMCPServer(
		"storydeck",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	registerStoryTools(s, stories)
	registerCriteriaTools(s, criteria)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the store
// failed to open.
func noop() {}

// registerStoryTools registers the 13 user story MCP tools.
func registerStoryTools(s *server.MCPServer, stories *service.UserStoryService) {
	// --- Create ---
	createStory := tools.NewCreateStoryTool(stories)
	s.AddTool(createStory.Definition(), createStory.Handle)

	createWithCriteria := tools.NewCreateStoryWithCriteriaTool(stories)
	s.AddTool(createWithCriteria.Definition(), createWithCriteria.Handle)

	// --- Read ---
	getStory := tools.NewGetStoryTool(stories)
	s.AddTool(getStory.Definition(), getStory.Handle)

	getWithCriteria := tools.NewGetStoryWithCriteriaTool(stories)
	s.AddTool(getWithCriteria.Definition(), getWithCriteria.Handle)

	listStories := tools.NewListStoriesTool(stories)
	s.AddTool(listStories.Definition(), listStories.Handle)

	listWithCriteria := tools.NewListStoriesWithCriteriaTool(stories)
	s.AddTool(listWithCriteria.Definition(), listWithCriteria.Handle)

	listPaginated := tools.NewListStoriesPaginatedTool(stories)
	s.AddTool(listPaginated.Definition(), listPaginated.Handle)

	// --- Update & delete ---
	updateStory := tools.NewUpdateStoryTool(stories)
	s.AddTool(updateStory.Definition(), updateStory.Handle)

	deleteStory := tools.NewDeleteStoryTool(stories)
	s.AddTool(deleteStory.Definition(), deleteStory.Handle)

	// --- Query & statistics ---
	searchStories := tools.NewSearchStoriesTool(stories)
	s.AddTool(searchStories.Definition(), searchStories.Handle)

	byPersona := tools.NewStoriesByPersonaTool(stories)
	s.AddTool(byPersona.Definition(), byPersona.Handle)

	groupedByPersona := tools.NewStoriesGroupedByPersonaTool(stories)
	s.AddTool(groupedByPersona.Definition(), groupedByPersona.Handle)

	storyStats := tools.NewStoryStatsTool(stories)
	s.AddTool(storyStats.Definition(), storyStats.Handle)
}

// registerCriteriaTools registers the 11 acceptance criteria MCP tools.
func registerCriteriaTools(s *server.MCPServer, criteria *service.AcceptanceCriteriaService) {
	// --- Create ---
	createCriteria := tools.NewCreateCriteriaTool(criteria)
	s.AddTool(createCriteria.Definition(), createCriteria.Handle)

	createBatch := tools.NewCreateCriteriaBatchTool(criteria)
	s.AddTool(createBatch.Definition(), createBatch.Handle)

	// --- Read ---
	getCriteria := tools.NewGetCriteriaTool(criteria)
	s.AddTool(getCriteria.Definition(), getCriteria.Handle)

	byStory := tools.NewCriteriaByStoryTool(criteria)
	s.AddTool(byStory.Definition(), byStory.Handle)

	listCriteria := tools.NewListCriteriaTool(criteria)
	s.AddTool(listCriteria.Definition(), listCriteria.Handle)

	countForStory := tools.NewCountCriteriaTool(criteria)
	s.AddTool(countForStory.Definition(), countForStory.Handle)

	// --- Update & delete ---
	updateCriteria := tools.NewUpdateCriteriaTool(criteria)
	s.AddTool(updateCriteria.Definition(), updateCriteria.Handle)

	deleteCriteria := tools.NewDeleteCriteriaTool(criteria)
	s.AddTool(deleteCriteria.Definition(), deleteCriteria.Handle)

	deleteByStory := tools.NewDeleteCriteriaByStoryTool(criteria)
	s.AddTool(deleteByStory.Definition(), deleteByStory.Handle)

	// --- Query & statistics ---
	searchCriteria := tools.NewSearchCriteriaTool(criteria)
	s.AddTool(searchCriteria.Definition(), searchCriteria.Handle)

	criteriaStats := tools.NewCriteriaStatsTool(criteria)
	s.AddTool(criteriaStats.Definition(), criteriaStats.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use StoryDeck effectively.
func serverInstructions() string {
	return `You have access to StoryDeck, a user story management MCP server.

StoryDeck keeps a backlog of user stories and their acceptance criteria
in a local SQLite database, so requirements survive across sessions.

## Conventions

- User story IDs start with "US-" (e.g. "US-1", "US-login").
- Acceptance criteria IDs start with "AC-" (e.g. "AC-1").
- A story holds at most 20 acceptance criteria.
- Deleting a story deletes its criteria with it.

## Typical workflow

1. create_user_story or create_user_story_with_criteria to capture a
   requirement ("As a <persona>, I want <title>, so that <description>").
2. create_acceptance_criteria (or the batch variant) to attach testable
   conditions to an existing story.
3. get_user_story_with_criteria / list_user_stories to review the backlog.
4. search_user_stories and get_user_stories_by_persona to find stories.
5. get_user_story_statistics for a backlog overview.

Prefer create_user_story_with_criteria when the user gives you a story
together with its criteria: it persists everything atomically.`
}
