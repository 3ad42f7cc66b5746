package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// SearchStoriesTool handles the search_user_stories MCP tool.
type SearchStoriesTool struct {
	stories *service.UserStoryService
}

// NewSearchStoriesTool creates a SearchStoriesTool with the given service.
func NewSearchStoriesTool(stories *service.UserStoryService) *SearchStoriesTool {
	return &SearchStoriesTool{stories: stories}
}

// Definition returns the MCP tool definition for search_user_stories.
func (t *SearchStoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("search_user_stories",
		mcp.WithDescription(
			"Search user stories by text in title, description, or persona.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query text"),
		),
	)
}

// Handle processes the search_user_stories tool call.
func (t *SearchStoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stories, err := t.stories.Search(ctx, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search user stories: %v", err)), nil
	}
	return jsonResult(stories), nil
}

// StoriesByPersonaTool handles the get_user_stories_by_persona MCP tool.
type StoriesByPersonaTool struct {
	stories *service.UserStoryService
}

// NewStoriesByPersonaTool creates a StoriesByPersonaTool.
func NewStoriesByPersonaTool(stories *service.UserStoryService) *StoriesByPersonaTool {
	return &StoriesByPersonaTool{stories: stories}
}

// Definition returns the MCP tool definition for get_user_stories_by_persona.
func (t *StoriesByPersonaTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_stories_by_persona",
		mcp.WithDescription("List user stories whose persona matches exactly."),
		mcp.WithString("persona",
			mcp.Required(),
			mcp.Description("Persona to match (exact, case-sensitive)"),
		),
	)
}

// Handle processes the get_user_stories_by_persona tool call.
func (t *StoriesByPersonaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stories, err := t.stories.GetByPersona(ctx, req.GetString("persona", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get user stories by persona: %v", err)), nil
	}
	return jsonResult(stories), nil
}

// StoriesGroupedByPersonaTool handles the get_user_stories_grouped_by_persona MCP tool.
type StoriesGroupedByPersonaTool struct {
	stories *service.UserStoryService
}

// NewStoriesGroupedByPersonaTool creates a StoriesGroupedByPersonaTool.
func NewStoriesGroupedByPersonaTool(stories *service.UserStoryService) *StoriesGroupedByPersonaTool {
	return &StoriesGroupedByPersonaTool{stories: stories}
}

// Definition returns the MCP tool definition for get_user_stories_grouped_by_persona.
func (t *StoriesGroupedByPersonaTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_stories_grouped_by_persona",
		mcp.WithDescription("List all user stories grouped by persona."),
	)
}

// Handle processes the get_user_stories_grouped_by_persona tool call.
func (t *StoriesGroupedByPersonaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	grouped, err := t.stories.GetGroupedByPersona(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to group user stories: %v", err)), nil
	}
	return jsonResult(grouped), nil
}

// StoryStatsTool handles the get_user_story_statistics MCP tool.
type StoryStatsTool struct {
	stories *service.UserStoryService
}

// NewStoryStatsTool creates a StoryStatsTool with the given service.
func NewStoryStatsTool(stories *service.UserStoryService) *StoryStatsTool {
	return &StoryStatsTool{stories: stories}
}

// Definition returns the MCP tool definition for get_user_story_statistics.
func (t *StoryStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_story_statistics",
		mcp.WithDescription(
			"Get backlog statistics: story and criteria totals, persona counts, "+
				"and average criteria per story.",
		),
	)
}

// Handle processes the get_user_story_statistics tool call.
func (t *StoryStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.stories.GetStatistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get statistics: %v", err)), nil
	}
	return jsonResult(stats), nil
}
