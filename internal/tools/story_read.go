package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetStoryTool handles the get_user_story MCP tool.
type GetStoryTool struct {
	stories *service.UserStoryService
}

// NewGetStoryTool creates a GetStoryTool with the given service.
func NewGetStoryTool(stories *service.UserStoryService) *GetStoryTool {
	return &GetStoryTool{stories: stories}
}

// Definition returns the MCP tool definition for get_user_story.
func (t *GetStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_story",
		mcp.WithDescription("Retrieve a user story by its ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the user story to retrieve"),
		),
	)
}

// Handle processes the get_user_story tool call.
func (t *GetStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	story, err := t.stories.GetByID(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get user story: %v", err)), nil
	}
	return jsonResult(story), nil
}

// GetStoryWithCriteriaTool handles the get_user_story_with_criteria MCP tool.
type GetStoryWithCriteriaTool struct {
	stories *service.UserStoryService
}

// NewGetStoryWithCriteriaTool creates a GetStoryWithCriteriaTool.
func NewGetStoryWithCriteriaTool(stories *service.UserStoryService) *GetStoryWithCriteriaTool {
	return &GetStoryWithCriteriaTool{stories: stories}
}

// Definition returns the MCP tool definition for get_user_story_with_criteria.
func (t *GetStoryWithCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("get_user_story_with_criteria",
		mcp.WithDescription(
			"Retrieve a user story together with its acceptance criteria in creation order.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the user story to retrieve"),
		),
	)
}

// Handle processes the get_user_story_with_criteria tool call.
func (t *GetStoryWithCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.stories.GetWithCriteria(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get user story with criteria: %v", err)), nil
	}
	return jsonResult(result), nil
}

// ListStoriesTool handles the list_user_stories MCP tool.
type ListStoriesTool struct {
	stories *service.UserStoryService
}

// NewListStoriesTool creates a ListStoriesTool.
func NewListStoriesTool(stories *service.UserStoryService) *ListStoriesTool {
	return &ListStoriesTool{stories: stories}
}

// Definition returns the MCP tool definition for list_user_stories.
func (t *ListStoriesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_user_stories",
		mcp.WithDescription("List all user stories, newest first."),
	)
}

// Handle processes the list_user_stories tool call.
func (t *ListStoriesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stories, err := t.stories.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list user stories: %v", err)), nil
	}
	return jsonResult(stories), nil
}

// ListStoriesWithCriteriaTool handles the list_user_stories_with_criteria MCP tool.
type ListStoriesWithCriteriaTool struct {
	stories *service.UserStoryService
}

// NewListStoriesWithCriteriaTool creates a ListStoriesWithCriteriaTool.
func NewListStoriesWithCriteriaTool(stories *service.UserStoryService) *ListStoriesWithCriteriaTool {
	return &ListStoriesWithCriteriaTool{stories: stories}
}

// Definition returns the MCP tool definition for list_user_stories_with_criteria.
func (t *ListStoriesWithCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("list_user_stories_with_criteria",
		mcp.WithDescription(
			"List all user stories, each with its acceptance criteria in creation order.",
		),
	)
}

// Handle processes the list_user_stories_with_criteria tool call.
func (t *ListStoriesWithCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.stories.GetAllWithCriteria(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list user stories with criteria: %v", err)), nil
	}
	return jsonResult(result), nil
}

// ListStoriesPaginatedTool handles the list_user_stories_paginated MCP tool.
type ListStoriesPaginatedTool struct {
	stories *service.UserStoryService
}

// NewListStoriesPaginatedTool creates a ListStoriesPaginatedTool.
func NewListStoriesPaginatedTool(stories *service.UserStoryService) *ListStoriesPaginatedTool {
	return &ListStoriesPaginatedTool{stories: stories}
}

// Definition returns the MCP tool definition for list_user_stories_paginated.
func (t *ListStoriesPaginatedTool) Definition() mcp.Tool {
	return mcp.NewTool("list_user_stories_paginated",
		mcp.WithDescription("List a page of user stories, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Page size, between 1 and 100 (default: 10)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of stories to skip (default: 0)"),
		),
	)
}

// Handle processes the list_user_stories_paginated tool call.
func (t *ListStoriesPaginatedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := intArg(req, "limit", 10)
	offset := intArg(req, "offset", 0)

	stories, err := t.stories.GetPaginated(ctx, limit, offset)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list user stories: %v", err)), nil
	}
	return jsonResult(stories), nil
}
