package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetCriteriaTool handles the get_acceptance_criteria MCP tool.
type GetCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewGetCriteriaTool creates a GetCriteriaTool with the given service.
func NewGetCriteriaTool(criteria *service.AcceptanceCriteriaService) *GetCriteriaTool {
	return &GetCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for get_acceptance_criteria.
func (t *GetCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("get_acceptance_criteria",
		mcp.WithDescription("Retrieve an acceptance criteria by its ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the acceptance criteria to retrieve"),
		),
	)
}

// Handle processes the get_acceptance_criteria tool call.
func (t *GetCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria, err := t.criteria.GetByID(ctx, req.GetString("id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get acceptance criteria: %v", err)), nil
	}
	return jsonResult(criteria), nil
}

// CriteriaByStoryTool handles the get_acceptance_criteria_by_user_story MCP tool.
type CriteriaByStoryTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewCriteriaByStoryTool creates a CriteriaByStoryTool.
func NewCriteriaByStoryTool(criteria *service.AcceptanceCriteriaService) *CriteriaByStoryTool {
	return &CriteriaByStoryTool{criteria: criteria}
}

// Definition returns the MCP tool definition for get_acceptance_criteria_by_user_story.
func (t *CriteriaByStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("get_acceptance_criteria_by_user_story",
		mcp.WithDescription(
			"List a user story's acceptance criteria in creation order. "+
				"The story must exist, even when it has no criteria.",
		),
		mcp.WithString("user_story_id",
			mcp.Required(),
			mcp.Description("ID of the owning user story"),
		),
	)
}

// Handle processes the get_acceptance_criteria_by_user_story tool call.
func (t *CriteriaByStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria, err := t.criteria.GetByUserStoryID(ctx, req.GetString("user_story_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get acceptance criteria: %v", err)), nil
	}
	return jsonResult(criteria), nil
}

// ListCriteriaTool handles the list_acceptance_criteria MCP tool.
type ListCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewListCriteriaTool creates a ListCriteriaTool.
func NewListCriteriaTool(criteria *service.AcceptanceCriteriaService) *ListCriteriaTool {
	return &ListCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for list_acceptance_criteria.
func (t *ListCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("list_acceptance_criteria",
		mcp.WithDescription("List all acceptance criteria across every story, newest first."),
	)
}

// Handle processes the list_acceptance_criteria tool call.
func (t *ListCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria, err := t.criteria.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list acceptance criteria: %v", err)), nil
	}
	return jsonResult(criteria), nil
}

// CountCriteriaTool handles the count_acceptance_criteria_for_story MCP tool.
type CountCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewCountCriteriaTool creates a CountCriteriaTool.
func NewCountCriteriaTool(criteria *service.AcceptanceCriteriaService) *CountCriteriaTool {
	return &CountCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for count_acceptance_criteria_for_story.
func (t *CountCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("count_acceptance_criteria_for_story",
		mcp.WithDescription("Count how many acceptance criteria a user story holds."),
		mcp.WithString("user_story_id",
			mcp.Required(),
			mcp.Description("ID of the user story"),
		),
	)
}

// Handle processes the count_acceptance_criteria_for_story tool call.
func (t *CountCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("user_story_id", "")
	count, err := t.criteria.CountByUserStoryID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to count acceptance criteria: %v", err)), nil
	}
	return jsonResult(map[string]any{"user_story_id": id, "count": count}), nil
}
