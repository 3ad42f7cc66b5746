package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// UpdateCriteriaTool handles the update_acceptance_criteria MCP tool.
type UpdateCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewUpdateCriteriaTool creates an UpdateCriteriaTool with the given service.
func NewUpdateCriteriaTool(criteria *service.AcceptanceCriteriaService) *UpdateCriteriaTool {
	return &UpdateCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for update_acceptance_criteria.
func (t *UpdateCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("update_acceptance_criteria",
		mcp.WithDescription(
			"Update an acceptance criteria's description. "+
				"Omitting the description keeps the current value.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the acceptance criteria to update"),
		),
		mcp.WithString("description",
			mcp.Description("New description, up to 1000 characters"),
		),
	)
}

// Handle processes the update_acceptance_criteria tool call.
func (t *UpdateCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria, err := t.criteria.Update(ctx, req.GetString("id", ""), model.UpdateAcceptanceCriteriaRequest{
		Description: optString(req, "description"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update acceptance criteria: %v", err)), nil
	}
	return jsonResult(criteria), nil
}

// DeleteCriteriaTool handles the delete_acceptance_criteria MCP tool.
type DeleteCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewDeleteCriteriaTool creates a DeleteCriteriaTool with the given service.
func NewDeleteCriteriaTool(criteria *service.AcceptanceCriteriaService) *DeleteCriteriaTool {
	return &DeleteCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for delete_acceptance_criteria.
func (t *DeleteCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_acceptance_criteria",
		mcp.WithDescription("Delete an acceptance criteria by its ID."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the acceptance criteria to delete"),
		),
	)
}

// Handle processes the delete_acceptance_criteria tool call.
func (t *DeleteCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := t.criteria.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete acceptance criteria: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Acceptance criteria %s deleted", id)), nil
}

// DeleteCriteriaByStoryTool handles the delete_acceptance_criteria_by_user_story MCP tool.
type DeleteCriteriaByStoryTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewDeleteCriteriaByStoryTool creates a DeleteCriteriaByStoryTool.
func NewDeleteCriteriaByStoryTool(criteria *service.AcceptanceCriteriaService) *DeleteCriteriaByStoryTool {
	return &DeleteCriteriaByStoryTool{criteria: criteria}
}

// Definition returns the MCP tool definition for delete_acceptance_criteria_by_user_story.
func (t *DeleteCriteriaByStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_acceptance_criteria_by_user_story",
		mcp.WithDescription(
			"Delete all acceptance criteria belonging to a user story and report how many were removed.",
		),
		mcp.WithString("user_story_id",
			mcp.Required(),
			mcp.Description("ID of the owning user story"),
		),
	)
}

// Handle processes the delete_acceptance_criteria_by_user_story tool call.
func (t *DeleteCriteriaByStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("user_story_id", "")
	count, err := t.criteria.DeleteByUserStoryID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete acceptance criteria: %v", err)), nil
	}
	return jsonResult(map[string]any{"user_story_id": id, "deleted": count}), nil
}

// SearchCriteriaTool handles the search_acceptance_criteria MCP tool.
type SearchCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewSearchCriteriaTool creates a SearchCriteriaTool with the given service.
func NewSearchCriteriaTool(criteria *service.AcceptanceCriteriaService) *SearchCriteriaTool {
	return &SearchCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for search_acceptance_criteria.
func (t *SearchCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("search_acceptance_criteria",
		mcp.WithDescription("Search acceptance criteria by text in their descriptions."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query text"),
		),
	)
}

// Handle processes the search_acceptance_criteria tool call.
func (t *SearchCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria, err := t.criteria.Search(ctx, req.GetString("query", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search acceptance criteria: %v", err)), nil
	}
	return jsonResult(criteria), nil
}

// CriteriaStatsTool handles the get_acceptance_criteria_statistics MCP tool.
type CriteriaStatsTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewCriteriaStatsTool creates a CriteriaStatsTool with the given service.
func NewCriteriaStatsTool(criteria *service.AcceptanceCriteriaService) *CriteriaStatsTool {
	return &CriteriaStatsTool{criteria: criteria}
}

// Definition returns the MCP tool definition for get_acceptance_criteria_statistics.
func (t *CriteriaStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("get_acceptance_criteria_statistics",
		mcp.WithDescription(
			"Get acceptance criteria statistics: totals, average per story, "+
				"and the per-story criteria distribution.",
		),
	)
}

// Handle processes the get_acceptance_criteria_statistics tool call.
func (t *CriteriaStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.criteria.GetStatistics(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get statistics: %v", err)), nil
	}
	return jsonResult(stats), nil
}
