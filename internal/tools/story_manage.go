package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// UpdateStoryTool handles the update_user_story MCP tool.
type UpdateStoryTool struct {
	stories *service.UserStoryService
}

// NewUpdateStoryTool creates an UpdateStoryTool with the given service.
func NewUpdateStoryTool(stories *service.UserStoryService) *UpdateStoryTool {
	return &UpdateStoryTool{stories: stories}
}

// Definition returns the MCP tool definition for update_user_story.
func (t *UpdateStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("update_user_story",
		mcp.WithDescription(
			"Update a user story's title, description, or persona. "+
				"Omitted fields keep their current values.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the user story to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title, up to 200 characters"),
		),
		mcp.WithString("description",
			mcp.Description("New description, up to 2000 characters"),
		),
		mcp.WithString("persona",
			mcp.Description("New persona"),
		),
	)
}

// Handle processes the update_user_story tool call.
func (t *UpdateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	story, err := t.stories.Update(ctx, req.GetString("id", ""), model.UpdateUserStoryRequest{
		Title:       optString(req, "title"),
		Description: optString(req, "description"),
		Persona:     optString(req, "persona"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update user story: %v", err)), nil
	}
	return jsonResult(story), nil
}

// DeleteStoryTool handles the delete_user_story MCP tool.
type DeleteStoryTool struct {
	stories *service.UserStoryService
}

// NewDeleteStoryTool creates a DeleteStoryTool with the given service.
func NewDeleteStoryTool(stories *service.UserStoryService) *DeleteStoryTool {
	return &DeleteStoryTool{stories: stories}
}

// Definition returns the MCP tool definition for delete_user_story.
func (t *DeleteStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_user_story",
		mcp.WithDescription(
			"Delete a user story. All of its acceptance criteria are deleted with it.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("ID of the user story to delete"),
		),
	)
}

// Handle processes the delete_user_story tool call.
func (t *DeleteStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if err := t.stories.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete user story: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("User story %s deleted", id)), nil
}
