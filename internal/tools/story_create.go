package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateStoryTool handles the create_user_story MCP tool.
type CreateStoryTool struct {
	stories *service.UserStoryService
}

// NewCreateStoryTool creates a CreateStoryTool with the given service.
func NewCreateStoryTool(stories *service.UserStoryService) *CreateStoryTool {
	return &CreateStoryTool{stories: stories}
}

// Definition returns the MCP tool definition for create_user_story.
func (t *CreateStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("create_user_story",
		mcp.WithDescription(
			"Create a new user story with ID, title, description, and persona. "+
				"IDs must start with 'US-' and be unique.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Unique identifier, must start with 'US-' (e.g. 'US-101')"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title, up to 200 characters"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Story description, up to 2000 characters"),
		),
		mcp.WithString("persona",
			mcp.Required(),
			mcp.Description("The persona this story serves (e.g. 'Frequent Shopper')"),
		),
	)
}

// Handle processes the create_user_story tool call.
func (t *CreateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	story, err := t.stories.Create(ctx, model.CreateUserStoryRequest{
		ID:          req.GetString("id", ""),
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Persona:     req.GetString("persona", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create user story: %v", err)), nil
	}
	return jsonResult(story), nil
}

// CreateStoryWithCriteriaTool handles the create_user_story_with_criteria MCP tool.
type CreateStoryWithCriteriaTool struct {
	stories *service.UserStoryService
}

// NewCreateStoryWithCriteriaTool creates a CreateStoryWithCriteriaTool.
func NewCreateStoryWithCriteriaTool(stories *service.UserStoryService) *CreateStoryWithCriteriaTool {
	return &CreateStoryWithCriteriaTool{stories: stories}
}

// Definition returns the MCP tool definition for create_user_story_with_criteria.
func (t *CreateStoryWithCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("create_user_story_with_criteria",
		mcp.WithDescription(
			"Create a user story together with its acceptance criteria in one atomic step. "+
				"Every criteria's user_story_id must match the story's id; on any failure "+
				"nothing is persisted.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Unique story identifier, must start with 'US-'"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short title, up to 200 characters"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Story description, up to 2000 characters"),
		),
		mcp.WithString("persona",
			mcp.Required(),
			mcp.Description("The persona this story serves"),
		),
		mcp.WithArray("acceptance_criteria",
			mcp.Description("Criteria to create alongside the story (may be empty)"),
			mcp.Items(criteriaItemSchema()),
		),
	)
}

// Handle processes the create_user_story_with_criteria tool call.
func (t *CreateStoryWithCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	storyReq := model.CreateUserStoryRequest{
		ID:          req.GetString("id", ""),
		Title:       req.GetString("title", ""),
		Description: req.GetString("description", ""),
		Persona:     req.GetString("persona", ""),
	}

	var criteriaReqs []model.CreateAcceptanceCriteriaRequest
	if _, ok := req.GetArguments()["acceptance_criteria"]; ok {
		var err error
		criteriaReqs, err = decodeCriteriaRequests(req, "acceptance_criteria")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := t.stories.CreateWithCriteria(ctx, storyReq, criteriaReqs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create user story with criteria: %v", err)), nil
	}
	return jsonResult(result), nil
}
