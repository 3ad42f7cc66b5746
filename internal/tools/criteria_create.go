package tools

import (
	"context"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// CreateCriteriaTool handles the create_acceptance_criteria MCP tool.
type CreateCriteriaTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewCreateCriteriaTool creates a CreateCriteriaTool with the given service.
func NewCreateCriteriaTool(criteria *service.AcceptanceCriteriaService) *CreateCriteriaTool {
	return &CreateCriteriaTool{criteria: criteria}
}

// Definition returns the MCP tool definition for create_acceptance_criteria.
func (t *CreateCriteriaTool) Definition() mcp.Tool {
	return mcp.NewTool("create_acceptance_criteria",
		mcp.WithDescription(
			"Create an acceptance criteria for an existing user story. "+
				"A story holds at most 20 criteria.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Unique identifier, must start with 'AC-' (e.g. 'AC-1')"),
		),
		mcp.WithString("user_story_id",
			mcp.Required(),
			mcp.Description("ID of the owning user story, must start with 'US-'"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Testable condition, up to 1000 characters"),
		),
	)
}

// Handle processes the create_acceptance_criteria tool call.
func (t *CreateCriteriaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	criteria, err := t.criteria.Create(ctx, model.CreateAcceptanceCriteriaRequest{
		ID:          req.GetString("id", ""),
		UserStoryID: req.GetString("user_story_id", ""),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create acceptance criteria: %v", err)), nil
	}
	return jsonResult(criteria), nil
}

// CreateCriteriaBatchTool handles the create_acceptance_criteria_batch MCP tool.
type CreateCriteriaBatchTool struct {
	criteria *service.AcceptanceCriteriaService
}

// NewCreateCriteriaBatchTool creates a CreateCriteriaBatchTool.
func NewCreateCriteriaBatchTool(criteria *service.AcceptanceCriteriaService) *CreateCriteriaBatchTool {
	return &CreateCriteriaBatchTool{criteria: criteria}
}

// Definition returns the MCP tool definition for create_acceptance_criteria_batch.
func (t *CreateCriteriaBatchTool) Definition() mcp.Tool {
	return mcp.NewTool("create_acceptance_criteria_batch",
		mcp.WithDescription(
			"Create multiple acceptance criteria in one all-or-nothing batch. "+
				"If any item is invalid or collides, nothing is persisted.",
		),
		mcp.WithArray("criteria",
			mcp.Required(),
			mcp.Description("Criteria objects to create"),
			mcp.Items(criteriaItemSchema()),
		),
	)
}

// Handle processes the create_acceptance_criteria_batch tool call.
func (t *CreateCriteriaBatchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reqs, err := decodeCriteriaRequests(req, "criteria")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := t.criteria.CreateBatch(ctx, reqs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create acceptance criteria batch: %v", err)), nil
	}
	return jsonResult(created), nil
}
