// Package tools provides the MCP tool handlers for the backlog.
//
// Each tool follows the same pattern:
// - A struct with its service dependency injected via constructor
// - Definition() returns the mcp.Tool schema
// - Handle() processes the request and returns a result
//
// Success responses are pretty-printed JSON; failures are tool errors
// carrying the service error message.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/mark3labs/mcp-go/mcp"
)

// jsonResult serializes v as indented JSON text content.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// optString extracts an optional string argument, returning nil when the
// key is absent so partial updates can tell "unset" from "empty".
func optString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// intArg extracts an integer argument, returning defaultVal if the key is
// missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int64) int64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int64(v)
}

// decodeCriteriaRequests reads an array argument of criteria objects via
// a JSON round trip of the raw argument value.
func decodeCriteriaRequests(req mcp.CallToolRequest, key string) ([]model.CreateAcceptanceCriteriaRequest, error) {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("'%s' is required", key)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid '%s': %v", key, err)
	}
	var out []model.CreateAcceptanceCriteriaRequest
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid '%s': expected an array of criteria objects: %v", key, err)
	}
	return out, nil
}

// criteriaItemSchema is the JSON schema for one criteria object inside an
// array argument.
func criteriaItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id": map[string]any{
				"type":        "string",
				"description": "Criteria ID, must start with 'AC-'",
			},
			"user_story_id": map[string]any{
				"type":        "string",
				"description": "Owning user story ID, must start with 'US-'",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Testable condition, up to 1000 characters",
			},
		},
		"required": []string{"id", "user_story_id", "description"},
	}
}
