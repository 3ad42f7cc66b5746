package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/repository"
	"github.com/agilekit/storydeck/internal/service"
	"github.com/agilekit/storydeck/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestServices creates both services over a temp database.
func newTestServices(t *testing.T) (*service.UserStoryService, *service.AcceptanceCriteriaService) {
	t.Helper()
	db, err := storage.Open(storage.Config{
		DBPath: filepath.Join(t.TempDir(), "storydeck.db"),
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repos := repository.New(db.SQL())
	return service.NewUserStoryService(repos), service.NewAcceptanceCriteriaService(repos)
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func storyArgs(id string) map[string]interface{} {
	return map[string]interface{}{
		"id":          id,
		"title":       "Story " + id,
		"description": "Description for " + id,
		"persona":     "developer",
	}
}

// ─── CreateStoryTool ─────────────────────────────────────────────────────────

func TestCreateStoryTool_Definition(t *testing.T) {
	stories, _ := newTestServices(t)
	def := NewCreateStoryTool(stories).Definition()

	if def.Name != "create_user_story" {
		t.Errorf("tool name = %q, want %q", def.Name, "create_user_story")
	}
	for _, p := range []string{"id", "title", "description", "persona"} {
		if _, ok := def.InputSchema.Properties[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	if len(def.InputSchema.Required) != 4 {
		t.Errorf("required = %v, want all four fields", def.InputSchema.Required)
	}
}

func TestCreateStoryTool_RoundTrip(t *testing.T) {
	stories, _ := newTestServices(t)
	tool := NewCreateStoryTool(stories)

	res, err := tool.Handle(context.Background(), makeReq(storyArgs("US-1")))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}

	var got model.UserStory
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("result is not a story JSON: %v", err)
	}
	if got.ID != "US-1" {
		t.Errorf("ID = %q, want %q", got.ID, "US-1")
	}
	if got.CreatedAt == "" {
		t.Error("created_at is empty")
	}
}

func TestCreateStoryTool_ValidationErrorResult(t *testing.T) {
	stories, _ := newTestServices(t)
	tool := NewCreateStoryTool(stories)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"id": "BAD-1", "title": "t", "description": "d", "persona": "p",
	}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected a tool error result")
	}
	if !strings.Contains(resultText(res), "US-") {
		t.Errorf("error text = %q, want mention of the US- prefix rule", resultText(res))
	}
}

// ─── CreateStoryWithCriteriaTool ─────────────────────────────────────────────

func TestCreateStoryWithCriteriaTool_RoundTrip(t *testing.T) {
	stories, _ := newTestServices(t)
	tool := NewCreateStoryWithCriteriaTool(stories)

	args := storyArgs("US-1")
	args["acceptance_criteria"] = []interface{}{
		map[string]interface{}{"id": "AC-1", "user_story_id": "US-1", "description": "first"},
		map[string]interface{}{"id": "AC-2", "user_story_id": "US-1", "description": "second"},
	}

	res, err := tool.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}

	var got model.UserStoryWithCriteria
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("result is not a composite JSON: %v", err)
	}
	if len(got.AcceptanceCriteria) != 2 {
		t.Errorf("criteria = %d, want 2", len(got.AcceptanceCriteria))
	}
}

func TestCreateStoryWithCriteriaTool_OmittedCriteria(t *testing.T) {
	stories, _ := newTestServices(t)
	tool := NewCreateStoryWithCriteriaTool(stories)

	res, err := tool.Handle(context.Background(), makeReq(storyArgs("US-1")))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}
}

// ─── UpdateStoryTool ─────────────────────────────────────────────────────────

func TestUpdateStoryTool_PartialUpdate(t *testing.T) {
	stories, _ := newTestServices(t)
	create := NewCreateStoryTool(stories)
	update := NewUpdateStoryTool(stories)
	ctx := context.Background()

	if res, _ := create.Handle(ctx, makeReq(storyArgs("US-1"))); res.IsError {
		t.Fatalf("create: %s", resultText(res))
	}

	// Only the title is present; description and persona stay untouched.
	res, err := update.Handle(ctx, makeReq(map[string]interface{}{
		"id":    "US-1",
		"title": "Renamed",
	}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}

	var got model.UserStory
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("result is not a story JSON: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want %q", got.Title, "Renamed")
	}
	if got.Description != "Description for US-1" {
		t.Errorf("description = %q, want unchanged", got.Description)
	}
}

// ─── DeleteStoryTool ─────────────────────────────────────────────────────────

func TestDeleteStoryTool(t *testing.T) {
	stories, _ := newTestServices(t)
	create := NewCreateStoryTool(stories)
	del := NewDeleteStoryTool(stories)
	ctx := context.Background()

	if res, _ := create.Handle(ctx, makeReq(storyArgs("US-1"))); res.IsError {
		t.Fatalf("create: %s", resultText(res))
	}

	res, err := del.Handle(ctx, makeReq(map[string]interface{}{"id": "US-1"}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "US-1") {
		t.Errorf("text = %q, want mention of US-1", resultText(res))
	}

	res, _ = del.Handle(ctx, makeReq(map[string]interface{}{"id": "US-1"}))
	if !res.IsError {
		t.Error("second delete should report an error")
	}
}

// ─── ListStoriesPaginatedTool ────────────────────────────────────────────────

func TestListStoriesPaginatedTool_Defaults(t *testing.T) {
	stories, _ := newTestServices(t)
	create := NewCreateStoryTool(stories)
	list := NewListStoriesPaginatedTool(stories)
	ctx := context.Background()

	for _, id := range []string{"US-1", "US-2", "US-3"} {
		if res, _ := create.Handle(ctx, makeReq(storyArgs(id))); res.IsError {
			t.Fatalf("create %s: %s", id, resultText(res))
		}
	}

	// No limit/offset supplied: defaults apply.
	res, err := list.Handle(ctx, makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}

	var got []model.UserStory
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("result is not a story list: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("stories = %d, want 3", len(got))
	}
}

func TestListStoriesPaginatedTool_InvalidLimit(t *testing.T) {
	stories, _ := newTestServices(t)
	list := NewListStoriesPaginatedTool(stories)

	res, err := list.Handle(context.Background(), makeReq(map[string]interface{}{
		"limit": float64(500),
	}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if !res.IsError {
		t.Error("expected a tool error for limit over 100")
	}
}

// ─── CreateCriteriaBatchTool ─────────────────────────────────────────────────

func TestCreateCriteriaBatchTool_RoundTrip(t *testing.T) {
	stories, criteria := newTestServices(t)
	createStory := NewCreateStoryTool(stories)
	batch := NewCreateCriteriaBatchTool(criteria)
	ctx := context.Background()

	if res, _ := createStory.Handle(ctx, makeReq(storyArgs("US-1"))); res.IsError {
		t.Fatalf("create story: %s", resultText(res))
	}

	res, err := batch.Handle(ctx, makeReq(map[string]interface{}{
		"criteria": []interface{}{
			map[string]interface{}{"id": "AC-1", "user_story_id": "US-1", "description": "first"},
			map[string]interface{}{"id": "AC-2", "user_story_id": "US-1", "description": "second"},
		},
	}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}

	var got []model.AcceptanceCriteria
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("result is not a criteria list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("criteria = %d, want 2", len(got))
	}
}

func TestCreateCriteriaBatchTool_MissingArray(t *testing.T) {
	_, criteria := newTestServices(t)
	batch := NewCreateCriteriaBatchTool(criteria)

	res, err := batch.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if !res.IsError {
		t.Error("expected a tool error when 'criteria' is absent")
	}
}

// ─── CountCriteriaTool ───────────────────────────────────────────────────────

func TestCountCriteriaTool(t *testing.T) {
	stories, criteria := newTestServices(t)
	createStory := NewCreateStoryTool(stories)
	createCriteria := NewCreateCriteriaTool(criteria)
	count := NewCountCriteriaTool(criteria)
	ctx := context.Background()

	if res, _ := createStory.Handle(ctx, makeReq(storyArgs("US-1"))); res.IsError {
		t.Fatalf("create story: %s", resultText(res))
	}
	if res, _ := createCriteria.Handle(ctx, makeReq(map[string]interface{}{
		"id": "AC-1", "user_story_id": "US-1", "description": "one",
	})); res.IsError {
		t.Fatalf("create criteria: %s", resultText(res))
	}

	res, err := count.Handle(ctx, makeReq(map[string]interface{}{"user_story_id": "US-1"}))
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(res))
	}

	var got struct {
		UserStoryID string `json:"user_story_id"`
		Count       int64  `json:"count"`
	}
	if err := json.Unmarshal([]byte(resultText(res)), &got); err != nil {
		t.Fatalf("result is not a count JSON: %v", err)
	}
	if got.Count != 1 {
		t.Errorf("count = %d, want 1", got.Count)
	}
}

// ─── Helper behavior ─────────────────────────────────────────────────────────

func TestOptString_AbsentVsEmpty(t *testing.T) {
	req := makeReq(map[string]interface{}{"present": ""})

	if got := optString(req, "absent"); got != nil {
		t.Errorf("absent key = %v, want nil", got)
	}
	got := optString(req, "present")
	if got == nil || *got != "" {
		t.Errorf("present empty key = %v, want pointer to empty string", got)
	}
}

func TestIntArg_Defaults(t *testing.T) {
	req := makeReq(map[string]interface{}{"n": float64(7), "s": "x"})

	if got := intArg(req, "n", 1); got != 7 {
		t.Errorf("n = %d, want 7", got)
	}
	if got := intArg(req, "missing", 42); got != 42 {
		t.Errorf("missing = %d, want default 42", got)
	}
	if got := intArg(req, "s", 42); got != 42 {
		t.Errorf("non-number = %d, want default 42", got)
	}
}
