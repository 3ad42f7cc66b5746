package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agilekit/storydeck/internal/model"
	"github.com/agilekit/storydeck/internal/repository"
)

// ─── Create / GetByID ───────────────────────────────────────────────────────

func TestStoryCreate_Basic(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	created, err := repos.Stories.Create(ctx, model.CreateUserStoryRequest{
		ID:          "US-1",
		Title:       "User login",
		Description: "Allow users to log in with email and password",
		Persona:     "registered user",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if created.CreatedAt == "" || created.CreatedAt != created.UpdatedAt {
		t.Errorf("timestamps: created_at = %q, updated_at = %q", created.CreatedAt, created.UpdatedAt)
	}

	got, err := repos.Stories.GetByID(ctx, "US-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got == nil {
		t.Fatal("story not found after create")
	}
	if got.Title != "User login" {
		t.Errorf("title = %q, want %q", got.Title, "User login")
	}
	if got.Persona != "registered user" {
		t.Errorf("persona = %q, want %q", got.Persona, "registered user")
	}
	if got.CreatedAt != created.CreatedAt {
		t.Errorf("created_at = %q, want %q", got.CreatedAt, created.CreatedAt)
	}
}

func TestStoryCreate_DuplicateID(t *testing.T) {
	repos := newTestRepos(t)
	mustCreateStory(t, repos, "US-1")

	_, err := repos.Stories.Create(context.Background(), storyReq("US-1"))
	if !errors.Is(err, repository.ErrDuplicateID) {
		t.Fatalf("error = %v, want ErrDuplicateID", err)
	}
}

func TestStoryGetByID_Absent(t *testing.T) {
	repos := newTestRepos(t)

	got, err := repos.Stories.GetByID(context.Background(), "US-missing")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for absent story", got)
	}
}

// ─── Listing & pagination ───────────────────────────────────────────────────

func TestStoryGetAll_NewestFirst(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	mustCreateStory(t, repos, "US-1")
	mustCreateStory(t, repos, "US-2")
	mustCreateStory(t, repos, "US-3")

	stories, err := repos.Stories.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(stories) != 3 {
		t.Fatalf("count = %d, want 3", len(stories))
	}
	want := []string{"US-3", "US-2", "US-1"}
	for i, w := range want {
		if stories[i].ID != w {
			t.Errorf("stories[%d].ID = %q, want %q", i, stories[i].ID, w)
		}
	}
}

func TestStoryGetAll_Empty(t *testing.T) {
	repos := newTestRepos(t)

	stories, err := repos.Stories.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if stories == nil {
		t.Error("GetAll returned nil, want empty slice")
	}
	if len(stories) != 0 {
		t.Errorf("count = %d, want 0", len(stories))
	}
}

func TestStoryGetPaginated(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	for _, id := range []string{"US-1", "US-2", "US-3", "US-4", "US-5"} {
		mustCreateStory(t, repos, id)
	}

	page, err := repos.Stories.GetPaginated(ctx, 2, 1)
	if err != nil {
		t.Fatalf("GetPaginated error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	// Newest first: full order is US-5..US-1, offset 1 skips US-5.
	if page[0].ID != "US-4" || page[1].ID != "US-3" {
		t.Errorf("page = [%s, %s], want [US-4, US-3]", page[0].ID, page[1].ID)
	}
}

func TestStoryGetPaginated_OffsetPastEnd(t *testing.T) {
	repos := newTestRepos(t)
	mustCreateStory(t, repos, "US-1")

	page, err := repos.Stories.GetPaginated(context.Background(), 10, 50)
	if err != nil {
		t.Fatalf("GetPaginated error: %v", err)
	}
	if len(page) != 0 {
		t.Errorf("page size = %d, want 0", len(page))
	}
}

// ─── Update ─────────────────────────────────────────────────────────────────

func TestStoryUpdate_PartialKeepsOtherFields(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	created := mustCreateStory(t, repos, "US-1")

	title := "New title"
	updated, err := repos.Stories.Update(ctx, "US-1", model.UpdateUserStoryRequest{Title: &title})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Title != "New title" {
		t.Errorf("title = %q, want %q", updated.Title, "New title")
	}
	if updated.Description != created.Description {
		t.Errorf("description changed: %q, want %q", updated.Description, created.Description)
	}
	if updated.Persona != created.Persona {
		t.Errorf("persona changed: %q, want %q", updated.Persona, created.Persona)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Errorf("created_at changed: %q, want %q", updated.CreatedAt, created.CreatedAt)
	}
	if updated.UpdatedAt <= created.UpdatedAt {
		t.Errorf("updated_at = %q, want newer than %q", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestStoryUpdate_AllNilStillBumpsUpdatedAt(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	created := mustCreateStory(t, repos, "US-1")

	updated, err := repos.Stories.Update(ctx, "US-1", model.UpdateUserStoryRequest{})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Title != created.Title || updated.Description != created.Description {
		t.Error("fields changed on all-nil update")
	}
	if updated.UpdatedAt <= created.UpdatedAt {
		t.Errorf("updated_at = %q, want newer than %q", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestStoryUpdate_Absent(t *testing.T) {
	repos := newTestRepos(t)

	got, err := repos.Stories.Update(context.Background(), "US-missing", model.UpdateUserStoryRequest{})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for absent story", got)
	}
}

// ─── Delete & cascade ───────────────────────────────────────────────────────

func TestStoryDelete_CascadesCriteria(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()
	mustCreateStory(t, repos, "US-1")
	for _, id := range []string{"AC-1", "AC-2", "AC-3"} {
		if _, err := repos.Criteria.Create(ctx, criteriaReq(id, "US-1"), 20); err != nil {
			t.Fatalf("creating criteria %q: %v", id, err)
		}
	}

	deleted, err := repos.Stories.Delete(ctx, "US-1")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if !deleted {
		t.Fatal("Delete reported no row")
	}

	n, err := repos.Criteria.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 0 {
		t.Errorf("criteria count after cascade = %d, want 0", n)
	}
}

func TestStoryDelete_Absent(t *testing.T) {
	repos := newTestRepos(t)

	deleted, err := repos.Stories.Delete(context.Background(), "US-missing")
	if err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted {
		t.Error("Delete reported a row for an absent story")
	}
}

// ─── Search & persona queries ───────────────────────────────────────────────

func TestStorySearch_MatchesAllTextFields(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	seed := []model.CreateUserStoryRequest{
		{ID: "US-1", Title: "Login page", Description: "basic auth", Persona: "visitor"},
		{ID: "US-2", Title: "Dashboard", Description: "shows login history", Persona: "admin"},
		{ID: "US-3", Title: "Export", Description: "CSV export", Persona: "login auditor"},
		{ID: "US-4", Title: "Billing", Description: "invoices", Persona: "accountant"},
	}
	for _, req := range seed {
		if _, err := repos.Stories.Create(ctx, req); err != nil {
			t.Fatalf("seeding %q: %v", req.ID, err)
		}
	}

	got, err := repos.Stories.Search(ctx, "login")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("matches = %d, want 3", len(got))
	}
	// Newest first.
	want := []string{"US-3", "US-2", "US-1"}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, w)
		}
	}
}

func TestStorySearch_NoMatches(t *testing.T) {
	repos := newTestRepos(t)
	mustCreateStory(t, repos, "US-1")

	got, err := repos.Stories.Search(context.Background(), "zzz-nothing")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("matches = %d, want 0", len(got))
	}
}

func TestStoryGetByPersona_ExactMatch(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	seed := []model.CreateUserStoryRequest{
		{ID: "US-1", Title: "a", Description: "d", Persona: "admin"},
		{ID: "US-2", Title: "b", Description: "d", Persona: "administrator"},
		{ID: "US-3", Title: "c", Description: "d", Persona: "admin"},
	}
	for _, req := range seed {
		if _, err := repos.Stories.Create(ctx, req); err != nil {
			t.Fatalf("seeding %q: %v", req.ID, err)
		}
	}

	got, err := repos.Stories.GetByPersona(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByPersona error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("count = %d, want 2 (exact match only)", len(got))
	}
	if got[0].ID != "US-3" || got[1].ID != "US-1" {
		t.Errorf("order = [%s, %s], want [US-3, US-1]", got[0].ID, got[1].ID)
	}
}

func TestStoryGetGroupedByPersona(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	seed := []model.CreateUserStoryRequest{
		{ID: "US-1", Title: "a", Description: "d", Persona: "admin"},
		{ID: "US-2", Title: "b", Description: "d", Persona: "visitor"},
		{ID: "US-3", Title: "c", Description: "d", Persona: "admin"},
	}
	for _, req := range seed {
		if _, err := repos.Stories.Create(ctx, req); err != nil {
			t.Fatalf("seeding %q: %v", req.ID, err)
		}
	}

	grouped, err := repos.Stories.GetGroupedByPersona(ctx)
	if err != nil {
		t.Fatalf("GetGroupedByPersona error: %v", err)
	}
	if len(grouped) != 2 {
		t.Fatalf("personas = %d, want 2", len(grouped))
	}
	if len(grouped["admin"]) != 2 {
		t.Errorf("admin stories = %d, want 2", len(grouped["admin"]))
	}
	if len(grouped["visitor"]) != 1 {
		t.Errorf("visitor stories = %d, want 1", len(grouped["visitor"]))
	}
	// Newest first within a group.
	if grouped["admin"][0].ID != "US-3" {
		t.Errorf("admin[0].ID = %q, want US-3", grouped["admin"][0].ID)
	}
}

func TestStoryCount(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	n, err := repos.Stories.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	mustCreateStory(t, repos, "US-1")
	mustCreateStory(t, repos, "US-2")

	n, err = repos.Stories.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}
