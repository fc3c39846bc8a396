package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/middleware"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/ah91648/roomie-roster-sub000/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func setupAPIHandler(t *testing.T) (*APIHandler, *repository.Store) {
	t.Helper()
	store := repository.NewSQLiteStore(testutil.NewTestDatabase(t))
	handler := NewAPIHandler(store.Roommates, store.Chores, store.Assignments, store.APITokens, store.Settings)
	return handler, store
}

func TestAPITokenAuth_RejectsICalScopedToken(t *testing.T) {
	handler, store := setupAPIHandler(t)
	ctx := context.Background()

	roommate, err := store.Roommates.Create(ctx, models.Roommate{
		Name: "alice", Email: "alice@example.com", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	rawToken := "ical-scoped-test-token"
	_, err = store.APITokens.Create(ctx, models.APIToken{
		Name:                "iCal Token",
		TokenHash:           repository.HashToken(rawToken),
		Scope:               "ical",
		CreatedByRoommateID: roommate.ID,
	})
	if err != nil {
		t.Fatalf("creating ical token: %v", err)
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(store.APITokens, store.Roommates))
		r.Get("/api/v1/chores", handler.ListChores)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/v1/chores", nil)
	request.Header.Set("Authorization", "Bearer "+rawToken)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 for ical-scoped token on API route, got %d", recorder.Code)
	}
}

func TestAPITokenAuth_AcceptsAPIScopedToken(t *testing.T) {
	handler, store := setupAPIHandler(t)
	ctx := context.Background()

	roommate, err := store.Roommates.Create(ctx, models.Roommate{
		Name: "alice", Email: "alice@example.com", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	rawToken := "api-scoped-test-token"
	_, err = store.APITokens.Create(ctx, models.APIToken{
		Name:                "API Token",
		TokenHash:           repository.HashToken(rawToken),
		Scope:               "api",
		CreatedByRoommateID: roommate.ID,
	})
	if err != nil {
		t.Fatalf("creating api token: %v", err)
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(store.APITokens, store.Roommates))
		r.Get("/api/v1/roommates", handler.ListRoommates)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/v1/roommates", nil)
	request.Header.Set("Authorization", "Bearer "+rawToken)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"alice"`) {
		t.Errorf("expected roommates in response, got %s", recorder.Body.String())
	}
}

func TestAPITokenAuth_RejectsExpiredToken(t *testing.T) {
	handler, store := setupAPIHandler(t)
	ctx := context.Background()

	roommate, err := store.Roommates.Create(ctx, models.Roommate{
		Name: "alice", Email: "alice@example.com", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	expired := time.Now().Add(-time.Hour)
	rawToken := "expired-test-token"
	_, err = store.APITokens.Create(ctx, models.APIToken{
		Name:                "Expired Token",
		TokenHash:           repository.HashToken(rawToken),
		Scope:               "api",
		CreatedByRoommateID: roommate.ID,
		ExpiresAt:           &expired,
	})
	if err != nil {
		t.Fatalf("creating expired token: %v", err)
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(store.APITokens, store.Roommates))
		r.Get("/api/v1/chores", handler.ListChores)
	})

	request := httptest.NewRequest(http.MethodGet, "/api/v1/chores", nil)
	request.Header.Set("Authorization", "Bearer "+rawToken)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 for expired token, got %d", recorder.Code)
	}
}

func TestCreateToken_ReturnsRawTokenOnce(t *testing.T) {
	handler, store := setupAPIHandler(t)

	admin, err := store.Roommates.Create(context.Background(), models.Roommate{
		Name: "alice", Email: "alice@example.com", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	body := strings.NewReader(`{"name": "home-assistant"}`)
	request := httptest.NewRequest(http.MethodPost, "/api/admin/tokens", body)
	request = requestWithRoommate(request, admin)
	recorder := httptest.NewRecorder()
	handler.CreateToken(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Scope string `json:"scope"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(response.Token) != 64 {
		t.Errorf("expected a 64-char hex token, got %q", response.Token)
	}
	if response.Scope != "api" {
		t.Errorf("expected default scope api, got %q", response.Scope)
	}

	// Only the hash hits storage, and listing never echoes it.
	stored, err := store.APITokens.FindByTokenHash(context.Background(), repository.HashToken(response.Token))
	if err != nil {
		t.Fatalf("finding token by hash: %v", err)
	}
	if stored.ID != response.ID {
		t.Errorf("expected stored token %s, got %s", response.ID, stored.ID)
	}

	listRecorder := httptest.NewRecorder()
	handler.ListTokens(listRecorder, httptest.NewRequest(http.MethodGet, "/api/admin/tokens", nil))
	if strings.Contains(listRecorder.Body.String(), response.Token) ||
		strings.Contains(listRecorder.Body.String(), stored.TokenHash) {
		t.Error("token listing must not expose raw tokens or hashes")
	}
}

func TestCreateToken_RejectsUnknownScope(t *testing.T) {
	handler, store := setupAPIHandler(t)

	admin, err := store.Roommates.Create(context.Background(), models.Roommate{
		Name: "alice", Email: "alice@example.com", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	body := strings.NewReader(`{"name": "bad", "scope": "root"}`)
	request := httptest.NewRequest(http.MethodPost, "/api/admin/tokens", body)
	request = requestWithRoommate(request, admin)
	recorder := httptest.NewRecorder()
	handler.CreateToken(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}

func TestDeleteToken(t *testing.T) {
	handler, store := setupAPIHandler(t)
	ctx := context.Background()

	admin, err := store.Roommates.Create(ctx, models.Roommate{
		Name: "alice", Email: "alice@example.com", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	created, err := store.APITokens.Create(ctx, models.APIToken{
		Name:                "To Revoke",
		TokenHash:           "hash-revoke",
		CreatedByRoommateID: admin.ID,
	})
	if err != nil {
		t.Fatalf("creating token: %v", err)
	}

	router := chi.NewRouter()
	router.Delete("/api/admin/tokens/{id}", handler.DeleteToken)

	request := httptest.NewRequest(http.MethodDelete, "/api/admin/tokens/"+created.ID, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	tokens, err := store.APITokens.FindAll(ctx)
	if err != nil {
		t.Fatalf("listing tokens after delete: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected 0 tokens after revoke, got %d", len(tokens))
	}
}

func TestStats_CountsBoard(t *testing.T) {
	handler, store := setupAPIHandler(t)
	ctx := context.Background()

	alice, err := store.Roommates.Create(ctx, models.Roommate{Name: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	now := time.Now()
	if err := store.Assignments.ReplaceCurrent(ctx, []models.Assignment{
		{ChoreID: 1, ChoreName: "Dishes", RoommateID: alice.ID, RoommateName: alice.Name,
			AssignedDate: now.AddDate(0, 0, -8), DueDate: now.AddDate(0, 0, -1),
			Frequency: models.FrequencyWeekly, Type: models.ChoreTypeRandom, Points: 3},
		{ChoreID: 2, ChoreName: "Vacuum", RoommateID: alice.ID, RoommateName: alice.Name,
			AssignedDate: now, DueDate: now.AddDate(0, 0, 7),
			Frequency: models.FrequencyWeekly, Type: models.ChoreTypeRandom, Points: 5},
	}); err != nil {
		t.Fatalf("seeding assignments: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.Stats(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var stats struct {
		Roommates          int    `json:"roommates"`
		Assignments        int    `json:"assignments"`
		AssignmentsOverdue int    `json:"assignments_overdue"`
		HouseholdName      string `json:"household_name"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats.Roommates != 1 || stats.Assignments != 2 || stats.AssignmentsOverdue != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.HouseholdName == "" {
		t.Error("expected the seeded household name in stats")
	}
}
