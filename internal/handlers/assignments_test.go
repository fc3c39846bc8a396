package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ah91648/roomie-roster-sub000/internal/engine"
	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
	"github.com/ah91648/roomie-roster-sub000/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func setupAssignmentHandler(t *testing.T) (*chi.Mux, *repository.Store) {
	t.Helper()
	store := repository.NewSQLiteStore(testutil.NewTestDatabase(t))
	scheduler := engine.New(store.Roommates, store.Chores, store.Assignments, store.Schedule)
	handler := NewAssignmentHandler(store.Assignments, scheduler)

	router := chi.NewRouter()
	router.Get("/api/assignments", handler.List)
	router.Get("/api/assignments/mine", handler.Mine)
	router.Get("/api/assignments/by-roommate", handler.ByRoommate)
	router.Post("/api/assignments/run", handler.Run)
	router.Post("/api/chores/{id}/assign", handler.AssignOne)
	return router, store
}

func TestAssignments_RunAssignsDueChores(t *testing.T) {
	router, store := setupAssignmentHandler(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if _, err := store.Roommates.Create(ctx, models.Roommate{Name: name, Email: name + "@example.com"}); err != nil {
			t.Fatalf("creating roommate: %v", err)
		}
	}
	for _, name := range []string{"Dishes", "Vacuum", "Trash"} {
		if _, err := store.Chores.Create(ctx, models.Chore{Name: name, Type: models.ChoreTypePredefined}); err != nil {
			t.Fatalf("creating chore: %v", err)
		}
	}

	request := httptest.NewRequest(http.MethodPost, "/api/assignments/run", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var assignments []models.Assignment
	if err := json.NewDecoder(recorder.Body).Decode(&assignments); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(assignments))
	}

	request = httptest.NewRequest(http.MethodGet, "/api/assignments", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var listed []models.Assignment
	if err := json.NewDecoder(recorder.Body).Decode(&listed); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(listed) != 3 {
		t.Errorf("expected 3 stored assignments, got %d", len(listed))
	}
}

func TestAssignments_RunWithEmptyHousehold(t *testing.T) {
	router, _ := setupAssignmentHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/api/assignments/run", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var assignments []models.Assignment
	if err := json.NewDecoder(recorder.Body).Decode(&assignments); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(assignments) != 0 {
		t.Errorf("expected an empty set, got %d", len(assignments))
	}
}

func TestAssignments_ByRoommate(t *testing.T) {
	router, store := setupAssignmentHandler(t)
	ctx := context.Background()

	alice, err := store.Roommates.Create(ctx, models.Roommate{Name: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}
	chore, err := store.Chores.Create(ctx, models.Chore{Name: "Dishes"})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/assignments/run", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("running scheduler: status %d", recorder.Code)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/assignments/by-roommate", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var grouped map[string][]models.Assignment
	if err := json.NewDecoder(recorder.Body).Decode(&grouped); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(grouped[alice.Name]) != 1 || grouped[alice.Name][0].ChoreID != chore.ID {
		t.Errorf("expected %s to hold chore %d, got %+v", alice.Name, chore.ID, grouped)
	}
}

func TestAssignments_MineOnlyListsOwnChores(t *testing.T) {
	router, store := setupAssignmentHandler(t)
	ctx := context.Background()

	alice, err := store.Roommates.Create(ctx, models.Roommate{Name: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}
	if _, err := store.Roommates.Create(ctx, models.Roommate{Name: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("creating roommate: %v", err)
	}
	for _, name := range []string{"Dishes", "Vacuum"} {
		if _, err := store.Chores.Create(ctx, models.Chore{Name: name, Type: models.ChoreTypePredefined}); err != nil {
			t.Fatalf("creating chore: %v", err)
		}
	}

	request := httptest.NewRequest(http.MethodPost, "/api/assignments/run", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("running scheduler: status %d", recorder.Code)
	}

	request = requestWithRoommate(httptest.NewRequest(http.MethodGet, "/api/assignments/mine", nil), alice)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	var mine []models.Assignment
	if err := json.NewDecoder(recorder.Body).Decode(&mine); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 assignment for alice, got %d", len(mine))
	}
	if mine[0].RoommateID != alice.ID {
		t.Errorf("expected alice's assignment, got %+v", mine[0])
	}
}

func TestAssignments_AssignOne(t *testing.T) {
	router, store := setupAssignmentHandler(t)
	ctx := context.Background()

	alice, err := store.Roommates.Create(ctx, models.Roommate{Name: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}
	chore, err := store.Chores.Create(ctx, models.Chore{Name: "Dishes", Type: models.ChoreTypePredefined})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/chores/"+itoa(chore.ID)+"/assign", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var assignment models.Assignment
	if err := json.NewDecoder(recorder.Body).Decode(&assignment); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if assignment.RoommateID != alice.ID || assignment.ChoreID != chore.ID {
		t.Errorf("expected chore %d assigned to %d, got %+v", chore.ID, alice.ID, assignment)
	}
}

func TestAssignments_AssignOneUnknownChore(t *testing.T) {
	router, store := setupAssignmentHandler(t)

	if _, err := store.Roommates.Create(context.Background(), models.Roommate{Name: "alice", Email: "alice@example.com"}); err != nil {
		t.Fatalf("creating roommate: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/chores/404/assign", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}

func TestAssignments_AssignOneWithoutRoommates(t *testing.T) {
	router, store := setupAssignmentHandler(t)

	chore, err := store.Chores.Create(context.Background(), models.Chore{Name: "Dishes"})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/chores/"+itoa(chore.ID)+"/assign", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", recorder.Code)
	}
}
