package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

// Reopening the file must reproduce the exact state a previous process
// wrote, since restarts are the normal lifecycle for this backend.
func TestJSONFile_StateSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roomie-roster.json")

	file, err := repository.OpenJSONFile(path)
	if err != nil {
		t.Fatalf("opening data file: %v", err)
	}
	store := repository.NewJSONStore(file)

	alice, err := store.Roommates.Create(ctx, models.Roommate{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}
	chore, err := store.Chores.Create(ctx, models.Chore{Name: "Dishes", Type: models.ChoreTypePredefined, Points: 2})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}
	if err := store.Roommates.UpdatePoints(ctx, alice.ID, 9); err != nil {
		t.Fatalf("updating points: %v", err)
	}
	if err := store.Schedule.SetPredefinedState(ctx, chore.ID, alice.ID); err != nil {
		t.Fatalf("setting predefined state: %v", err)
	}
	lastRun := time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC)
	if err := store.Schedule.SetLastRunDate(ctx, lastRun); err != nil {
		t.Fatalf("setting last run date: %v", err)
	}
	if err := store.Assignments.ReplaceCurrent(ctx, []models.Assignment{{
		ChoreID:      chore.ID,
		ChoreName:    chore.Name,
		RoommateID:   alice.ID,
		RoommateName: alice.Name,
		AssignedDate: lastRun,
		DueDate:      lastRun.AddDate(0, 0, 7),
		Frequency:    models.FrequencyWeekly,
		Type:         chore.Type,
		Points:       chore.Points,
	}}); err != nil {
		t.Fatalf("replacing assignments: %v", err)
	}

	reopened, err := repository.OpenJSONFile(path)
	if err != nil {
		t.Fatalf("reopening data file: %v", err)
	}
	reloaded := repository.NewJSONStore(reopened)

	foundAlice, err := reloaded.Roommates.FindByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("finding roommate after reopen: %v", err)
	}
	if foundAlice.CurrentCyclePoints != 9 {
		t.Errorf("expected 9 points after reopen, got %d", foundAlice.CurrentCyclePoints)
	}

	state, err := reloaded.Schedule.Get(ctx)
	if err != nil {
		t.Fatalf("getting schedule state after reopen: %v", err)
	}
	if state.LastRunDate == nil || !state.LastRunDate.Equal(lastRun) {
		t.Errorf("expected last run %v after reopen, got %v", lastRun, state.LastRunDate)
	}
	if got := state.PredefinedChoreStates[chore.ID]; got != alice.ID {
		t.Errorf("expected predefined state %d, got %d", alice.ID, got)
	}

	assignments, err := reloaded.Assignments.FindCurrent(ctx)
	if err != nil {
		t.Fatalf("finding assignments after reopen: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("expected 1 assignment after reopen, got %d", len(assignments))
	}
	if assignments[0].ChoreName != "Dishes" {
		t.Errorf("expected 'Dishes', got '%s'", assignments[0].ChoreName)
	}
}

// New ids must not collide with ids handed out before a restart.
func TestJSONFile_IDCounterSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roomie-roster.json")

	file, err := repository.OpenJSONFile(path)
	if err != nil {
		t.Fatalf("opening data file: %v", err)
	}
	store := repository.NewJSONStore(file)

	first, err := store.Roommates.Create(ctx, models.Roommate{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("creating roommate: %v", err)
	}
	if err := store.Roommates.Delete(ctx, first.ID); err != nil {
		t.Fatalf("deleting roommate: %v", err)
	}

	reopened, err := repository.OpenJSONFile(path)
	if err != nil {
		t.Fatalf("reopening data file: %v", err)
	}
	reloaded := repository.NewJSONStore(reopened)

	second, err := reloaded.Roommates.Create(ctx, models.Roommate{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("creating roommate after reopen: %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("expected fresh id above %d, got %d", first.ID, second.ID)
	}
}
