package repository_test

import (
	"context"
	"testing"

	"github.com/ah91648/roomie-roster-sub000/internal/models"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

func createTestRoommate(t *testing.T, store *repository.Store, name string, email string) models.Roommate {
	t.Helper()

	roommate, err := store.Roommates.Create(context.Background(), models.Roommate{
		Name:  name,
		Email: email,
		Role:  models.RoleMember,
	})
	if err != nil {
		t.Fatalf("creating test roommate: %v", err)
	}
	return roommate
}

func createTestChore(t *testing.T, store *repository.Store, name string, choreType models.ChoreType, points int) models.Chore {
	t.Helper()

	chore, err := store.Chores.Create(context.Background(), models.Chore{
		Name:      name,
		Frequency: models.FrequencyWeekly,
		Type:      choreType,
		Points:    points,
	})
	if err != nil {
		t.Fatalf("creating test chore: %v", err)
	}
	return chore
}
