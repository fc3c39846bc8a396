package repository

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned by every backend when a record does not
// exist, so callers never need to know whether they are talking to
// SQLite or the JSON file store.
var ErrNotFound = errors.New("record not found")

// Store bundles one repository per concern. Both backends produce the
// same shape, so everything above this package is backend-agnostic.
type Store struct {
	Roommates   RoommateRepository
	Chores      ChoreRepository
	Assignments AssignmentRepository
	Schedule    ScheduleStateRepository
	Settings    SettingsRepository
	APITokens   APITokenRepository
}

func NewSQLiteStore(database *sql.DB) *Store {
	return &Store{
		Roommates:   NewRoommateRepository(database),
		Chores:      NewChoreRepository(database),
		Assignments: NewAssignmentRepository(database),
		Schedule:    NewScheduleStateRepository(database),
		Settings:    NewSettingsRepository(database),
		APITokens:   NewAPITokenRepository(database),
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
