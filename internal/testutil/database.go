package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ah91648/roomie-roster-sub000/internal/database"
	"github.com/ah91648/roomie-roster-sub000/internal/repository"
)

func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func NewTestJSONFile(t *testing.T) *repository.JSONFile {
	t.Helper()

	file, err := repository.OpenJSONFile(filepath.Join(t.TempDir(), "roomie-roster.json"))
	if err != nil {
		t.Fatalf("opening test data file: %v", err)
	}
	return file
}

// NewTestStore builds a SQLite-backed store. Tests that need to cover
// both backends use WithEachStore instead.
func NewTestStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewSQLiteStore(NewTestDatabase(t))
}

// WithEachStore runs the test once per storage backend, so behavior
// stays identical between SQLite and the JSON file store.
func WithEachStore(t *testing.T, test func(t *testing.T, store *repository.Store)) {
	t.Run("sqlite", func(t *testing.T) {
		test(t, repository.NewSQLiteStore(NewTestDatabase(t)))
	})
	t.Run("json", func(t *testing.T) {
		test(t, repository.NewJSONStore(NewTestJSONFile(t)))
	})
}
