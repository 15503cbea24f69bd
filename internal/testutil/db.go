package testutil

import (
	"path/filepath"
	"testing"

	"github.com/scoreit/handball/internal/db"
)

// NewTestDB opens a throwaway handball database in a per-test temp dir,
// with all migrations applied and foreign keys on.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "handball-test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}
