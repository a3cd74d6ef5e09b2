package service

import (
	"path/filepath"
	"testing"

	"wordtrail/internal/database"
	"wordtrail/internal/repository"
	"wordtrail/internal/security"
	"wordtrail/internal/state"
)

// newTestDB opens a migrated SQLite store in a temp directory
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// newTestProfileService wires a profile service over a fresh store
func newTestProfileService(t *testing.T, db *database.DB) (*ProfileService, *state.Store) {
	t.Helper()
	store := state.NewStore()
	tokens := security.NewTokenIssuer("test-secret", testTokenDuration)
	return NewProfileService(repository.NewProfileRepository(db), tokens, store), store
}
