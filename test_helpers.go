package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// SetupTestStore creates a temporary IMDb database with mock data
func SetupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "moviefinder-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbFile := filepath.Join(tmpDir, "imdb.db")

	db, err := sql.Open("sqlite3", dbFile)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create test database: %v", err)
	}

	for _, stmt := range testSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			os.RemoveAll(tmpDir)
			t.Fatalf("failed to apply test schema: %v", err)
		}
	}
	for _, stmt := range testFixtures {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			os.RemoveAll(tmpDir)
			t.Fatalf("failed to load test fixtures: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to close fixture connection: %v", err)
	}

	store := NewStore(dbFile, 5*time.Second)

	cleanup := func() {
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}
