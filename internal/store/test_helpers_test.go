package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh cache in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// beginTestRun starts a run or fails the test.
func beginTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run, err := s.BeginRun(context.Background(), id)
	if err != nil {
		t.Fatalf("BeginRun(%q) failed: %v", id, err)
	}
	return run
}
