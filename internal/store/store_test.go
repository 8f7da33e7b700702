package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// pragma reads one PRAGMA value from the cache connection.
func pragma(t *testing.T, s *Store, name string) string {
	t.Helper()
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		t.Fatalf("PRAGMA %s: %v", name, err)
	}
	return value
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestOpen_KeepsRowsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	beginTestRun(t, s, "run-1")
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s.Close()

	runs, err := s.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("Runs() = %+v, want the run from the first open", runs)
	}
}

func TestOpen_ConnectionSettings(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tt := range tests {
		if got := pragma(t, s, tt.name); got != tt.expected {
			t.Errorf("PRAGMA %s = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestOpen_Schema(t *testing.T) {
	s := createTestStore(t)

	for _, obj := range []struct{ kind, name string }{
		{"table", "runs"},
		{"table", "outputs"},
		{"index", "idx_outputs_run"},
	} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type=? AND name=?",
			obj.kind, obj.name,
		).Scan(&name)
		if err != nil {
			t.Errorf("%s %q missing: %v", obj.kind, obj.name, err)
		}
	}
}

func TestOpen_DiscardsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	beginTestRun(t, s, "stale")
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("stamping version: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	if got := pragma(t, s, "user_version"); got != "1" {
		t.Errorf("user_version = %q after reopen, want 1", got)
	}
	runs, err := s.Runs(context.Background())
	if err != nil {
		t.Fatalf("Runs() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Runs() = %+v, want an empty cache", runs)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "cache.db")
	if _, err := Open(path); err == nil {
		t.Fatal("Open() should fail when the directory does not exist")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store returned %v", err)
	}
}
