// Package testutil provides shared test helpers for building suite trees
// and temporary history databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/featlint/internal/history"
	"github.com/starford/featlint/internal/layout"
)

// Segments returns the layout segments used by test projects.
func Segments() layout.Segments {
	return layout.Segments{
		Features:     "test/features",
		Interactions: "test/interactions",
		Pages:        "test/pages",
		Steps:        "test/steps",
	}
}

// TestProject creates a temporary project root containing all four suite
// subdirectories for feature and returns the root path.
func TestProject(t *testing.T, feature string) string {
	t.Helper()
	root := t.TempDir()
	seg := Segments()
	for _, role := range layout.Roles {
		dir := filepath.Join(root, seg.ForRole(role), feature)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// SubdirPath returns the path of one role's feature directory under root.
func SubdirPath(root, feature string, role layout.Role) string {
	return filepath.Join(root, Segments().ForRole(role), feature)
}

// WriteFile writes a file into dir, creating it with test-friendly modes.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestHistoryDB creates a temporary SQLite history database that is
// automatically cleaned up.
func TestHistoryDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "featlint-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
