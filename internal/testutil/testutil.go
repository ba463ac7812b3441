// Package testutil provides shared test helpers for setting up data
// repository fixtures.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/jera/internal/storage"
)

// TrackedFiles is the default logical-name-to-path mapping used by tests,
// mirroring the published repository layout.
func TrackedFiles() map[string]string {
	return map[string]string{
		"rules":        "db/rules.json",
		"replacements": "db/replacements.json",
		"dictionary":   "db/db.json",
	}
}

// TestRepo creates a temporary repository root with a storage.Provider.
func TestRepo(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WriteFile writes content at path relative to root, creating parent
// directories as needed.
func WriteFile(t *testing.T, root, path, content string) {
	t.Helper()
	abs := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns the contents of path relative to root.
func ReadFile(t *testing.T, root, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		t.Fatal(err)
	}
	return data
}
