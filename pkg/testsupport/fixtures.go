package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteMarkdown drops a markdown fixture under dir, creating intermediate
// directories as needed, and returns its absolute path.
func WriteMarkdown(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}
