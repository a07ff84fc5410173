// Package testutil provides shared fixtures for preflight tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// SetupProject creates a temporary project directory containing the given
// project file content. The directory is removed when the test completes.
func SetupProject(t *testing.T, projectFile string) string {
	t.Helper()
	return SetupProjectWithFiles(t, projectFile, nil)
}

// SetupProjectWithFiles creates a temporary project directory with a project
// file and additional files, keyed by path relative to the project root.
func SetupProjectWithFiles(t *testing.T, projectFile string, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	if projectFile != "" {
		WriteFile(t, dir, ".preflight.yaml", projectFile)
	}
	for path, content := range files {
		WriteFile(t, dir, path, content)
	}
	return dir
}

// WriteFile writes content to path relative to dir, creating parent
// directories as needed.
func WriteFile(t *testing.T, dir, path, content string) {
	t.Helper()

	full := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// AppendFile appends content to a file under dir. Growing a file guarantees
// its cache fingerprint changes regardless of filesystem mtime granularity.
func AppendFile(t *testing.T, dir, path, content string) {
	t.Helper()

	full := filepath.Join(dir, path)
	f, err := os.OpenFile(full, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("failed to open %s for append: %v", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("failed to append to %s: %v", path, err)
	}
}

// SkipIfNoCommand skips the test when a command it shells out to is not
// on PATH.
func SkipIfNoCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not found in PATH, skipping test", name)
	}
}
