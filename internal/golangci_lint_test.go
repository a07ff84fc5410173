package internal

import (
	"os"
	"os/exec"
	"testing"

	"github.com/quillworks/preflight/internal/testutil"
)

// TestGolangciLintCompliance runs golangci-lint over the module. It is
// skipped when the tool is not installed.
func TestGolangciLintCompliance(t *testing.T) {
	testutil.SkipIfNoCommand(t, "golangci-lint")

	// A per-test build cache keeps the run working on read-only runners.
	cmd := exec.Command("golangci-lint", "run", "--allow-parallel-runners", "./...")
	cmd.Dir = projectRoot(t)
	cmd.Env = append(os.Environ(), "GOCACHE="+t.TempDir())

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Errorf("golangci-lint found issues:\n%s", output)
	}
}
