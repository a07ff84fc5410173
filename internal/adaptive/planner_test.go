package adaptive

import (
	"testing"
	"time"

	"github.com/quillworks/preflight/internal/hook"
)

// mockHistory implements the History interface for testing.
type mockHistory map[string]time.Duration

func (m mockHistory) Mean(hookID string) (time.Duration, bool) {
	d, ok := m[hookID]
	return d, ok
}

func wave(ids ...string) []hook.Definition {
	defs := make([]hook.Definition, len(ids))
	for i, id := range ids {
		defs[i] = hook.Definition{ID: id, Stage: hook.StageFast}
	}
	return defs
}

func ids(defs []hook.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func assertOrder(t *testing.T, got []hook.Definition, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("wave length = %d, want %d", len(got), len(want))
	}
	for i, id := range ids(got) {
		if id != want[i] {
			t.Errorf("position %d = %q, want %q (full order %v)", i, id, want[i], ids(got))
		}
	}
}

func TestOrderWave_SlowestFirst(t *testing.T) {
	p := NewPlanner(mockHistory{
		"gofmt-check": 100 * time.Millisecond,
		"go-test":     2 * time.Second,
		"go-vet":      500 * time.Millisecond,
	})

	got := p.OrderWave(wave("gofmt-check", "go-test", "go-vet"))
	assertOrder(t, got, "go-test", "go-vet", "gofmt-check")
}

func TestOrderWave_UnknownHooksRunLast(t *testing.T) {
	p := NewPlanner(mockHistory{
		"go-test":     time.Second,
		"gofmt-check": 10 * time.Millisecond,
	})

	got := p.OrderWave(wave("new-linter", "go-test", "another-new", "gofmt-check"))
	assertOrder(t, got, "go-test", "gofmt-check", "new-linter", "another-new")
}

func TestOrderWave_TiesKeepIncomingOrder(t *testing.T) {
	p := NewPlanner(mockHistory{
		"a": 500 * time.Millisecond,
		"b": 500 * time.Millisecond,
		"c": 500 * time.Millisecond,
	})

	got := p.OrderWave(wave("a", "b", "c"))
	assertOrder(t, got, "a", "b", "c")
}

func TestOrderWave_NoHistoryKeepsOrder(t *testing.T) {
	p := NewPlanner(mockHistory{})

	got := p.OrderWave(wave("a", "b", "c"))
	assertOrder(t, got, "a", "b", "c")
}

func TestOrderWave_NilHistoryKeepsOrder(t *testing.T) {
	p := NewPlanner(nil)

	got := p.OrderWave(wave("a", "b"))
	assertOrder(t, got, "a", "b")
}

func TestOrderWave_DoesNotModifyInput(t *testing.T) {
	p := NewPlanner(mockHistory{
		"slow": time.Minute,
	})

	in := wave("fast", "slow")
	_ = p.OrderWave(in)

	assertOrder(t, in, "fast", "slow")
}

func TestOrderWave_SingleAndEmpty(t *testing.T) {
	p := NewPlanner(mockHistory{"only": time.Second})

	if got := p.OrderWave(wave("only")); len(got) != 1 || got[0].ID != "only" {
		t.Errorf("single-hook wave changed: %v", ids(got))
	}
	if got := p.OrderWave(nil); len(got) != 0 {
		t.Errorf("empty wave should stay empty, got %v", ids(got))
	}
}
