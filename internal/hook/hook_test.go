package hook

import (
	"testing"
	"time"

	"github.com/quillworks/preflight/internal/errors"
)

func makeHook(id string, deps ...string) Definition {
	return Definition{
		ID:        id,
		Command:   "true",
		DependsOn: deps,
		Stage:     StageFast,
	}
}

func TestStage_Valid(t *testing.T) {
	tests := []struct {
		stage Stage
		want  bool
	}{
		{StageFast, true},
		{StageComprehensive, true},
		{Stage("nightly"), false},
		{Stage(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			if got := tt.stage.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefinition_DisplayName(t *testing.T) {
	d := Definition{ID: "gofmt-check"}
	if got := d.DisplayName(); got != "gofmt-check" {
		t.Errorf("DisplayName() = %q, want %q", got, "gofmt-check")
	}

	d.Name = "gofmt"
	if got := d.DisplayName(); got != "gofmt" {
		t.Errorf("DisplayName() = %q, want %q", got, "gofmt")
	}
}

func TestDefinition_EffectiveTimeout(t *testing.T) {
	d := Definition{ID: "x"}
	if got := d.EffectiveTimeout(); got != DefaultTimeout {
		t.Errorf("EffectiveTimeout() = %v, want %v", got, DefaultTimeout)
	}

	d.Timeout = 5 * time.Second
	if got := d.EffectiveTimeout(); got != 5*time.Second {
		t.Errorf("EffectiveTimeout() = %v, want %v", got, 5*time.Second)
	}
}

func TestWaves_IndependentHooksShareWave(t *testing.T) {
	hooks := []Definition{makeHook("a"), makeHook("b"), makeHook("c")}

	waves, err := Waves(hooks)
	if err != nil {
		t.Fatalf("Waves() error = %v", err)
	}

	if len(waves) != 1 {
		t.Fatalf("wave count = %d, want 1", len(waves))
	}
	if len(waves[0]) != 3 {
		t.Errorf("wave size = %d, want 3", len(waves[0]))
	}

	// Definition order preserved within the wave.
	for i, want := range []string{"a", "b", "c"} {
		if waves[0][i].ID != want {
			t.Errorf("waves[0][%d].ID = %q, want %q", i, waves[0][i].ID, want)
		}
	}
}

func TestWaves_ChainLength(t *testing.T) {
	hooks := []Definition{
		makeHook("a"),
		makeHook("b", "a"),
		makeHook("c", "b"),
	}

	waves, err := Waves(hooks)
	if err != nil {
		t.Fatalf("Waves() error = %v", err)
	}

	// Wave count equals the longest dependency chain.
	if len(waves) != 3 {
		t.Fatalf("wave count = %d, want 3", len(waves))
	}
	for i, want := range []string{"a", "b", "c"} {
		if len(waves[i]) != 1 || waves[i][0].ID != want {
			t.Errorf("waves[%d] = %v, want single hook %q", i, waves[i], want)
		}
	}
}

func TestWaves_Diamond(t *testing.T) {
	hooks := []Definition{
		makeHook("root"),
		makeHook("left", "root"),
		makeHook("right", "root"),
		makeHook("sink", "left", "right"),
	}

	waves, err := Waves(hooks)
	if err != nil {
		t.Fatalf("Waves() error = %v", err)
	}

	if len(waves) != 3 {
		t.Fatalf("wave count = %d, want 3", len(waves))
	}
	if waves[0][0].ID != "root" {
		t.Errorf("waves[0] = %q, want root", waves[0][0].ID)
	}
	if len(waves[1]) != 2 {
		t.Errorf("waves[1] size = %d, want 2", len(waves[1]))
	}
	if waves[2][0].ID != "sink" {
		t.Errorf("waves[2] = %q, want sink", waves[2][0].ID)
	}
}

func TestWaves_EarliestWave(t *testing.T) {
	// "free" has no dependencies and must land in wave 0 even though it is
	// defined after a chained hook.
	hooks := []Definition{
		makeHook("a"),
		makeHook("b", "a"),
		makeHook("free"),
	}

	idx, err := WaveIndex(hooks)
	if err != nil {
		t.Fatalf("WaveIndex() error = %v", err)
	}

	if idx["free"] != 0 {
		t.Errorf("wave of free = %d, want 0", idx["free"])
	}
	if idx["a"] != 0 || idx["b"] != 1 {
		t.Errorf("waves = a:%d b:%d, want a:0 b:1", idx["a"], idx["b"])
	}
}

func TestWaves_Empty(t *testing.T) {
	waves, err := Waves(nil)
	if err != nil {
		t.Fatalf("Waves(nil) error = %v", err)
	}
	if len(waves) != 0 {
		t.Errorf("wave count = %d, want 0", len(waves))
	}
}

func TestWaves_Errors(t *testing.T) {
	tests := []struct {
		name     string
		hooks    []Definition
		sentinel error
	}{
		{
			name:     "duplicate id",
			hooks:    []Definition{makeHook("a"), makeHook("a")},
			sentinel: errors.ErrDuplicateHook,
		},
		{
			name:     "unknown dependency",
			hooks:    []Definition{makeHook("a", "ghost")},
			sentinel: errors.ErrUnknownDependency,
		},
		{
			name:     "self dependency",
			hooks:    []Definition{makeHook("a", "a")},
			sentinel: errors.ErrDependencyCycle,
		},
		{
			name:     "two-node cycle",
			hooks:    []Definition{makeHook("a", "b"), makeHook("b", "a")},
			sentinel: errors.ErrDependencyCycle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Waves(tt.hooks)
			if err == nil {
				t.Fatal("Waves() error = nil, want error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Waves() error = %v, want sentinel %v", err, tt.sentinel)
			}
			var cfgErr *errors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Waves() error is not a ConfigError: %v", err)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{ID: "a", Status: StatusPassed, Duration: 100 * time.Millisecond},
		{ID: "b", Status: StatusPassed, Duration: 200 * time.Millisecond, CacheHit: true},
		{ID: "c", Status: StatusFailed, Duration: 300 * time.Millisecond},
		{ID: "d", Status: StatusTimeout, Duration: time.Second},
		{ID: "e", Status: StatusError},
	}

	s := Summarize(results)

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Passed != 2 || s.Failed != 1 || s.Timeout != 1 || s.Errors != 1 {
		t.Errorf("counts = passed:%d failed:%d timeout:%d errors:%d, want 2/1/1/1",
			s.Passed, s.Failed, s.Timeout, s.Errors)
	}
	if s.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1", s.CacheHits)
	}
	// The per-status counts decompose the non-passed total.
	if got := s.Failed + s.Timeout + s.Errors; got != s.Total-s.Passed {
		t.Errorf("failed+timeout+errors = %d, want Total-Passed = %d", got, s.Total-s.Passed)
	}
	if want := 1600 * time.Millisecond; s.TotalDuration != want {
		t.Errorf("TotalDuration = %v, want %v", s.TotalDuration, want)
	}
	if want := 40.0; s.SuccessRate != want {
		t.Errorf("SuccessRate = %v, want %v", s.SuccessRate, want)
	}
	if s.AllPassed() {
		t.Error("AllPassed() = true, want false")
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	if s.Total != 0 {
		t.Errorf("Total = %d, want 0", s.Total)
	}
	if s.SuccessRate != 0 {
		t.Errorf("SuccessRate = %v, want 0", s.SuccessRate)
	}
	if s.AllPassed() {
		t.Error("AllPassed() = true for empty results, want false")
	}
}

func TestSummarize_AllPassed(t *testing.T) {
	s := Summarize([]Result{
		{ID: "a", Status: StatusPassed},
		{ID: "b", Status: StatusPassed},
	})

	if !s.AllPassed() {
		t.Error("AllPassed() = false, want true")
	}
	if s.SuccessRate != 100 {
		t.Errorf("SuccessRate = %v, want 100", s.SuccessRate)
	}
}
