// Package adaptive biases wave execution order using historical durations.
//
// Waves fix which hooks may run together; the Planner decides the order in
// which a wave's hooks are handed to the worker pool. With bounded
// parallelism, starting the historically slowest hooks first shortens the
// wave's critical path.
package adaptive

import (
	"sort"
	"time"

	"github.com/quillworks/preflight/internal/hook"
)

// History defines the subset of history.Store methods the Planner needs.
// This avoids tight coupling to the concrete Store type.
type History interface {
	Mean(hookID string) (time.Duration, bool)
}

// Planner orders hooks within a wave by historical mean duration.
type Planner struct {
	hist History
}

// NewPlanner creates a Planner reading means from hist.
func NewPlanner(hist History) *Planner {
	return &Planner{hist: hist}
}

// OrderWave returns the hooks of one wave ordered slowest-first by
// historical mean duration. Hooks with no recorded history sort as if
// instant, so every known hook starts before them; ties keep the incoming
// order. The input slice is not modified.
func (p *Planner) OrderWave(wave []hook.Definition) []hook.Definition {
	if len(wave) < 2 || p.hist == nil {
		return wave
	}

	means := make(map[string]time.Duration, len(wave))
	for _, def := range wave {
		if m, ok := p.hist.Mean(def.ID); ok {
			means[def.ID] = m
		}
	}

	ordered := make([]hook.Definition, len(wave))
	copy(ordered, wave)
	sort.SliceStable(ordered, func(i, j int) bool {
		return means[ordered[i].ID] > means[ordered[j].ID]
	})
	return ordered
}
