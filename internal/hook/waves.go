package hook

import "github.com/quillworks/preflight/internal/errors"

// Waves partitions hooks into dependency-ordered execution waves. Hooks in
// the same wave have no ordering constraints between them and may run
// concurrently; wave N+1 starts only after every hook in wave N finished.
//
// Each hook lands in the earliest wave its dependencies allow, and hooks
// keep their definition order within a wave. Duplicate IDs, unknown
// dependencies, and dependency cycles are reported as ConfigError.
func Waves(hooks []Definition) ([][]Definition, error) {
	index := make(map[string]int, len(hooks))
	for i, h := range hooks {
		if _, dup := index[h.ID]; dup {
			return nil, errors.NewConfigError("hook id declared twice", errors.ErrDuplicateHook).
				WithField("id").WithValue(h.ID)
		}
		index[h.ID] = i
	}

	for _, h := range hooks {
		for _, dep := range h.DependsOn {
			if dep == h.ID {
				return nil, errors.NewConfigError("hook depends on itself", errors.ErrDependencyCycle).
					WithField("depends_on").WithValue(dep)
			}
			if _, ok := index[dep]; !ok {
				return nil, errors.NewConfigError("dependency does not name a hook in this strategy", errors.ErrUnknownDependency).
					WithField("depends_on").WithValue(dep)
			}
		}
	}

	assigned := make([]bool, len(hooks))
	var waves [][]Definition

	for placed := 0; placed < len(hooks); {
		var wave []Definition
		var picked []int

		for i, h := range hooks {
			if assigned[i] {
				continue
			}
			ready := true
			for _, dep := range h.DependsOn {
				if !assigned[index[dep]] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, h)
				picked = append(picked, i)
			}
		}

		// No hook became ready: every remaining hook waits on another
		// remaining hook, which is a cycle.
		if len(wave) == 0 {
			return nil, errors.NewConfigError("hooks form a dependency cycle", errors.ErrDependencyCycle).
				WithField("depends_on")
		}

		for _, i := range picked {
			assigned[i] = true
		}
		waves = append(waves, wave)
		placed += len(wave)
	}

	return waves, nil
}

// WaveIndex returns a map from hook ID to its wave number, as computed by
// Waves. Useful for reporting the schedule without executing it.
func WaveIndex(hooks []Definition) (map[string]int, error) {
	waves, err := Waves(hooks)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(hooks))
	for i, wave := range waves {
		for _, h := range wave {
			idx[h.ID] = i
		}
	}
	return idx, nil
}
