// Package history persists per-hook duration statistics across runs.
//
// The store keeps an exponentially weighted moving average of execution
// time per hook ID. Adaptive execution reads these means to start the
// slowest hooks of a wave first. State lives as JSON in the project's
// artifacts directory, guarded by a file lock so concurrent preflight
// processes do not corrupt it.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quillworks/preflight/internal/hook"
)

// DefaultFileName is the history file name inside the artifacts directory.
const DefaultFileName = "history.json"

// alpha is the EWMA smoothing factor. Recent runs carry 30% of the weight,
// so a hook that suddenly slows down shifts its mean within a few runs.
const alpha = 0.3

// entry is the persisted statistic for one hook.
type entry struct {
	MeanMS    float64   `json:"mean_ms"`
	Samples   int       `json:"samples"`
	LastRunAt time.Time `json:"last_run_at"`
}

// persistedState is the serializable representation of the store.
type persistedState struct {
	Hooks map[string]*entry `json:"hooks"`
}

// Store holds duration statistics keyed by hook ID.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]*entry
	dirty   bool
}

// Open loads the store at path, creating parent directories as needed.
// A missing file yields an empty store. A file lock is held during the
// read for cross-process safety.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	s := &Store{
		path:    path,
		entries: make(map[string]*entry),
	}

	fl := newFileLock(path + ".lock")
	if err := fl.lock(); err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.unlock() }()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if state.Hooks != nil {
		s.entries = state.Hooks
	}
	return s, nil
}

// Mean returns the smoothed mean duration for the hook, and whether any
// runs have been recorded for it.
func (s *Store) Mean(hookID string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[hookID]
	if !ok || e.Samples == 0 {
		return 0, false
	}
	return time.Duration(e.MeanMS * float64(time.Millisecond)), true
}

// Observe folds one execution into the hook's statistics. Only completed
// runs count: a timeout or invocation error says nothing about how long
// the tool normally takes.
func (s *Store) Observe(hookID string, d time.Duration, status hook.Status) {
	if status != hook.StatusPassed && status != hook.StatusFailed {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ms := float64(d) / float64(time.Millisecond)
	e, ok := s.entries[hookID]
	if !ok {
		e = &entry{MeanMS: ms}
		s.entries[hookID] = e
	} else {
		e.MeanMS = alpha*ms + (1-alpha)*e.MeanMS
	}
	e.Samples++
	e.LastRunAt = time.Now()
	s.dirty = true
}

// Save writes the store to disk. The write is atomic: data is written to
// a temporary file first, then renamed into place. A file lock is held
// during the operation for cross-process safety.
func (s *Store) Save() error {
	fl := newFileLock(s.path + ".lock")
	if err := fl.lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.unlock() }()

	s.mu.Lock()
	data, err := json.MarshalIndent(persistedState{Hooks: s.entries}, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Close saves pending observations, if any.
func (s *Store) Close() error {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()

	if !dirty {
		return nil
	}
	return s.Save()
}
