// Package watch triggers hook re-runs when project files change.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quillworks/preflight/internal/logging"
)

// DefaultDebounce is how long the watcher waits after the last change
// before firing. Editors produce bursts of events for a single save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a project directory tree and invokes a callback with
// the batch of changed paths once changes settle.
type Watcher struct {
	dir      string
	onChange func(changed []string)
	debounce time.Duration
	ignore   []string
	logger   *logging.Logger

	watcher *fsnotify.Watcher

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the settle interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithIgnore adds directory or file base names to skip, on top of the
// built-in set (.git, .preflight, node_modules, vendor).
func WithIgnore(names ...string) Option {
	return func(w *Watcher) {
		w.ignore = append(w.ignore, names...)
	}
}

// New creates a Watcher for dir. The callback runs on the watch
// goroutine: while it executes, further changes accumulate and fire as
// the next batch after it returns.
func New(dir string, onChange func(changed []string), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:      dir,
		onChange: onChange,
		debounce: DefaultDebounce,
		ignore:   []string{".git", ".preflight", "node_modules", "vendor", ".DS_Store"},
		logger:   logging.NopLogger(),
		watcher:  fsw,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start registers the directory tree with the watcher and begins
// processing events.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	if err := w.watchDirRecursive(w.dir); err != nil {
		return err
	}

	w.started.Store(true)
	go w.watchLoop()
	return nil
}

// Stop ends watching and waits for the event loop to exit. Safe to call
// more than once, and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		if w.started.Load() {
			<-w.done
		}
	})
}

// watchDirRecursive adds all non-ignored subdirectories to the watcher.
// fsnotify only reports events for directories it watches directly.
func (w *Watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if info.IsDir() && w.ignoredName(filepath.Base(path)) && path != root {
			return filepath.SkipDir
		}
		if info.IsDir() {
			_ = w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) watchLoop() {
	defer close(w.done)

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain so only Reset arms it

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.ignoredPath(event.Name) {
				continue
			}

			// A new directory needs its own watches before anything
			// inside it is visible.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watchDirRecursive(event.Name)
				}
			}

			pending[event.Name] = struct{}{}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			w.logger.Debug("file changes settled", "count", len(changed))
			w.onChange(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// ignoredName reports whether a bare file or directory name is in the
// ignore set.
func (w *Watcher) ignoredName(name string) bool {
	for _, ignore := range w.ignore {
		if name == ignore {
			return true
		}
	}
	return false
}

// ignoredPath reports whether any segment of the path is ignored.
func (w *Watcher) ignoredPath(path string) bool {
	if w.ignoredName(filepath.Base(path)) {
		return true
	}
	sep := string(filepath.Separator)
	for _, ignore := range w.ignore {
		if strings.Contains(path, sep+ignore+sep) || strings.HasSuffix(path, sep+ignore) {
			return true
		}
	}
	return false
}
