// Package lockwatch observes which manifests and lockfiles a delegated
// install touches. It is strictly fire-and-forget: it runs only for
// the lifetime of the child process, and no failure in here may ever
// influence the gate's decision or the forwarded exit code.
package lockwatch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watched are the files whose writes are worth recording.
var watched = map[string]bool{
	"package.json":        true,
	"package-lock.json":   true,
	"npm-shrinkwrap.json": true,
	"yarn.lock":           true,
	"pnpm-lock.yaml":      true,
}

// Watcher accumulates lockfile write events for one delegation.
type Watcher struct {
	dir string

	mu      sync.Mutex
	touched map[string]bool
}

// New creates a watcher for the project directory.
func New(dir string) *Watcher {
	return &Watcher{dir: dir, touched: make(map[string]bool)}
}

// Run watches until ctx is cancelled. All errors are swallowed: an
// unavailable watch backend simply means no observations.
func (w *Watcher) Run(ctx context.Context) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !watched[name] {
				continue
			}
			w.mu.Lock()
			w.touched[name] = true
			w.mu.Unlock()
		case _, ok := <-fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Touched returns the names of lockfiles written during the watch,
// sorted for determinism.
func (w *Watcher) Touched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.touched))
	for name := range w.touched {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
