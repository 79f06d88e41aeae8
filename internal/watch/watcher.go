// Package watch turns filesystem events into batched change notifications
// for the engine. Events are debounced: editors write files several times in
// quick succession, and one re-index per burst is enough.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/CRJFisher/ariadne/internal/discover"
	"github.com/CRJFisher/ariadne/internal/lang"
)

// Event is one debounced file change.
type Event struct {
	Path    string
	Removed bool
}

// Options configures the watch loop.
type Options struct {
	// Debounce is the quiet period before a batch is delivered. Zero means
	// the 500ms default.
	Debounce time.Duration
	// IncludeTests delivers events for test files too.
	IncludeTests bool
	// OnError receives non-fatal watcher errors. May be nil.
	OnError func(error)
}

const defaultDebounce = 500 * time.Millisecond

// Watch blocks watching root recursively until ctx is cancelled, delivering
// each debounced batch of relevant changes to apply. Directories created
// while watching are added to the watch set; events for unsupported or
// ignored paths are dropped.
func Watch(ctx context.Context, root string, opts Options, apply func([]Event)) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addRecursive(w, root); err != nil {
		return err
	}

	pending := make(map[string]bool) // path -> removed
	timer := time.NewTimer(debounce)
	timer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		events := make([]Event, 0, len(pending))
		for path, removed := range pending {
			events = append(events, Event{Path: path, Removed: removed})
		}
		sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
		pending = make(map[string]bool)
		apply(events)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !discover.SkipDir(filepath.Base(ev.Name)) {
						_ = addRecursive(w, ev.Name)
					}
					continue
				}
			}
			if !relevant(ev.Name, opts.IncludeTests) {
				continue
			}
			pending[ev.Name] = ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if opts.OnError != nil {
				opts.OnError(err)
			}

		case <-timer.C:
			flush()
		}
	}
}

func relevant(path string, includeTests bool) bool {
	name := filepath.Base(path)
	if _, ok := lang.ForFile(name); !ok {
		return false
	}
	if !includeTests && discover.IsTestFile(name) {
		return false
	}
	return true
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && discover.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
