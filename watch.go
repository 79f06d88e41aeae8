package ariadne

import (
	"context"
	"os"

	"github.com/CRJFisher/ariadne/internal/watch"
)

// WatchDirectory blocks watching root until ctx is cancelled, feeding each
// debounced batch of file changes through UpdateFile/RemoveFile. onBatch, if
// non-nil, runs after each batch is applied with the updated and removed
// paths. Read and index errors on individual files skip that file; the loop
// keeps running.
func (p *Project) WatchDirectory(ctx context.Context, root string, onBatch func(updated, removed []string)) error {
	opts := watch.Options{IncludeTests: p.includeTests}
	return watch.Watch(ctx, root, opts, func(events []watch.Event) {
		var updated, removed []string
		for _, ev := range events {
			if ev.Removed {
				p.RemoveFile(ev.Path)
				removed = append(removed, ev.Path)
				continue
			}
			src, err := os.ReadFile(ev.Path)
			if err != nil {
				continue // deleted between event and read; the remove event follows
			}
			if err := p.UpdateFile(ev.Path, src); err != nil {
				continue
			}
			updated = append(updated, ev.Path)
		}
		if onBatch != nil {
			onBatch(updated, removed)
		}
	})
}
