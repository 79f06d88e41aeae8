package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchCollector accumulates delivered batches for assertion.
type batchCollector struct {
	mu      sync.Mutex
	batches [][]Event
}

func (c *batchCollector) apply(events []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, events)
}

func (c *batchCollector) find(path string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, batch := range c.batches {
		for _, ev := range batch {
			if ev.Path == path {
				return ev, true
			}
		}
	}
	return Event{}, false
}

func startWatch(t *testing.T, root string, collector *batchCollector) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, root, Options{Debounce: 100 * time.Millisecond}, collector.apply)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher time to register before mutating the tree.
	time.Sleep(200 * time.Millisecond)
	return cancel
}

func TestWatchDeliversWriteEvents(t *testing.T) {
	root := t.TempDir()
	collector := &batchCollector{}
	startWatch(t, root, collector)

	target := filepath.Join(root, "app.js")
	require.NoError(t, os.WriteFile(target, []byte("function f() {}"), 0o644))

	assert.Eventually(t, func() bool {
		ev, ok := collector.find(target)
		return ok && !ev.Removed
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchDeliversRemoveEvents(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "gone.py")
	require.NoError(t, os.WriteFile(target, []byte("x = 1"), 0o644))

	collector := &batchCollector{}
	startWatch(t, root, collector)

	require.NoError(t, os.Remove(target))

	assert.Eventually(t, func() bool {
		ev, ok := collector.find(target)
		return ok && ev.Removed
	}, 5*time.Second, 50*time.Millisecond)
}

func TestWatchIgnoresUnsupportedFiles(t *testing.T) {
	root := t.TempDir()
	collector := &batchCollector{}
	startWatch(t, root, collector)

	noise := filepath.Join(root, "notes.txt")
	signal := filepath.Join(root, "code.ts")
	require.NoError(t, os.WriteFile(noise, []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(signal, []byte("const x = 1"), 0o644))

	require.Eventually(t, func() bool {
		_, ok := collector.find(signal)
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	_, ok := collector.find(noise)
	assert.False(t, ok, "unsupported extensions never reach the batch")
}
