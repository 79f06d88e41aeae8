package ariadne

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/CRJFisher/ariadne/internal/discover"
	"github.com/CRJFisher/ariadne/internal/extract"
	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/lang"
)

// defaultIndexerOnce lazily builds the shared tree-sitter indexer used when
// no custom Indexer is configured.
var (
	defaultIx     index.Indexer
	defaultIxOnce sync.Once
)

func defaultIndexer() index.Indexer {
	defaultIxOnce.Do(func() { defaultIx = extract.New() })
	return defaultIx
}

func contentHash(src []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(src))
}

// IndexDirectory discovers source files under root (honoring .gitignore and
// the default skip dirs, excluding test files unless WithIncludeTests) and
// ingests them.
func (p *Project) IndexDirectory(ctx context.Context, root string) error {
	paths, err := discover.Files(root, discover.Options{IncludeTests: p.includeTests})
	if err != nil {
		return fmt.Errorf("discover %s: %w", root, err)
	}
	return p.IndexFiles(ctx, paths)
}

// IndexFiles ingests the given paths. Unchanged files (same content hash)
// are skipped. When WithParallel is enabled, per-file indexing runs on a
// worker pool; registry application stays serialized in this goroutine, so
// every registry mutation still happens on a single thread.
//
// Errors on individual files are collected; processing continues.
func (p *Project) IndexFiles(ctx context.Context, paths []string) error {
	if p.useParallel {
		return p.indexFilesParallel(ctx, paths)
	}
	return p.indexFilesSerial(ctx, paths)
}

func (p *Project) indexFilesSerial(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, skip, err := p.prepareFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if skip {
			continue
		}
		idx, err := p.index(item.path, item.src)
		if err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
			continue
		}
		p.apply(item.path, item.lang, item.hash, idx)
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// workItem holds everything a parallel indexing worker needs.
type workItem struct {
	path string
	lang lang.Language
	hash string
	src  []byte
}

// indexFilesParallel runs the three-phase pipeline:
//
//	Phase A (serial):   read files, hash check, language filter.
//	Phase B (parallel): per-file indexing on a worker pool (pure).
//	Phase C (serial):   apply each FileIndex to the registries.
func (p *Project) indexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A ----
	var items []workItem
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		item, skip, err := p.prepareFile(path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		if skip {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}

	// ---- Phase B ----
	numWorkers := min(runtime.NumCPU(), len(items))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan workItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item workItem
		idx  *index.FileIndex
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker gets its own indexer: tree-sitter parsers are not
			// goroutine-safe.
			ix := p.indexer
			if ix == nil {
				ix = extract.New()
			}
			for item := range workCh {
				fidx, err := ix.Index(item.path, item.src)
				resultCh <- result{item: item, idx: fidx, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C ----
	var errs []error
	for res := range resultCh {
		if ctx.Err() != nil {
			continue // keep draining so the workers can exit
		}
		if res.err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", res.item.path, res.err))
			continue
		}
		p.apply(res.item.path, res.item.lang, res.item.hash, res.idx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(errs) > 0 {
		return fmt.Errorf("parallel indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

// prepareFile does Phase A work for one path: language filter, read, hash
// check. skip=true means unsupported, filtered out, or unchanged.
func (p *Project) prepareFile(path string) (workItem, bool, error) {
	l, ok := lang.ForFile(path)
	if !ok {
		return workItem{}, true, nil
	}
	if p.languages != nil && !p.languages[l] {
		return workItem{}, true, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return workItem{}, false, fmt.Errorf("read file: %w", err)
	}
	hash := contentHash(src)
	if st := p.files[path]; st != nil && st.Hash == hash {
		return workItem{}, true, nil // unchanged
	}
	return workItem{path: path, lang: l, hash: hash, src: src}, false, nil
}
