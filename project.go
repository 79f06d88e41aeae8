package ariadne

import (
	"fmt"

	"github.com/CRJFisher/ariadne/internal/callgraph"
	"github.com/CRJFisher/ariadne/internal/depgraph"
	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/lang"
	"github.com/CRJFisher/ariadne/internal/registry"
	"github.com/CRJFisher/ariadne/internal/resolve"
)

// Project coordinates the registries, the import graph, the resolution
// cache, and the call graph for one analyzed code base. Every public
// operation runs to completion before returning; nothing is shared between
// Project instances, so a host may run many of them independently.
type Project struct {
	defs    *registry.Definitions
	scopes  *registry.Scopes
	exports *registry.Exports
	types   *registry.Types
	graph   *depgraph.Graph
	cache   *resolve.Cache

	indexer index.Indexer
	typeCtx index.TypeContext

	files   map[string]*fileState
	pending map[string]bool

	// callGraph is a derived cache, dropped on any mutation.
	callGraph *callgraph.Graph

	languages    map[lang.Language]bool // nil means all languages
	includeTests bool
	useParallel  bool
}

// fileState is the coordinator's per-file bookkeeping: the data that is not
// owned by any registry.
type fileState struct {
	Language lang.Language
	Hash     string
	Refs     []index.Reference
	Imports  []index.Import
}

// Option configures a Project.
type Option func(*Project)

// WithIndexer replaces the default tree-sitter indexer with a custom
// per-file indexer. Implementations must be deterministic for identical
// input, and safe for concurrent use unless WithParallel(false) is set.
func WithIndexer(ix index.Indexer) Option {
	return func(p *Project) { p.indexer = ix }
}

// WithTypeContext installs an external type-inference collaborator,
// consulted for receiver types the registries have no declared binding for.
func WithTypeContext(tc index.TypeContext) Option {
	return func(p *Project) { p.typeCtx = tc }
}

// WithLanguages restricts which languages the Project will ingest.
func WithLanguages(languages ...lang.Language) Option {
	return func(p *Project) {
		p.languages = make(map[lang.Language]bool, len(languages))
		for _, l := range languages {
			p.languages[l] = true
		}
	}
}

// WithIncludeTests ingests test files too. By default they are excluded at
// discovery time so test-only callers do not hide entry points.
func WithIncludeTests(include bool) Option {
	return func(p *Project) { p.includeTests = include }
}

// WithParallel controls parallel batch indexing. When true (default),
// IndexFiles parses files on a worker pool; registry application stays
// serialized in the calling goroutine.
func WithParallel(parallel bool) Option {
	return func(p *Project) { p.useParallel = parallel }
}

// New creates an empty Project.
func New(opts ...Option) *Project {
	p := &Project{
		defs:        registry.NewDefinitions(),
		scopes:      registry.NewScopes(),
		exports:     registry.NewExports(),
		types:       registry.NewTypes(),
		graph:       depgraph.New(),
		cache:       resolve.NewCache(),
		files:       make(map[string]*fileState),
		pending:     make(map[string]bool),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.typeCtx == nil {
		p.typeCtx = registry.NewContext(p.types)
	}
	return p
}

// resolver builds the reference resolver over the current registries.
func (p *Project) resolver() *resolve.Resolver {
	modules := &resolve.Modules{Known: func(path string) bool {
		_, ok := p.files[path]
		return ok
	}}
	return &resolve.Resolver{
		Defs:    p.defs,
		Scopes:  p.scopes,
		Exports: p.exports,
		Types:   p.types,
		Graph:   p.graph,
		TypeCtx: p.typeCtx,
		LanguageOf: func(file string) (lang.Language, bool) {
			if st, ok := p.files[file]; ok {
				return st.Language, true
			}
			return lang.ForFile(file)
		},
		ResolveModule: modules.Resolve,
	}
}

// UpdateFile ingests one file: it runs the per-file indexer, replaces the
// file's entries in all four registries and the import graph, and marks the
// file and its transitive dependents pending. An indexer failure leaves every
// registry untouched — the update is a no-op — and is returned to the
// caller. Files in unsupported languages are ignored.
func (p *Project) UpdateFile(path string, src []byte) error {
	l, ok := lang.ForFile(path)
	if !ok {
		return nil
	}
	if p.languages != nil && !p.languages[l] {
		return nil
	}

	idx, err := p.index(path, src)
	if err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}

	p.apply(path, l, contentHash(src), idx)
	return nil
}

// index runs the collaborator indexer for one file. Pure with respect to
// Project state, so batch ingestion may call it from worker goroutines.
func (p *Project) index(path string, src []byte) (*index.FileIndex, error) {
	ix := p.indexer
	if ix == nil {
		ix = defaultIndexer()
	}
	return ix.Index(path, src)
}

// apply installs a freshly computed file index: full registry replace,
// import edge recompute, pending marks. This is the single serialization
// point for all mutation.
func (p *Project) apply(path string, l lang.Language, hash string, idx *index.FileIndex) {
	p.defs.UpdateFile(path, idx.Definitions)
	p.scopes.UpdateFile(path, idx.ScopeTree)
	p.exports.UpdateFile(path, idx.Exports)
	p.types.UpdateFile(path, idx.Types, idx.Bindings)
	p.files[path] = &fileState{Language: l, Hash: hash, Refs: idx.References, Imports: idx.Imports}

	p.graph.UpdateFile(path, p.computeDeps(path, idx.Imports))
	p.markPending(path)
}

// computeDeps maps a file's import specifiers to project file paths.
// Resolution of specifier to path is deterministic, so edges to
// not-yet-ingested files are stable and start mattering the moment the
// target arrives.
func (p *Project) computeDeps(path string, imports []index.Import) []string {
	modules := &resolve.Modules{Known: func(f string) bool {
		_, ok := p.files[f]
		return ok
	}}
	var deps []string
	for _, imp := range imports {
		if target, ok := modules.Resolve(path, imp.Source); ok {
			deps = append(deps, target)
		}
	}
	return deps
}

// markPending marks file and its transitive dependents pending, dropping
// their cached resolutions and the call graph. Transitive, not just direct:
// re-export chains let a resolution in A depend on a file A never imports
// directly.
func (p *Project) markPending(file string) {
	p.pending[file] = true
	p.cache.Invalidate(file)
	for _, dep := range p.graph.TransitiveDependents(file) {
		p.pending[dep] = true
		p.cache.Invalidate(dep)
	}
	p.callGraph = nil
}

// RemoveFile deletes the file from every registry and the import graph and
// marks its former dependents pending.
func (p *Project) RemoveFile(path string) {
	dependents := p.graph.TransitiveDependents(path)

	p.defs.RemoveFile(path)
	p.scopes.RemoveFile(path)
	p.exports.RemoveFile(path)
	p.types.RemoveFile(path)
	p.graph.RemoveFile(path)
	p.cache.Invalidate(path)
	delete(p.files, path)
	delete(p.pending, path)

	for _, dep := range dependents {
		p.pending[dep] = true
		p.cache.Invalidate(dep)
	}
	p.callGraph = nil
}

// ResolveFile brings the resolution cache current for one file. Idempotent
// and lazy: a file that is not pending returns immediately with no work.
func (p *Project) ResolveFile(path string) {
	if !p.pending[path] {
		return
	}
	st := p.files[path]
	if st == nil {
		delete(p.pending, path)
		return
	}
	// Re-derive import edges before resolving: a removed-then-reingested
	// dependency severed this file's edge, and the edge must exist again
	// for future invalidations to reach us.
	p.graph.UpdateFile(path, p.computeDeps(path, st.Imports))

	p.cache.Put(path, p.resolver().ResolveFile(path, st.Refs))
	delete(p.pending, path)
}

// resolveAllPending resolves every currently pending file.
func (p *Project) resolveAllPending() {
	for len(p.pending) > 0 {
		for file := range p.pending {
			p.ResolveFile(file)
		}
	}
}

// ResolveReference resolves the reference at a source location. Returns
// (zero, false) for locations with no reference or references that do not
// resolve — a normal outcome, not an error.
func (p *Project) ResolveReference(loc index.Location) (index.SymbolID, bool) {
	p.ResolveFile(loc.File)
	res, ok := p.cache.Lookup(loc)
	if !ok {
		return "", false
	}
	return res.Symbol, true
}

// GetDefinition returns the definition for a symbol identifier, or nil.
func (p *Project) GetDefinition(sym index.SymbolID) *index.Definition {
	return p.defs.Get(sym)
}

// Dependencies returns the files path directly imports from.
func (p *Project) Dependencies(path string) []string {
	return p.graph.Dependencies(path)
}

// Dependents returns the files that directly import from path.
func (p *Project) Dependents(path string) []string {
	return p.graph.Dependents(path)
}

// TransitiveDependencies returns every file reachable from path along
// import edges.
func (p *Project) TransitiveDependencies(path string) []string {
	return p.graph.TransitiveDependencies(path)
}

// TransitiveDependents returns every file that transitively imports from
// path.
func (p *Project) TransitiveDependents(path string) []string {
	return p.graph.TransitiveDependents(path)
}

// DetectCycle returns a concrete import cycle through path, or nil. Cycles
// are diagnostic: they never block resolution.
func (p *Project) DetectCycle(path string) []string {
	return p.graph.DetectCycle(path)
}

// CallGraph resolves all pending files and returns the call graph, building
// it if no cached graph exists. The graph is rebuilt whole from the current
// registries — never incrementally patched.
func (p *Project) CallGraph() *callgraph.Graph {
	p.resolveAllPending()
	if p.callGraph != nil {
		return p.callGraph
	}

	var resolutions []resolve.Resolution
	for _, file := range p.cache.Files() {
		for _, res := range p.cache.File(file) {
			resolutions = append(resolutions, res)
		}
	}
	p.callGraph = callgraph.Build(p.defs.All(), resolutions)
	return p.callGraph
}

// Stats reports observability counters.
type Stats struct {
	PendingResolutionCount int
	CachedResolutionCount  int
	FileCount              int
	EdgeCount              int
}

// Stats returns the current counters.
func (p *Project) Stats() Stats {
	return Stats{
		PendingResolutionCount: len(p.pending),
		CachedResolutionCount:  p.cache.Count(),
		FileCount:              len(p.files),
		EdgeCount:              p.graph.EdgeCount(),
	}
}
