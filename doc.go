// Package ariadne provides deterministic symbol resolution and call-graph
// analysis for JavaScript, TypeScript, and Python, built on tree-sitter.
// It resolves every name use to the definition it denotes — across scopes,
// hoisting rules, imports, re-exports, and class hierarchies — and derives
// a project-wide call graph from the results.
//
// # Pipeline
//
// A [Project] maintains four registries (definitions, scope trees, exports,
// types), a bidirectional import graph, and a lazy resolution cache:
//
//  1. Ingest: [Project.UpdateFile] runs the per-file indexer (tree-sitter by
//     default), replaces the file's registry entries wholesale, recomputes
//     its import edges, and marks the file and its transitive dependents
//     pending. [Project.IndexDirectory] batches this over a source tree,
//     skipping unchanged files by content hash.
//
//  2. Resolve: [Project.ResolveFile] lazily resolves every reference in a
//     pending file — scope-chain walk with per-language hoisting rules,
//     import and re-export chasing, receiver-typed member lookup — and
//     caches the results by source location. Files that are not pending
//     return immediately.
//
//  3. Derive: [Project.CallGraph] resolves all pending files and rebuilds
//     the call graph whole from the cached resolutions.
//
// # Usage
//
//	p := ariadne.New()
//	if err := p.IndexDirectory(ctx, "path/to/project"); err != nil { ... }
//
//	def, ok := p.DefinitionAt("src/app.js", ariadne.Point{Row: 10, Col: 5})
//	graph := p.CallGraph()
//	entries := p.EntryPoints()
//
// # Incremental updates
//
// Editing a file invalidates exactly the resolutions that could have
// depended on it: the file's own cache entries plus those of its transitive
// dependents. Resolution is lazy and idempotent, so repeated queries after
// one edit pay the re-resolution cost once. [Project.WatchDirectory] feeds
// filesystem changes through the same path.
//
// A reference that cannot be resolved — dynamic code, missing type info,
// external libraries — is a normal outcome, surfaced as an absent result,
// never an error.
//
// # Persistence
//
// The registries are in-memory. [Project.SaveSnapshot] writes the current
// state to a SQLite database for external query tooling; the snapshot is
// derived data and is never read back into the engine.
package ariadne
