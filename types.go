package ariadne

import (
	"github.com/CRJFisher/ariadne/internal/callgraph"
	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/lang"
)

// Aliases for the data-model types that cross the public API boundary.
// Hosts work with these; the internal packages stay internal.

// Point is a zero-based source position.
type Point = index.Point

// Range is a half-open source span.
type Range = index.Range

// Location is a source position in a named file.
type Location = index.Location

// SymbolID is the stable identity of one definition.
type SymbolID = index.SymbolID

// Definition is one named declaration.
type Definition = index.Definition

// DefKind classifies a definition.
type DefKind = index.DefKind

// RefKind classifies a reference site.
type RefKind = index.RefKind

// Indexer produces per-file indexes; see [WithIndexer].
type Indexer = index.Indexer

// TypeContext supplies inferred receiver types; see [WithTypeContext].
type TypeContext = index.TypeContext

// Graph is the derived call graph returned by [Project.CallGraph].
type Graph = callgraph.Graph

// CallNode is one callable in the call graph.
type CallNode = callgraph.Node

// CallEdge is one resolved call from caller to callee.
type CallEdge = callgraph.Edge

// Language names a supported language; see [WithLanguages].
type Language = lang.Language

// Supported languages.
const (
	JavaScript = lang.JavaScript
	TypeScript = lang.TypeScript
	Python     = lang.Python
)
