// Package index defines the per-file semantic index: the data model shared
// by every component of the engine, and the collaborator interfaces that
// produce and enrich it.
//
// A FileIndex is the complete output of indexing one source file:
// definitions, references, the scope tree, imports and exports. Registries
// aggregate FileIndex data across a project; resolvers consume it. The core
// never parses source itself — it depends on the Indexer interface, for
// which internal/extract provides the default tree-sitter implementation.
package index

// Point is a zero-based source position.
type Point struct {
	Row int
	Col int
}

// Before reports whether p is strictly before other in document order.
func (p Point) Before(other Point) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

// Range is a half-open source span [Start, End).
type Range struct {
	Start Point
	End   Point
}

// Contains reports whether the point falls within the range.
func (r Range) Contains(p Point) bool {
	if p.Row < r.Start.Row || p.Row > r.End.Row {
		return false
	}
	if p.Row == r.Start.Row && p.Col < r.Start.Col {
		return false
	}
	if p.Row == r.End.Row && p.Col > r.End.Col {
		return false
	}
	return true
}

// ContainsRange reports whether inner lies entirely within r.
func (r Range) ContainsRange(inner Range) bool {
	return r.Contains(inner.Start) && r.Contains(inner.End)
}

// Location is a source span in a named file. It keys resolution cache
// entries, so it must compare with ==.
type Location struct {
	File     string
	StartRow int
	StartCol int
}

// LocationOf builds the cache key for a reference at the given file position.
func LocationOf(file string, start Point) Location {
	return Location{File: file, StartRow: start.Row, StartCol: start.Col}
}

// DefKind classifies a definition.
type DefKind string

const (
	DefFunction    DefKind = "function"
	DefMethod      DefKind = "method"
	DefClass       DefKind = "class"
	DefInterface   DefKind = "interface"
	DefConstructor DefKind = "constructor"
	DefVariable    DefKind = "variable"
	DefConst       DefKind = "const"
	DefLet         DefKind = "let"
	DefParameter   DefKind = "parameter"
	DefImport      DefKind = "import"
	DefBuiltin     DefKind = "builtin"
)

// Callable reports whether definitions of this kind appear as call graph
// nodes.
func (k DefKind) Callable() bool {
	switch k {
	case DefFunction, DefMethod, DefConstructor:
		return true
	}
	return false
}

// RefKind classifies how a name is used at a reference site.
type RefKind string

const (
	RefIdent           RefKind = "identifier"
	RefCall            RefKind = "call"
	RefMethodCall      RefKind = "method_call"
	RefConstructorCall RefKind = "constructor_call"
	RefMemberAccess    RefKind = "member_access"
)

// CallKind reports whether references of this kind contribute call graph
// edges once resolved.
func (k RefKind) CallKind() bool {
	switch k {
	case RefCall, RefMethodCall, RefConstructorCall:
		return true
	}
	return false
}

// Param describes one function or method parameter.
type Param struct {
	Name     string
	TypeExpr string
	Default  string
}

// Definition is one named declaration in a file. Definitions are owned by
// the Definition registry, keyed by SymbolID and indexed by (file, name).
type Definition struct {
	Symbol   SymbolID
	Name     string
	Kind     DefKind
	File     string
	Range    Range
	Scope    ScopeID
	Exported bool

	// Kind-specific metadata.
	Params       []Param  // functions, methods, constructors
	ReturnType   string   // annotated return type, if any
	Members      []string // classes, interfaces: member names, sorted
	ImportSource string   // imports: the module specifier
	ImportName   string   // imports: remote name; "" = same as Name, "*" = namespace import
}

// Reference is one use site of a name. References never outlive the
// resolution cycle of their owning file.
type Reference struct {
	Name     string
	File     string
	Range    Range
	Scope    ScopeID
	Kind     RefKind
	Receiver string // method calls: the receiver expression text, "" otherwise
}

// Location returns the cache key for this reference.
func (r *Reference) Location() Location {
	return LocationOf(r.File, r.Range.Start)
}

// Import is one import statement edge candidate.
type Import struct {
	Source       string // module specifier as written ("./util", "pkg")
	ImportedName string // the remote name, "" for namespace/module imports
	LocalAlias   string // the local binding name
	Range        Range
}

// Export is one exported name of a file. ReExportSource is set when the
// export forwards a name from another module ("export { x } from './y'").
type Export struct {
	Name           string
	Symbol         SymbolID // zero when re-exporting an unresolved name
	ReExportSource string
	ReExportName   string
}

// TypeInfo describes a class or interface for member resolution: its member
// table and its ancestor chain in declaration order (nearest first).
type TypeInfo struct {
	Symbol  SymbolID
	Name    string
	File    string
	Members map[string]SymbolID
	Extends []string // ancestor type names as written
}

// TypeBinding records a declared or trivially-inferred type for a value
// symbol: `x: Foo`, `x = new Foo()`.
type TypeBinding struct {
	Symbol   SymbolID
	TypeName string
}

// FileIndex is the complete per-file semantic index produced by an Indexer.
type FileIndex struct {
	Path        string
	Language    string
	Definitions []Definition
	References  []Reference
	ScopeTree   *ScopeTree
	Imports     []Import
	Exports     []Export
	Types       []TypeInfo
	Bindings    []TypeBinding
}

// Indexer produces a FileIndex from one file's source text. Implementations
// must be deterministic for identical input: symbol identifier stability
// depends on it.
type Indexer interface {
	Index(path string, src []byte) (*FileIndex, error)
}

// TypeContext supplies inferred types for value symbols the registries have
// no declared binding for. The zero implementation always answers false;
// resolution then degrades to unresolved rather than guessing.
type TypeContext interface {
	TypeOf(sym SymbolID) (string, bool)
}
