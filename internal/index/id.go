package index

import "fmt"

// SymbolID is a stable, globally-unique identity for one definition. It is
// derived from the defining location and kind, so re-indexing unchanged
// content reproduces the same identifier.
type SymbolID string

// MakeSymbolID derives the identifier for a definition at the given
// location.
func MakeSymbolID(file string, kind DefKind, name string, start Point) SymbolID {
	return SymbolID(fmt.Sprintf("%s:%s:%s:%d:%d", file, kind, name, start.Row, start.Col))
}

// BuiltinSymbolID derives the synthetic identifier for a per-language
// builtin or global name.
func BuiltinSymbolID(language, name string) SymbolID {
	return SymbolID(fmt.Sprintf("builtin:%s:%s", language, name))
}

// IsBuiltin reports whether the identifier denotes a synthetic builtin.
func (id SymbolID) IsBuiltin() bool {
	return len(id) > 8 && id[:8] == "builtin:"
}
