package registry

import "github.com/CRJFisher/ariadne/internal/index"

// Types owns class/interface member tables and declared-type bindings for
// value symbols. Member lookup walks the ancestor chain nearest-first,
// matching the analyzed languages' override semantics.
type Types struct {
	byID       map[index.SymbolID]*index.TypeInfo
	byFileName map[fileName]index.SymbolID
	byFile     map[string][]index.SymbolID

	// bindings: value symbol -> declared/inferred type name.
	bindings       map[index.SymbolID]string
	bindingsByFile map[string][]index.SymbolID
}

// NewTypes returns an empty type registry.
func NewTypes() *Types {
	return &Types{
		byID:           make(map[index.SymbolID]*index.TypeInfo),
		byFileName:     make(map[fileName]index.SymbolID),
		byFile:         make(map[string][]index.SymbolID),
		bindings:       make(map[index.SymbolID]string),
		bindingsByFile: make(map[string][]index.SymbolID),
	}
}

// UpdateFile replaces the type info and bindings owned by file.
func (r *Types) UpdateFile(file string, types []index.TypeInfo, bindings []index.TypeBinding) {
	r.RemoveFile(file)

	ids := make([]index.SymbolID, 0, len(types))
	for i := range types {
		ti := types[i]
		r.byID[ti.Symbol] = &ti
		r.byFileName[fileName{File: file, Name: ti.Name}] = ti.Symbol
		ids = append(ids, ti.Symbol)
	}
	if len(ids) > 0 {
		r.byFile[file] = ids
	}

	bound := make([]index.SymbolID, 0, len(bindings))
	for _, b := range bindings {
		r.bindings[b.Symbol] = b.TypeName
		bound = append(bound, b.Symbol)
	}
	if len(bound) > 0 {
		r.bindingsByFile[file] = bound
	}
}

// RemoveFile deletes the type info and bindings owned by file.
func (r *Types) RemoveFile(file string) {
	for _, id := range r.byFile[file] {
		if ti := r.byID[id]; ti != nil {
			delete(r.byFileName, fileName{File: file, Name: ti.Name})
		}
		delete(r.byID, id)
	}
	delete(r.byFile, file)

	for _, id := range r.bindingsByFile[file] {
		delete(r.bindings, id)
	}
	delete(r.bindingsByFile, file)
}

// Get returns the type info for a type symbol, or nil.
func (r *Types) Get(id index.SymbolID) *index.TypeInfo {
	return r.byID[id]
}

// ByName returns the type declared as name in file.
func (r *Types) ByName(file, name string) (*index.TypeInfo, bool) {
	id, ok := r.byFileName[fileName{File: file, Name: name}]
	if !ok {
		return nil, false
	}
	ti := r.byID[id]
	return ti, ti != nil
}

// BindingType returns the declared type name for a value symbol, if
// recorded.
func (r *Types) BindingType(sym index.SymbolID) (string, bool) {
	name, ok := r.bindings[sym]
	return name, ok
}

// LookupMember finds member on the type or its nearest ancestor that
// defines it. Ancestors are resolved by name within the declaring file
// first, then project-wide via the resolve function supplied by the caller
// (which typically chases imports). A visited set terminates inheritance
// cycles.
func (r *Types) LookupMember(typeSym index.SymbolID, member string, resolveAncestor func(fromFile, name string) (index.SymbolID, bool)) (index.SymbolID, bool) {
	visited := make(map[index.SymbolID]bool)
	current := typeSym
	for current != "" && !visited[current] {
		visited[current] = true
		ti := r.byID[current]
		if ti == nil {
			return "", false
		}
		if sym, ok := ti.Members[member]; ok {
			return sym, true
		}

		// Nearest ancestor first: Extends is in declaration order.
		current = ""
		for _, ancestorName := range ti.Extends {
			if next, ok := r.byFileName[fileName{File: ti.File, Name: ancestorName}]; ok {
				current = next
				break
			}
			if resolveAncestor != nil {
				if next, ok := resolveAncestor(ti.File, ancestorName); ok {
					current = next
					break
				}
			}
		}
	}
	return "", false
}

// Context is the default TypeContext: it answers from recorded declared
// bindings and nothing else. Inferred types beyond that come from an
// external collaborator.
type Context struct {
	types *Types
}

// NewContext wraps a Types registry as an index.TypeContext.
func NewContext(types *Types) *Context {
	return &Context{types: types}
}

// TypeOf returns the declared type name bound to sym.
func (c *Context) TypeOf(sym index.SymbolID) (string, bool) {
	return c.types.BindingType(sym)
}
