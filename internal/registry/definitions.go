// Package registry holds the per-project aggregations of per-file index
// data: definitions, scope trees, exports, and type information. Each
// registry supports incremental UpdateFile/RemoveFile where UpdateFile is
// always a full replace of that file's entries — no partial diffing, so the
// invariants stay simple and per-file cost is bounded by file size, not
// project size.
package registry

import (
	"sort"

	"github.com/CRJFisher/ariadne/internal/index"
)

// fileName keys the by-(file, name) definition index.
type fileName struct {
	File string
	Name string
}

// Definitions owns every Definition in the project, keyed by symbol ID and
// indexed by file and by (file, name).
type Definitions struct {
	byID     map[index.SymbolID]*index.Definition
	byFile   map[string][]index.SymbolID
	byName   map[fileName][]index.SymbolID
}

// NewDefinitions returns an empty definition registry.
func NewDefinitions() *Definitions {
	return &Definitions{
		byID:   make(map[index.SymbolID]*index.Definition),
		byFile: make(map[string][]index.SymbolID),
		byName: make(map[fileName][]index.SymbolID),
	}
}

// UpdateFile replaces every definition owned by file with defs.
func (r *Definitions) UpdateFile(file string, defs []index.Definition) {
	r.RemoveFile(file)
	ids := make([]index.SymbolID, 0, len(defs))
	for i := range defs {
		d := defs[i]
		r.byID[d.Symbol] = &d
		ids = append(ids, d.Symbol)
		key := fileName{File: file, Name: d.Name}
		r.byName[key] = append(r.byName[key], d.Symbol)
	}
	if len(ids) > 0 {
		r.byFile[file] = ids
	}
}

// RemoveFile deletes every definition owned by file.
func (r *Definitions) RemoveFile(file string) {
	for _, id := range r.byFile[file] {
		d := r.byID[id]
		if d != nil {
			key := fileName{File: file, Name: d.Name}
			r.byName[key] = removeID(r.byName[key], id)
			if len(r.byName[key]) == 0 {
				delete(r.byName, key)
			}
		}
		delete(r.byID, id)
	}
	delete(r.byFile, file)
}

// Get returns the definition for a symbol ID, or nil.
func (r *Definitions) Get(id index.SymbolID) *index.Definition {
	return r.byID[id]
}

// ByFileName returns the definitions of name in file, in insertion order.
func (r *Definitions) ByFileName(file, name string) []*index.Definition {
	ids := r.byName[fileName{File: file, Name: name}]
	out := make([]*index.Definition, 0, len(ids))
	for _, id := range ids {
		if d := r.byID[id]; d != nil {
			out = append(out, d)
		}
	}
	return out
}

// ByFile returns every definition owned by file, in insertion order.
func (r *Definitions) ByFile(file string) []*index.Definition {
	ids := r.byFile[file]
	out := make([]*index.Definition, 0, len(ids))
	for _, id := range ids {
		if d := r.byID[id]; d != nil {
			out = append(out, d)
		}
	}
	return out
}

// All returns every definition in the project, ordered by symbol ID for
// determinism.
func (r *Definitions) All() []*index.Definition {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	out := make([]*index.Definition, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[index.SymbolID(id)])
	}
	return out
}

// Count returns the number of definitions in the registry.
func (r *Definitions) Count() int { return len(r.byID) }

func removeID(ids []index.SymbolID, id index.SymbolID) []index.SymbolID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
