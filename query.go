package ariadne

import (
	"sort"
	"strings"

	"github.com/CRJFisher/ariadne/internal/index"
)

// DefinitionAt finds the definition of the symbol referenced at the given
// position: go-to-definition. The position must fall within a reference
// span; a position on whitespace or on a definition name returns (nil,
// false).
func (p *Project) DefinitionAt(file string, at index.Point) (*index.Definition, bool) {
	st := p.files[file]
	if st == nil {
		return nil, false
	}
	p.ResolveFile(file)

	for i := range st.Refs {
		ref := &st.Refs[i]
		if !ref.Range.Contains(at) {
			continue
		}
		res, ok := p.cache.Lookup(ref.Location())
		if !ok {
			continue
		}
		if def := p.defs.Get(res.Symbol); def != nil {
			return def, true
		}
	}
	return nil, false
}

// ReferencesTo finds every resolved reference site denoting the symbol:
// find-references. Results are sorted by location.
func (p *Project) ReferencesTo(sym index.SymbolID) []index.Location {
	p.resolveAllPending()

	var out []index.Location
	for _, file := range p.cache.Files() {
		for loc, res := range p.cache.File(file) {
			if res.Symbol == sym {
				out = append(out, loc)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.StartRow != b.StartRow {
			return a.StartRow < b.StartRow
		}
		return a.StartCol < b.StartCol
	})
	return out
}

// DefinitionsByName returns every definition with the given name, across
// all files, ordered by symbol ID. A name with a "kind:" prefix (e.g.
// "class:Dog") filters by kind.
func (p *Project) DefinitionsByName(name string) []*index.Definition {
	var kind index.DefKind
	if k, n, ok := strings.Cut(name, ":"); ok {
		kind, name = index.DefKind(k), n
	}

	var out []*index.Definition
	for _, d := range p.defs.All() {
		if d.Name != name {
			continue
		}
		if kind != "" && d.Kind != kind {
			continue
		}
		out = append(out, d)
	}
	return out
}

// FileDefinitions returns the definitions owned by a file, in extraction
// order.
func (p *Project) FileDefinitions(file string) []*index.Definition {
	return p.defs.ByFile(file)
}

// EntryPoints returns the callable definitions with no resolved callers,
// ordered by symbol ID. Self-recursive callables with no other callers
// still count as called.
func (p *Project) EntryPoints() []*index.Definition {
	cg := p.CallGraph()
	var out []*index.Definition
	for _, sym := range cg.EntryPoints() {
		if def := p.defs.Get(sym); def != nil {
			out = append(out, def)
		}
	}
	return out
}
