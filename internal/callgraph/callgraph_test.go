package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/resolve"
)

func callable(file, name string, row int) *index.Definition {
	start := index.Point{Row: row}
	return &index.Definition{
		Symbol: index.MakeSymbolID(file, index.DefFunction, name, start),
		Name:   name,
		Kind:   index.DefFunction,
		File:   file,
		Range:  index.Range{Start: start, End: index.Point{Row: row + 2}},
	}
}

func callRes(file string, row int, caller, callee index.SymbolID) resolve.Resolution {
	return resolve.Resolution{
		Ref: index.Reference{
			Name:  "x",
			File:  file,
			Range: index.Range{Start: index.Point{Row: row}, End: index.Point{Row: row, Col: 5}},
			Kind:  index.RefCall,
		},
		Symbol: callee,
		Caller: caller,
	}
}

func TestBuild_NodesAndEdges(t *testing.T) {
	t.Parallel()
	a := callable("m.js", "a", 1)
	b := callable("m.js", "b", 10)
	notCallable := &index.Definition{
		Symbol: index.MakeSymbolID("m.js", index.DefConst, "k", index.Point{Row: 20}),
		Name:   "k", Kind: index.DefConst, File: "m.js",
	}

	g := Build([]*index.Definition{a, b, notCallable}, []resolve.Resolution{
		callRes("m.js", 2, a.Symbol, b.Symbol),
	})

	assert.Len(t, g.Nodes, 2, "non-callables must not become nodes")
	require.Len(t, g.Edges, 1)
	assert.Equal(t, a.Symbol, g.Edges[0].Caller)
	assert.Equal(t, b.Symbol, g.Edges[0].Callee)

	require.Len(t, g.Callees(a.Symbol), 1)
	require.Len(t, g.Callers(b.Symbol), 1)
	assert.Empty(t, g.Callers(a.Symbol))
}

func TestBuild_ModuleLevelCallProducesNoEdge(t *testing.T) {
	t.Parallel()
	a := callable("m.js", "a", 1)

	g := Build([]*index.Definition{a}, []resolve.Resolution{
		callRes("m.js", 30, "", a.Symbol), // no enclosing callable
	})

	assert.Empty(t, g.Edges)
	assert.Equal(t, []index.SymbolID{a.Symbol}, g.EntryPoints())
}

func TestBuild_NonCallResolutionsIgnored(t *testing.T) {
	t.Parallel()
	a := callable("m.js", "a", 1)
	b := callable("m.js", "b", 10)

	res := callRes("m.js", 2, a.Symbol, b.Symbol)
	res.Ref.Kind = index.RefIdent

	g := Build([]*index.Definition{a, b}, []resolve.Resolution{res})
	assert.Empty(t, g.Edges, "identifier references are not calls")
}

func TestEntryPoints_SelfLoopCountsAsCalled(t *testing.T) {
	t.Parallel()
	a := callable("m.js", "a", 1)
	rec := callable("m.js", "rec", 10)

	g := Build([]*index.Definition{a, rec}, []resolve.Resolution{
		callRes("m.js", 11, rec.Symbol, rec.Symbol),
	})

	require.Len(t, g.Edges, 1)
	assert.Equal(t, []index.SymbolID{a.Symbol}, g.EntryPoints(),
		"a self-recursive callable has an incoming edge")
}

func TestBuild_EdgeOrderIsDeterministic(t *testing.T) {
	t.Parallel()
	a := callable("a.js", "a", 1)
	b := callable("b.js", "b", 1)
	c := callable("c.js", "c", 1)

	resolutions := []resolve.Resolution{
		callRes("b.js", 2, b.Symbol, c.Symbol),
		callRes("a.js", 2, a.Symbol, c.Symbol),
		callRes("a.js", 1, a.Symbol, b.Symbol),
	}

	g := Build([]*index.Definition{a, b, c}, resolutions)
	require.Len(t, g.Edges, 3)
	assert.Equal(t, "a.js", g.Edges[0].Site.File)
	assert.Equal(t, 1, g.Edges[0].Site.StartRow)
	assert.Equal(t, "a.js", g.Edges[1].Site.File)
	assert.Equal(t, "b.js", g.Edges[2].Site.File)

	names := make([]string, 0, len(g.NodeList()))
	for _, n := range g.NodeList() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
