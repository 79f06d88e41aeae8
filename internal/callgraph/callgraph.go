// Package callgraph derives a directed graph of callables from resolved
// call references. The graph is a cache over the registries — never the
// source of truth — and is always rebuilt whole rather than patched, so it
// can never drift from the resolution state it was derived from.
package callgraph

import (
	"sort"

	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/resolve"
)

// Node is one callable definition in the graph.
type Node struct {
	Symbol index.SymbolID
	Name   string
	Kind   index.DefKind
	File   string
	Range  index.Range
}

// Edge is one resolved call from caller to callee. A call at module level
// has no enclosing callable and produces no edge.
type Edge struct {
	Caller index.SymbolID
	Callee index.SymbolID
	Kind   index.RefKind
	Site   index.Location
}

// Graph is the derived call graph with adjacency indexes.
type Graph struct {
	Nodes map[index.SymbolID]*Node
	Edges []Edge

	outgoing map[index.SymbolID][]int
	incoming map[index.SymbolID][]int
}

// Build constructs the graph from the current callable definitions and the
// resolved references. One node per callable definition; one edge per
// resolved call/method-call/constructor-call whose site sits inside a
// callable. Self and mutual recursion produce ordinary cycles.
func Build(defs []*index.Definition, resolutions []resolve.Resolution) *Graph {
	g := &Graph{
		Nodes:    make(map[index.SymbolID]*Node),
		outgoing: make(map[index.SymbolID][]int),
		incoming: make(map[index.SymbolID][]int),
	}

	for _, d := range defs {
		if !d.Kind.Callable() {
			continue
		}
		g.Nodes[d.Symbol] = &Node{
			Symbol: d.Symbol,
			Name:   d.Name,
			Kind:   d.Kind,
			File:   d.File,
			Range:  d.Range,
		}
	}

	for _, res := range resolutions {
		if !res.Ref.Kind.CallKind() {
			continue
		}
		if res.Caller == "" {
			continue // module-level call site
		}
		if _, ok := g.Nodes[res.Caller]; !ok {
			continue
		}
		if _, ok := g.Nodes[res.Symbol]; !ok {
			continue // callee is a builtin or a non-callable
		}
		g.Edges = append(g.Edges, Edge{
			Caller: res.Caller,
			Callee: res.Symbol,
			Kind:   res.Ref.Kind,
			Site:   res.Ref.Location(),
		})
	}

	// Deterministic edge order regardless of map iteration upstream.
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Site.File != b.Site.File {
			return a.Site.File < b.Site.File
		}
		if a.Site.StartRow != b.Site.StartRow {
			return a.Site.StartRow < b.Site.StartRow
		}
		return a.Site.StartCol < b.Site.StartCol
	})
	for i, e := range g.Edges {
		g.outgoing[e.Caller] = append(g.outgoing[e.Caller], i)
		g.incoming[e.Callee] = append(g.incoming[e.Callee], i)
	}
	return g
}

// Callees returns the edges leaving the given callable.
func (g *Graph) Callees(sym index.SymbolID) []Edge {
	return g.edges(g.outgoing[sym])
}

// Callers returns the edges arriving at the given callable.
func (g *Graph) Callers(sym index.SymbolID) []Edge {
	return g.edges(g.incoming[sym])
}

func (g *Graph) edges(idxs []int) []Edge {
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Edge, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, g.Edges[i])
	}
	return out
}

// EntryPoints returns the callables with no incoming edges, sorted by
// symbol ID. A callable whose only callers are itself still counts as
// called.
func (g *Graph) EntryPoints() []index.SymbolID {
	var out []index.SymbolID
	for sym := range g.Nodes {
		if len(g.incoming[sym]) == 0 {
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NodeList returns the nodes sorted by symbol ID for deterministic output.
func (g *Graph) NodeList() []*Node {
	ids := make([]index.SymbolID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Nodes[id])
	}
	return out
}
