// Package depgraph maintains the bidirectional file-level import graph:
// which files import from which, queryable in both directions, with
// transitive traversal and cycle detection. Edges are keyed by file path;
// traversal carries explicit visited sets so import cycles — legal in the
// analyzed languages — terminate instead of hanging.
package depgraph

import "sort"

// Graph is the bidirectional import graph. Not safe for concurrent use;
// the coordinator owns it exclusively.
type Graph struct {
	// dependencies[a] = set of files a imports from.
	dependencies map[string]map[string]bool
	// dependents[b] = set of files importing from b (mirror of the above).
	dependents map[string]map[string]bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		dependencies: make(map[string]map[string]bool),
		dependents:   make(map[string]map[string]bool),
	}
}

// UpdateFile atomically replaces file's outgoing edges with deps. Previous
// targets have file removed from their dependents sets (empty sets are
// pruned); the new targets gain it.
func (g *Graph) UpdateFile(file string, deps []string) {
	for old := range g.dependencies[file] {
		delete(g.dependents[old], file)
		if len(g.dependents[old]) == 0 {
			delete(g.dependents, old)
		}
	}

	next := make(map[string]bool, len(deps))
	for _, d := range deps {
		if d == "" || d == file {
			continue // self-edges carry no information
		}
		next[d] = true
		if g.dependents[d] == nil {
			g.dependents[d] = make(map[string]bool)
		}
		g.dependents[d][file] = true
	}
	if len(next) == 0 {
		delete(g.dependencies, file)
		return
	}
	g.dependencies[file] = next
}

// RemoveFile deletes both directions of every edge touching file.
func (g *Graph) RemoveFile(file string) {
	for dep := range g.dependencies[file] {
		delete(g.dependents[dep], file)
		if len(g.dependents[dep]) == 0 {
			delete(g.dependents, dep)
		}
	}
	delete(g.dependencies, file)

	for dependent := range g.dependents[file] {
		delete(g.dependencies[dependent], file)
		if len(g.dependencies[dependent]) == 0 {
			delete(g.dependencies, dependent)
		}
	}
	delete(g.dependents, file)
}

// Dependencies returns the files that file directly imports from, sorted.
func (g *Graph) Dependencies(file string) []string {
	return sortedKeys(g.dependencies[file])
}

// Dependents returns the files that directly import from file, sorted.
func (g *Graph) Dependents(file string) []string {
	return sortedKeys(g.dependents[file])
}

// TransitiveDependencies returns every file reachable from file along
// import edges, excluding file itself. Cycle-safe.
func (g *Graph) TransitiveDependencies(file string) []string {
	return g.traverse(file, g.dependencies)
}

// TransitiveDependents returns every file from which file is reachable
// along import edges, excluding file itself. Cycle-safe.
func (g *Graph) TransitiveDependents(file string) []string {
	return g.traverse(file, g.dependents)
}

// traverse is an iterative depth-first walk over adj with a visited set.
func (g *Graph) traverse(start string, adj map[string]map[string]bool) []string {
	visited := map[string]bool{start: true}
	var out []string
	stack := sortedKeys(adj[start])

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		out = append(out, cur)
		stack = append(stack, sortedKeys(adj[cur])...)
	}
	sort.Strings(out)
	return out
}

// DetectCycle returns a concrete import cycle through file, as a path that
// starts and ends at file, or nil when file is not on a cycle. Cycles are
// diagnostic only — they are legal and never block resolution.
func (g *Graph) DetectCycle(file string) []string {
	if len(g.dependencies[file]) == 0 {
		return nil
	}

	// DFS from file tracking the current path; the first edge back to file
	// closes a cycle.
	var path []string
	onPath := make(map[string]bool)
	visited := make(map[string]bool)

	var dfs func(cur string) []string
	dfs = func(cur string) []string {
		path = append(path, cur)
		onPath[cur] = true
		defer func() {
			path = path[:len(path)-1]
			delete(onPath, cur)
		}()

		for _, next := range sortedKeys(g.dependencies[cur]) {
			if next == file {
				cycle := append([]string(nil), path...)
				return append(cycle, file)
			}
			if onPath[next] || visited[next] {
				continue
			}
			if cycle := dfs(next); cycle != nil {
				return cycle
			}
		}
		visited[cur] = true
		return nil
	}
	return dfs(file)
}

// EdgeCount returns the number of import edges in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.dependencies {
		n += len(deps)
	}
	return n
}

// Files returns every file that appears in the graph on either side.
func (g *Graph) Files() []string {
	seen := make(map[string]bool, len(g.dependencies)+len(g.dependents))
	for f := range g.dependencies {
		seen[f] = true
	}
	for f := range g.dependents {
		seen[f] = true
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
