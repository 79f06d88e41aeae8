// Package scope implements name resolution over a file's scope chain.
//
// The resolver is one generic algorithm parameterized by the per-language
// hoisting and builtin tables in internal/lang: starting from the scope a
// reference occurs in, it searches local bindings, then hoisted bindings
// (including descendant scopes for languages that lift declarations to the
// enclosing function), then walks to the parent, and finally falls back to
// the language's builtin table at the module root.
package scope

import (
	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/lang"
)

// Visibility classifies where a resolved binding came from, relative to the
// scope the lookup started in. It is diagnostic, not load-bearing.
type Visibility string

const (
	VisibilityLocal   Visibility = "local"   // same scope
	VisibilityClosure Visibility = "closure" // an enclosing non-root scope
	VisibilityGlobal  Visibility = "global"  // the module root scope
	VisibilityBuiltin Visibility = "builtin" // per-language builtin table
)

// Result is a successful resolution.
type Result struct {
	Symbol     index.SymbolID
	Visibility Visibility
}

// Resolver resolves names against scope trees using one language's tables.
type Resolver struct {
	Language lang.Language
}

// New returns a Resolver for the given language.
func New(l lang.Language) *Resolver {
	return &Resolver{Language: l}
}

// Resolve finds the defining symbol for name as seen from the scope with
// the given ID, for a reference at position `at`. Non-hoisted bindings are
// visible only after their declaration site; hoisted bindings are visible
// throughout their scope of visibility. Returns (zero, false) when the name
// cannot be found — an expected outcome, never an error.
func (r *Resolver) Resolve(tree *index.ScopeTree, scopeID index.ScopeID, name string, at index.Point) (Result, bool) {
	if tree == nil {
		return Result{}, false
	}

	// visited guards against malformed parent chains. A cycle here is a
	// structural anomaly: stop walking and report not-found.
	visited := make(map[index.ScopeID]bool)
	depth := 0

	for current := scopeID; current != ""; depth++ {
		if visited[current] {
			break
		}
		visited[current] = true

		s := tree.Scope(current)
		if s == nil {
			break
		}

		if b, ok := r.lookupInScope(s, name, at, depth == 0); ok {
			return Result{Symbol: b.Symbol, Visibility: classify(depth, current == tree.Root)}, true
		}

		// Function-scope hoisting makes bindings declared in descendant
		// blocks visible here. Only relevant at function and module scopes;
		// block scopes defer to their enclosing function.
		if lang.HoistsThroughFunctions(r.Language) && (s.Kind == index.ScopeFunction || s.Kind == index.ScopeModule) {
			if sym, ok := r.lookupHoistedInDescendants(tree, s, name, visited); ok {
				return Result{Symbol: sym, Visibility: classify(depth, current == tree.Root)}, true
			}
		}

		current = s.Parent
	}

	// Builtin fallback, consulted only once the scope chain is exhausted.
	if sym, ok := lang.Builtin(r.Language, name); ok {
		return Result{Symbol: sym, Visibility: VisibilityBuiltin}, true
	}
	return Result{}, false
}

// ResolveAt is a convenience that locates the innermost scope containing
// `at` and resolves from there.
func (r *Resolver) ResolveAt(tree *index.ScopeTree, name string, at index.Point) (Result, bool) {
	if tree == nil {
		return Result{}, false
	}
	s := tree.ScopeAt(at)
	if s == nil {
		return Result{}, false
	}
	return r.Resolve(tree, s.ID, name, at)
}

// lookupInScope searches one scope's own bindings. Hoisted kinds match
// regardless of position; non-hoisted kinds match only when declared at or
// before the reference, and only in the reference's own scope — once the
// walk has moved to an enclosing scope the whole scope body is in range.
func (r *Resolver) lookupInScope(s *index.Scope, name string, at index.Point, sameScope bool) (index.Binding, bool) {
	for _, b := range s.BindingsFor(name) {
		rule := lang.Rule(r.Language, b.Kind)
		if rule.Hoisted {
			return b, true
		}
		if !sameScope || !at.Before(b.Range.Start) {
			return b, true
		}
	}
	return index.Binding{}, false
}

// lookupHoistedInDescendants searches the subtree under s for bindings whose
// kind hoists to the enclosing function. Nested function and class scopes
// are hoisting boundaries: their contents lift to themselves, not to s.
func (r *Resolver) lookupHoistedInDescendants(tree *index.ScopeTree, s *index.Scope, name string, visited map[index.ScopeID]bool) (index.SymbolID, bool) {
	stack := append([]index.ScopeID(nil), s.Children...)
	seen := make(map[index.ScopeID]bool)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] || visited[id] {
			continue
		}
		seen[id] = true

		child := tree.Scope(id)
		if child == nil {
			continue
		}
		if child.Kind == index.ScopeFunction || child.Kind == index.ScopeClass {
			continue
		}
		for _, b := range child.BindingsFor(name) {
			rule := lang.Rule(r.Language, b.Kind)
			if rule.Hoisted && rule.Visibility == lang.VisEnclosingFunction {
				return b.Symbol, true
			}
		}
		stack = append(stack, child.Children...)
	}
	return "", false
}

func classify(depth int, atRoot bool) Visibility {
	switch {
	case atRoot:
		return VisibilityGlobal
	case depth == 0:
		return VisibilityLocal
	default:
		return VisibilityClosure
	}
}
