package index

import "fmt"

// ScopeKind classifies a scope node.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeClass    ScopeKind = "class"
	ScopeFunction ScopeKind = "function"
	ScopeBlock    ScopeKind = "block"
)

// ScopeID identifies a scope within its file. IDs are ordinals assigned in
// tree construction order, prefixed with the file path so they stay unique
// project-wide. Index-based references keep the tree cycle-representable
// without pointer ownership.
type ScopeID string

// MakeScopeID builds the identifier for the n-th scope of a file.
func MakeScopeID(file string, ordinal int) ScopeID {
	return ScopeID(fmt.Sprintf("%s#%d", file, ordinal))
}

// Scope is one node of a file's scope tree. Child scopes are owned by the
// tree; a scope never outlives its file's entry in the Scope registry.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Range    Range
	Parent   ScopeID // "" for the file root
	Children []ScopeID
	Owner    SymbolID // the defining symbol (function, class) owning this scope, if any

	// Bindings are the names defined directly in this scope, in declaration
	// order. bindingIdx accelerates by-name lookup.
	Bindings   []Binding
	bindingIdx map[string][]int
}

// Binding associates a name declared in a scope with its defining symbol.
type Binding struct {
	Name   string
	Kind   DefKind
	Symbol SymbolID
	Range  Range
}

// AddBinding appends a binding to the scope.
func (s *Scope) AddBinding(b Binding) {
	if s.bindingIdx == nil {
		s.bindingIdx = make(map[string][]int)
	}
	s.bindingIdx[b.Name] = append(s.bindingIdx[b.Name], len(s.Bindings))
	s.Bindings = append(s.Bindings, b)
}

// BindingsFor returns the bindings declared in this scope under name, in
// declaration order.
func (s *Scope) BindingsFor(name string) []Binding {
	idxs := s.bindingIdx[name]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Binding, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, s.Bindings[i])
	}
	return out
}

// ScopeTree is the per-file scope hierarchy. Every scope except Root has
// exactly one parent; sibling spans do not overlap and nest within the
// parent's span.
type ScopeTree struct {
	File   string
	Root   ScopeID
	Scopes map[ScopeID]*Scope
}

// NewScopeTree creates a tree with a module-kind root covering fileRange.
func NewScopeTree(file string, fileRange Range) *ScopeTree {
	root := &Scope{
		ID:    MakeScopeID(file, 0),
		Kind:  ScopeModule,
		Range: fileRange,
	}
	return &ScopeTree{
		File:   file,
		Root:   root.ID,
		Scopes: map[ScopeID]*Scope{root.ID: root},
	}
}

// AddScope creates a child scope under parent and returns it.
func (t *ScopeTree) AddScope(kind ScopeKind, r Range, parent ScopeID) *Scope {
	s := &Scope{
		ID:     MakeScopeID(t.File, len(t.Scopes)),
		Kind:   kind,
		Range:  r,
		Parent: parent,
	}
	t.Scopes[s.ID] = s
	if p, ok := t.Scopes[parent]; ok {
		p.Children = append(p.Children, s.ID)
	}
	return s
}

// Scope returns the scope with the given ID, or nil.
func (t *ScopeTree) Scope(id ScopeID) *Scope {
	return t.Scopes[id]
}

// ScopeAt returns the innermost scope whose span contains the point.
// Falls back to the root when no nested scope matches.
func (t *ScopeTree) ScopeAt(p Point) *Scope {
	current := t.Scopes[t.Root]
	if current == nil {
		return nil
	}
	for {
		var next *Scope
		for _, childID := range current.Children {
			child := t.Scopes[childID]
			if child != nil && child.Range.Contains(p) {
				next = child
				break
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}

// Validate checks the structural invariants: one parent per non-root scope,
// child spans nested within the parent, no parent cycles. Violations are
// reported, not fatal — callers degrade rather than crash.
func (t *ScopeTree) Validate() error {
	for id, s := range t.Scopes {
		if id == t.Root {
			if s.Parent != "" {
				return fmt.Errorf("root scope %s has parent %s", id, s.Parent)
			}
			continue
		}
		parent, ok := t.Scopes[s.Parent]
		if !ok {
			return fmt.Errorf("scope %s has unknown parent %s", id, s.Parent)
		}
		if !parent.Range.ContainsRange(s.Range) {
			return fmt.Errorf("scope %s span escapes parent %s", id, s.Parent)
		}
	}
	// Walk parent chains with a visited set to reject cycles.
	for id := range t.Scopes {
		visited := map[ScopeID]bool{}
		for cur := id; cur != ""; {
			if visited[cur] {
				return fmt.Errorf("scope parent cycle through %s", cur)
			}
			visited[cur] = true
			s, ok := t.Scopes[cur]
			if !ok {
				break
			}
			cur = s.Parent
		}
	}
	return nil
}
