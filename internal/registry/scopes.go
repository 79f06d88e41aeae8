package registry

import "github.com/CRJFisher/ariadne/internal/index"

// Scopes owns the per-file scope trees. A tree is replaced atomically with
// its file; scope IDs embed the file path, so a global by-ID lookup stays
// unambiguous.
type Scopes struct {
	trees map[string]*index.ScopeTree
}

// NewScopes returns an empty scope registry.
func NewScopes() *Scopes {
	return &Scopes{trees: make(map[string]*index.ScopeTree)}
}

// UpdateFile replaces file's scope tree. A tree that fails structural
// validation is dropped rather than installed: the file's references then
// resolve to nothing, instead of risking a parent-chain walk that never
// terminates.
func (r *Scopes) UpdateFile(file string, tree *index.ScopeTree) {
	if tree == nil || tree.Validate() != nil {
		delete(r.trees, file)
		return
	}
	r.trees[file] = tree
}

// RemoveFile deletes file's scope tree.
func (r *Scopes) RemoveFile(file string) {
	delete(r.trees, file)
}

// Tree returns file's scope tree, or nil.
func (r *Scopes) Tree(file string) *index.ScopeTree {
	return r.trees[file]
}

// Scope resolves a scope ID to its node, or nil. The owning file is found
// by scanning trees only when the caller has no file context; the common
// path goes through Tree.
func (r *Scopes) Scope(file string, id index.ScopeID) *index.Scope {
	t := r.trees[file]
	if t == nil {
		return nil
	}
	return t.Scope(id)
}

// Count returns the number of files with scope trees.
func (r *Scopes) Count() int { return len(r.trees) }
