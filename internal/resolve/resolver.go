// Package resolve turns references into symbols. It combines the scope-chain
// resolver, the export tables (chasing imports and re-export chains), and
// the type registry (receiver-typed member lookup for method and constructor
// calls) into a single per-reference algorithm, and caches the results
// per file keyed by reference location.
//
// A reference that cannot be resolved is a normal outcome — dynamic code,
// missing type info, unmodeled build configuration — and surfaces as an
// absent cache entry, never an error.
package resolve

import (
	"github.com/CRJFisher/ariadne/internal/depgraph"
	"github.com/CRJFisher/ariadne/internal/index"
	"github.com/CRJFisher/ariadne/internal/lang"
	"github.com/CRJFisher/ariadne/internal/registry"
	"github.com/CRJFisher/ariadne/internal/scope"
)

// Resolution is one resolved reference: the symbol the reference denotes,
// the callable enclosing the reference site (zero for module-level code),
// and diagnostics from the scope walk.
type Resolution struct {
	Ref        index.Reference
	Symbol     index.SymbolID
	Caller     index.SymbolID
	Visibility scope.Visibility
}

// Resolver resolves the references of one project snapshot. All fields are
// owned by the coordinator; the resolver itself is stateless between calls.
type Resolver struct {
	Defs    *registry.Definitions
	Scopes  *registry.Scopes
	Exports *registry.Exports
	Types   *registry.Types
	Graph   *depgraph.Graph
	TypeCtx index.TypeContext

	// LanguageOf maps a file to its language tables.
	LanguageOf func(file string) (lang.Language, bool)
	// ResolveModule maps an import specifier, as written in fromFile, to a
	// project file path. Unresolvable specifiers (external packages,
	// unmodeled aliases) return false and degrade to unresolved.
	ResolveModule func(fromFile, source string) (string, bool)
}

// ResolveFile resolves every reference in the file's index and returns the
// per-location results. References that fail to resolve are simply absent.
func (r *Resolver) ResolveFile(file string, refs []index.Reference) map[index.Location]Resolution {
	out := make(map[index.Location]Resolution, len(refs))
	for i := range refs {
		ref := refs[i]
		if res, ok := r.resolveRef(file, ref); ok {
			out[ref.Location()] = res
		}
	}
	return out
}

// resolveRef resolves a single reference.
func (r *Resolver) resolveRef(file string, ref index.Reference) (Resolution, bool) {
	tree := r.Scopes.Tree(file)
	if tree == nil {
		return Resolution{}, false
	}

	var (
		sym index.SymbolID
		vis scope.Visibility
		ok  bool
	)
	switch ref.Kind {
	case index.RefMethodCall, index.RefMemberAccess:
		sym, ok = r.resolveMember(file, tree, ref)
		vis = scope.VisibilityClosure
	case index.RefConstructorCall:
		sym, vis, ok = r.resolveConstructor(file, tree, ref)
	case index.RefCall:
		sym, vis, ok = r.resolveName(file, tree, ref.Scope, ref.Name, ref.Range.Start)
		// Python spells construction as a plain call: a call that resolves
		// to a class maps to its constructor.
		if ok && r.Types.Get(sym) != nil {
			if ctor, found := r.Types.LookupMember(sym, "__init__", r.ancestorResolver()); found {
				sym = ctor
			} else if ctor, found := r.Types.LookupMember(sym, "constructor", r.ancestorResolver()); found {
				sym = ctor
			}
		}
	default:
		sym, vis, ok = r.resolveName(file, tree, ref.Scope, ref.Name, ref.Range.Start)
	}
	if !ok {
		return Resolution{}, false
	}

	return Resolution{
		Ref:        ref,
		Symbol:     sym,
		Caller:     enclosingCallable(tree, ref.Scope),
		Visibility: vis,
	}, true
}

// resolveName runs the scope chain walk and, when the hit is an import
// binding, chases it through the export tables to the defining symbol.
func (r *Resolver) resolveName(file string, tree *index.ScopeTree, scopeID index.ScopeID, name string, at index.Point) (index.SymbolID, scope.Visibility, bool) {
	l, ok := r.LanguageOf(file)
	if !ok {
		return "", "", false
	}
	res, ok := scope.New(l).Resolve(tree, scopeID, name, at)
	if !ok {
		return "", "", false
	}

	def := r.Defs.Get(res.Symbol)
	if def != nil && def.Kind == index.DefImport && def.ImportName != "*" {
		target, ok := r.chaseImport(def)
		if !ok {
			return "", "", false
		}
		return target, res.Visibility, true
	}
	return res.Symbol, res.Visibility, true
}

// chaseImport follows an import definition to the symbol it names in the
// source module, walking re-export chains with a visited set. Import cycles
// among modules are legal; the visited set makes the walk terminate.
func (r *Resolver) chaseImport(def *index.Definition) (index.SymbolID, bool) {
	fromFile := def.File
	source := def.ImportSource
	name := def.ImportName
	if name == "" {
		name = def.Name
	}

	type hop struct{ file, name string }
	visited := make(map[hop]bool)

	for {
		target, ok := r.ResolveModule(fromFile, source)
		if !ok {
			return "", false
		}
		h := hop{file: target, name: name}
		if visited[h] {
			return "", false
		}
		visited[h] = true

		exp, ok := r.Exports.Lookup(target, name)
		if !ok {
			// Fall back to exported definitions the extractor did not list
			// in the export table (e.g. Python module-level names).
			for _, d := range r.Defs.ByFileName(target, name) {
				if d.Exported {
					return d.Symbol, true
				}
			}
			return "", false
		}
		if exp.ReExportSource != "" {
			fromFile = target
			source = exp.ReExportSource
			if exp.ReExportName != "" {
				name = exp.ReExportName
			}
			continue
		}
		if exp.Symbol == "" {
			return "", false
		}
		// An export of an imported name: keep chasing.
		if d := r.Defs.Get(exp.Symbol); d != nil && d.Kind == index.DefImport {
			fromFile = d.File
			source = d.ImportSource
			name = d.ImportName
			if name == "" {
				name = d.Name
			}
			continue
		}
		return exp.Symbol, true
	}
}

// resolveMember resolves obj.method() style references: the receiver is
// resolved to a value symbol, its static type is looked up (declared
// binding first, then the external TypeContext), and the member is searched
// on that type's ancestor chain. No static type means no resolution.
func (r *Resolver) resolveMember(file string, tree *index.ScopeTree, ref index.Reference) (index.SymbolID, bool) {
	if ref.Receiver == "" {
		return "", false
	}

	recvSym, _, ok := r.resolveName(file, tree, ref.Scope, ref.Receiver, ref.Range.Start)
	if !ok {
		return "", false
	}

	// Receiver may be a namespace import ("import * as util" or a Python
	// "import mod"): the member is then an export of the target module.
	if d := r.Defs.Get(recvSym); d != nil && d.Kind == index.DefImport && d.ImportName == "*" {
		member := index.Definition{
			Name: ref.Name, Kind: index.DefImport, File: d.File,
			ImportSource: d.ImportSource, ImportName: ref.Name,
		}
		return r.chaseImport(&member)
	}

	// Receiver may itself be a type (static member access: Foo.bar()).
	if ti := r.Types.Get(recvSym); ti != nil {
		return r.Types.LookupMember(recvSym, ref.Name, r.ancestorResolver())
	}

	typeName, ok := r.typeOf(recvSym)
	if !ok {
		return "", false
	}
	typeSym, ok := r.lookupTypeByName(file, tree, typeName, ref.Range.Start)
	if !ok {
		return "", false
	}
	return r.Types.LookupMember(typeSym, ref.Name, r.ancestorResolver())
}

// resolveConstructor resolves `new Foo()` / `Foo()` constructor calls: the
// class name resolves through the normal chain, then maps to the class's
// constructor member when it declares one, else to the class itself.
func (r *Resolver) resolveConstructor(file string, tree *index.ScopeTree, ref index.Reference) (index.SymbolID, scope.Visibility, bool) {
	sym, vis, ok := r.resolveName(file, tree, ref.Scope, ref.Name, ref.Range.Start)
	if !ok {
		return "", "", false
	}
	if ctor, ok := r.Types.LookupMember(sym, "constructor", r.ancestorResolver()); ok {
		return ctor, vis, true
	}
	if ctor, ok := r.Types.LookupMember(sym, "__init__", r.ancestorResolver()); ok {
		return ctor, vis, true
	}
	return sym, vis, true
}

// typeOf returns the receiver's static type name: the registry's declared
// binding first, then the external TypeContext.
func (r *Resolver) typeOf(sym index.SymbolID) (string, bool) {
	if name, ok := r.Types.BindingType(sym); ok {
		return name, true
	}
	if r.TypeCtx != nil {
		return r.TypeCtx.TypeOf(sym)
	}
	return "", false
}

// lookupTypeByName finds the type symbol a name denotes as seen from the
// given file: same-file types first, then the scope chain (which chases
// imports).
func (r *Resolver) lookupTypeByName(file string, tree *index.ScopeTree, name string, at index.Point) (index.SymbolID, bool) {
	if ti, ok := r.Types.ByName(file, name); ok {
		return ti.Symbol, true
	}
	sym, _, ok := r.resolveName(file, tree, tree.Root, name, at)
	if !ok {
		return "", false
	}
	if r.Types.Get(sym) == nil {
		return "", false
	}
	return sym, true
}

// ancestorResolver adapts resolveName for the type registry's cross-file
// ancestor lookup.
func (r *Resolver) ancestorResolver() func(fromFile, name string) (index.SymbolID, bool) {
	return func(fromFile, name string) (index.SymbolID, bool) {
		tree := r.Scopes.Tree(fromFile)
		if tree == nil {
			return "", false
		}
		sym, _, ok := r.resolveName(fromFile, tree, tree.Root, name, index.Point{Row: 1 << 30})
		if !ok {
			return "", false
		}
		if r.Types.Get(sym) == nil {
			return "", false
		}
		return sym, true
	}
}

// enclosingCallable walks from a reference's scope toward the root and
// returns the owner symbol of the nearest function scope. Module-level
// references have no enclosing callable.
func enclosingCallable(tree *index.ScopeTree, scopeID index.ScopeID) index.SymbolID {
	visited := make(map[index.ScopeID]bool)
	for cur := scopeID; cur != "" && !visited[cur]; {
		visited[cur] = true
		s := tree.Scope(cur)
		if s == nil {
			break
		}
		if s.Kind == index.ScopeFunction && s.Owner != "" {
			return s.Owner
		}
		cur = s.Parent
	}
	return ""
}
