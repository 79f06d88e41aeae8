package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne/internal/index"
)

// pythonWalker indexes Python files. Python has no block scoping: loop and
// conditional bodies share the enclosing function or module scope, so only
// module, class, and function scopes appear in the tree.
type pythonWalker struct {
	path string
	src  []byte
	out  *index.FileIndex
	tree *index.ScopeTree

	// defs holds stable pointers while walking; appends to a value slice
	// would invalidate definitions still being enriched.
	defs []*index.Definition
}

func newPythonWalker(path string, src []byte) *pythonWalker {
	return &pythonWalker{path: path, src: src}
}

func (w *pythonWalker) walkFile(root *sitter.Node) *index.FileIndex {
	w.tree = index.NewScopeTree(w.path, nodeRange(root))
	w.out = &index.FileIndex{
		Path:      w.path,
		Language:  "python",
		ScopeTree: w.tree,
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		w.walk(root.NamedChild(i), w.tree.Root)
	}
	w.out.Definitions = make([]index.Definition, len(w.defs))
	for i, d := range w.defs {
		w.out.Definitions[i] = *d
	}
	return w.out
}

func (w *pythonWalker) walk(n *sitter.Node, scopeID index.ScopeID) {
	switch n.Type() {
	case "function_definition":
		w.walkFunction(n, scopeID, nil, "")
	case "class_definition":
		w.walkClass(n, scopeID)
	case "decorated_definition":
		w.walkDecorated(n, scopeID)
	case "import_statement":
		w.walkImport(n, scopeID)
	case "import_from_statement":
		w.walkImportFrom(n, scopeID)
	case "assignment":
		w.walkAssignment(n, scopeID)
	case "call":
		w.walkCall(n, scopeID)
	case "attribute":
		w.walkAttribute(n, scopeID)
	case "identifier":
		w.addRef(index.Reference{
			Name:  nodeText(n, w.src),
			File:  w.path,
			Range: nodeRange(n),
			Scope: scopeID,
			Kind:  index.RefIdent,
		})
	default:
		w.walkChildren(n, scopeID)
	}
}

func (w *pythonWalker) walkChildren(n *sitter.Node, scopeID index.ScopeID) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), scopeID)
	}
}

// walkFunction indexes a def. When ti is non-nil the def is a method of the
// surrounding class: __init__ becomes the constructor, and a leading
// self/cls parameter is type-bound to the class so attribute calls through
// it resolve.
func (w *pythonWalker) walkFunction(n *sitter.Node, scopeID index.ScopeID, ti *index.TypeInfo, className string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.src)

	kind := index.DefFunction
	if ti != nil {
		kind = index.DefMethod
		if name == "__init__" {
			kind = index.DefConstructor
		}
	}

	def := w.addDef(index.Definition{
		Name:     name,
		Kind:     kind,
		Range:    nodeRange(n),
		Scope:    scopeID,
		Exported: ti == nil && w.isModuleScope(scopeID) && !strings.HasPrefix(name, "_"),
	})
	w.bind(scopeID, name, kind, def.Symbol, nodeRange(nameNode))
	if def.Exported {
		w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
	}
	if ti != nil {
		ti.Members[name] = def.Symbol
	}

	if rt := n.ChildByFieldName("return_type"); rt != nil {
		def.ReturnType = nodeText(rt, w.src)
	}

	fn := w.tree.AddScope(index.ScopeFunction, nodeRange(n), scopeID)
	fn.Owner = def.Symbol
	w.walkParams(n.ChildByFieldName("parameters"), fn.ID, def, className)
	if body := n.ChildByFieldName("body"); body != nil {
		w.walkChildren(body, fn.ID)
	}
}

func (w *pythonWalker) walkParams(params *sitter.Node, scopeID index.ScopeID, def *index.Definition, className string) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var nameNode *sitter.Node
		var typeExpr, defaultExpr string
		switch p.Type() {
		case "identifier":
			nameNode = p
		case "typed_parameter":
			for j := 0; j < int(p.NamedChildCount()); j++ {
				if c := p.NamedChild(j); c.Type() == "identifier" {
					nameNode = c
					break
				}
			}
			if tn := p.ChildByFieldName("type"); tn != nil {
				typeExpr = nodeText(tn, w.src)
			}
		case "default_parameter", "typed_default_parameter":
			if nn := p.ChildByFieldName("name"); nn != nil && nn.Type() == "identifier" {
				nameNode = nn
			}
			if tn := p.ChildByFieldName("type"); tn != nil {
				typeExpr = nodeText(tn, w.src)
			}
			if vn := p.ChildByFieldName("value"); vn != nil {
				defaultExpr = nodeText(vn, w.src)
				w.walk(vn, scopeID)
			}
		}
		if nameNode == nil {
			continue // *args / **kwargs and patterns are not modeled
		}
		name := nodeText(nameNode, w.src)
		pd := w.addDef(index.Definition{
			Name:  name,
			Kind:  index.DefParameter,
			Range: nodeRange(nameNode),
			Scope: scopeID,
		})
		w.bind(scopeID, name, index.DefParameter, pd.Symbol, nodeRange(nameNode))
		def.Params = append(def.Params, index.Param{Name: name, TypeExpr: typeExpr, Default: defaultExpr})

		switch {
		case typeExpr != "":
			w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: pd.Symbol, TypeName: typeExpr})
		case i == 0 && className != "" && (name == "self" || name == "cls"):
			w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: pd.Symbol, TypeName: className})
		}
	}
}

func (w *pythonWalker) walkClass(n *sitter.Node, scopeID index.ScopeID) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.src)
	def := w.addDef(index.Definition{
		Name:     name,
		Kind:     index.DefClass,
		Range:    nodeRange(n),
		Scope:    scopeID,
		Exported: w.isModuleScope(scopeID) && !strings.HasPrefix(name, "_"),
	})
	w.bind(scopeID, name, index.DefClass, def.Symbol, nodeRange(nameNode))
	if def.Exported {
		w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
	}

	ti := index.TypeInfo{
		Symbol:  def.Symbol,
		Name:    name,
		File:    w.path,
		Members: make(map[string]index.SymbolID),
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			if s := supers.NamedChild(i); s.Type() == "identifier" {
				ti.Extends = append(ti.Extends, nodeText(s, w.src))
			}
		}
	}

	classScope := w.tree.AddScope(index.ScopeClass, nodeRange(n), scopeID)
	classScope.Owner = def.Symbol

	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			switch c.Type() {
			case "function_definition":
				w.walkFunction(c, classScope.ID, &ti, name)
			case "decorated_definition":
				if d := c.ChildByFieldName("definition"); d != nil && d.Type() == "function_definition" {
					w.walkDecorators(c, classScope.ID)
					w.walkFunction(d, classScope.ID, &ti, name)
				}
			default:
				w.walk(c, classScope.ID)
			}
		}
	}

	w.out.Types = append(w.out.Types, ti)
	def.Members = memberNames(&ti)
}

func (w *pythonWalker) walkDecorated(n *sitter.Node, scopeID index.ScopeID) {
	w.walkDecorators(n, scopeID)
	if d := n.ChildByFieldName("definition"); d != nil {
		w.walk(d, scopeID)
	}
}

// walkDecorators records the decorator expressions as references.
func (w *pythonWalker) walkDecorators(n *sitter.Node, scopeID index.ScopeID) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "decorator" {
			w.walkChildren(c, scopeID)
		}
	}
}

// walkImport handles `import mod` and `import mod as alias`: the binding is
// the whole module, recorded with the namespace-import marker.
func (w *pythonWalker) walkImport(n *sitter.Node, scopeID index.ScopeID) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "dotted_name":
			source := nodeText(c, w.src)
			local := source
			if dot := strings.IndexByte(local, '.'); dot >= 0 {
				local = local[:dot]
			}
			w.addImportDef(local, "*", source, nodeRange(c), scopeID)
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			alias := c.ChildByFieldName("alias")
			if nameNode == nil || alias == nil {
				continue
			}
			w.addImportDef(nodeText(alias, w.src), "*", nodeText(nameNode, w.src), nodeRange(alias), scopeID)
		}
	}
}

// walkImportFrom handles `from mod import a, b as c` and relative forms.
func (w *pythonWalker) walkImportFrom(n *sitter.Node, scopeID index.ScopeID) {
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	source := nodeText(moduleNode, w.src)

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.StartByte() == moduleNode.StartByte() && c.EndByte() == moduleNode.EndByte() {
			continue
		}
		switch c.Type() {
		case "dotted_name", "identifier":
			imported := nodeText(c, w.src)
			w.addImportDef(imported, imported, source, nodeRange(c), scopeID)
		case "aliased_import":
			nameNode := c.ChildByFieldName("name")
			alias := c.ChildByFieldName("alias")
			if nameNode == nil || alias == nil {
				continue
			}
			w.addImportDef(nodeText(alias, w.src), nodeText(nameNode, w.src), source, nodeRange(alias), scopeID)
		case "wildcard_import":
			// `from mod import *`: edge only, no bindings.
			w.out.Imports = append(w.out.Imports, index.Import{Source: source, Range: nodeRange(n)})
		}
	}
}

func (w *pythonWalker) addImportDef(local, imported, source string, r index.Range, scopeID index.ScopeID) {
	def := w.addDef(index.Definition{
		Name:         local,
		Kind:         index.DefImport,
		Range:        r,
		Scope:        scopeID,
		ImportSource: source,
		ImportName:   imported,
	})
	w.bind(scopeID, local, index.DefImport, def.Symbol, r)
	importedName := imported
	if importedName == "*" {
		importedName = ""
	}
	w.out.Imports = append(w.out.Imports, index.Import{
		Source:       source,
		ImportedName: importedName,
		LocalAlias:   local,
		Range:        r,
	})
}

// walkAssignment binds simple identifier targets in the current scope.
// Repeated assignment to the same name reuses the first binding. A right
// side of `ClassName(...)` records a declared-type binding, as does an
// explicit annotation.
func (w *pythonWalker) walkAssignment(n *sitter.Node, scopeID index.ScopeID) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	typeNode := n.ChildByFieldName("type")

	if left != nil && left.Type() == "identifier" {
		name := nodeText(left, w.src)
		scope := w.tree.Scope(scopeID)
		if scope != nil && len(scope.BindingsFor(name)) == 0 {
			def := w.addDef(index.Definition{
				Name:     name,
				Kind:     index.DefVariable,
				Range:    nodeRange(left),
				Scope:    scopeID,
				Exported: w.isModuleScope(scopeID) && !strings.HasPrefix(name, "_"),
			})
			w.bind(scopeID, name, index.DefVariable, def.Symbol, nodeRange(left))
			if def.Exported {
				w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
			}
			switch {
			case typeNode != nil:
				w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: def.Symbol, TypeName: nodeText(typeNode, w.src)})
			case right != nil && right.Type() == "call":
				if fn := right.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" {
					w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: def.Symbol, TypeName: nodeText(fn, w.src)})
				}
			}
		} else {
			w.addRef(index.Reference{
				Name:  name,
				File:  w.path,
				Range: nodeRange(left),
				Scope: scopeID,
				Kind:  index.RefIdent,
			})
		}
	} else if left != nil {
		w.walk(left, scopeID)
	}

	if right != nil {
		w.walk(right, scopeID)
	}
}

func (w *pythonWalker) walkCall(n *sitter.Node, scopeID index.ScopeID) {
	fn := n.ChildByFieldName("function")
	if fn != nil {
		switch fn.Type() {
		case "identifier":
			// Plain `Name(...)`: could be a function or a class constructor;
			// the resolver disambiguates by what the name resolves to.
			w.addRef(index.Reference{
				Name:  nodeText(fn, w.src),
				File:  w.path,
				Range: nodeRange(fn),
				Scope: scopeID,
				Kind:  index.RefCall,
			})
		case "attribute":
			obj := fn.ChildByFieldName("object")
			attr := fn.ChildByFieldName("attribute")
			if attr != nil {
				receiver := ""
				if obj != nil && obj.Type() == "identifier" {
					receiver = nodeText(obj, w.src)
				}
				w.addRef(index.Reference{
					Name:     nodeText(attr, w.src),
					File:     w.path,
					Range:    nodeRange(attr),
					Scope:    scopeID,
					Kind:     index.RefMethodCall,
					Receiver: receiver,
				})
			}
			if obj != nil && obj.Type() != "identifier" {
				w.walk(obj, scopeID)
			}
		default:
			w.walk(fn, scopeID)
		}
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walkChildren(args, scopeID)
	}
}

func (w *pythonWalker) walkAttribute(n *sitter.Node, scopeID index.ScopeID) {
	obj := n.ChildByFieldName("object")
	attr := n.ChildByFieldName("attribute")
	if attr != nil {
		receiver := ""
		if obj != nil && obj.Type() == "identifier" {
			receiver = nodeText(obj, w.src)
		}
		w.addRef(index.Reference{
			Name:     nodeText(attr, w.src),
			File:     w.path,
			Range:    nodeRange(attr),
			Scope:    scopeID,
			Kind:     index.RefMemberAccess,
			Receiver: receiver,
		})
	}
	if obj != nil {
		w.walk(obj, scopeID)
	}
}

// --- builder helpers ---

func (w *pythonWalker) addDef(d index.Definition) *index.Definition {
	d.File = w.path
	d.Symbol = index.MakeSymbolID(w.path, d.Kind, d.Name, d.Range.Start)
	p := &d
	w.defs = append(w.defs, p)
	return p
}

func (w *pythonWalker) addRef(r index.Reference) {
	w.out.References = append(w.out.References, r)
}

func (w *pythonWalker) bind(scopeID index.ScopeID, name string, kind index.DefKind, sym index.SymbolID, r index.Range) {
	if s := w.tree.Scope(scopeID); s != nil {
		s.AddBinding(index.Binding{Name: name, Kind: kind, Symbol: sym, Range: r})
	}
}

func (w *pythonWalker) isModuleScope(scopeID index.ScopeID) bool {
	return scopeID == w.tree.Root
}
