package extract

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/CRJFisher/ariadne/internal/index"
)

// scriptWalker indexes JavaScript and TypeScript files. The two grammars
// share their statement shapes; TypeScript adds interfaces and type
// annotations, which the walker picks up when present.
type scriptWalker struct {
	path     string
	language string
	src      []byte
	out      *index.FileIndex
	tree     *index.ScopeTree

	// defs holds stable pointers while walking; appends to a value slice
	// would invalidate definitions still being enriched.
	defs []*index.Definition

	// localExports collects `export { a, b as c }` clauses for fixup once
	// all module-level definitions exist.
	localExports []localExport
}

type localExport struct {
	Name  string // exported name
	Local string // local definition name
}

func newScriptWalker(path, language string, src []byte) *scriptWalker {
	return &scriptWalker{path: path, language: language, src: src}
}

func (w *scriptWalker) walkFile(root *sitter.Node) *index.FileIndex {
	w.tree = index.NewScopeTree(w.path, nodeRange(root))
	w.out = &index.FileIndex{
		Path:      w.path,
		Language:  w.language,
		ScopeTree: w.tree,
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		w.walk(root.NamedChild(i), w.tree.Root, false)
	}
	w.fixupLocalExports()
	w.out.Definitions = make([]index.Definition, len(w.defs))
	for i, d := range w.defs {
		w.out.Definitions[i] = *d
	}
	return w.out
}

// walk dispatches on node type. exported marks definitions produced by an
// `export` statement's inner declaration.
func (w *scriptWalker) walk(n *sitter.Node, scopeID index.ScopeID, exported bool) {
	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		w.walkFunction(n, scopeID, exported)
	case "class_declaration":
		w.walkClass(n, scopeID, exported)
	case "interface_declaration":
		w.walkInterface(n, scopeID, exported)
	case "variable_declaration", "lexical_declaration":
		w.walkVariableDeclaration(n, scopeID, exported)
	case "import_statement":
		w.walkImport(n, scopeID)
	case "export_statement":
		w.walkExport(n, scopeID)
	case "call_expression":
		w.walkCall(n, scopeID)
	case "new_expression":
		w.walkNew(n, scopeID)
	case "member_expression":
		w.walkMemberAccess(n, scopeID)
	case "statement_block":
		block := w.tree.AddScope(index.ScopeBlock, nodeRange(n), scopeID)
		w.walkChildren(n, block.ID)
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

func (w *scriptWalker) walkChildren(n *sitter.Node, scopeID index.ScopeID) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), scopeID, false)
	}
}

// walkFunction handles a named function declaration: binding in the
// enclosing scope, a function scope owning params and body.
func (w *scriptWalker) walkFunction(n *sitter.Node, scopeID index.ScopeID, exported bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		w.walkChildren(n, scopeID)
		return
	}
	name := nodeText(nameNode, w.src)
	def := w.addDef(index.Definition{
		Name:     name,
		Kind:     index.DefFunction,
		Range:    nodeRange(n),
		Scope:    scopeID,
		Exported: exported,
	})
	w.bind(scopeID, name, index.DefFunction, def.Symbol, nodeRange(nameNode))
	if exported {
		w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
	}

	fn := w.tree.AddScope(index.ScopeFunction, nodeRange(n), scopeID)
	fn.Owner = def.Symbol
	w.walkParams(n.ChildByFieldName("parameters"), fn.ID, def)
	w.walkBody(n.ChildByFieldName("body"), fn.ID)
}

// walkBody iterates a statement_block's children directly so the function
// scope itself covers the body — no extra block scope.
func (w *scriptWalker) walkBody(body *sitter.Node, scopeID index.ScopeID) {
	if body == nil {
		return
	}
	w.walkChildren(body, scopeID)
}

// walkParams binds each simple identifier parameter in the function scope.
func (w *scriptWalker) walkParams(params *sitter.Node, scopeID index.ScopeID, def *index.Definition) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var nameNode *sitter.Node
		var typeExpr string
		switch p.Type() {
		case "identifier":
			nameNode = p
		case "required_parameter", "optional_parameter": // TypeScript
			if pat := p.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
				nameNode = pat
			}
			if ta := p.ChildByFieldName("type"); ta != nil {
				typeExpr = annotationText(ta, w.src)
			}
		case "assignment_pattern":
			if left := p.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
				nameNode = left
			}
		}
		if nameNode == nil {
			continue // destructuring and rest patterns are not modeled
		}
		name := nodeText(nameNode, w.src)
		pd := w.addDef(index.Definition{
			Name:  name,
			Kind:  index.DefParameter,
			Range: nodeRange(nameNode),
			Scope: scopeID,
		})
		w.bind(scopeID, name, index.DefParameter, pd.Symbol, nodeRange(nameNode))
		def.Params = append(def.Params, index.Param{Name: name, TypeExpr: typeExpr})
		if typeExpr != "" {
			w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: pd.Symbol, TypeName: typeExpr})
		}
	}
}

// walkClass handles class declarations: the class binding, its scope, its
// methods, and the TypeInfo member table for receiver-typed resolution.
func (w *scriptWalker) walkClass(n *sitter.Node, scopeID index.ScopeID, exported bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		w.walkChildren(n, scopeID)
		return
	}
	name := nodeText(nameNode, w.src)
	def := w.addDef(index.Definition{
		Name:     name,
		Kind:     index.DefClass,
		Range:    nodeRange(n),
		Scope:    scopeID,
		Exported: exported,
	})
	w.bind(scopeID, name, index.DefClass, def.Symbol, nodeRange(nameNode))
	if exported {
		w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
	}

	ti := index.TypeInfo{
		Symbol:  def.Symbol,
		Name:    name,
		File:    w.path,
		Members: make(map[string]index.SymbolID),
	}
	// class_heritage: `extends Base`.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "class_heritage" {
			ti.Extends = append(ti.Extends, heritageNames(c, w.src)...)
		}
	}

	classScope := w.tree.AddScope(index.ScopeClass, nodeRange(n), scopeID)
	classScope.Owner = def.Symbol

	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			switch m.Type() {
			case "method_definition":
				w.walkMethod(m, classScope.ID, name, &ti)
			case "field_definition", "public_field_definition":
				w.walkField(m, classScope.ID, &ti)
			}
		}
	}

	w.out.Types = append(w.out.Types, ti)
	def.Members = memberNames(&ti)
}

func (w *scriptWalker) walkMethod(m *sitter.Node, classScopeID index.ScopeID, className string, ti *index.TypeInfo) {
	nameNode := m.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.src)
	kind := index.DefMethod
	if name == "constructor" {
		kind = index.DefConstructor
	}
	def := w.addDef(index.Definition{
		Name:  name,
		Kind:  kind,
		Range: nodeRange(m),
		Scope: classScopeID,
	})
	ti.Members[name] = def.Symbol

	fn := w.tree.AddScope(index.ScopeFunction, nodeRange(m), classScopeID)
	fn.Owner = def.Symbol
	w.walkParams(m.ChildByFieldName("parameters"), fn.ID, def)
	w.walkBody(m.ChildByFieldName("body"), fn.ID)
}

// walkField records arrow-function properties as methods; plain data
// fields do not participate in member resolution.
func (w *scriptWalker) walkField(m *sitter.Node, classScopeID index.ScopeID, ti *index.TypeInfo) {
	nameNode := m.ChildByFieldName("name")
	value := m.ChildByFieldName("value")
	if nameNode == nil || value == nil {
		return
	}
	if value.Type() != "arrow_function" && value.Type() != "function_expression" && value.Type() != "function" {
		return
	}
	name := nodeText(nameNode, w.src)
	def := w.addDef(index.Definition{
		Name:  name,
		Kind:  index.DefMethod,
		Range: nodeRange(m),
		Scope: classScopeID,
	})
	ti.Members[name] = def.Symbol

	fn := w.tree.AddScope(index.ScopeFunction, nodeRange(value), classScopeID)
	fn.Owner = def.Symbol
	w.walkParams(value.ChildByFieldName("parameters"), fn.ID, def)
	if body := value.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			w.walkBody(body, fn.ID)
		} else {
			w.walk(body, fn.ID, false)
		}
	}
}

// walkInterface records a TypeScript interface's member table so method
// calls through interface-typed receivers resolve.
func (w *scriptWalker) walkInterface(n *sitter.Node, scopeID index.ScopeID, exported bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, w.src)
	def := w.addDef(index.Definition{
		Name:     name,
		Kind:     index.DefInterface,
		Range:    nodeRange(n),
		Scope:    scopeID,
		Exported: exported,
	})
	w.bind(scopeID, name, index.DefInterface, def.Symbol, nodeRange(nameNode))
	if exported {
		w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
	}

	ti := index.TypeInfo{
		Symbol:  def.Symbol,
		Name:    name,
		File:    w.path,
		Members: make(map[string]index.SymbolID),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			m := body.NamedChild(i)
			if m.Type() != "method_signature" && m.Type() != "property_signature" {
				continue
			}
			mn := m.ChildByFieldName("name")
			if mn == nil {
				continue
			}
			mName := nodeText(mn, w.src)
			md := w.addDef(index.Definition{
				Name:  mName,
				Kind:  index.DefMethod,
				Range: nodeRange(m),
				Scope: scopeID,
			})
			ti.Members[mName] = md.Symbol
		}
	}
	w.out.Types = append(w.out.Types, ti)
	def.Members = memberNames(&ti)
}

// walkVariableDeclaration handles var/let/const declarators. A declarator
// whose value is a function expression defines a callable; `new X()` and
// TypeScript annotations record declared-type bindings.
func (w *scriptWalker) walkVariableDeclaration(n *sitter.Node, scopeID index.ScopeID, exported bool) {
	kind := index.DefVariable
	if n.Type() == "lexical_declaration" {
		kind = index.DefLet
		if n.ChildCount() > 0 && n.Child(0).Type() == "const" {
			kind = index.DefConst
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if nameNode == nil || nameNode.Type() != "identifier" {
			// Destructuring patterns: index the value side only.
			if value != nil {
				w.walk(value, scopeID, false)
			}
			continue
		}
		name := nodeText(nameNode, w.src)

		defKind := kind
		if value != nil {
			switch value.Type() {
			case "arrow_function", "function_expression", "function":
				defKind = index.DefFunction
			}
		}

		def := w.addDef(index.Definition{
			Name:     name,
			Kind:     defKind,
			Range:    nodeRange(d),
			Scope:    scopeID,
			Exported: exported,
		})
		w.bind(scopeID, name, defKind, def.Symbol, nodeRange(nameNode))
		if exported {
			w.out.Exports = append(w.out.Exports, index.Export{Name: name, Symbol: def.Symbol})
		}

		if ta := d.ChildByFieldName("type"); ta != nil {
			w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: def.Symbol, TypeName: annotationText(ta, w.src)})
		}

		if value == nil {
			continue
		}
		switch value.Type() {
		case "arrow_function", "function_expression", "function":
			fn := w.tree.AddScope(index.ScopeFunction, nodeRange(value), scopeID)
			fn.Owner = def.Symbol
			w.walkParams(value.ChildByFieldName("parameters"), fn.ID, def)
			if body := value.ChildByFieldName("body"); body != nil {
				if body.Type() == "statement_block" {
					w.walkBody(body, fn.ID)
				} else {
					w.walk(body, fn.ID, false)
				}
			}
		case "new_expression":
			if ctor := value.ChildByFieldName("constructor"); ctor != nil && ctor.Type() == "identifier" {
				w.out.Bindings = append(w.out.Bindings, index.TypeBinding{Symbol: def.Symbol, TypeName: nodeText(ctor, w.src)})
			}
			w.walkNew(value, scopeID)
		default:
			w.walk(value, scopeID, false)
		}
	}
}

// walkImport records one import edge candidate plus a binding per imported
// name: default, named, and namespace forms.
func (w *scriptWalker) walkImport(n *sitter.Node, scopeID index.ScopeID) {
	sourceNode := n.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	source := stringLiteralContent(sourceNode, w.src)

	addImport := func(local, imported string, r index.Range) {
		def := w.addDef(index.Definition{
			Name:         local,
			Kind:         index.DefImport,
			Range:        r,
			Scope:        scopeID,
			ImportSource: source,
			ImportName:   imported,
		})
		w.bind(scopeID, local, index.DefImport, def.Symbol, r)
		w.out.Imports = append(w.out.Imports, index.Import{
			Source:       source,
			ImportedName: imported,
			LocalAlias:   local,
			Range:        r,
		})
	}

	sawClause := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		sawClause = true
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			switch c.Type() {
			case "identifier": // default import
				addImport(nodeText(c, w.src), "default", nodeRange(c))
			case "namespace_import":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					if id := c.NamedChild(k); id.Type() == "identifier" {
						addImport(nodeText(id, w.src), "*", nodeRange(id))
					}
				}
			case "named_imports":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					spec := c.NamedChild(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					nameNode := spec.ChildByFieldName("name")
					if nameNode == nil {
						continue
					}
					imported := nodeText(nameNode, w.src)
					local := imported
					r := nodeRange(nameNode)
					if alias := spec.ChildByFieldName("alias"); alias != nil {
						local = nodeText(alias, w.src)
						r = nodeRange(alias)
					}
					addImport(local, imported, r)
				}
			}
		}
	}
	if !sawClause {
		// Bare side-effect import: edge only, no bindings.
		w.out.Imports = append(w.out.Imports, index.Import{Source: source, Range: nodeRange(n)})
	}
}

// walkExport handles export statements: exported declarations, local
// export clauses, and re-exports with a source.
func (w *scriptWalker) walkExport(n *sitter.Node, scopeID index.ScopeID) {
	sourceNode := n.ChildByFieldName("source")
	var source string
	if sourceNode != nil {
		source = stringLiteralContent(sourceNode, w.src)
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		w.walk(decl, scopeID, true)
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "export_clause":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				spec := c.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				local := nodeText(nameNode, w.src)
				exported := local
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					exported = nodeText(alias, w.src)
				}
				if source != "" {
					w.out.Exports = append(w.out.Exports, index.Export{
						Name:           exported,
						ReExportSource: source,
						ReExportName:   local,
					})
				} else {
					w.localExports = append(w.localExports, localExport{Name: exported, Local: local})
				}
			}
		case "identifier", "arrow_function", "call_expression", "new_expression", "object", "class_declaration", "function_declaration":
			// `export default <expr>`: walk for references; named default
			// declarations also get an export entry.
			if c.Type() == "function_declaration" || c.Type() == "class_declaration" {
				before := len(w.defs)
				w.walk(c, scopeID, false)
				if len(w.defs) > before {
					w.out.Exports = append(w.out.Exports, index.Export{
						Name:   "default",
						Symbol: w.defs[before].Symbol,
					})
				}
			} else {
				w.walk(c, scopeID, false)
			}
		}
	}
}

// fixupLocalExports links `export { a }` clauses to the module-level
// definitions they name, once all definitions exist.
func (w *scriptWalker) fixupLocalExports() {
	for _, le := range w.localExports {
		exp := index.Export{Name: le.Name}
		for _, d := range w.defs {
			if d.Name == le.Local && d.Scope == w.tree.Root {
				exp.Symbol = d.Symbol
				d.Exported = true
			}
		}
		w.out.Exports = append(w.out.Exports, exp)
	}
}

// walkCall records call and method-call references.
func (w *scriptWalker) walkCall(n *sitter.Node, scopeID index.ScopeID) {
	fn := n.ChildByFieldName("function")
	if fn != nil {
		switch fn.Type() {
		case "identifier":
			w.addRef(index.Reference{
				Name:  nodeText(fn, w.src),
				File:  w.path,
				Range: nodeRange(fn),
				Scope: scopeID,
				Kind:  index.RefCall,
			})
		case "member_expression":
			obj := fn.ChildByFieldName("object")
			prop := fn.ChildByFieldName("property")
			if prop != nil {
				receiver := ""
				if obj != nil && (obj.Type() == "identifier" || obj.Type() == "this") {
					receiver = nodeText(obj, w.src)
				}
				w.addRef(index.Reference{
					Name:     nodeText(prop, w.src),
					File:     w.path,
					Range:    nodeRange(prop),
					Scope:    scopeID,
					Kind:     index.RefMethodCall,
					Receiver: receiver,
				})
			}
			if obj != nil && obj.Type() != "identifier" && obj.Type() != "this" {
				w.walk(obj, scopeID, false)
			}
		default:
			w.walk(fn, scopeID, false)
		}
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walkChildren(args, scopeID)
	}
}

// walkNew records a constructor-call reference.
func (w *scriptWalker) walkNew(n *sitter.Node, scopeID index.ScopeID) {
	if ctor := n.ChildByFieldName("constructor"); ctor != nil && ctor.Type() == "identifier" {
		w.addRef(index.Reference{
			Name:  nodeText(ctor, w.src),
			File:  w.path,
			Range: nodeRange(ctor),
			Scope: scopeID,
			Kind:  index.RefConstructorCall,
		})
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walkChildren(args, scopeID)
	}
}

// walkMemberAccess records non-call member access (obj.prop) so
// find-references covers property reads.
func (w *scriptWalker) walkMemberAccess(n *sitter.Node, scopeID index.ScopeID) {
	obj := n.ChildByFieldName("object")
	prop := n.ChildByFieldName("property")
	if prop != nil {
		receiver := ""
		if obj != nil && (obj.Type() == "identifier" || obj.Type() == "this") {
			receiver = nodeText(obj, w.src)
		}
		w.addRef(index.Reference{
			Name:     nodeText(prop, w.src),
			File:     w.path,
			Range:    nodeRange(prop),
			Scope:    scopeID,
			Kind:     index.RefMemberAccess,
			Receiver: receiver,
		})
	}
	if obj != nil && obj.Type() != "this" {
		w.walk(obj, scopeID, false)
	}
}

// --- builder helpers ---

func (w *scriptWalker) addDef(d index.Definition) *index.Definition {
	d.File = w.path
	d.Symbol = index.MakeSymbolID(w.path, d.Kind, d.Name, d.Range.Start)
	p := &d
	w.defs = append(w.defs, p)
	return p
}

func (w *scriptWalker) addRef(r index.Reference) {
	w.out.References = append(w.out.References, r)
}

func (w *scriptWalker) bind(scopeID index.ScopeID, name string, kind index.DefKind, sym index.SymbolID, r index.Range) {
	if s := w.tree.Scope(scopeID); s != nil {
		s.AddBinding(index.Binding{Name: name, Kind: kind, Symbol: sym, Range: r})
	}
}

// heritageNames extracts the ancestor names from a class_heritage clause.
func heritageNames(n *sitter.Node, src []byte) []string {
	var names []string
	var visit func(c *sitter.Node)
	visit = func(c *sitter.Node) {
		if c.Type() == "identifier" {
			names = append(names, nodeText(c, src))
			return
		}
		for i := 0; i < int(c.NamedChildCount()); i++ {
			visit(c.NamedChild(i))
		}
	}
	visit(n)
	return names
}

// annotationText extracts the type name from a type_annotation, dropping
// the leading colon.
func annotationText(n *sitter.Node, src []byte) string {
	if n.NamedChildCount() > 0 {
		return nodeText(n.NamedChild(0), src)
	}
	return nodeText(n, src)
}

// memberNames flattens a member table into a sorted name list. Sorted, not
// declaration order: the table is a map, and identical input must produce
// an identical index.
func memberNames(ti *index.TypeInfo) []string {
	names := make([]string, 0, len(ti.Members))
	for name := range ti.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
