package lang

import "github.com/CRJFisher/ariadne/internal/index"

// Visibility says where a hoisted declaration is visible from.
type Visibility int

const (
	// VisDeclaringScope: the name is visible throughout the scope that
	// declares it, regardless of textual order.
	VisDeclaringScope Visibility = iota
	// VisEnclosingFunction: the name is lifted to the nearest enclosing
	// function (or module) scope, as with `var` and function declarations
	// in JavaScript.
	VisEnclosingFunction
	// VisModule: item-level declarations visible throughout the whole
	// module regardless of nesting or order.
	VisModule
)

// HoistRule describes whether and how one declaration kind hoists.
type HoistRule struct {
	Hoisted    bool
	Visibility Visibility
}

// hoistRules is the per-language hoisting table. It is data, not control
// flow: the scope resolver is a single algorithm driven by these rows.
var hoistRules = map[Language]map[index.DefKind]HoistRule{
	JavaScript: {
		index.DefFunction: {Hoisted: true, Visibility: VisEnclosingFunction},
		index.DefVariable: {Hoisted: true, Visibility: VisEnclosingFunction}, // var
		index.DefClass:    {Hoisted: false},
		index.DefLet:      {Hoisted: false},
		index.DefConst:    {Hoisted: false},
		index.DefImport:   {Hoisted: true, Visibility: VisModule},
	},
	TypeScript: {
		index.DefFunction:  {Hoisted: true, Visibility: VisEnclosingFunction},
		index.DefVariable:  {Hoisted: true, Visibility: VisEnclosingFunction},
		index.DefClass:     {Hoisted: false},
		index.DefInterface: {Hoisted: true, Visibility: VisModule},
		index.DefLet:       {Hoisted: false},
		index.DefConst:     {Hoisted: false},
		index.DefImport:    {Hoisted: true, Visibility: VisModule},
	},
	Python: {
		// Python has no hoisting in the JS sense, but module-level defs and
		// classes are resolvable from anywhere in the module once defined;
		// forward references inside function bodies are legal because names
		// resolve at call time. Model both as declaring-scope visibility.
		index.DefFunction: {Hoisted: true, Visibility: VisDeclaringScope},
		index.DefClass:    {Hoisted: true, Visibility: VisDeclaringScope},
		index.DefVariable: {Hoisted: false},
		index.DefImport:   {Hoisted: true, Visibility: VisModule},
	},
}

// Rule returns the hoisting rule for a declaration kind in a language.
// Unknown kinds do not hoist.
func Rule(l Language, kind index.DefKind) HoistRule {
	if rules, ok := hoistRules[l]; ok {
		return rules[kind]
	}
	return HoistRule{}
}

// HoistsThroughFunctions reports whether the language lifts any declaration
// kind to the enclosing function scope. When true, the scope resolver must
// also search descendant scopes (up to nested function boundaries) for
// hoisted bindings.
func HoistsThroughFunctions(l Language) bool {
	for _, r := range hoistRules[l] {
		if r.Hoisted && r.Visibility == VisEnclosingFunction {
			return true
		}
	}
	return false
}
