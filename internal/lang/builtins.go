package lang

import "github.com/CRJFisher/ariadne/internal/index"

// builtins lists the global identifiers each language provides without any
// import. Consulted only at the root scope, after the scope walk and import
// lookup have both missed.
var builtins = map[Language][]string{
	JavaScript: {
		"console", "Math", "JSON", "Object", "Array", "String", "Number",
		"Boolean", "Date", "RegExp", "Error", "TypeError", "RangeError",
		"Promise", "Map", "Set", "WeakMap", "WeakSet", "Symbol", "Proxy",
		"Reflect", "parseInt", "parseFloat", "isNaN", "isFinite",
		"encodeURIComponent", "decodeURIComponent", "setTimeout",
		"setInterval", "clearTimeout", "clearInterval", "fetch",
		"globalThis", "undefined", "NaN", "Infinity",
		"require", "module", "exports", "process", "Buffer", "__dirname",
		"__filename",
	},
	Python: {
		"print", "len", "range", "enumerate", "zip", "map", "filter",
		"sorted", "reversed", "sum", "min", "max", "abs", "round", "divmod",
		"int", "float", "str", "bool", "bytes", "list", "tuple", "dict",
		"set", "frozenset", "type", "isinstance", "issubclass", "super",
		"object", "open", "input", "repr", "hash", "id", "iter", "next",
		"getattr", "setattr", "hasattr", "delattr", "callable", "vars",
		"dir", "globals", "locals", "staticmethod", "classmethod",
		"property", "Exception", "ValueError", "TypeError", "KeyError",
		"IndexError", "AttributeError", "RuntimeError", "StopIteration",
		"NotImplementedError", "None", "True", "False", "__name__",
	},
}

// builtinIndex is derived from builtins at init: name -> synthetic SymbolID.
var builtinIndex = func() map[Language]map[string]index.SymbolID {
	idx := make(map[Language]map[string]index.SymbolID, len(builtins)+1)
	for l, names := range builtins {
		m := make(map[string]index.SymbolID, len(names))
		for _, n := range names {
			m[n] = index.BuiltinSymbolID(string(l), n)
		}
		idx[l] = m
	}
	// TypeScript shares the JavaScript global environment.
	idx[TypeScript] = idx[JavaScript]
	return idx
}()

// Builtin returns the synthetic symbol for a global/builtin name in the
// given language, if the language defines it.
func Builtin(l Language, name string) (index.SymbolID, bool) {
	id, ok := builtinIndex[l][name]
	return id, ok
}
