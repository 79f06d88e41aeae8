package resolve

import (
	"path"
	"strings"

	"github.com/CRJFisher/ariadne/internal/lang"
)

// Modules maps import specifiers to project file paths. Resolution is pure
// path arithmetic plus extension probing against the set of known files, so
// the same specifier always maps to the same path — even before the target
// file has been ingested, which lets the import graph record the edge and
// mark the importer pending once the target arrives.
type Modules struct {
	// Known reports whether a project file exists at path.
	Known func(path string) bool
}

// Resolve maps source, as written in fromFile, to a project file path.
// Relative specifiers resolve against fromFile's directory; Python dotted
// modules resolve against the project tree. Bare external package names
// return false: unmodeled, degrades to unresolved.
func (m *Modules) Resolve(fromFile, source string) (string, bool) {
	if source == "" {
		return "", false
	}
	l, _ := lang.ForFile(fromFile)

	if l == lang.Python {
		return m.resolvePython(fromFile, source)
	}

	// JS/TS: only relative specifiers are project files.
	if !strings.HasPrefix(source, "./") && !strings.HasPrefix(source, "../") {
		return "", false
	}
	base := path.Join(path.Dir(fromFile), source)

	// Exact path (specifier already carries an extension).
	if m.known(base) {
		return base, true
	}
	for _, ext := range lang.Extensions(l) {
		if m.known(base + ext) {
			return base + ext, true
		}
	}
	// Directory import: probe index files.
	for _, ext := range lang.Extensions(l) {
		if idx := path.Join(base, "index"+ext); m.known(idx) {
			return idx, true
		}
	}
	// Nothing ingested yet: commit to the default candidate so the edge is
	// stable and the importer gets re-marked when the file shows up.
	if ext := path.Ext(base); ext == "" {
		exts := lang.Extensions(l)
		if len(exts) > 0 {
			return base + exts[0], true
		}
	}
	return base, true
}

// resolvePython maps dotted and relative dotted modules to file paths:
// "pkg.mod" -> pkg/mod.py, ".sibling" -> <dir>/sibling.py,
// "..parent.mod" -> <dir>/../parent/mod.py.
func (m *Modules) resolvePython(fromFile, source string) (string, bool) {
	dir := path.Dir(fromFile)

	rel := 0
	for rel < len(source) && source[rel] == '.' {
		rel++
	}
	rest := source[rel:]
	segments := []string{}
	if rest != "" {
		segments = strings.Split(rest, ".")
	}

	base := dir
	if rel == 0 {
		// Absolute module: resolve from the project root downward. Without
		// sys.path modeling, try the importing file's directory first, then
		// the root.
		if p, ok := m.probePython(path.Join(dir, path.Join(segments...))); ok {
			return p, true
		}
		candidate := path.Join(segments...)
		if p, ok := m.probePython(candidate); ok {
			return p, true
		}
		return candidate + ".py", true
	}
	for i := 1; i < rel; i++ {
		base = path.Dir(base)
	}
	candidate := path.Join(base, path.Join(segments...))
	if p, ok := m.probePython(candidate); ok {
		return p, true
	}
	return candidate + ".py", true
}

// probePython checks candidate.py then candidate/__init__.py.
func (m *Modules) probePython(candidate string) (string, bool) {
	if m.known(candidate + ".py") {
		return candidate + ".py", true
	}
	if pkg := path.Join(candidate, "__init__.py"); m.known(pkg) {
		return pkg, true
	}
	return "", false
}

func (m *Modules) known(p string) bool {
	return m.Known != nil && m.Known(p)
}
