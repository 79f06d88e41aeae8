// Package lang holds the per-language data tables that parameterize the
// generic resolution algorithm: file-extension mapping, hoisting rules, and
// builtin/global symbol tables. Adding a language means adding table rows,
// not control flow.
package lang

import (
	"path/filepath"
	"strings"
)

// Language is a canonical language name.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
)

// extToLanguage maps file extensions to canonical language names.
var extToLanguage = map[string]Language{
	".js":  JavaScript,
	".jsx": JavaScript,
	".mjs": JavaScript,
	".cjs": JavaScript,
	".ts":  TypeScript,
	".tsx": TypeScript,
	".py":  Python,
}

// ForFile returns the canonical language for a file path based on its
// extension. Returns ("", false) if the extension is not recognized.
func ForFile(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := extToLanguage[ext]
	return l, ok
}

// Extensions returns the candidate extensions for a language, used when
// resolving an extension-less import specifier to a file. Order matters:
// earlier extensions win.
func Extensions(l Language) []string {
	switch l {
	case JavaScript:
		return []string{".js", ".jsx", ".mjs", ".cjs"}
	case TypeScript:
		return []string{".ts", ".tsx", ".js", ".jsx"}
	case Python:
		return []string{".py"}
	}
	return nil
}

// Supported returns all languages with table entries.
func Supported() []Language {
	return []Language{JavaScript, TypeScript, Python}
}
