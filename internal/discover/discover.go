// Package discover finds analyzable source files under a directory root,
// honoring .gitignore and the usual generated-tree skip list.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/CRJFisher/ariadne/internal/lang"
)

// Options controls discovery.
type Options struct {
	// IncludeTests keeps test files in the result. By default they are
	// dropped so test-only callers do not hide entry points.
	IncludeTests bool
}

var skipDirs = map[string]struct{}{
	"node_modules":  {},
	"__pycache__":   {},
	"vendor":        {},
	"venv":          {},
	".venv":         {},
	"build":         {},
	"dist":          {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
}

// testDirs are skipped unless tests are requested.
var testDirs = map[string]struct{}{
	"__tests__": {},
	"__mocks__": {},
}

// SkipDir reports whether a directory name is never worth descending into:
// generated trees, caches, and hidden directories.
func SkipDir(name string) bool {
	if _, skip := skipDirs[name]; skip {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// Files walks root and returns the source files in supported languages,
// sorted, as paths joined with root.
func Files(root string, opts Options) ([]string, error) {
	gi := loadGitignore(root)

	var results []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()

		if d.IsDir() {
			if path == root {
				return nil
			}
			if SkipDir(name) {
				return filepath.SkipDir
			}
			if _, isTestDir := testDirs[name]; isTestDir && !opts.IncludeTests {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if _, ok := lang.ForFile(name); !ok {
			return nil
		}
		if !opts.IncludeTests && IsTestFile(name) {
			return nil
		}

		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

// IsTestFile reports whether a file name matches the test conventions of
// its language: *.test.js / *.spec.ts style for script languages,
// test_*.py / *_test.py for Python.
func IsTestFile(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	switch filepath.Ext(name) {
	case ".py":
		return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test")
	case ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx":
		return strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".spec")
	}
	return false
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
