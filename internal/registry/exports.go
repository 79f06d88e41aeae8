package registry

import (
	"sort"

	"github.com/CRJFisher/ariadne/internal/index"
)

// Exports owns the per-file export tables: which names a file makes visible
// to importers, including re-exports forwarding names from other modules.
type Exports struct {
	byFile map[string]map[string]index.Export
}

// NewExports returns an empty export registry.
func NewExports() *Exports {
	return &Exports{byFile: make(map[string]map[string]index.Export)}
}

// UpdateFile replaces file's export table.
func (r *Exports) UpdateFile(file string, exports []index.Export) {
	if len(exports) == 0 {
		delete(r.byFile, file)
		return
	}
	table := make(map[string]index.Export, len(exports))
	for _, e := range exports {
		table[e.Name] = e
	}
	r.byFile[file] = table
}

// RemoveFile deletes file's export table.
func (r *Exports) RemoveFile(file string) {
	delete(r.byFile, file)
}

// Lookup returns the export of name from file.
func (r *Exports) Lookup(file, name string) (index.Export, bool) {
	e, ok := r.byFile[file][name]
	return e, ok
}

// Names returns the exported names of file, sorted.
func (r *Exports) Names(file string) []string {
	table := r.byFile[file]
	if len(table) == 0 {
		return nil
	}
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
