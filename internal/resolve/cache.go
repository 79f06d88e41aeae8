package resolve

import "github.com/CRJFisher/ariadne/internal/index"

// Cache holds per-file resolution results keyed by reference location.
// Invalidation is always "drop the file's entries" — never partial
// patching — so stale-cache bugs are prevented structurally. Entries hold
// symbol identifiers, not live objects: dropping them can never dangle.
type Cache struct {
	byFile map[string]map[index.Location]Resolution
	count  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{byFile: make(map[string]map[index.Location]Resolution)}
}

// Put replaces the cached results for file.
func (c *Cache) Put(file string, entries map[index.Location]Resolution) {
	c.count -= len(c.byFile[file])
	if len(entries) == 0 {
		delete(c.byFile, file)
		return
	}
	c.byFile[file] = entries
	c.count += len(entries)
}

// File returns the cached results for file, or nil when none are cached.
func (c *Cache) File(file string) map[index.Location]Resolution {
	return c.byFile[file]
}

// Lookup returns the resolution cached for a reference location.
func (c *Cache) Lookup(loc index.Location) (Resolution, bool) {
	res, ok := c.byFile[loc.File][loc]
	return res, ok
}

// Invalidate drops every entry owned by file.
func (c *Cache) Invalidate(file string) {
	c.count -= len(c.byFile[file])
	delete(c.byFile, file)
}

// Count returns the number of cached resolution entries.
func (c *Cache) Count() int { return c.count }

// Files returns the files with cached entries.
func (c *Cache) Files() []string {
	out := make([]string, 0, len(c.byFile))
	for f := range c.byFile {
		out = append(out, f)
	}
	return out
}
