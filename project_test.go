package ariadne

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CRJFisher/ariadne/internal/index"
)

// refLoc finds the location of the first reference with the given name and
// kind in a file's index.
func refLoc(t *testing.T, p *Project, file, name string, kind index.RefKind) index.Location {
	t.Helper()
	st := p.files[file]
	require.NotNil(t, st, "file %s not ingested", file)
	for _, r := range st.Refs {
		if r.Name == name && r.Kind == kind {
			return r.Location()
		}
	}
	t.Fatalf("no %s reference %q in %s", kind, name, file)
	return index.Location{}
}

func mustUpdate(t *testing.T, p *Project, file, src string) {
	t.Helper()
	require.NoError(t, p.UpdateFile(file, []byte(src)))
}

// ====== Scope resolution ======

func TestSiblingFunctionsResolveViaParentScope(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "app.js", `
function outer() {
  function inner() {
    return helper();
  }
  function helper() {
    return 1;
  }
}
`)

	loc := refLoc(t, p, "app.js", "helper", index.RefCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)

	def := p.GetDefinition(sym)
	require.NotNil(t, def)
	assert.Equal(t, "helper", def.Name)
	assert.Equal(t, index.DefFunction, def.Kind)
}

func TestHoistedCallBeforeDeclaration(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "app.js", `f();
function f() {}
`)

	loc := refLoc(t, p, "app.js", "f", index.RefCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.Equal(t, "f", p.GetDefinition(sym).Name)
}

// ====== Cross-file resolution ======

func TestImportResolvesToExportedDefinition(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "b.js", `export function helper() { return 1; }
`)
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function run() { return helper(); }
`)

	loc := refLoc(t, p, "a.js", "helper", index.RefCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)

	def := p.GetDefinition(sym)
	require.NotNil(t, def)
	assert.Equal(t, "b.js", def.File)
	assert.Equal(t, "helper", def.Name)

	assert.Equal(t, []string{"b.js"}, p.Dependencies("a.js"))
	assert.Equal(t, []string{"a.js"}, p.Dependents("b.js"))
}

func TestReExportChainResolvesToOrigin(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "c.js", `export function thing() {}
`)
	mustUpdate(t, p, "b.js", `export { thing } from './c';
`)
	mustUpdate(t, p, "a.js", `import { thing } from './b';
export function run() { thing(); }
`)

	loc := refLoc(t, p, "a.js", "thing", index.RefCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.Equal(t, "c.js", p.GetDefinition(sym).File)

	// a depends on b directly and c transitively.
	assert.Equal(t, []string{"b.js"}, p.Dependencies("a.js"))
	assert.Contains(t, p.TransitiveDependencies("a.js"), "c.js")
}

func TestIngestionOrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	// Importer first: the edge is committed before the target exists, so
	// the target's arrival re-marks the importer.
	p := New()
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function run() { return helper(); }
`)

	loc := refLoc(t, p, "a.js", "helper", index.RefCall)
	_, ok := p.ResolveReference(loc)
	assert.False(t, ok, "target not ingested yet")

	mustUpdate(t, p, "b.js", `export function helper() { return 1; }
`)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.Equal(t, "b.js", p.GetDefinition(sym).File)
}

// ====== Import cycles ======

func TestImportCycleResolvesAndReports(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "a.js", `import { fromB } from './b';
export function fromA() { return fromB(); }
`)
	mustUpdate(t, p, "b.js", `import { fromA } from './a';
export function fromB() { return fromA(); }
`)

	// Mutual imports must resolve without hanging.
	aCall := refLoc(t, p, "a.js", "fromB", index.RefCall)
	sym, ok := p.ResolveReference(aCall)
	require.True(t, ok)
	assert.Equal(t, "b.js", p.GetDefinition(sym).File)

	bCall := refLoc(t, p, "b.js", "fromA", index.RefCall)
	sym, ok = p.ResolveReference(bCall)
	require.True(t, ok)
	assert.Equal(t, "a.js", p.GetDefinition(sym).File)

	cycle := p.DetectCycle("a.js")
	require.NotEmpty(t, cycle)
	assert.Contains(t, cycle, "a.js")
	assert.Contains(t, cycle, "b.js")
}

// ====== Invalidation ======

func TestEditInvalidatesDependentResolutions(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "b.js", `export function helper() { return 1; }
`)
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function run() { return helper(); }
`)

	loc := refLoc(t, p, "a.js", "helper", index.RefCall)
	oldSym, ok := p.ResolveReference(loc)
	require.True(t, ok)

	// Move helper down a line: its symbol identifier changes.
	mustUpdate(t, p, "b.js", `// moved
export function helper() { return 1; }
`)

	newSym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.NotEqual(t, oldSym, newSym, "dependent must see the re-indexed symbol")
	assert.Equal(t, 1, p.GetDefinition(newSym).Range.Start.Row)
}

func TestEditInvalidatesTransitiveDependents(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "c.js", `export function thing() {}
`)
	mustUpdate(t, p, "b.js", `export { thing } from './c';
`)
	mustUpdate(t, p, "a.js", `import { thing } from './b';
export function run() { thing(); }
`)

	loc := refLoc(t, p, "a.js", "thing", index.RefCall)
	oldSym, ok := p.ResolveReference(loc)
	require.True(t, ok)

	// a never imports c directly, but resolves through b's re-export: an
	// edit to c must still reach a's cache.
	mustUpdate(t, p, "c.js", `// moved
export function thing() {}
`)
	_, cached := p.cache.Lookup(loc)
	assert.False(t, cached, "transitive dependent cache entry must be dropped")

	newSym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.NotEqual(t, oldSym, newSym)
}

func TestResolveFileIsIdempotent(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "a.js", `function f() { g(); }
function g() {}
`)

	p.ResolveFile("a.js")
	first := p.Stats()
	p.ResolveFile("a.js")
	p.ResolveFile("a.js")
	assert.Equal(t, first, p.Stats(), "re-resolving a non-pending file is a no-op")
}

// ====== Removal ======

func TestRemoveFileClearsStateAndUnresolvesDependents(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "b.js", `export function helper() { return 1; }
`)
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function run() { return helper(); }
`)

	loc := refLoc(t, p, "a.js", "helper", index.RefCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	removed := p.GetDefinition(sym)

	p.RemoveFile("b.js")

	assert.NotContains(t, p.Dependencies("a.js"), "b.js")
	assert.Empty(t, p.Dependents("b.js"))
	assert.Nil(t, p.GetDefinition(removed.Symbol))

	// The dependent re-resolves to unresolved, not to stale identifiers.
	_, ok = p.ResolveReference(loc)
	assert.False(t, ok)
}

func TestRemoveThenReAddRestoresResolution(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "b.js", `export function helper() { return 1; }
`)
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function run() { return helper(); }
`)

	loc := refLoc(t, p, "a.js", "helper", index.RefCall)
	_, ok := p.ResolveReference(loc)
	require.True(t, ok)

	p.RemoveFile("b.js")
	_, ok = p.ResolveReference(loc)
	require.False(t, ok)

	mustUpdate(t, p, "b.js", `export function helper() { return 2; }
`)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.Equal(t, "b.js", p.GetDefinition(sym).File)
}

// ====== Call graph ======

func TestCallGraphEntryPoints(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "app.js", `function a() { b(); }
function b() {}
function c() {}
`)

	var names []string
	for _, def := range p.EntryPoints() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestRecursiveCallProducesSelfLoop(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "fact.js", `function fact(n) {
  return n <= 1 ? 1 : n * fact(n - 1);
}
`)

	cg := p.CallGraph()
	factDefs := p.DefinitionsByName("fact")
	require.Len(t, factDefs, 1)
	sym := factDefs[0].Symbol

	callees := cg.Callees(sym)
	require.Len(t, callees, 1)
	assert.Equal(t, sym, callees[0].Callee, "self recursion is an ordinary edge")
}

func TestCallGraphRebuildsAfterMutation(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "a.js", `function f() { g(); }
function g() {}
`)

	first := p.CallGraph()
	assert.Same(t, first, p.CallGraph(), "unchanged project reuses the cached graph")

	mustUpdate(t, p, "b.js", `function h() {}
`)
	second := p.CallGraph()
	assert.NotSame(t, first, second)
	assert.Contains(t, second.Nodes, p.DefinitionsByName("h")[0].Symbol)
}

// ====== Python ======

func TestPythonConstructorAndMethodCalls(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "pets.py", `class Dog:
    def __init__(self, name):
        self.name = name

    def bark(self):
        return "woof"
`)
	mustUpdate(t, p, "main.py", `from pets import Dog

def main():
    d = Dog("rex")
    return d.bark()
`)

	// Dog(...) is spelled as a plain call; it must land on __init__.
	ctorLoc := refLoc(t, p, "main.py", "Dog", index.RefCall)
	sym, ok := p.ResolveReference(ctorLoc)
	require.True(t, ok)
	ctor := p.GetDefinition(sym)
	require.NotNil(t, ctor)
	assert.Equal(t, index.DefConstructor, ctor.Kind)
	assert.Equal(t, "pets.py", ctor.File)

	// d's inferred type carries the method call across files.
	barkLoc := refLoc(t, p, "main.py", "bark", index.RefMethodCall)
	sym, ok = p.ResolveReference(barkLoc)
	require.True(t, ok)
	assert.Equal(t, index.DefMethod, p.GetDefinition(sym).Kind)

	cg := p.CallGraph()
	mainSym := p.DefinitionsByName("main")[0].Symbol
	require.Len(t, cg.Callees(mainSym), 2)
}

func TestPythonInheritedMethodResolution(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "zoo.py", `class Animal:
    def speak(self):
        return "..."

class Dog(Animal):
    def fetch(self):
        return self.speak()
`)

	loc := refLoc(t, p, "zoo.py", "speak", index.RefMethodCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)

	def := p.GetDefinition(sym)
	require.NotNil(t, def)
	assert.Equal(t, "speak", def.Name)
	assert.Equal(t, index.DefMethod, def.Kind)
}

// ====== Collaborator failure ======

// flakyIndexer returns a canned index once, then errors.
type flakyIndexer struct {
	idx  *index.FileIndex
	fail bool
}

func (f *flakyIndexer) Index(path string, src []byte) (*index.FileIndex, error) {
	if f.fail {
		return nil, errors.New("malformed source")
	}
	f.fail = true
	return f.idx, nil
}

func TestIndexerFailureLeavesRegistriesUntouched(t *testing.T) {
	t.Parallel()

	tree := index.NewScopeTree("x.js", index.Range{End: index.Point{Row: 5}})
	def := index.Definition{
		Name:  "thing",
		Kind:  index.DefFunction,
		File:  "x.js",
		Range: index.Range{Start: index.Point{Row: 1}, End: index.Point{Row: 2}},
		Scope: tree.Root,
	}
	def.Symbol = index.MakeSymbolID(def.File, def.Kind, def.Name, def.Range.Start)
	canned := &index.FileIndex{
		Path:        "x.js",
		Language:    "javascript",
		Definitions: []index.Definition{def},
		ScopeTree:   tree,
	}

	p := New(WithIndexer(&flakyIndexer{idx: canned}))
	mustUpdate(t, p, "x.js", "function thing() {}")
	require.NotNil(t, p.GetDefinition(def.Symbol))

	// The failed update is a no-op: prior entries survive.
	err := p.UpdateFile("x.js", []byte("function thing() { broken"))
	require.Error(t, err)
	assert.NotNil(t, p.GetDefinition(def.Symbol))
	assert.Equal(t, 1, p.Stats().FileCount)
}

// ====== Stats ======

func TestStatsCounters(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "b.js", `export function helper() {}
`)
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function run() { helper(); }
`)

	stats := p.Stats()
	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 1, stats.EdgeCount)
	assert.Equal(t, 2, stats.PendingResolutionCount)
	assert.Equal(t, 0, stats.CachedResolutionCount)

	p.CallGraph() // forces resolution of everything pending

	stats = p.Stats()
	assert.Equal(t, 0, stats.PendingResolutionCount)
	assert.Greater(t, stats.CachedResolutionCount, 0)
}

// ====== Determinism ======

func TestResolutionIsDeterministic(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"b.js": `export function helper() { return 1; }
`,
		"a.js": `import { helper } from './b';
export function run() { return helper(); }
`,
	}

	build := func() map[index.Location]index.SymbolID {
		p := New()
		mustUpdate(t, p, "b.js", sources["b.js"])
		mustUpdate(t, p, "a.js", sources["a.js"])
		p.CallGraph()

		out := make(map[index.Location]index.SymbolID)
		for _, file := range p.cache.Files() {
			for loc, res := range p.cache.File(file) {
				out[loc] = res.Symbol
			}
		}
		return out
	}

	assert.Equal(t, build(), build())
}

// ====== Directory ingestion ======

func TestIndexDirectoryEndToEnd(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write := func(rel, src string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	write("lib.js", `export function helper() { return 1; }
`)
	write("main.js", `import { helper } from './lib';
export function run() { return helper(); }
`)
	write("main.test.js", `run();`)
	write("node_modules/dep/index.js", `whatever();`)

	p := New()
	require.NoError(t, p.IndexDirectory(context.Background(), root))

	// Tests and generated trees stay out.
	assert.Equal(t, 2, p.Stats().FileCount)

	mainPath := filepath.Join(root, "main.js")
	libPath := filepath.Join(root, "lib.js")
	assert.Equal(t, []string{libPath}, p.Dependencies(mainPath))

	loc := refLoc(t, p, mainPath, "helper", index.RefCall)
	sym, ok := p.ResolveReference(loc)
	require.True(t, ok)
	assert.Equal(t, libPath, p.GetDefinition(sym).File)
}

func TestIndexFilesSkipsUnchangedContent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("function f() {}"), 0o644))

	p := New(WithParallel(false))
	require.NoError(t, p.IndexFiles(context.Background(), []string{path}))
	p.CallGraph()
	require.Equal(t, 0, p.Stats().PendingResolutionCount)

	// Same content: nothing becomes pending again.
	require.NoError(t, p.IndexFiles(context.Background(), []string{path}))
	assert.Equal(t, 0, p.Stats().PendingResolutionCount)
}

func TestIndexFilesHonorsCancellation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	var paths []string
	for _, name := range []string{"a.js", "b.js", "c.js"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.WriteFile(path, []byte("function f() {}"), 0o644))
		paths = append(paths, path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{true, false} {
		p := New(WithParallel(parallel))
		err := p.IndexFiles(ctx, paths)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, p.Stats().FileCount, "parallel=%v", parallel)
	}
}

// ====== Query surface ======

func TestDefinitionAt(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "app.js", `function target() {}
function caller() { target(); }
`)

	loc := refLoc(t, p, "app.js", "target", index.RefCall)
	def, ok := p.DefinitionAt("app.js", index.Point{Row: loc.StartRow, Col: loc.StartCol})
	require.True(t, ok)
	assert.Equal(t, "target", def.Name)

	_, ok = p.DefinitionAt("app.js", index.Point{Row: 99, Col: 0})
	assert.False(t, ok)
}

func TestReferencesTo(t *testing.T) {
	t.Parallel()

	p := New()
	mustUpdate(t, p, "b.js", `export function helper() {}
`)
	mustUpdate(t, p, "a.js", `import { helper } from './b';
export function one() { helper(); }
export function two() { helper(); }
`)

	defs := p.DefinitionsByName("helper")
	require.Len(t, defs, 1)

	locs := p.ReferencesTo(defs[0].Symbol)
	require.GreaterOrEqual(t, len(locs), 2)
	for _, loc := range locs {
		assert.Equal(t, "a.js", loc.File)
	}
}
