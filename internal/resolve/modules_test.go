package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownSet(paths ...string) func(string) bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}

func TestModules_RelativeWithExtensionProbing(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet("src/util.js", "src/lib/index.js")}

	got, ok := m.Resolve("src/app.js", "./util")
	require.True(t, ok)
	assert.Equal(t, "src/util.js", got)

	got, ok = m.Resolve("src/app.js", "./util.js")
	require.True(t, ok)
	assert.Equal(t, "src/util.js", got)

	// Directory import falls through to the index file.
	got, ok = m.Resolve("src/app.js", "./lib")
	require.True(t, ok)
	assert.Equal(t, "src/lib/index.js", got)
}

func TestModules_BarePackageIsExternal(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet("src/app.js")}

	_, ok := m.Resolve("src/app.js", "lodash")
	assert.False(t, ok)
}

func TestModules_UnknownTargetCommitsToStableCandidate(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet()}

	// The target is not ingested yet; the edge must still land on one
	// deterministic path so ingestion order cannot change the graph.
	first, ok := m.Resolve("src/app.js", "./helper")
	require.True(t, ok)
	second, ok := m.Resolve("src/app.js", "./helper")
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, "src/helper.js", first)
}

func TestModules_TypeScriptExtensionOrder(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet("src/util.ts", "src/util.js")}

	got, ok := m.Resolve("src/app.ts", "./util")
	require.True(t, ok)
	assert.Equal(t, "src/util.ts", got, ".ts wins over .js for TypeScript importers")
}

func TestModules_PythonDottedAndRelative(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet("pkg/mod.py", "pkg/sub/__init__.py", "app/local.py")}

	got, ok := m.Resolve("main.py", "pkg.mod")
	require.True(t, ok)
	assert.Equal(t, "pkg/mod.py", got)

	// A package import lands on its __init__.py.
	got, ok = m.Resolve("main.py", "pkg.sub")
	require.True(t, ok)
	assert.Equal(t, "pkg/sub/__init__.py", got)

	// Relative import resolves against the importing file's directory.
	got, ok = m.Resolve("app/main.py", ".local")
	require.True(t, ok)
	assert.Equal(t, "app/local.py", got)
}

func TestModules_PythonParentRelative(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet("pkg/shared.py")}

	got, ok := m.Resolve("pkg/sub/worker.py", "..shared")
	require.True(t, ok)
	assert.Equal(t, "pkg/shared.py", got)
}

func TestModules_EmptySpecifier(t *testing.T) {
	t.Parallel()
	m := &Modules{Known: knownSet()}
	_, ok := m.Resolve("a.js", "")
	assert.False(t, ok)
}
