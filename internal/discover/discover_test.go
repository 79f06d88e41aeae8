package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, rel)
	}
	return out
}

func TestFilesFindsSupportedSources(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.js"), "function main() {}")
	writeFile(t, filepath.Join(root, "lib", "util.py"), "def util(): pass")
	writeFile(t, filepath.Join(root, "README.md"), "# nope")
	writeFile(t, filepath.Join(root, "data.json"), "{}")

	paths, err := Files(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/util.py", "main.js"}, relAll(t, root, paths))
}

func TestFilesSkipsGeneratedDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.ts"), "const x = 1")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "")
	writeFile(t, filepath.Join(root, "__pycache__", "app.py"), "")
	writeFile(t, filepath.Join(root, ".hidden", "secret.js"), "")

	paths, err := Files(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.ts"}, relAll(t, root, paths))
}

func TestFilesHonorsGitignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "generated/\nignored.js\n")
	writeFile(t, filepath.Join(root, "kept.js"), "")
	writeFile(t, filepath.Join(root, "ignored.js"), "")
	writeFile(t, filepath.Join(root, "generated", "out.js"), "")

	paths, err := Files(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kept.js"}, relAll(t, root, paths))
}

func TestFilesExcludesTestsByDefault(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.js"), "")
	writeFile(t, filepath.Join(root, "app.test.js"), "")
	writeFile(t, filepath.Join(root, "app.spec.ts"), "")
	writeFile(t, filepath.Join(root, "test_app.py"), "")
	writeFile(t, filepath.Join(root, "app_test.py"), "")
	writeFile(t, filepath.Join(root, "__tests__", "unit.js"), "")

	paths, err := Files(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.js"}, relAll(t, root, paths))

	withTests, err := Files(root, Options{IncludeTests: true})
	require.NoError(t, err)
	assert.Len(t, withTests, 6)
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTestFile("app.test.js"))
	assert.True(t, IsTestFile("app.spec.tsx"))
	assert.True(t, IsTestFile("test_app.py"))
	assert.True(t, IsTestFile("app_test.py"))
	assert.False(t, IsTestFile("app.js"))
	assert.False(t, IsTestFile("contest.py"))
	assert.False(t, IsTestFile("latest.ts"))
}
