package plugindownload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighestVersionDir_PicksMaxN(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"v1", "v3", "v2", "not-a-version"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}

	n, dir, err := highestVersionDir(root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, filepath.Join(root, "v3"), dir)
}

func TestHighestVersionDir_NoVersionsIsError(t *testing.T) {
	root := t.TempDir()
	_, _, err := highestVersionDir(root)
	require.Error(t, err)
}

func TestReadBundle_ParsesManifestAndSources(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "js"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))

	manifest := `
name: example-plugin
entrypoints:
  - id: search
    name: Search
    path: search.js
    type: view
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "gauntlet.yaml"), []byte(manifest), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "init.js"), []byte("module.exports = {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "search.js"), []byte("module.exports.default = function() {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "js", "helpers.js"), []byte("module.exports.x = 1"), 0o644))

	m, code, err := readBundle(root)
	require.NoError(t, err)
	assert.Equal(t, "example-plugin", m.Name)
	assert.Equal(t, "module.exports = {}", code.InitJS)
	assert.Contains(t, code.EntrypointSources, "search")
	assert.Contains(t, code.ModuleSources, "helpers")
}

func TestReadBundle_MissingManifestIsError(t *testing.T) {
	root := t.TempDir()
	_, _, err := readBundle(root)
	require.Error(t, err)
}
