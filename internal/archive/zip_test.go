package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pkg.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestExtract(t *testing.T) {
	src := writeZip(t, map[string]string{
		"info.json":    `{"Mods":[]}`,
		"Mod.pak":      "pak",
		"nested/a.txt": "a",
	})
	dest := filepath.Join(t.TempDir(), "dump", "Mod")

	n, err := Extract(src, dest)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(filepath.Join(dest, "Mod.pak"))
	require.NoError(t, err)
	assert.Equal(t, "pak", string(data))
	_, err = os.Stat(filepath.Join(dest, "nested", "a.txt"))
	assert.NoError(t, err)
}

func TestExtractOverwrites(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "Mod.pak"), []byte("old"), 0o644))

	_, err := Extract(writeZip(t, map[string]string{"Mod.pak": "new"}), dest)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dest, "Mod.pak"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExtractRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "dest")
	_, err := Extract(writeZip(t, map[string]string{"../evil.txt": "x"}), dest)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractMissingArchive(t *testing.T) {
	_, err := Extract(filepath.Join(t.TempDir(), "nope.zip"), t.TempDir())
	assert.Error(t, err)
}
