package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestUnzipGo(t *testing.T) {
	src := writeZip(t, map[string]string{
		"lib/net45/resources/app.asar": "asar bytes",
		"readme.txt":                   "hi",
	})
	dest := filepath.Join(t.TempDir(), "out")

	require.NoError(t, unzipGo(src, dest))
	require.Equal(t, "asar bytes", readTestFile(t, filepath.Join(dest, "lib", "net45", "resources", "app.asar")))
	require.Equal(t, "hi", readTestFile(t, filepath.Join(dest, "readme.txt")))
}

func TestUnzipGoRejectsPathTraversal(t *testing.T) {
	src := writeZip(t, map[string]string{
		"../escape.txt": "nope",
	})
	dest := filepath.Join(t.TempDir(), "out")

	err := unzipGo(src, dest)
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(filepath.Dir(dest), "escape.txt"))
}
