package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newAppDir(t *testing.T, manifest string) string {
	t.Helper()
	appDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "package.json"), []byte(manifest), 0o644))
	return appDir
}

func TestWriteShimModules(t *testing.T) {
	appDir := newAppDir(t, `{"name":"claude","main":".vite/build/index.js"}`)

	require.NoError(t, writeShimModules(appDir))

	frameFix := readTestFile(t, filepath.Join(appDir, frameFixFile))
	require.Contains(t, frameFix, "Module._load")
	require.Contains(t, frameFix, "options.frame = true")

	entry := readTestFile(t, filepath.Join(appDir, entryShimFile))
	require.Equal(t, "require('./window-frame-fix.js');\nrequire('./.vite/build/index.js');\n", entry)
}

func TestRewireEntryPoint(t *testing.T) {
	appDir := newAppDir(t, `{"name":"claude","main":".vite/build/index.js"}`)

	require.NoError(t, rewireEntryPoint(appDir))

	manifest, err := readPackageManifest(appDir)
	require.NoError(t, err)
	require.Equal(t, entryShimFile, manifest["main"])
	require.Equal(t, ".vite/build/index.js", manifest["originalMain"])

	optional, ok := manifest["optionalDependencies"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "*", optional["claude-native"])
}

func TestRewireEntryPointIsIdempotent(t *testing.T) {
	appDir := newAppDir(t, `{"name":"claude","main":".vite/build/index.js"}`)

	require.NoError(t, rewireEntryPoint(appDir))
	require.NoError(t, rewireEntryPoint(appDir))

	manifest, err := readPackageManifest(appDir)
	require.NoError(t, err)
	require.Equal(t, entryShimFile, manifest["main"])
	require.Equal(t, ".vite/build/index.js", manifest["originalMain"])
}

func TestShimAfterRewireStillTargetsOriginalMain(t *testing.T) {
	appDir := newAppDir(t, `{"name":"claude","main":".vite/build/index.js"}`)

	require.NoError(t, rewireEntryPoint(appDir))
	require.NoError(t, writeShimModules(appDir))

	entry := readTestFile(t, filepath.Join(appDir, entryShimFile))
	require.Contains(t, entry, "require('./.vite/build/index.js');")
	require.NotContains(t, entry, "require('./"+entryShimFile+"');")
}

func TestReadPackageMainRejectsMissingEntry(t *testing.T) {
	appDir := newAppDir(t, `{"name":"claude"}`)
	_, err := readPackageMain(appDir)
	require.ErrorContains(t, err, "no main entry point")
}

func TestWriteNativeStub(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "node_modules", "claude-native")
	require.NoError(t, writeNativeStub(dir))

	stub := readTestFile(t, filepath.Join(dir, "index.js"))
	require.Contains(t, stub, `getWindowsVersion: () => "10.0.0"`)
	require.Contains(t, stub, "getIsMaximized: () => false")
	require.Contains(t, stub, "setWindowEffect: () => {}")
	require.Contains(t, stub, "Enter: 261,")
	require.Contains(t, stub, "Meta: 187,")
	require.Contains(t, stub, "Object.freeze(KeyboardKey)")

	pkg := readTestFile(t, filepath.Join(dir, "package.json"))
	require.Contains(t, pkg, `"name": "claude-native"`)
}
