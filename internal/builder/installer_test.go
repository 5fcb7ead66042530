package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}

func TestLocatePayload(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Setup.exe")
	touch(t, dir, "AnthropicClaude-0.9.3-full.nupkg")

	nupkg, err := locatePayload(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "AnthropicClaude-0.9.3-full.nupkg"), nupkg)
}

func TestLocatePayloadNoneFound(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Setup.exe")

	_, err := locatePayload(dir)
	require.ErrorContains(t, err, "no AnthropicClaude")
}

func TestLocatePayloadAmbiguous(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "AnthropicClaude-0.9.3-full.nupkg")
	touch(t, dir, "AnthropicClaude-0.9.4-full.nupkg")

	_, err := locatePayload(dir)
	require.ErrorContains(t, err, "exactly one")
}

func TestParsePayloadVersion(t *testing.T) {
	v, err := parsePayloadVersion("/work/installer/AnthropicClaude-0.11.6-full.nupkg")
	require.NoError(t, err)
	require.Equal(t, "0.11.6", v)

	_, err = parsePayloadVersion("AnthropicClaude-0.9.3-delta.nupkg")
	require.Error(t, err)

	_, err = parsePayloadVersion("AnthropicClaude-nightly-full.nupkg")
	require.Error(t, err)
}

func TestVerifyPayloadLayout(t *testing.T) {
	work := t.TempDir()
	bc := &BuildContext{WorkDir: work}

	require.Error(t, verifyPayloadLayout(bc))

	resources := bc.resourcesDir()
	require.NoError(t, os.MkdirAll(resources, 0o755))
	touch(t, resources, "app.asar")
	require.NoError(t, verifyPayloadLayout(bc))
}
