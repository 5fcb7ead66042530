package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIconForSize(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "claude_1_16x16x32.png")
	touch(t, dir, "claude_5_256x256x32.png")
	touch(t, dir, "claude.ico")

	path, ok := iconForSize(dir, 16)
	require.True(t, ok)
	require.Contains(t, path, "16x16")

	path, ok = iconForSize(dir, 256)
	require.True(t, ok)
	require.Contains(t, path, "256x256")

	_, ok = iconForSize(dir, 48)
	require.False(t, ok)
}

func TestIconSizesIncludeTrayAndHiDPISlots(t *testing.T) {
	require.Contains(t, iconSizes, 16)
	require.Contains(t, iconSizes, 256)
}
