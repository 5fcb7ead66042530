package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSpecData() specData {
	return specData{
		Name:        "claude-desktop",
		Version:     "0.9.3",
		Arch:        "x86_64",
		Maintainer:  "Jane Doe <jane@example.com>",
		Description: "Claude Desktop for Linux",
		IconPaths: []string{
			"/usr/share/icons/hicolor/32x32/apps/claude-desktop.png",
			"/usr/share/icons/hicolor/256x256/apps/claude-desktop.png",
		},
	}
}

func TestDesktopEntryTemplate(t *testing.T) {
	out, err := renderTemplate(desktopEntryTmpl, testSpecData())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "[Desktop Entry]\n"))
	require.Contains(t, out, "Exec=/usr/bin/claude-desktop %u")
	require.Contains(t, out, "MimeType=x-scheme-handler/claude;")
	require.Contains(t, out, "StartupWMClass=Claude")
}

func TestLauncherTemplate(t *testing.T) {
	out, err := renderTemplate(launcherTmpl, testSpecData())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "#!/bin/bash\n"))
	require.Contains(t, out, `BACKEND="${CLAUDE_BACKEND:-}"`)
	require.Contains(t, out, `WAYLAND_DISPLAY`)
	require.Contains(t, out, "--ozone-platform=wayland")
	require.Contains(t, out, "--ozone-platform=x11")
	require.Contains(t, out, "exec /usr/lib/claude-desktop/electron/electron")
	require.Contains(t, out, "launcher.log")
}

func TestRPMSpecTemplate(t *testing.T) {
	out, err := renderTemplate(rpmSpecTmpl, testSpecData())
	require.NoError(t, err)
	require.Contains(t, out, "Name:           claude-desktop")
	require.Contains(t, out, "Version:        0.9.3")
	require.Contains(t, out, "BuildArch:      x86_64")
	require.Contains(t, out, "AutoReqProv:    no")
	require.Contains(t, out, "/usr/bin/claude-desktop\n")
	require.Contains(t, out, "/usr/lib/claude-desktop/\n")
	require.Contains(t, out, "/usr/share/applications/claude-desktop.desktop")
	require.Contains(t, out, "/usr/share/icons/hicolor/256x256/apps/claude-desktop.png")
	require.Contains(t, out, "chown root:root /usr/lib/claude-desktop/electron/chrome-sandbox")
	require.Contains(t, out, "chmod 4755")
}
