package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// The claude-native addon wraps Windows-only keyboard and window APIs.
// The stub keeps the application code running unmodified on Linux: every
// exported function exists and returns a harmless fixed value. The
// surface is described as data so a vendor release that grows the addon
// only needs a table entry, not new generated-source plumbing.

type stubFunc struct {
	Name   string
	Result string // JS literal returned by the stub; empty means undefined
}

var nativeStubSurface = []stubFunc{
	{Name: "getWindowsVersion", Result: `"10.0.0"`},
	{Name: "getIsMaximized", Result: "false"},
	{Name: "setWindowEffect"},
	{Name: "removeWindowEffect"},
	{Name: "flashFrame"},
	{Name: "clearFlashFrame"},
	{Name: "showNotification"},
	{Name: "setProgressBar"},
	{Name: "clearProgressBar"},
	{Name: "setOverlayIcon"},
	{Name: "clearOverlayIcon"},
}

// keyboardKeyCodes mirrors the KeyboardKey enum the real addon exports;
// the renderer feeds these through IPC even when no key handling happens.
var keyboardKeyCodes = []struct {
	Name string
	Code int
}{
	{"Backspace", 43},
	{"Tab", 280},
	{"Enter", 261},
	{"Shift", 272},
	{"Control", 61},
	{"Alt", 40},
	{"CapsLock", 56},
	{"Escape", 85},
	{"Space", 276},
	{"PageUp", 251},
	{"PageDown", 250},
	{"End", 83},
	{"Home", 154},
	{"LeftArrow", 175},
	{"UpArrow", 282},
	{"RightArrow", 262},
	{"DownArrow", 81},
	{"Delete", 79},
	{"Meta", 187},
}

// renderNativeStub produces the stub module source from the surface table.
func renderNativeStub() string {
	var b strings.Builder
	b.WriteString("// No-op replacement for the Windows-only claude-native addon.\n")

	b.WriteString("const KeyboardKey = {\n")
	for _, k := range keyboardKeyCodes {
		fmt.Fprintf(&b, "  %s: %d,\n", k.Name, k.Code)
	}
	b.WriteString("};\nObject.freeze(KeyboardKey);\n\n")

	b.WriteString("module.exports = {\n")
	for _, fn := range nativeStubSurface {
		if fn.Result == "" {
			fmt.Fprintf(&b, "  %s: () => {},\n", fn.Name)
		} else {
			fmt.Fprintf(&b, "  %s: () => %s,\n", fn.Name, fn.Result)
		}
	}
	b.WriteString("  KeyboardKey,\n};\n")
	return b.String()
}

const nativeStubManifest = `{
  "name": "claude-native",
  "version": "1.0.0",
  "main": "index.js",
  "description": "Stub implementation of claude-native for Linux"
}
`

// writeNativeStub installs the stub package at dir, replacing whatever
// the vendor shipped there.
func writeNativeStub(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create stub directory %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte(renderNativeStub()), 0o644); err != nil {
		return fmt.Errorf("failed to write native stub: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(nativeStubManifest), 0o644); err != nil {
		return fmt.Errorf("failed to write native stub manifest: %w", err)
	}
	return nil
}
