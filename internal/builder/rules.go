package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const mainBundle = ".vite/build/index.js"

// trayRegistrationRe discovers the tray click handler and the tray-menu
// variable it closes over from the minified main bundle. Both names change
// across vendor releases because the minifier renames them, so they are
// extracted at patch time rather than hard-coded. If the surrounding code
// shape disappears the build fails loudly instead of shipping a stale
// patch.
var trayRegistrationRe = regexp.MustCompile(`(\w+)\.on\(["'](?:click|right-click)["'],\s*(\w+)\)`)

const trayGuardFlag = "globalThis.__claudeTrayBusy"

// trayGuardRewrite makes the tray handler re-entrant-safe. Rapid
// double-clicks on the tray icon re-enter the handler while the previous
// DBus menu teardown is still in flight, which wedges the menu. The
// rewrite adds a time-boxed busy flag (auto-reset so a crashed invocation
// cannot block the tray forever) and a settle delay after the destroy()
// call on the discovered tray variable.
func trayGuardRewrite(content string) (string, error) {
	m := trayRegistrationRe.FindStringSubmatch(content)
	if m == nil {
		return "", fmt.Errorf("tray handler registration pattern not found in main bundle")
	}
	trayVar, handler := m[1], m[2]
	debugf("Discovered tray variable %q and handler %q\n", trayVar, handler)

	fnRe, err := regexp.Compile(`async function ` + regexp.QuoteMeta(handler) + `\(([^)]*)\)\s*\{`)
	if err != nil {
		return "", err
	}
	if !fnRe.MatchString(content) {
		return "", fmt.Errorf("tray handler %q is not an async function declaration; upstream shape changed", handler)
	}
	guard := fmt.Sprintf("async function %s($1){if(%s)return;%s=true;setTimeout(()=>{%s=false},%d);",
		handler, trayGuardFlag, trayGuardFlag, trayGuardFlag, TrayGuardResetMs)
	content = replaceFirst(fnRe, content, guard)

	destroyRe, err := regexp.Compile(regexp.QuoteMeta(trayVar) + `\.destroy\(\)`)
	if err != nil {
		return "", err
	}
	if !destroyRe.MatchString(content) {
		return "", fmt.Errorf("no %s.destroy() cleanup call found for discovered tray variable", trayVar)
	}
	settle := fmt.Sprintf("(%s.destroy(),await new Promise(r=>setTimeout(r,%d)))", trayVar, DBusSettleMs)
	content = replaceFirst(destroyRe, content, settle)

	return content, nil
}

// appPatchRules is the fixed transformation set applied to the unpacked
// app.asar tree. Order matters only for readability; every rule is
// independently idempotent.
func appPatchRules() []patchRule {
	return []patchRule{
		{
			// Minifiers emit window decoration flags in several spellings;
			// cover the literal and the negated-number forms.
			Name:   "force window frame",
			Target: patchTarget{ScanDir: ".vite/build", Contains: "BrowserWindow"},
			Edits: []anchorEdit{
				{Pattern: `frame:!1`, Template: `frame:!0`, All: true},
				{Pattern: `frame:\s*false`, Template: `frame:true`, All: true},
				{Pattern: `"frame":false`, Template: `"frame":true`, All: true},
			},
			Optional: true,
		},
		{
			Name:    "tray handler re-entrancy guard",
			Target:  patchTarget{File: mainBundle},
			Marker:  trayGuardFlag,
			Rewrite: trayGuardRewrite,
		},
		{
			// Hiding the window while an input is focused leaves the IME
			// popup orphaned on Linux; blur first.
			Name:          "blur input before hide",
			Target:        patchTarget{File: mainBundle},
			MarkerPattern: `(\w+)\.webContents\.blur\(\),\1\.hide\(\)`,
			Edits: []anchorEdit{
				{
					Pattern:  `(\w+)\.hide\(\),\1\.webContents\.blur\(\)`,
					Template: `$1.webContents.blur(),$1.hide()`,
				},
			},
		},
		{
			Name:   "claude CLI linux platform branch",
			Target: patchTarget{File: mainBundle},
			Marker: `claude-code-linux`,
			Edits: []anchorEdit{
				{
					Pattern:  `process\.platform===["']darwin["']\?["']claude-code-macos["']:["']claude-code-win\.exe["']`,
					Template: `process.platform==="darwin"?"claude-code-macos":process.platform==="linux"?"claude-code-linux":"claude-code-win.exe"`,
				},
			},
		},
	}
}

// patchAppResources is the full Archive Patcher step: unpack app.asar,
// inject the shim modules and the native-addon stub, apply the rule set,
// and repack. Repacking happens only after every rule succeeded.
func patchAppResources(ctx context.Context, bc *BuildContext) error {
	asarPath := filepath.Join(bc.resourcesDir(), "app.asar")
	appDir := bc.appDir()

	if err := os.RemoveAll(appDir); err != nil {
		return err
	}
	if err := unpackAsar(asarPath, appDir); err != nil {
		return err
	}

	if err := writeShimModules(appDir); err != nil {
		return err
	}
	if err := rewireEntryPoint(appDir); err != nil {
		return err
	}
	if err := writeNativeStub(filepath.Join(appDir, "node_modules", "claude-native")); err != nil {
		return err
	}

	if err := applyPatchRules(appDir, appPatchRules()); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Repack over the original bundle. This is the point of no return for
	// the resources tree, so it only runs once everything above succeeded.
	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)
	if err := packAsar(appDir, asarPath); err != nil {
		return err
	}

	// The unpacked sibling directory carries the native modules Electron
	// loads from disk rather than from inside the archive.
	unpackedDir := filepath.Join(bc.resourcesDir(), "app.asar.unpacked")
	if err := writeNativeStub(filepath.Join(unpackedDir, "node_modules", "claude-native")); err != nil {
		return err
	}

	return nil
}
