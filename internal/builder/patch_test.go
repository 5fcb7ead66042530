package builder

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplyPatchRulesRewritesTarget(t *testing.T) {
	appDir := t.TempDir()
	path := writeTestFile(t, appDir, "main.js", `launch({frame:!1,width:800});`)

	rules := []patchRule{{
		Name:   "enable frame",
		Target: patchTarget{File: "main.js"},
		Edits:  []anchorEdit{{Pattern: `frame:!1`, Template: `frame:!0`}},
	}}
	require.NoError(t, applyPatchRules(appDir, rules))
	require.Equal(t, `launch({frame:!0,width:800});`, readTestFile(t, path))
}

func TestApplyPatchRulesMissingAnchorFailsAndLeavesFileIntact(t *testing.T) {
	appDir := t.TempDir()
	original := `nothing to see here`
	path := writeTestFile(t, appDir, "main.js", original)

	rules := []patchRule{{
		Name:   "enable frame",
		Target: patchTarget{File: "main.js"},
		Edits:  []anchorEdit{{Pattern: `frame:!1`, Template: `frame:!0`}},
	}}
	err := applyPatchRules(appDir, rules)
	require.Error(t, err)
	var missing *errAnchorMissing
	require.True(t, errors.As(err, &missing))
	require.Equal(t, original, readTestFile(t, path))
}

func TestApplyPatchRulesMissingTargetFileFails(t *testing.T) {
	appDir := t.TempDir()
	rules := []patchRule{{
		Name:   "enable frame",
		Target: patchTarget{File: "does-not-exist.js"},
		Edits:  []anchorEdit{{Pattern: `x`, Template: `y`}},
	}}
	err := applyPatchRules(appDir, rules)
	require.ErrorContains(t, err, "does-not-exist.js")
}

func TestMarkerSkipsAlreadyPatchedFile(t *testing.T) {
	appDir := t.TempDir()
	original := `/* patched-v2 */ launch({frame:!1});`
	path := writeTestFile(t, appDir, "main.js", original)

	rules := []patchRule{{
		Name:   "enable frame",
		Target: patchTarget{File: "main.js"},
		Marker: "patched-v2",
		Edits:  []anchorEdit{{Pattern: `frame:!1`, Template: `frame:!0`}},
	}}
	require.NoError(t, applyPatchRules(appDir, rules))
	require.Equal(t, original, readTestFile(t, path))
}

func TestMarkerPatternSkipsAlreadyPatchedFile(t *testing.T) {
	appDir := t.TempDir()
	original := `w.webContents.blur(),w.hide();`
	path := writeTestFile(t, appDir, "main.js", original)

	rules := []patchRule{{
		Name:          "blur before hide",
		Target:        patchTarget{File: "main.js"},
		MarkerPattern: `(\w+)\.webContents\.blur\(\),\1\.hide\(\)`,
		Edits: []anchorEdit{{
			Pattern:  `(\w+)\.hide\(\),\1\.webContents\.blur\(\)`,
			Template: `$1.webContents.blur(),$1.hide()`,
		}},
	}}
	require.NoError(t, applyPatchRules(appDir, rules))
	require.Equal(t, original, readTestFile(t, path))
}

func TestScanTargetFiltersByContent(t *testing.T) {
	appDir := t.TempDir()
	hit := writeTestFile(t, appDir, "build/a.js", `new BrowserWindow({frame:!1})`)
	miss := writeTestFile(t, appDir, "build/b.js", `console.log("frame:!1")`)

	rules := []patchRule{{
		Name:     "enable frame",
		Target:   patchTarget{ScanDir: "build", Contains: "BrowserWindow"},
		Edits:    []anchorEdit{{Pattern: `frame:!1`, Template: `frame:!0`, All: true}},
		Optional: true,
	}}
	require.NoError(t, applyPatchRules(appDir, rules))
	require.Contains(t, readTestFile(t, hit), "frame:!0")
	require.Contains(t, readTestFile(t, miss), "frame:!1")
}

func TestRequiredScanWithNoMatchingFileFails(t *testing.T) {
	appDir := t.TempDir()
	writeTestFile(t, appDir, "build/a.js", `plain`)

	rules := []patchRule{{
		Name:   "enable frame",
		Target: patchTarget{ScanDir: "build", Contains: "BrowserWindow"},
		Edits:  []anchorEdit{{Pattern: `frame:!1`, Template: `frame:!0`}},
	}}
	require.ErrorContains(t, applyPatchRules(appDir, rules), "BrowserWindow")
}

func TestOptionalRuleToleratesMissingAnchor(t *testing.T) {
	appDir := t.TempDir()
	path := writeTestFile(t, appDir, "build/a.js", `new BrowserWindow({})`)

	rules := []patchRule{{
		Name:     "enable frame",
		Target:   patchTarget{ScanDir: "build", Contains: "BrowserWindow"},
		Edits:    []anchorEdit{{Pattern: `frame:!1`, Template: `frame:!0`}},
		Optional: true,
	}}
	require.NoError(t, applyPatchRules(appDir, rules))
	require.Equal(t, `new BrowserWindow({})`, readTestFile(t, path))
}

func TestReplaceFirstOnlyTouchesFirstMatch(t *testing.T) {
	re := regexp.MustCompile(`(\w+)\.go`)
	got := replaceFirst(re, "a.go b.go c.go", "$1.stop")
	require.Equal(t, "a.stop b.go c.go", got)

	require.Equal(t, "none", replaceFirst(regexp.MustCompile(`zzz`), "none", "x"))
}
