package builder

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// The patch layer rewrites minified build output we do not control. Each
// transformation is a patchRule: locate an anchor, apply a template, check
// a marker first so re-running the pipeline never double-applies. A
// required anchor that cannot be found aborts the whole build and leaves
// the target byte-identical; a stale patch silently producing wrong output
// would be worse than a loud failure.

// patchTarget selects the file(s) a rule operates on: either one exact
// path relative to the app tree, or a recursive scan filtered by a
// content substring.
type patchTarget struct {
	File     string
	ScanDir  string
	Contains string
}

// anchorEdit is one find/replace pair. Pattern is a regexp whose captures
// feed the Template ($1, $2, ...).
type anchorEdit struct {
	Pattern  string
	Template string
	All      bool
}

// patchRule is a single named transformation.
type patchRule struct {
	Name   string
	Target patchTarget
	// Marker, when found in the target, means the rule already applied.
	Marker string
	// MarkerPattern is the regexp form of Marker, for rules whose applied
	// shape embeds captured names.
	MarkerPattern string
	Edits         []anchorEdit
	// Rewrite replaces Edits for rules that must discover names at patch
	// time before templating.
	Rewrite func(content string) (string, error)
	// Optional rules skip files where no anchor matches instead of
	// failing; used for directory scans over minifier output.
	Optional bool
}

// errAnchorMissing distinguishes "anchor not found" from IO failures.
type errAnchorMissing struct {
	rule string
	file string
}

func (e *errAnchorMissing) Error() string {
	return fmt.Sprintf("patch %q: no anchor matched in %s (upstream code shape changed?)", e.rule, e.file)
}

// applyPatchRules runs every rule against the unpacked app tree, in order.
// Any error leaves already-patched files in place but prevents the caller
// from repacking (no partial archive is ever written).
func applyPatchRules(appDir string, rules []patchRule) error {
	for _, rule := range rules {
		files, err := rule.targets(appDir)
		if err != nil {
			return err
		}
		for _, file := range files {
			changed, err := applyRuleToFile(rule, file)
			if err != nil {
				return err
			}
			if changed {
				stepBanner("Applied patch %q to %s", rule.Name, strings.TrimPrefix(file, appDir+"/"))
			} else {
				debugf("Patch %q already applied (or no-op) for %s\n", rule.Name, file)
			}
		}
	}
	return nil
}

// targets resolves the rule's target selection to absolute paths and
// validates them. An exact-path target must exist; a scan may legitimately
// match nothing only when the rule is optional.
func (r *patchRule) targets(appDir string) ([]string, error) {
	if r.Target.File != "" {
		path := filepath.Join(appDir, r.Target.File)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("patch %q: target %s missing: %w", r.Name, r.Target.File, err)
		}
		return []string{path}, nil
	}

	scanRoot := filepath.Join(appDir, r.Target.ScanDir)
	var files []string
	err := filepath.WalkDir(scanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".js") {
			return nil
		}
		if r.Target.Contains != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if !strings.Contains(string(data), r.Target.Contains) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("patch %q: scanning %s: %w", r.Name, scanRoot, err)
	}
	if len(files) == 0 && !r.Optional {
		return nil, fmt.Errorf("patch %q: no file under %s mentions %q", r.Name, r.Target.ScanDir, r.Target.Contains)
	}
	return files, nil
}

// applyRuleToFile applies one rule to one file. Returns whether the file
// was modified. The file is written only when the content changed, and
// never when any anchor check failed.
func applyRuleToFile(rule patchRule, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("patch %q: reading %s: %w", rule.Name, path, err)
	}
	content := string(data)

	if applied, err := rule.alreadyApplied(content); err != nil {
		return false, err
	} else if applied {
		return false, nil
	}

	patched, err := rule.apply(content, path)
	if err != nil {
		if _, missing := err.(*errAnchorMissing); missing && rule.Optional {
			return false, nil
		}
		return false, err
	}
	if patched == content {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode()); err != nil {
		return false, fmt.Errorf("patch %q: writing %s: %w", rule.Name, path, err)
	}
	return true, nil
}

func (r *patchRule) alreadyApplied(content string) (bool, error) {
	if r.Marker != "" && strings.Contains(content, r.Marker) {
		return true, nil
	}
	if r.MarkerPattern != "" {
		re, err := regexp.Compile(r.MarkerPattern)
		if err != nil {
			return false, fmt.Errorf("patch %q: bad marker pattern: %w", r.Name, err)
		}
		if re.MatchString(content) {
			return true, nil
		}
	}
	return false, nil
}

func (r *patchRule) apply(content, path string) (string, error) {
	if r.Rewrite != nil {
		return r.Rewrite(content)
	}

	matchedAny := false
	for _, edit := range r.Edits {
		re, err := regexp.Compile(edit.Pattern)
		if err != nil {
			return "", fmt.Errorf("patch %q: bad pattern %q: %w", r.Name, edit.Pattern, err)
		}
		if !re.MatchString(content) {
			continue
		}
		matchedAny = true
		if edit.All {
			content = re.ReplaceAllString(content, edit.Template)
		} else {
			content = replaceFirst(re, content, edit.Template)
		}
	}
	if !matchedAny {
		return "", &errAnchorMissing{rule: r.Name, file: path}
	}
	return content, nil
}

// replaceFirst applies a regexp replacement to the first match only.
func replaceFirst(re *regexp.Regexp, content, template string) string {
	loc := re.FindStringIndex(content)
	if loc == nil {
		return content
	}
	head := content[:loc[0]]
	tail := content[loc[1]:]
	replaced := re.ReplaceAllString(content[loc[0]:loc[1]], template)
	return head + replaced + tail
}
