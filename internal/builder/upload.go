package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MirrorEntry is one published RPM in the mirror index.
type MirrorEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Arch    string `json:"arch"`
	File    string `json:"file"`
	BLAKE3  string `json:"b3sum"`
}

const mirrorIndexKey = "rpm-index.json"

var rpmNameRe = regexp.MustCompile(`^(.+)-(\d+\.\d+\.\d+)-1\.(x86_64|aarch64)\.rpm$`)

// newestRPM picks the highest-versioned artifact. A plain string sort
// would rank 0.9.0 above 0.10.0, so the version triple is compared
// numerically; names that do not parse lose to any that do.
func newestRPM(paths []string) string {
	best := paths[0]
	bestKey := rpmVersionKey(best)
	for _, p := range paths[1:] {
		if key := rpmVersionKey(p); versionLess(bestKey, key) {
			best, bestKey = p, key
		}
	}
	return best
}

func rpmVersionKey(path string) [3]int {
	m := rpmNameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return [3]int{-1, -1, -1}
	}
	var key [3]int
	for i, part := range strings.SplitN(m[2], ".", 3) {
		key[i], _ = strconv.Atoi(part)
	}
	return key
}

func versionLess(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// handleUploadCommand pushes a built RPM (the named file, or the newest
// matching RPM in the current directory) to the mirror bucket and updates
// the index object.
func handleUploadCommand(ctx context.Context, args []string, cfg *Config) error {
	var rpmPath string
	if len(args) > 0 {
		rpmPath = args[0]
	} else {
		matches, err := filepath.Glob(PackageName + "-*.rpm")
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no %s-*.rpm found in the current directory; pass a path explicitly", PackageName)
		}
		rpmPath = newestRPM(matches)
	}

	base := filepath.Base(rpmPath)
	m := rpmNameRe.FindStringSubmatch(base)
	if m == nil {
		return fmt.Errorf("%s does not look like a built package (<name>-<version>-1.<arch>.rpm)", base)
	}

	digest, err := hashFile(rpmPath)
	if err != nil {
		return err
	}

	r2, err := NewR2Client(cfg)
	if err != nil {
		return err
	}

	stepBanner("Uploading %s", base)
	if err := r2.UploadFile(ctx, base, rpmPath); err != nil {
		return fmt.Errorf("upload of %s failed: %w", base, err)
	}

	// Read-modify-write the index; a missing index just means this is the
	// first upload.
	var entries []MirrorEntry
	if data, err := r2.DownloadFile(ctx, mirrorIndexKey); err == nil {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("mirror index is corrupt: %w", err)
		}
	} else {
		debugf("No existing mirror index: %v\n", err)
	}

	entry := MirrorEntry{Name: m[1], Version: m[2], Arch: m[3], File: base, BLAKE3: digest}
	replaced := false
	for i, e := range entries {
		if e.Name == entry.Name && e.Arch == entry.Arch {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Arch < entries[j].Arch
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := r2.UploadBytes(ctx, mirrorIndexKey, data); err != nil {
		return fmt.Errorf("failed to update mirror index: %w", err)
	}

	stepBanner("Mirror index updated (%d entries)", len(entries))
	return nil
}
