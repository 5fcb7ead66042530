package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// nupkgVersionRe pulls the semantic version triple out of the payload
// filename, e.g. AnthropicClaude-0.9.3-full.nupkg -> 0.9.3.
var nupkgVersionRe = regexp.MustCompile(`AnthropicClaude-(\d+\.\d+\.\d+)-full\.nupkg$`)

func (bc *BuildContext) installerDir() string {
	return filepath.Join(bc.WorkDir, "installer")
}

func (bc *BuildContext) payloadDir() string {
	return filepath.Join(bc.WorkDir, "payload")
}

func (bc *BuildContext) appDir() string {
	return filepath.Join(bc.WorkDir, "app")
}

// fetchInstaller downloads the vendor installer into the cache and places
// a copy under the work tree.
func fetchInstaller(bc *BuildContext, cfg *Config) error {
	cached, err := fetchToCache(bc.InstallerURL)
	if err != nil {
		return fmt.Errorf("failed to download installer from %s: %w", bc.InstallerURL, err)
	}

	if err := verifyExpectedChecksum(cached, cfg.Values["CLAUDE_BUILD_INSTALLER_B3SUM"]); err != nil {
		return err
	}

	dest := filepath.Join(bc.WorkDir, bc.InstallerFile)
	if err := copyFile(cached, dest); err != nil {
		return fmt.Errorf("failed to copy installer into work tree: %w", err)
	}
	return nil
}

// extractInstaller unpacks the installer exe and then its embedded nupkg
// payload. The nupkg filename is the sole source of the package version,
// so locating exactly one and parsing it happens here, before any patch
// step runs.
func extractInstaller(bc *BuildContext) error {
	exePath := filepath.Join(bc.WorkDir, bc.InstallerFile)
	if err := extractInstallerExe(exePath, bc.installerDir()); err != nil {
		return err
	}

	nupkg, err := locatePayload(bc.installerDir())
	if err != nil {
		return err
	}

	version, err := parsePayloadVersion(nupkg)
	if err != nil {
		return err
	}
	bc.Version = version
	stepBanner("Detected Claude Desktop version %s", version)

	if err := unzipGo(nupkg, bc.payloadDir()); err != nil {
		return fmt.Errorf("failed to extract payload %s: %w", nupkg, err)
	}
	return nil
}

// locatePayload finds the single versioned nupkg inside the extracted
// installer. Zero or multiple matches abort the build.
func locatePayload(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "AnthropicClaude-*-full.nupkg"))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no AnthropicClaude-*-full.nupkg found in %s: the installer layout may have changed", dir)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("expected exactly one payload archive in %s, found %d", dir, len(matches))
	}
}

// parsePayloadVersion extracts the X.Y.Z version from a payload filename.
func parsePayloadVersion(nupkgPath string) (string, error) {
	m := nupkgVersionRe.FindStringSubmatch(filepath.Base(nupkgPath))
	if m == nil {
		return "", fmt.Errorf("cannot parse version from payload filename %q", filepath.Base(nupkgPath))
	}
	return m[1], nil
}

// resourcesDir is where the Windows build keeps app.asar and friends.
func (bc *BuildContext) resourcesDir() string {
	return filepath.Join(bc.payloadDir(), "lib", "net45", "resources")
}

// verifyPayloadLayout sanity-checks the extracted payload before patching.
func verifyPayloadLayout(bc *BuildContext) error {
	asarPath := filepath.Join(bc.resourcesDir(), "app.asar")
	if _, err := os.Stat(asarPath); err != nil {
		return fmt.Errorf("payload is missing resources/app.asar: %w", err)
	}
	return nil
}
