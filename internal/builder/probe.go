package builder

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// BuildContext carries everything the pipeline steps share: the detected
// host environment, the selected download endpoints and the working
// directory layout. Version stays empty until the installer payload has
// been extracted; its filename is the only source of the version string.
type BuildContext struct {
	Arch     string // rpm architecture tag: x86_64 or aarch64
	OSFamily string // fedora, rhel or suse

	InstallerURL  string
	InstallerFile string
	NodeURL       string

	WorkDir      string
	CacheDir     string
	ToolchainDir string
	StagingDir   string

	Version string // discovered mid-pipeline from the payload filename
}

const vendorDownloadBase = "https://storage.googleapis.com/osprey-downloads-c02f6a0d-347c-492b-a752-3e0651722e97"

// archSpec holds the per-architecture download selections.
type archSpec struct {
	rpmArch       string
	installerPath string
	installerFile string
	nodeArch      string
}

var supportedArches = map[string]archSpec{
	"amd64": {
		rpmArch:       "x86_64",
		installerPath: "nest-win-x64/Claude-Setup-x64.exe",
		installerFile: "Claude-Setup-x64.exe",
		nodeArch:      "x64",
	},
	"arm64": {
		rpmArch:       "aarch64",
		installerPath: "nest-win-arm64/Claude-Setup-arm64.exe",
		installerFile: "Claude-Setup-arm64.exe",
		nodeArch:      "arm64",
	},
}

// ProbeEnvironment validates the host and assembles the BuildContext.
// Unsupported architectures and non-RPM distributions fail here, before
// any directory is created.
func ProbeEnvironment(cfg *Config) (*BuildContext, error) {
	spec, ok := supportedArches[hostArch]
	if !ok {
		return nil, fmt.Errorf("unsupported architecture %q: supported values are x86_64 (amd64) and aarch64 (arm64)", hostArch)
	}

	family, err := detectOSFamily("/etc/os-release")
	if err != nil {
		return nil, err
	}

	bc := &BuildContext{
		Arch:          spec.rpmArch,
		OSFamily:      family,
		InstallerURL:  fmt.Sprintf("%s/%s", vendorDownloadBase, spec.installerPath),
		InstallerFile: spec.installerFile,
		NodeURL:       fmt.Sprintf("https://nodejs.org/dist/v%s/node-v%s-linux-%s.tar.xz", NodeVersion, NodeVersion, spec.nodeArch),
		WorkDir:       WorkDir,
		CacheDir:      CacheDir,
		ToolchainDir:  ToolchainDir,
		StagingDir:    StagingDir,
	}

	// Config may pin an alternate installer URL (e.g. a mirrored copy).
	if u := cfg.Values["CLAUDE_BUILD_DOWNLOAD_URL"]; u != "" {
		bc.InstallerURL = u
	}

	return bc, nil
}

// detectOSFamily classifies the distribution from os-release ID/ID_LIKE.
// Only RPM-based families are accepted since the output is an RPM.
func detectOSFamily(osReleasePath string) (string, error) {
	file, err := os.Open(osReleasePath)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", osReleasePath, err)
	}
	defer file.Close()

	fields := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		fields[parts[0]] = strings.Trim(parts[1], `"'`)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	ids := []string{fields["ID"]}
	ids = append(ids, strings.Fields(fields["ID_LIKE"])...)

	for _, id := range ids {
		switch id {
		case "fedora":
			return "fedora", nil
		case "rhel", "centos", "rocky", "almalinux":
			return "rhel", nil
		case "opensuse", "suse", "opensuse-tumbleweed", "opensuse-leap", "sles":
			return "suse", nil
		}
	}

	return "", fmt.Errorf("unsupported distribution %q: an RPM-based system (Fedora, RHEL, openSUSE) is required", fields["ID"])
}

// packageManagerFor maps the OS family to its package manager invocation.
func packageManagerFor(family string) (string, []string, error) {
	switch family {
	case "fedora":
		return "dnf", []string{"install", "-y"}, nil
	case "rhel":
		return "yum", []string{"install", "-y"}, nil
	case "suse":
		return "zypper", []string{"install", "-y"}, nil
	}
	return "", nil, fmt.Errorf("no package manager known for OS family %q", family)
}
