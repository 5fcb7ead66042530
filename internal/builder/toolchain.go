package builder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// toolPackages lists the distro packages the pipeline needs per OS
// family: 7z for the installer exe, icoutils for the icon extraction,
// rpm-build for the final packaging step.
var toolPackages = map[string][]string{
	"fedora": {"p7zip", "p7zip-plugins", "icoutils", "rpm-build", "npm"},
	"rhel":   {"p7zip", "p7zip-plugins", "icoutils", "rpm-build", "npm"},
	"suse":   {"p7zip-full", "icoutils", "rpm-build", "npm"},
}

// ensureSystemTools installs the external tools through the distro
// package manager. Already-installed packages make this a no-op on the
// package manager's side.
func ensureSystemTools(bc *BuildContext) error {
	pkgs, ok := toolPackages[bc.OSFamily]
	if !ok {
		return fmt.Errorf("no tool package list for OS family %q", bc.OSFamily)
	}

	manager, args, err := packageManagerFor(bc.OSFamily)
	if err != nil {
		return err
	}

	stepBanner("Ensuring build tools via %s", manager)
	cmd := exec.Command(manager, append(args, pkgs...)...)
	if err := RootExec.Run(cmd); err != nil {
		return fmt.Errorf("failed to install build tools with %s: %w", manager, err)
	}
	return nil
}

// nodeMajorVersion parses the major component of `node -v` output like
// "v20.18.1".
func nodeMajorVersion(output string) (int, error) {
	v := strings.TrimSpace(output)
	v = strings.TrimPrefix(v, "v")
	parts := strings.SplitN(v, ".", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, fmt.Errorf("unparseable node version %q", output)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("unparseable node version %q: %w", output, err)
	}
	return major, nil
}

func (bc *BuildContext) localNodeDir() string {
	return filepath.Join(bc.ToolchainDir, "node")
}

// ensureNode accepts a system node of sufficient major version, otherwise
// provisions the pinned version into the toolchain directory and prepends
// its bin to PATH for the remainder of the run.
func ensureNode(bc *BuildContext) error {
	if path, err := exec.LookPath("node"); err == nil {
		var out bytes.Buffer
		cmd := exec.Command(path, "-v")
		cmd.Stdout = &out
		if err := cmd.Run(); err == nil {
			if major, err := nodeMajorVersion(out.String()); err == nil && major >= NodeMinMajor {
				debugf("System node %s is sufficient (>= %d)\n", strings.TrimSpace(out.String()), NodeMinMajor)
				return nil
			}
		}
	}

	localBin := filepath.Join(bc.localNodeDir(), "bin", "node")
	if _, err := os.Stat(localBin); err != nil {
		stepBanner("Provisioning Node.js %s into toolchain", NodeVersion)
		cached, err := fetchToCache(bc.NodeURL)
		if err != nil {
			return fmt.Errorf("failed to download Node.js %s: %w", NodeVersion, err)
		}
		if err := extractTar(cached, bc.localNodeDir()); err != nil {
			return fmt.Errorf("failed to extract Node.js tarball: %w", err)
		}
		if _, err := os.Stat(localBin); err != nil {
			return fmt.Errorf("node binary missing after extraction: %w", err)
		}
	}

	// Prepend for this process and all children (npm, node-gyp).
	os.Setenv("PATH", filepath.Dir(localBin)+string(os.PathListSeparator)+os.Getenv("PATH"))
	return nil
}

func (bc *BuildContext) electronDistDir() string {
	return filepath.Join(bc.ToolchainDir, "node_modules", "electron", "dist")
}

func (bc *BuildContext) nodePtyDir() string {
	return filepath.Join(bc.ToolchainDir, "node_modules", "node-pty")
}

// npmInstall runs a local (never global) npm install inside the toolchain
// directory.
func npmInstall(ctx context.Context, dir string, pkgs ...string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	args := append([]string{"install", "--no-fund", "--no-audit"}, pkgs...)
	cmd := exec.CommandContext(ctx, "npm", args...)
	cmd.Dir = dir
	return UserExec.Run(cmd)
}

// ensureElectron installs the Electron package locally, checking for its
// dist binary first so repeated runs skip the install.
func ensureElectron(ctx context.Context, bc *BuildContext) error {
	electronBin := filepath.Join(bc.electronDistDir(), "electron")
	if _, err := os.Stat(electronBin); err == nil {
		debugf("Electron already provisioned at %s\n", electronBin)
		return nil
	}

	pkg := "electron"
	if ElectronVersion != "" {
		pkg = "electron@" + ElectronVersion
	}
	stepBanner("Installing %s into toolchain", pkg)
	if err := npmInstall(ctx, bc.ToolchainDir, pkg); err != nil {
		return fmt.Errorf("npm install of electron failed: %w", err)
	}
	if _, err := os.Stat(electronBin); err != nil {
		return fmt.Errorf("electron binary missing after npm install: %w", err)
	}
	return nil
}

// ensureNodePty installs and rebuilds node-pty. A failed native compile
// degrades terminal features but does not abort the build; this is the
// only tolerated external-tool failure in the pipeline.
func ensureNodePty(ctx context.Context, bc *BuildContext) error {
	ptyNode := filepath.Join(bc.nodePtyDir(), "build", "Release", "pty.node")
	if _, err := os.Stat(ptyNode); err == nil {
		debugf("node-pty already built at %s\n", ptyNode)
		return nil
	}

	stepBanner("Installing node-pty into toolchain")
	if err := npmInstall(ctx, bc.ToolchainDir, "node-pty"); err != nil {
		cPrintf(colWarn, "node-pty install failed: %v\nTerminal features will be unavailable in the packaged app.\n", err)
		return nil
	}
	if _, err := os.Stat(ptyNode); err != nil {
		cPrintf(colWarn, "node-pty native build output missing; terminal features will be unavailable.\n")
	}
	return nil
}
