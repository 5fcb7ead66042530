package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// bundleRuntime assembles the staging tree: the patched resources, the
// local Electron runtime, and (when the native build succeeded) node-pty.
// Every path written here is what the launcher script and the RPM file
// list expect to find.
func bundleRuntime(ctx context.Context, bc *BuildContext) error {
	libDir := filepath.Join(bc.StagingDir, "lib", PackageName)
	if err := recreateDir(libDir); err != nil {
		return err
	}

	// Patched application resources go where Electron resolves them
	// relative to its own binary: <dist>/resources.
	stepBanner("Staging patched application resources")
	electronDest := filepath.Join(libDir, "electron")
	if err := copyDir(bc.electronDistDir(), electronDest); err != nil {
		return fmt.Errorf("failed to copy electron runtime: %w", err)
	}

	resourcesDest := filepath.Join(electronDest, "resources")
	asarSrc := filepath.Join(bc.resourcesDir(), "app.asar")
	if err := copyFile(asarSrc, filepath.Join(resourcesDest, "app.asar")); err != nil {
		return fmt.Errorf("failed to copy app.asar: %w", err)
	}

	unpackedSrc := filepath.Join(bc.resourcesDir(), "app.asar.unpacked")
	if _, err := os.Stat(unpackedSrc); err == nil {
		if err := copyDir(unpackedSrc, filepath.Join(resourcesDest, "app.asar.unpacked")); err != nil {
			return fmt.Errorf("failed to copy app.asar.unpacked: %w", err)
		}
	}

	// node-pty is optional: a failed native compile earlier only warned.
	ptySrc := bc.nodePtyDir()
	ptyBinary := filepath.Join(ptySrc, "build", "Release", "pty.node")
	if _, err := os.Stat(ptyBinary); err == nil {
		ptyDest := filepath.Join(resourcesDest, "app.asar.unpacked", "node_modules", "node-pty")
		if err := copyDir(ptySrc, ptyDest); err != nil {
			return fmt.Errorf("failed to copy node-pty: %w", err)
		}
	} else {
		cPrintf(colWarn, "node-pty binary not present; packaging without terminal support.\n")
	}

	return nil
}
