package builder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// iconSizes are the hicolor theme slots the desktop entry can use.
var iconSizes = []int{16, 24, 32, 48, 64, 256}

func (bc *BuildContext) iconsDir() string {
	return filepath.Join(bc.WorkDir, "icons")
}

// extractIcons pulls the icon resource group out of the Windows installer
// executable and converts it to per-size PNGs. Tool failures are fatal
// (the desktop entry would be iconless), but an individual missing size
// later only warns.
func extractIcons(bc *BuildContext) error {
	if err := os.MkdirAll(bc.iconsDir(), 0o755); err != nil {
		return err
	}

	exePath := filepath.Join(bc.WorkDir, bc.InstallerFile)
	icoPath := filepath.Join(bc.iconsDir(), "claude.ico")

	// Resource type 14 is the icon group directory.
	cmd := exec.Command("wrestool", "-x", "-t", "14", "-o", icoPath, exePath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wrestool failed to extract icon group from %s: %w", exePath, err)
	}

	cmd = exec.Command("icotool", "-x", "-o", bc.iconsDir(), icoPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("icotool failed to convert %s: %w", icoPath, err)
	}

	return nil
}

// iconForSize finds the extracted PNG for a given square size. icotool
// names output like claude_1_16x16x32.png.
func iconForSize(iconsDir string, size int) (string, bool) {
	pattern := filepath.Join(iconsDir, fmt.Sprintf("*_%dx%dx*.png", size, size))
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}
