package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// PackageJob carries every parameter of the package step explicitly. The
// step runs as its own process (the build pipeline re-executes the binary
// with the `package` subcommand), so nothing here may lean on the build
// process's globals.
type PackageJob struct {
	Version     string
	Arch        string
	WorkDir     string
	StagingDir  string
	Name        string
	Maintainer  string
	Description string
}

// PackageJobFromArgs validates the seven positional arguments of the
// package subcommand.
func PackageJobFromArgs(args []string) (*PackageJob, error) {
	if len(args) != 7 {
		return nil, fmt.Errorf("package requires exactly 7 arguments: version arch workdir stagingdir name maintainer description (got %d)", len(args))
	}
	job := &PackageJob{
		Version:     args[0],
		Arch:        args[1],
		WorkDir:     args[2],
		StagingDir:  args[3],
		Name:        args[4],
		Maintainer:  args[5],
		Description: args[6],
	}
	if job.Arch != "x86_64" && job.Arch != "aarch64" {
		return nil, fmt.Errorf("unsupported package architecture %q", job.Arch)
	}
	if _, err := os.Stat(job.StagingDir); err != nil {
		return nil, fmt.Errorf("staging directory %s does not exist: %w", job.StagingDir, err)
	}
	return job, nil
}

func (j *PackageJob) topDir() string {
	return filepath.Join(j.WorkDir, "rpmbuild")
}

func (j *PackageJob) buildRoot() string {
	return filepath.Join(j.topDir(), "BUILDROOT", fmt.Sprintf("%s-%s-1.%s", j.Name, j.Version, j.Arch))
}

// BuildPackage lays out the FHS install tree under an rpmbuild buildroot,
// renders the generated artifacts, runs rpmbuild and drops the renamed
// RPM into the current directory.
func BuildPackage(ctx context.Context, job *PackageJob) error {
	for _, dir := range []string{"SPECS", "BUILD", "RPMS", "SOURCES", "SRPMS", "BUILDROOT"} {
		if err := os.MkdirAll(filepath.Join(job.topDir(), dir), 0o755); err != nil {
			return err
		}
	}
	if err := recreateDir(job.buildRoot()); err != nil {
		return err
	}

	usr := filepath.Join(job.buildRoot(), "usr")

	// Bundled runtime and resources.
	stepBanner("Laying out install tree")
	if err := copyDir(job.StagingDir, usr); err != nil {
		return fmt.Errorf("failed to copy staging tree: %w", err)
	}

	// Launcher script.
	launcher, err := renderTemplate(launcherTmpl, job)
	if err != nil {
		return err
	}
	binDir := filepath.Join(usr, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(binDir, job.Name), []byte(launcher), 0o755); err != nil {
		return fmt.Errorf("failed to write launcher: %w", err)
	}

	// Desktop entry.
	desktop, err := renderTemplate(desktopEntryTmpl, job)
	if err != nil {
		return err
	}
	appsDir := filepath.Join(usr, "share", "applications")
	if err := os.MkdirAll(appsDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(appsDir, job.Name+".desktop"), []byte(desktop), 0o644); err != nil {
		return fmt.Errorf("failed to write desktop entry: %w", err)
	}

	// Icons: install each size that was actually extracted; a missing
	// size is a warning, not a failure.
	iconPaths, err := installIcons(job, usr)
	if err != nil {
		return err
	}

	// RPM spec with embedded file list.
	spec, err := renderTemplate(rpmSpecTmpl, specData{
		Name:        job.Name,
		Version:     job.Version,
		Arch:        job.Arch,
		Maintainer:  job.Maintainer,
		Description: job.Description,
		IconPaths:   iconPaths,
	})
	if err != nil {
		return err
	}
	specPath := filepath.Join(job.topDir(), "SPECS", job.Name+".spec")
	if err := os.WriteFile(specPath, []byte(spec), 0o644); err != nil {
		return fmt.Errorf("failed to write spec file: %w", err)
	}

	// rpmbuild must not be interrupted mid-write.
	stepBanner("Running rpmbuild")
	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)

	cmd := exec.CommandContext(ctx, "rpmbuild", "-bb",
		"--define", "_topdir "+mustAbs(job.topDir()),
		"--buildroot", mustAbs(job.buildRoot()),
		"--target", job.Arch,
		specPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rpmbuild failed: %w", err)
	}

	return collectArtifact(job)
}

// installIcons copies each extracted icon size into its hicolor slot and
// returns the install paths for the spec file list.
func installIcons(job *PackageJob, usr string) ([]string, error) {
	iconsDir := filepath.Join(job.WorkDir, "icons")
	var installed []string
	for _, size := range iconSizes {
		src, ok := iconForSize(iconsDir, size)
		if !ok {
			cPrintf(colWarn, "No %dx%d icon extracted; skipping that size.\n", size, size)
			continue
		}
		rel := filepath.Join("share", "icons", "hicolor", fmt.Sprintf("%dx%d", size, size), "apps", job.Name+".png")
		if err := copyFile(src, filepath.Join(usr, rel)); err != nil {
			return nil, fmt.Errorf("failed to install %dx%d icon: %w", size, size, err)
		}
		installed = append(installed, "/usr/"+rel)
	}
	if len(installed) == 0 {
		cPrintf(colWarn, "No icons were installed; the desktop entry will use a generic icon.\n")
	}
	return installed, nil
}

// collectArtifact locates the single RPM rpmbuild produced and renames it
// into the invocation directory.
func collectArtifact(job *PackageJob) error {
	pattern := filepath.Join(job.topDir(), "RPMS", job.Arch, fmt.Sprintf("%s-%s-1.%s.rpm", job.Name, job.Version, job.Arch))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	if len(matches) != 1 {
		return fmt.Errorf("expected exactly one RPM matching %s, found %d", pattern, len(matches))
	}

	dest := fmt.Sprintf("%s-%s-1.%s.rpm", job.Name, job.Version, job.Arch)
	if err := copyFile(matches[0], dest); err != nil {
		return fmt.Errorf("failed to place final artifact: %w", err)
	}
	stepBanner("Built %s", dest)
	return nil
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
