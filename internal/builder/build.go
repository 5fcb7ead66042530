package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// appendLog writes a timestamped line to the build log consumed by the
// 'log' command. Logging must never fail the build.
func appendLog(format string, args ...any) {
	if LogFile == "" {
		return
	}
	f, err := os.OpenFile(LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s "+format+"\n", append([]any{time.Now().Format(time.RFC3339)}, args...)...)
}

// buildSteps is the pipeline in its fixed order. Each step names what it
// needs and produces so a broken intermediate state is reported before
// the step runs, not as a confusing failure inside it.
func buildSteps(cfg *Config) []Step {
	return []Step{
		{
			Name: "provision build tools",
			Run: func(ctx context.Context, bc *BuildContext) error {
				return ensureSystemTools(bc)
			},
		},
		{
			Name: "provision Node.js",
			Run: func(ctx context.Context, bc *BuildContext) error {
				return ensureNode(bc)
			},
		},
		{
			Name: "provision Electron",
			Run:  ensureElectron,
			Makes: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.electronDistDir(), "electron")}
			},
		},
		{
			Name: "provision node-pty",
			Run:  ensureNodePty,
		},
		{
			Name: "fetch vendor installer",
			Run: func(ctx context.Context, bc *BuildContext) error {
				return fetchInstaller(bc, cfg)
			},
			Makes: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.WorkDir, bc.InstallerFile)}
			},
		},
		{
			Name: "extract installer payload",
			Needs: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.WorkDir, bc.InstallerFile)}
			},
			Run: func(ctx context.Context, bc *BuildContext) error {
				if err := extractInstaller(bc); err != nil {
					return err
				}
				return verifyPayloadLayout(bc)
			},
			Makes: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.resourcesDir(), "app.asar")}
			},
		},
		{
			Name: "patch application resources",
			Needs: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.resourcesDir(), "app.asar")}
			},
			Run: patchAppResources,
		},
		{
			Name: "bundle runtime into staging tree",
			Needs: func(bc *BuildContext) []string {
				return []string{bc.electronDistDir(), filepath.Join(bc.resourcesDir(), "app.asar")}
			},
			Run: bundleRuntime,
			Makes: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.StagingDir, "lib", PackageName, "electron")}
			},
		},
		{
			Name: "extract icons",
			Needs: func(bc *BuildContext) []string {
				return []string{filepath.Join(bc.WorkDir, bc.InstallerFile)}
			},
			Run: func(ctx context.Context, bc *BuildContext) error {
				return extractIcons(bc)
			},
			Makes: func(bc *BuildContext) []string {
				return []string{bc.iconsDir()}
			},
		},
		{
			Name: "build RPM package",
			Run:  runPackageProcess,
		},
	}
}

// runBuild executes the whole pipeline. The work tree is recreated from
// scratch; only the download cache survives between runs.
func runBuild(ctx context.Context, cfg *Config) error {
	bc, err := ProbeEnvironment(cfg)
	if err != nil {
		return err
	}
	stepBanner("Building %s for %s (%s)", PackageName, bc.Arch, bc.OSFamily)

	if err := recreateDir(bc.WorkDir); err != nil {
		return err
	}
	appendLog("build started for arch=%s family=%s", bc.Arch, bc.OSFamily)

	if err := runSteps(ctx, bc, buildSteps(cfg)); err != nil {
		appendLog("build failed: %v", err)
		return err
	}

	appendLog("build finished: %s-%s-1.%s.rpm", PackageName, bc.Version, bc.Arch)
	return nil
}

// runPackageProcess invokes the package step as a separate process with
// explicit positional parameters. Keeping it out-of-process means the
// packaging logic can never reach back into build-phase globals, and the
// step stays usable standalone against a prepared staging tree.
func runPackageProcess(ctx context.Context, bc *BuildContext) error {
	if bc.Version == "" {
		return fmt.Errorf("no version discovered; extract step must run before packaging")
	}

	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate own executable: %w", err)
	}

	cmd := exec.CommandContext(ctx, self, "package",
		bc.Version, bc.Arch, bc.WorkDir, bc.StagingDir,
		PackageName, Maintainer, Summary)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("package step failed: %w", err)
	}
	return nil
}
