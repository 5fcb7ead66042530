package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackageJobFromArgs(t *testing.T) {
	staging := t.TempDir()
	args := []string{"0.9.3", "x86_64", "/tmp/work", staging,
		"claude-desktop", "Jane Doe <jane@example.com>", "Claude Desktop for Linux"}

	job, err := PackageJobFromArgs(args)
	require.NoError(t, err)
	require.Equal(t, "0.9.3", job.Version)
	require.Equal(t, "x86_64", job.Arch)
	require.Equal(t, staging, job.StagingDir)
	require.Equal(t, "claude-desktop", job.Name)
}

func TestPackageJobFromArgsWrongCount(t *testing.T) {
	_, err := PackageJobFromArgs([]string{"0.9.3", "x86_64"})
	require.ErrorContains(t, err, "exactly 7")
}

func TestPackageJobFromArgsBadArch(t *testing.T) {
	staging := t.TempDir()
	args := []string{"0.9.3", "i386", "/tmp/work", staging, "claude-desktop", "m", "d"}
	_, err := PackageJobFromArgs(args)
	require.ErrorContains(t, err, `"i386"`)
}

func TestPackageJobFromArgsMissingStaging(t *testing.T) {
	args := []string{"0.9.3", "x86_64", "/tmp/work", "/definitely/not/here",
		"claude-desktop", "m", "d"}
	_, err := PackageJobFromArgs(args)
	require.ErrorContains(t, err, "staging directory")
}

func TestPackageJobBuildRootLayout(t *testing.T) {
	job := &PackageJob{Version: "0.9.3", Arch: "x86_64", WorkDir: "/w", Name: "claude-desktop"}
	require.Equal(t, "/w/rpmbuild", job.topDir())
	require.Equal(t, "/w/rpmbuild/BUILDROOT/claude-desktop-0.9.3-1.x86_64", job.buildRoot())
}
