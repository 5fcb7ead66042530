package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeOSRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectOSFamily(t *testing.T) {
	cases := []struct {
		name    string
		content string
		family  string
	}{
		{"fedora", "NAME=\"Fedora Linux\"\nID=fedora\nVERSION_ID=42\n", "fedora"},
		{"fedora derivative", "ID=nobara\nID_LIKE=fedora\n", "fedora"},
		{"rocky", "ID=\"rocky\"\nID_LIKE=\"rhel centos fedora\"\n", "rhel"},
		{"almalinux", "ID='almalinux'\n", "rhel"},
		{"tumbleweed", "ID=opensuse-tumbleweed\nID_LIKE=\"opensuse suse\"\n", "suse"},
		{"sles", "ID=sles\n", "suse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			family, err := detectOSFamily(writeOSRelease(t, tc.content))
			require.NoError(t, err)
			require.Equal(t, tc.family, family)
		})
	}
}

func TestDetectOSFamilyRejectsDebianFamily(t *testing.T) {
	path := writeOSRelease(t, "ID=ubuntu\nID_LIKE=debian\n")
	_, err := detectOSFamily(path)
	require.ErrorContains(t, err, "ubuntu")
	require.ErrorContains(t, err, "RPM-based")
}

func TestDetectOSFamilyMissingFile(t *testing.T) {
	_, err := detectOSFamily(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestDetectOSFamilySkipsCommentsAndBlankLines(t *testing.T) {
	family, err := detectOSFamily(writeOSRelease(t, "# generated\n\nID=fedora\n"))
	require.NoError(t, err)
	require.Equal(t, "fedora", family)
}

func TestPackageManagerFor(t *testing.T) {
	mgr, args, err := packageManagerFor("fedora")
	require.NoError(t, err)
	require.Equal(t, "dnf", mgr)
	require.Equal(t, []string{"install", "-y"}, args)

	mgr, _, err = packageManagerFor("rhel")
	require.NoError(t, err)
	require.Equal(t, "yum", mgr)

	mgr, _, err = packageManagerFor("suse")
	require.NoError(t, err)
	require.Equal(t, "zypper", mgr)

	_, _, err = packageManagerFor("arch")
	require.Error(t, err)
}

func TestProbeEnvironmentRejectsUnsupportedArch(t *testing.T) {
	saved := hostArch
	hostArch = "riscv64"
	t.Cleanup(func() { hostArch = saved })

	_, err := ProbeEnvironment(&Config{Values: map[string]string{}})
	require.ErrorContains(t, err, "unsupported architecture")
	require.ErrorContains(t, err, "riscv64")
}

func TestSupportedArchesCoverDownloadSelections(t *testing.T) {
	amd := supportedArches["amd64"]
	require.Equal(t, "x86_64", amd.rpmArch)
	require.Contains(t, amd.installerPath, "x64")

	arm := supportedArches["arm64"]
	require.Equal(t, "aarch64", arm.rpmArch)
	require.Contains(t, arm.installerPath, "arm64")
}
