package builder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeMajorVersion(t *testing.T) {
	cases := []struct {
		in    string
		major int
	}{
		{"v20.18.1\n", 20},
		{"v18.0.0", 18},
		{"22.3.0", 22},
		{"  v23.1.0  ", 23},
	}
	for _, tc := range cases {
		major, err := nodeMajorVersion(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.major, major, tc.in)
	}

	for _, bad := range []string{"", "v", "nodejs", "v.1.2"} {
		_, err := nodeMajorVersion(bad)
		require.Error(t, err, bad)
	}
}

func TestToolPackagesCoverEveryFamily(t *testing.T) {
	for _, family := range []string{"fedora", "rhel", "suse"} {
		pkgs, ok := toolPackages[family]
		require.True(t, ok, family)
		require.NotEmpty(t, pkgs, family)
		require.Contains(t, pkgs, "rpm-build", family)
		require.Contains(t, pkgs, "icoutils", family)
	}
}
