package builder

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadNative(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("installer bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "installer.exe")
	require.NoError(t, downloadNative(srv.URL+"/installer.exe", dest, downloadOptions{Quiet: true}))
	require.Equal(t, "installer bytes", readTestFile(t, dest))
}

func TestDownloadNativeNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "installer.exe")
	err := downloadNative(srv.URL+"/gone.exe", dest, downloadOptions{Quiet: true})
	require.ErrorContains(t, err, "404")
	require.NoFileExists(t, dest)
}

func TestDownloadFileSkipsWhenDestinationExists(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "cached.bin")
	require.NoError(t, os.WriteFile(dest, []byte("already here"), 0o644))

	// The URL is never contacted: the post-lock existence check wins.
	require.NoError(t, downloadFile("http://127.0.0.1:0/unreachable", dest, downloadOptions{Quiet: true}))
	require.Equal(t, "already here", readTestFile(t, dest))
	require.NoFileExists(t, dest+".lock")
}
