package builder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sys/unix"
)

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 30 * time.Second

	return &http.Client{
		Transport: transport,
		Timeout:   600 * time.Second, // the installer is a few hundred MB
	}
}

type downloadOptions struct {
	Quiet bool // Quiet suppresses all stdout/stderr/progress output
}

// fetchToCache downloads url into the persistent cache and returns the
// cached path. The cache key mixes a BLAKE3 digest of the URL with the
// basename so an upstream URL change busts the stale entry.
func fetchToCache(url string) (string, error) {
	if err := os.MkdirAll(CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", CacheDir, err)
	}
	name := fmt.Sprintf("%s-%s", hashString(url)[:16], filepath.Base(url))
	cachePath := filepath.Join(CacheDir, name)

	if _, err := os.Stat(cachePath); err == nil {
		debugf("Already in cache: %s\n", cachePath)
		return cachePath, nil
	}

	stepBanner("Fetching %s", filepath.Base(url))
	if err := downloadFile(url, cachePath, downloadOptions{}); err != nil {
		os.Remove(cachePath)
		return "", err
	}
	return cachePath, nil
}

// downloadFile downloads a URL to destFile. It prefers curl, falls back to
// wget, and finally to the native HTTP client. An exclusive flock on a
// .lock sibling keeps concurrent builder runs from clobbering each other's
// partial downloads.
func downloadFile(url, destFile string, opt downloadOptions) error {
	if err := os.MkdirAll(filepath.Dir(destFile), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", destFile, err)
	}

	lockPath := destFile + ".lock"
	lFile, err := os.Create(lockPath)
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer lFile.Close()

	if err := unix.Flock(int(lFile.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	defer unix.Flock(int(lFile.Fd()), unix.LOCK_UN)

	// Another run may have finished the download while we waited.
	if _, err := os.Stat(destFile); err == nil {
		debugf("File %s appeared after acquiring lock, skipping download.\n", destFile)
		_ = os.Remove(lockPath)
		return nil
	}

	defer func() {
		if _, err := os.Stat(destFile); err == nil {
			_ = os.Remove(lockPath)
		}
	}()

	debugf("Downloading %s -> %s\n", url, destFile)

	// --- Primary choice: curl ---
	if _, err := exec.LookPath("curl"); err == nil {
		args := []string{"-L", "--fail", "-o", destFile}
		if opt.Quiet {
			args = append(args, "-sS")
		} else {
			args = append(args, "-#")
		}
		args = append(args, url)
		cmd := exec.Command("curl", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			debugf("Download successful with curl.\n")
			return nil
		}
		debugf("curl failed, falling back to wget\n")
	} else {
		debugf("curl not found, trying wget\n")
	}

	// --- Fallback 1: wget ---
	if _, err := exec.LookPath("wget"); err == nil {
		args := []string{"-O", destFile, url}
		if opt.Quiet {
			args = append([]string{"-q"}, args...)
		} else {
			args = append([]string{"-nv"}, args...)
		}
		cmd := exec.Command("wget", args...)
		if opt.Quiet {
			cmd.Stdout = io.Discard
			cmd.Stderr = io.Discard
		} else {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Run(); err == nil {
			debugf("Download successful with wget.\n")
			return nil
		}
		debugf("wget failed, falling back to native Go HTTP client\n")
	} else {
		debugf("wget not found, using native Go HTTP client\n")
	}

	// --- Fallback 2: native HTTP client with progress bar ---
	return downloadNative(url, destFile, opt)
}

func downloadNative(url, destFile string, opt downloadOptions) error {
	client := newHTTPClient()

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(destFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destFile, err)
	}
	defer out.Close()

	var dst io.Writer = out
	if !opt.Quiet {
		bar := progressbar.DefaultBytes(resp.ContentLength, filepath.Base(destFile))
		dst = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to write to destination file: %w", err)
	}

	debugf("Download successful with native Go HTTP client.\n")
	return nil
}
