package builder

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config struct
type Config struct {
	Values map[string]string
}

// loadConfig reads the key=value config file and applies env overrides.
// A missing file is fine; everything has a default.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			val := strings.TrimSpace(parts[1])
			val = strings.Trim(val, `"'`)
			cfg.Values[key] = val
		}
		if err := scanner.Err(); err != nil {
			return cfg, err
		}
	}

	mergeEnvOverrides(cfg)
	return cfg, nil
}

// mergeEnvOverrides lets CLAUDE_BUILD_* and R2_* environment variables
// override anything from the config file.
func mergeEnvOverrides(cfg *Config) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "CLAUDE_BUILD_") || strings.HasPrefix(env, "R2_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				cfg.Values[parts[0]] = parts[1]
			}
		}
	}
}

func (c *Config) intValue(key string, def int) int {
	raw := c.Values[key]
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		cPrintf(colWarn, "Ignoring non-numeric %s=%q\n", key, raw)
		return def
	}
	return n
}

// initConfig populates the package globals from the merged configuration.
func initConfig(cfg *Config) {
	WorkDir = cfg.Values["CLAUDE_BUILD_WORK_DIR"]
	if WorkDir == "" {
		WorkDir = "build"
	}

	CacheDir = cfg.Values["CLAUDE_BUILD_CACHE_DIR"]
	if CacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			CacheDir = filepath.Join(base, "claude-desktop-builder")
		} else {
			CacheDir = filepath.Join(os.TempDir(), "claude-desktop-builder")
		}
	}

	ToolchainDir = filepath.Join(CacheDir, "toolchain")
	StagingDir = filepath.Join(WorkDir, "staging")
	LogFile = filepath.Join(WorkDir, "build.log")

	Maintainer = cfg.Values["CLAUDE_BUILD_MAINTAINER"]
	if Maintainer == "" {
		Maintainer = "Claude Desktop Linux Maintainers <maintainers@localhost>"
	}
	Summary = cfg.Values["CLAUDE_BUILD_SUMMARY"]
	if Summary == "" {
		Summary = "Claude Desktop for Linux (unofficial repackaging)"
	}

	Debug = cfg.Values["CLAUDE_BUILD_DEBUG"] == "1"

	NodeMinMajor = cfg.intValue("CLAUDE_BUILD_NODE_MIN_MAJOR", NodeMinMajor)
	if v := cfg.Values["CLAUDE_BUILD_NODE_VERSION"]; v != "" {
		NodeVersion = v
	}
	ElectronVersion = cfg.Values["CLAUDE_BUILD_ELECTRON_VERSION"]

	TrayGuardResetMs = cfg.intValue("CLAUDE_BUILD_TRAY_GUARD_RESET_MS", TrayGuardResetMs)
	DBusSettleMs = cfg.intValue("CLAUDE_BUILD_DBUS_SETTLE_MS", DBusSettleMs)
}
