package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// The Windows build draws its own title bar, so the vendor disables the
// native frame. On Linux that leaves an undraggable, unclosable window.
// Rather than chase every BrowserWindow call site in minified output, a
// small interceptor hooks the module loader and fixes the options at
// construction time. The literal rewrites in rules.go remain as a belt-
// and-braces measure for windows created before the hook installs.

const frameFixFile = "window-frame-fix.js"
const entryShimFile = "electron-main.js"

const frameFixSource = `// Forces native window decorations on Linux.
if (process.platform === 'linux') {
  const Module = require('module');
  const originalLoad = Module._load;
  Module._load = function (request, parent, isMain) {
    const loaded = originalLoad.apply(this, arguments);
    if (request === 'electron' && loaded && loaded.BrowserWindow) {
      const OriginalBrowserWindow = loaded.BrowserWindow;
      if (!OriginalBrowserWindow.__frameFixInstalled) {
        const PatchedBrowserWindow = new Proxy(OriginalBrowserWindow, {
          construct(target, args) {
            const options = Object.assign({}, args[0]);
            options.frame = true;
            delete options.titleBarStyle;
            delete options.titleBarOverlay;
            return new target(options, ...args.slice(1));
          }
        });
        PatchedBrowserWindow.__frameFixInstalled = true;
        Object.defineProperty(loaded, 'BrowserWindow', {
          value: PatchedBrowserWindow,
          configurable: true
        });
      }
    }
    return loaded;
  };
}
`

// writeShimModules generates the interceptor and the replacement entry
// point that loads it before the application's original main module.
func writeShimModules(appDir string) error {
	if err := os.WriteFile(filepath.Join(appDir, frameFixFile), []byte(frameFixSource), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", frameFixFile, err)
	}

	originalMain, err := readPackageMain(appDir)
	if err != nil {
		return err
	}

	entrySource := fmt.Sprintf("require('./%s');\nrequire('./%s');\n", frameFixFile, originalMain)
	if err := os.WriteFile(filepath.Join(appDir, entryShimFile), []byte(entrySource), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", entryShimFile, err)
	}
	return nil
}

// readPackageMain returns the entry point the app manifest currently
// declares, preferring a previously-saved originalMain so the rewire is
// idempotent.
func readPackageMain(appDir string) (string, error) {
	manifest, err := readPackageManifest(appDir)
	if err != nil {
		return "", err
	}
	if orig, ok := manifest["originalMain"].(string); ok && orig != "" {
		return orig, nil
	}
	main, ok := manifest["main"].(string)
	if !ok || main == "" {
		return "", fmt.Errorf("app package.json declares no main entry point")
	}
	return main, nil
}

// rewireEntryPoint points the app manifest at the generated entry shim,
// preserves the original entry under originalMain, and declares the
// claude-native addon as optional so Electron tolerates its absence.
func rewireEntryPoint(appDir string) error {
	manifest, err := readPackageManifest(appDir)
	if err != nil {
		return err
	}

	if manifest["main"] != entryShimFile {
		if _, saved := manifest["originalMain"]; !saved {
			manifest["originalMain"] = manifest["main"]
		}
		manifest["main"] = entryShimFile
	}

	optional, _ := manifest["optionalDependencies"].(map[string]any)
	if optional == nil {
		optional = make(map[string]any)
	}
	optional["claude-native"] = "*"
	manifest["optionalDependencies"] = optional

	return writePackageManifest(appDir, manifest)
}

func readPackageManifest(appDir string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(appDir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read app package.json: %w", err)
	}
	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse app package.json: %w", err)
	}
	return manifest, nil
}

func writePackageManifest(appDir string, manifest map[string]any) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(appDir, "package.json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write app package.json: %w", err)
	}
	return nil
}
