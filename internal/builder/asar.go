package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"layeh.com/asar"
)

// unpackAsar extracts an Electron asar bundle into destDir.
func unpackAsar(asarPath, destDir string) error {
	f, err := os.Open(asarPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", asarPath, err)
	}
	defer f.Close()

	root, err := asar.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode asar %s: %w", asarPath, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	return root.Walk(func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		fullPath := filepath.Join(destDir, path)
		if info.IsDir() {
			return os.MkdirAll(fullPath, 0o755)
		}
		entry := root.Find(strings.Split(filepath.ToSlash(path), "/")...)
		if entry == nil {
			return nil
		}
		data := entry.Bytes()
		if data == nil {
			// Unpacked entries live outside the archive; skip.
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return err
		}
		mode := os.FileMode(0o644)
		if entry.Flags&asar.FlagExecutable != 0 {
			mode = 0o755
		}
		return os.WriteFile(fullPath, data, mode)
	})
}

// packAsar rebuilds an asar bundle from srcDir. The writer streams file
// contents from open handles, so handles stay open until EncodeTo runs.
func packAsar(srcDir, asarPath string) error {
	outFile, err := os.Create(asarPath)
	if err != nil {
		return fmt.Errorf("failed to create asar file %s: %w", asarPath, err)
	}
	defer outFile.Close()

	rootEntry := asar.New("root", nil, 0, 0, asar.FlagDir)
	entryByDir := map[string]*asar.Entry{srcDir: rootEntry}

	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir {
			return nil
		}

		parent, ok := entryByDir[filepath.Dir(path)]
		if !ok {
			return fmt.Errorf("no parent entry for %s", path)
		}

		if info.IsDir() {
			dirEntry := asar.New(info.Name(), nil, 0, 0, asar.FlagDir)
			parent.Children = append(parent.Children, dirEntry)
			entryByDir[path] = dirEntry
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		opened = append(opened, f)

		flags := asar.FlagNone
		if info.Mode()&0o111 != 0 {
			flags = asar.FlagExecutable
		}
		parent.Children = append(parent.Children, asar.New(info.Name(), f, info.Size(), 0, flags))
		return nil
	})
	if err != nil {
		return fmt.Errorf("error walking %s: %w", srcDir, err)
	}

	if _, err := rootEntry.EncodeTo(outFile); err != nil {
		return fmt.Errorf("failed to encode asar archive: %w", err)
	}
	return nil
}
