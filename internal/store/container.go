package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"
)

// readContainer loads the top-level dictionary from the store file at path.
// A missing file yields (nil, nil): both schemas treat absence as an empty
// store. Files that exist but do not decode as a dictionary return an error
// wrapping errMalformedContainer so callers can tell corruption apart from
// plain I/O failure.
func readContainer(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}

	var dict map[string]any
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errMalformedContainer, path, err)
	}
	return dict, nil
}

// writeContainer encodes dict as a binary property list and replaces the
// file at path atomically. Parent directories are created on first write.
func writeContainer(path string, dict map[string]any) error {
	data, err := plist.Marshal(dict, plist.BinaryFormat)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}

	// Write to temp file then rename for atomicity
	tmp, err := os.CreateTemp(dir, ".wallpaperfolders-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}

	return nil
}

// isMalformed reports whether err marks container corruption rather than an
// I/O failure.
func isMalformed(err error) bool {
	return errors.Is(err, errMalformedContainer)
}
