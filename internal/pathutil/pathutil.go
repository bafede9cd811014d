// Package pathutil computes the canonical form of folder paths.
//
// Both record backends key their entries by path, and the same folder can be
// spelled many ways (~ shorthand, trailing slash, symlinked components).
// Normalize reduces all spellings to one canonical string; two paths refer to
// the same folder exactly when their canonical forms are equal.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Normalize returns the canonical form of path: home shorthand expanded,
// made absolute, . and .. collapsed, symlink components resolved and
// trailing separators stripped. Comparison of canonical forms is plain
// string equality, case-sensitive.
func Normalize(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}

	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}

	return resolveSymlinks(abs), nil
}

// Equal reports whether a and b name the same folder. Paths that cannot be
// normalized compare unequal.
func Equal(a, b string) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

// expandHome replaces a leading ~ with the current user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// resolveSymlinks resolves symlink components of an absolute, cleaned path.
// Components that do not exist are kept literal so that canonical forms stay
// stable for folders that were removed after registration.
func resolveSymlinks(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(resolveSymlinks(parent), filepath.Base(path))
}
