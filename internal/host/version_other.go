//go:build !darwin

package host

import "errors"

// ProductVersion is only answerable on macOS. Elsewhere the backend has to
// be forced through configuration.
func ProductVersion() (string, error) {
	return "", errors.New("product version is only available on macOS")
}
