//go:build darwin

package host

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ProductVersion reports the OS product version string, e.g. "14.2.1".
func ProductVersion() (string, error) {
	v, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return "", fmt.Errorf("read kern.osproductversion: %w", err)
	}
	return v, nil
}
