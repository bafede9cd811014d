//go:build !darwin || !cgo

package bookmark

import (
	"context"
	"errors"
)

type unsupportedIssuer struct{}

func platformIssuer() Issuer {
	return unsupportedIssuer{}
}

func (unsupportedIssuer) Issue(ctx context.Context, path string) ([]byte, error) {
	return nil, errors.New("security-scoped bookmarks require macOS")
}
