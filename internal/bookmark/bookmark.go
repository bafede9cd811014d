// Package bookmark issues security-scoped access tokens for directories.
//
// The modern store embeds one such token in every record so the wallpaper
// system can reopen the folder from its sandbox. The token bytes are opaque
// to this tool: they are carried through the record codec untouched.
package bookmark

import "context"

// Issuer mints an access token for the directory at path. Implementations
// must treat the returned bytes as opaque.
type Issuer interface {
	Issue(ctx context.Context, path string) ([]byte, error)
}

// New returns the platform's token issuer.
func New() Issuer {
	return platformIssuer()
}
