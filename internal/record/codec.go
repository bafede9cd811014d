// Package record encodes and decodes the per-folder records stored by the
// modern wallpaper backend.
//
// Each record is a small binary property list whose top-level fields appear
// in a fixed order: id, addedAt, originalLocation, accessToken,
// cloneLocation. External consumers of the store parse these bytes
// structurally, so the order is part of the contract and encoding goes
// through the dedicated writer in bplist_write.go. Decoding is tolerant:
// any missing field reduces to its zero value, and only bytes that are not a
// plist dictionary at all fail to decode.
package record

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record field keys, in their mandatory encoded order.
const (
	keyID       = "id"
	keyAddedAt  = "addedAt"
	keyOriginal = "originalLocation"
	keyToken    = "accessToken"
	keyClone    = "cloneLocation"
	keyRelative = "relative"
)

// extensionNamespace is the host extension that owns synthesized clone
// locations under the cache base directory.
const extensionNamespace = "com.apple.wallpaper.extension.image-folder"

// Record is the decoded form of one stored folder record. Location fields
// hold the raw file URLs from the record; use Path to resolve the folder.
type Record struct {
	ID       string
	AddedAt  time.Time
	Original string // originalLocation.relative
	Token    []byte // opaque access token, never interpreted
	Clone    string // cloneLocation.relative
}

// Encode builds the record bytes for folderPath. The access token is
// embedded verbatim. A fresh uppercase UUID is generated for the record id
// and a second, independent one for the clone location under
// cacheBase/<extension namespace>/.
func Encode(folderPath string, token []byte, cacheBase string) ([]byte, error) {
	id := strings.ToUpper(uuid.NewString())
	cloneDir := filepath.Join(cacheBase, extensionNamespace, strings.ToUpper(uuid.NewString()))

	d := dict{
		{keyID, id},
		{keyAddedAt, time.Now().UTC()},
		{keyOriginal, dict{{keyRelative, fileURL(folderPath)}}},
		{keyToken, token},
		{keyClone, dict{{keyRelative, fileURL(cloneDir)}}},
	}

	out, err := marshalDict(d)
	if err != nil {
		return nil, fmt.Errorf("encode folder record: %w", err)
	}
	return out, nil
}

// Decode parses record bytes. Individual missing fields are tolerated and
// left at their zero values; an error is returned only when the bytes do not
// form a plist dictionary.
func Decode(data []byte) (*Record, error) {
	d, err := unmarshalDict(data)
	if err != nil {
		return nil, fmt.Errorf("decode folder record: %w", err)
	}

	r := &Record{}
	r.ID, _ = d[keyID].(string)
	r.AddedAt, _ = d[keyAddedAt].(time.Time)
	r.Token, _ = d[keyToken].([]byte)
	r.Original = relativeOf(d[keyOriginal])
	r.Clone = relativeOf(d[keyClone])
	return r, nil
}

// Path resolves the folder path referenced by the record's original
// location. ok is false when the record carries no usable location; such
// records are skipped by path-based lookups.
func (r *Record) Path() (string, bool) {
	if r.Original == "" {
		return "", false
	}
	u, err := url.Parse(r.Original)
	if err != nil || u.Scheme != "file" || !strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	return filepath.Clean(u.Path), true
}

// relativeOf extracts the "relative" URL string from a location dictionary.
func relativeOf(v any) string {
	loc, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	rel, _ := loc[keyRelative].(string)
	return rel
}

// fileURL renders p as a percent-escaped file URL with a trailing slash,
// the form the host environment stores folder references in.
func fileURL(p string) string {
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
