package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bartreardon/WallpaperFolderManager/internal/bookmark"
	"github.com/bartreardon/WallpaperFolderManager/internal/logging"
	"github.com/bartreardon/WallpaperFolderManager/internal/pathutil"
	"github.com/bartreardon/WallpaperFolderManager/internal/record"
)

// Container fields of the wallpaper store. Only modernFoldersKey is owned
// by this tool; the rest are defaulted on a fresh container and otherwise
// left exactly as read.
const (
	modernFoldersKey  = "folders"
	collectionsKey    = "collections"
	recentsKey        = "recents"
	shuffleEnabledKey = "shuffleEnabled"
)

// modernStore manages the record-per-folder schema of the wallpaper store
// file. Each member of the folder array is a data blob holding one encoded
// record; unrelated container fields ride through writes verbatim.
type modernStore struct {
	path      string
	cacheBase string
	issuer    bookmark.Issuer
}

func newModernStore(path, cacheBase string, issuer bookmark.Issuer) *modernStore {
	return &modernStore{path: path, cacheBase: cacheBase, issuer: issuer}
}

// defaults is the container shape for a store that does not exist yet.
func (s *modernStore) defaults() map[string]any {
	return map[string]any{
		modernFoldersKey:  []any{},
		collectionsKey:    []any{},
		recentsKey:        []any{},
		shuffleEnabledKey: true,
	}
}

// read returns the container and its folder array. The host environment
// rewrites this file in shapes older tool generations cannot parse, so a
// container that fails to decode is replaced by defaults rather than
// reported as an error. Plain I/O failures still propagate.
func (s *modernStore) read() (map[string]any, []any, error) {
	dict, err := readContainer(s.path)
	if err != nil {
		if !isMalformed(err) {
			return nil, nil, err
		}
		logging.Debug("store unreadable, starting from defaults",
			zap.String("path", s.path),
			zap.Error(err))
		dict = nil
	}
	if dict == nil {
		return s.defaults(), nil, nil
	}

	raw, ok := dict[modernFoldersKey]
	if !ok {
		return dict, nil, nil
	}
	folders, ok := raw.([]any)
	if !ok {
		logging.Debug("folder array has unexpected type, starting from defaults",
			zap.String("path", s.path))
		return s.defaults(), nil, nil
	}
	return dict, folders, nil
}

func (s *modernStore) list(_ context.Context) ([]Entry, error) {
	_, folders, err := s.read()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(folders))
	for _, member := range folders {
		blob, ok := member.([]byte)
		if !ok {
			continue
		}
		rec, err := record.Decode(blob)
		if err != nil {
			logging.Debug("skipping undecodable record", zap.Error(err))
			continue
		}
		p, ok := rec.Path()
		if !ok {
			continue
		}
		entries = append(entries, Entry{ID: rec.ID, Path: p, AddedAt: rec.AddedAt})
	}
	return entries, nil
}

func (s *modernStore) add(ctx context.Context, path string) error {
	dict, folders, err := s.read()
	if err != nil {
		return err
	}

	for _, member := range folders {
		if recordMatches(member, path) {
			return fmt.Errorf("%s: %w", path, ErrAlreadyRegistered)
		}
	}

	if s.cacheBase == "" {
		return ErrCacheDirUnavailable
	}

	token, err := s.issuer.Issue(ctx, path)
	if err != nil {
		return fmt.Errorf("issue access token for %s: %w", path, err)
	}

	blob, err := record.Encode(path, token, s.cacheBase)
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", path, err)
	}

	dict[modernFoldersKey] = append(folders, blob)
	return writeContainer(s.path, dict)
}

func (s *modernStore) remove(_ context.Context, path string) error {
	dict, folders, err := s.read()
	if err != nil {
		return err
	}

	// Members that fail to decode are kept: they never match, and dropping
	// them would destroy records some other generation of the host may
	// still understand.
	kept := make([]any, 0, len(folders))
	for _, member := range folders {
		if recordMatches(member, path) {
			continue
		}
		kept = append(kept, member)
	}

	if len(kept) == len(folders) {
		return fmt.Errorf("%s: %w", path, ErrNotRegistered)
	}

	dict[modernFoldersKey] = kept
	return writeContainer(s.path, dict)
}

// recordMatches reports whether a folder array member is a record for the
// target path. Members that are not record blobs, fail to decode, or carry
// no resolvable path never match.
func recordMatches(member any, target string) bool {
	blob, ok := member.([]byte)
	if !ok {
		return false
	}
	rec, err := record.Decode(blob)
	if err != nil {
		return false
	}
	p, ok := rec.Path()
	if !ok {
		return false
	}
	return pathutil.Equal(p, target)
}
