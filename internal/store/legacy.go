package store

import (
	"context"
	"fmt"

	"github.com/bartreardon/WallpaperFolderManager/internal/pathutil"
)

// legacyFoldersKey is the preferences key owning the registered folders, a
// plain array of path strings.
const legacyFoldersKey = "CustomFolders"

// legacyStore manages the flat string-array schema in the slideshow
// preferences file. The file belongs to the preferences system and carries
// keys this tool knows nothing about, so every write round-trips the
// container and touches only the folder array.
type legacyStore struct {
	path string
}

func newLegacyStore(path string) *legacyStore {
	return &legacyStore{path: path}
}

// read returns the container and its folder array. A missing file is an
// empty store. A folder key of the wrong type is an error: rewriting it
// would destroy data this tool does not understand.
func (s *legacyStore) read() (map[string]any, []any, error) {
	dict, err := readContainer(s.path)
	if err != nil {
		return nil, nil, err
	}
	if dict == nil {
		return map[string]any{}, nil, nil
	}

	raw, ok := dict[legacyFoldersKey]
	if !ok {
		return dict, nil, nil
	}
	folders, ok := raw.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("decode store %s: %s is not an array", s.path, legacyFoldersKey)
	}
	return dict, folders, nil
}

func (s *legacyStore) list(_ context.Context) ([]Entry, error) {
	_, folders, err := s.read()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(folders))
	for _, member := range folders {
		if p, ok := member.(string); ok {
			entries = append(entries, Entry{Path: p})
		}
	}
	return entries, nil
}

func (s *legacyStore) add(_ context.Context, path string) error {
	dict, folders, err := s.read()
	if err != nil {
		return err
	}

	for _, member := range folders {
		if p, ok := member.(string); ok && pathutil.Equal(p, path) {
			return fmt.Errorf("%s: %w", path, ErrAlreadyRegistered)
		}
	}

	dict[legacyFoldersKey] = append(folders, path)
	return writeContainer(s.path, dict)
}

func (s *legacyStore) remove(_ context.Context, path string) error {
	dict, folders, err := s.read()
	if err != nil {
		return err
	}

	// Keep members that are not path strings untouched; drop every string
	// naming the target folder.
	kept := make([]any, 0, len(folders))
	for _, member := range folders {
		if p, ok := member.(string); ok && pathutil.Equal(p, path) {
			continue
		}
		kept = append(kept, member)
	}

	if len(kept) == len(folders) {
		return fmt.Errorf("%s: %w", path, ErrNotRegistered)
	}

	dict[legacyFoldersKey] = kept
	return writeContainer(s.path, dict)
}
