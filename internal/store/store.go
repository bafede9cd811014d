// Package store persists the list of registered wallpaper folders.
//
// Two incompatible on-disk schemas hold the same logical list. Hosts before
// macOS 14 keep a flat array of path strings in the slideshow preferences
// file; newer hosts keep an array of encoded records in the wallpaper store
// file, one opaque blob per folder. Which schema is active is resolved once
// per process into a Descriptor, and the Store facade dispatches every
// operation to the matching backend. Both backends canonicalize paths the
// same way, so a folder registered under one spelling is found under any
// other.
package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bartreardon/WallpaperFolderManager/internal/bookmark"
	"github.com/bartreardon/WallpaperFolderManager/internal/pathutil"
)

// Entry is one registered folder as reported by List.
type Entry struct {
	// ID identifies the folder's record. Legacy entries have none.
	ID string

	// Path is the folder path as stored.
	Path string

	// AddedAt is when the folder was registered. Zero for legacy entries.
	AddedAt time.Time
}

// backend is the schema-specific half of a Store. Paths passed in are
// already canonical.
type backend interface {
	list(ctx context.Context) ([]Entry, error)
	add(ctx context.Context, path string) error
	remove(ctx context.Context, path string) error
}

// Store is the folder registry, dispatching to the backend named by its
// Descriptor. Every operation re-reads the store file; nothing is cached
// between calls, so concurrent writers follow last-writer-wins.
type Store struct {
	desc    Descriptor
	backend backend
}

// Open returns a Store for the resolved descriptor. The issuer is only
// exercised by modern-backend writes.
func Open(desc Descriptor, issuer bookmark.Issuer) (*Store, error) {
	s := &Store{desc: desc}
	switch desc.Kind {
	case KindLegacy:
		s.backend = newLegacyStore(desc.StorePath)
	case KindModern:
		s.backend = newModernStore(desc.StorePath, desc.CacheBase, issuer)
	default:
		return nil, fmt.Errorf("unknown store kind %q", desc.Kind)
	}
	return s, nil
}

// Kind reports which schema the store operates on.
func (s *Store) Kind() Kind { return s.desc.Kind }

// Path reports the store file location.
func (s *Store) Path() string { return s.desc.StorePath }

// List returns all registered folders.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	return s.backend.list(ctx)
}

// Add registers the folder at path. The path may use ~ shorthand or carry
// trailing separators; it is canonicalized before the backend sees it, and
// must name an existing directory.
func (s *Store) Add(ctx context.Context, path string) error {
	canonical, err := pathutil.Normalize(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotADirectory)
	}

	return s.backend.add(ctx, canonical)
}

// Remove unregisters the folder at path.
func (s *Store) Remove(ctx context.Context, path string) error {
	canonical, err := pathutil.Normalize(path)
	if err != nil {
		return err
	}
	return s.backend.remove(ctx, canonical)
}

// IsRegistered reports whether path is in the store, using the same
// canonical comparison Add and Remove use.
func (s *Store) IsRegistered(ctx context.Context, path string) (bool, error) {
	canonical, err := pathutil.Normalize(path)
	if err != nil {
		return false, err
	}

	entries, err := s.backend.list(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if pathutil.Equal(e.Path, canonical) {
			return true, nil
		}
	}
	return false, nil
}
