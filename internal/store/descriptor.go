package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bartreardon/WallpaperFolderManager/internal/config"
	"github.com/bartreardon/WallpaperFolderManager/internal/host"
)

// Kind selects which on-disk schema a store uses.
type Kind string

const (
	// KindLegacy is the flat string-array schema kept in the slideshow
	// preferences domain, used by hosts before macOS 14.
	KindLegacy Kind = "legacy"

	// KindModern is the wallpaper store schema introduced with macOS 14,
	// holding one encoded record per folder.
	KindModern Kind = "modern"
)

// Fixed store locations, relative to the user's home directory.
const (
	legacyStoreRel = "Library/Preferences/com.apple.ScreenSaver.iLifeSlideShows.plist"
	modernStoreRel = "Library/Application Support/com.apple.wallpaper/Store/Folders.plist"
)

// modernMinMajor is the first OS major version that uses the modern store.
const modernMinMajor = 14

// Descriptor names the backend to open and where its files live. It is
// resolved once per process and never re-derived mid-session.
type Descriptor struct {
	Kind      Kind
	StorePath string

	// CacheBase is the directory clone locations are minted under. Only
	// modern-backend writes use it; it may be empty until then.
	CacheBase string
}

// Resolve decides the backend kind and file locations from configuration,
// detecting the host generation when no backend is forced.
func Resolve(cfg *config.Config) (Descriptor, error) {
	var d Descriptor

	switch cfg.Backend {
	case "legacy":
		d.Kind = KindLegacy
	case "modern":
		d.Kind = KindModern
	default:
		kind, err := detectKind()
		if err != nil {
			return Descriptor{}, err
		}
		d.Kind = kind
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Descriptor{}, fmt.Errorf("locate home directory: %w", err)
	}

	switch d.Kind {
	case KindLegacy:
		d.StorePath = cfg.LegacyStorePath
		if d.StorePath == "" {
			d.StorePath = filepath.Join(home, filepath.FromSlash(legacyStoreRel))
		}
	case KindModern:
		d.StorePath = cfg.ModernStorePath
		if d.StorePath == "" {
			d.StorePath = filepath.Join(home, filepath.FromSlash(modernStoreRel))
		}
		d.CacheBase = cfg.CacheDir
		if d.CacheBase == "" {
			// Failure is deferred: reads never need the cache base, so it
			// only becomes an error when Add mints a record.
			if base, err := host.CacheDir(); err == nil {
				d.CacheBase = base
			}
		}
	}

	return d, nil
}

// detectKind maps the host OS version onto a store kind.
func detectKind() (Kind, error) {
	v, err := host.ProductVersion()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostVersionUnknown, err)
	}
	major, err := majorVersion(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHostVersionUnknown, err)
	}
	if major >= modernMinMajor {
		return KindModern, nil
	}
	return KindLegacy, nil
}

// majorVersion parses the leading component of a dotted version string.
func majorVersion(v string) (int, error) {
	head, _, _ := strings.Cut(v, ".")
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0, fmt.Errorf("parse product version %q: %v", v, err)
	}
	return n, nil
}
