package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"howett.net/plist"

	"github.com/bartreardon/WallpaperFolderManager/internal/config"
	"github.com/bartreardon/WallpaperFolderManager/internal/pathutil"
)

// fakeIssuer hands out deterministic tokens and counts how often it is
// asked, so tests can prove writes that must not mint tokens don't.
type fakeIssuer struct {
	token []byte
	err   error
	calls int
}

func (f *fakeIssuer) Issue(_ context.Context, path string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.token != nil {
		return f.token, nil
	}
	return []byte("token:" + path), nil
}

func newTestStore(t *testing.T, kind Kind, issuer *fakeIssuer) *Store {
	t.Helper()
	base := t.TempDir()
	desc := Descriptor{Kind: kind, StorePath: filepath.Join(base, "store.plist")}
	if kind == KindModern {
		desc.CacheBase = filepath.Join(base, "caches")
	}
	s, err := Open(desc, issuer)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func mustNormalize(t *testing.T, path string) string {
	t.Helper()
	p, err := pathutil.Normalize(path)
	if err != nil {
		t.Fatalf("Normalize(%q): %v", path, err)
	}
	return p
}

func writeRawContainer(t *testing.T, path string, dict map[string]any) {
	t.Helper()
	data, err := plist.Marshal(dict, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("plist.Marshal: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readRawContainer(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var dict map[string]any
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		t.Fatalf("plist.Unmarshal: %v", err)
	}
	return dict
}

func TestScenarioBothBackends(t *testing.T) {
	for _, kind := range []Kind{KindLegacy, KindModern} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t, kind, &fakeIssuer{})
			folder := t.TempDir()
			want := mustNormalize(t, folder)

			if err := s.Add(ctx, folder); err != nil {
				t.Fatalf("Add: %v", err)
			}

			entries, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("List returned %d entries, want 1", len(entries))
			}
			if entries[0].Path != want {
				t.Errorf("entry path = %q, want %q", entries[0].Path, want)
			}
			if kind == KindModern && entries[0].ID == "" {
				t.Error("modern entry has no id")
			}

			// Variant spellings of the same folder collapse to one entry.
			if err := s.Add(ctx, folder+string(os.PathSeparator)); !errors.Is(err, ErrAlreadyRegistered) {
				t.Errorf("Add duplicate = %v, want ErrAlreadyRegistered", err)
			}

			ok, err := s.IsRegistered(ctx, folder)
			if err != nil {
				t.Fatalf("IsRegistered: %v", err)
			}
			if !ok {
				t.Error("IsRegistered = false after Add")
			}

			if err := s.Remove(ctx, folder); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			entries, err = s.List(ctx)
			if err != nil {
				t.Fatalf("List after Remove: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("List returned %d entries after Remove, want 0", len(entries))
			}

			ok, err = s.IsRegistered(ctx, folder)
			if err != nil {
				t.Fatalf("IsRegistered: %v", err)
			}
			if ok {
				t.Error("IsRegistered = true after Remove")
			}

			if err := s.Remove(ctx, folder); !errors.Is(err, ErrNotRegistered) {
				t.Errorf("second Remove = %v, want ErrNotRegistered", err)
			}
		})
	}
}

func TestAddRejectsNonDirectories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, KindLegacy, nil)

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if err := s.Add(ctx, missing); !errors.Is(err, ErrNotADirectory) {
		t.Errorf("Add(missing) = %v, want ErrNotADirectory", err)
	}

	file := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(file, []byte("jpeg"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := s.Add(ctx, file); !errors.Is(err, ErrNotADirectory) {
		t.Errorf("Add(file) = %v, want ErrNotADirectory", err)
	}

	if entries, err := s.List(ctx); err != nil || len(entries) != 0 {
		t.Errorf("List = %v, %v; want empty store", entries, err)
	}
}

func TestSymlinkAliases(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation needs privileges on windows")
	}
	for _, kind := range []Kind{KindLegacy, KindModern} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t, kind, &fakeIssuer{})

			real := t.TempDir()
			alias := filepath.Join(t.TempDir(), "alias")
			if err := os.Symlink(real, alias); err != nil {
				t.Fatalf("Symlink: %v", err)
			}

			if err := s.Add(ctx, real); err != nil {
				t.Fatalf("Add: %v", err)
			}
			if err := s.Add(ctx, alias); !errors.Is(err, ErrAlreadyRegistered) {
				t.Errorf("Add(alias) = %v, want ErrAlreadyRegistered", err)
			}

			ok, err := s.IsRegistered(ctx, alias)
			if err != nil {
				t.Fatalf("IsRegistered: %v", err)
			}
			if !ok {
				t.Error("IsRegistered(alias) = false, want true")
			}

			if err := s.Remove(ctx, alias); err != nil {
				t.Fatalf("Remove(alias): %v", err)
			}
			if entries, _ := s.List(ctx); len(entries) != 0 {
				t.Errorf("List returned %d entries after Remove, want 0", len(entries))
			}
		})
	}
}

func TestResolveForcedBackends(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	d, err := Resolve(&config.Config{Backend: "legacy"})
	if err != nil {
		t.Fatalf("Resolve(legacy): %v", err)
	}
	if d.Kind != KindLegacy {
		t.Errorf("Kind = %q, want legacy", d.Kind)
	}
	wantLegacy := filepath.Join(home, "Library", "Preferences", "com.apple.ScreenSaver.iLifeSlideShows.plist")
	if d.StorePath != wantLegacy {
		t.Errorf("StorePath = %q, want %q", d.StorePath, wantLegacy)
	}
	if d.CacheBase != "" {
		t.Errorf("CacheBase = %q, want empty for legacy", d.CacheBase)
	}

	d, err = Resolve(&config.Config{Backend: "modern"})
	if err != nil {
		t.Fatalf("Resolve(modern): %v", err)
	}
	if d.Kind != KindModern {
		t.Errorf("Kind = %q, want modern", d.Kind)
	}
	wantModern := filepath.Join(home, "Library", "Application Support", "com.apple.wallpaper", "Store", "Folders.plist")
	if d.StorePath != wantModern {
		t.Errorf("StorePath = %q, want %q", d.StorePath, wantModern)
	}
	if d.CacheBase == "" {
		t.Error("CacheBase empty, want host cache directory")
	}
}

func TestResolveOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	d, err := Resolve(&config.Config{
		Backend:         "modern",
		ModernStorePath: "/custom/Folders.plist",
		CacheDir:        "/custom/caches",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.StorePath != "/custom/Folders.plist" {
		t.Errorf("StorePath = %q, want override", d.StorePath)
	}
	if d.CacheBase != "/custom/caches" {
		t.Errorf("CacheBase = %q, want override", d.CacheBase)
	}

	d, err = Resolve(&config.Config{
		Backend:         "legacy",
		LegacyStorePath: "/custom/prefs.plist",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.StorePath != "/custom/prefs.plist" {
		t.Errorf("StorePath = %q, want override", d.StorePath)
	}
}

func TestResolveDetectionUnavailable(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("version detection works on macOS")
	}
	_, err := Resolve(&config.Config{})
	if !errors.Is(err, ErrHostVersionUnknown) {
		t.Errorf("Resolve = %v, want ErrHostVersionUnknown", err)
	}
}

func TestMajorVersion(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"14.2.1", 14, true},
		{"13.6.7", 13, true},
		{"15", 15, true},
		{"26.0", 26, true},
		{"", 0, false},
		{"beta", 0, false},
	}
	for _, tt := range cases {
		got, err := majorVersion(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("majorVersion(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("majorVersion(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open(Descriptor{Kind: "ancient"}, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown store kind") {
		t.Errorf("Open = %v, want unknown-kind error", err)
	}
}
