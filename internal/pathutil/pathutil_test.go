package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestNormalizeTrailingSlash(t *testing.T) {
	dir := t.TempDir()

	got, err := Normalize(dir + string(filepath.Separator))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want, err := Normalize(dir)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != want {
		t.Errorf("Normalize(%q) = %q, want %q", dir+"/", got, want)
	}
	if strings.HasSuffix(got, string(filepath.Separator)) {
		t.Errorf("canonical form %q keeps trailing separator", got)
	}
}

func TestNormalizeDotSegments(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "photos")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := Normalize(filepath.Join(dir, "photos", "..", ".", "photos"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want, err := Normalize(sub)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != want {
		t.Errorf("Normalize with dot segments = %q, want %q", got, want)
	}
}

func TestNormalizeHomeShorthand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	sub := filepath.Join(home, "Pictures")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := Normalize("~/Pictures")
	if err != nil {
		t.Fatalf("Normalize(~/Pictures): %v", err)
	}
	want, err := Normalize(sub)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != want {
		t.Errorf("Normalize(~/Pictures) = %q, want %q", got, want)
	}

	// Bare ~ resolves to the home directory itself.
	got, err = Normalize("~")
	if err != nil {
		t.Fatalf("Normalize(~): %v", err)
	}
	want, err = Normalize(home)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != want {
		t.Errorf("Normalize(~) = %q, want %q", got, want)
	}

	// ~user form is not home shorthand and stays a relative path.
	got, err = Normalize("~somebody")
	if err != nil {
		t.Fatalf("Normalize(~somebody): %v", err)
	}
	if !strings.HasSuffix(got, "~somebody") {
		t.Errorf("Normalize(~somebody) = %q, want literal ~somebody component", got)
	}
}

func TestNormalizeRelative(t *testing.T) {
	dir := t.TempDir()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	got, err := Normalize("photos")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want, err := Normalize(filepath.Join(dir, "photos"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != want {
		t.Errorf("Normalize(relative) = %q, want %q", got, want)
	}
}

func TestNormalizeSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	link := filepath.Join(dir, "alias")
	if err := os.Symlink(real, link); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	if !Equal(link, real) {
		t.Errorf("Equal(%q, %q) = false, want true", link, real)
	}

	// A component under the symlink resolves too, even when the leaf
	// does not exist.
	if !Equal(filepath.Join(link, "missing"), filepath.Join(real, "missing")) {
		t.Error("Equal through symlink with missing leaf = false, want true")
	}
}

func TestNormalizeMissingPath(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "not", "created", "yet")

	got, err := Normalize(missing)
	if err != nil {
		t.Fatalf("Normalize(missing): %v", err)
	}
	want, _ := Normalize(dir)
	if got != filepath.Join(want, "not", "created", "yet") {
		t.Errorf("Normalize(missing) = %q, want path under %q", got, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if _, err := Normalize(""); err == nil {
		t.Error("Normalize(\"\") succeeded, want error")
	}
}

func TestEqualCaseSensitive(t *testing.T) {
	if Equal("/Users/x/Pictures", "/users/x/pictures") {
		t.Error("Equal ignored case, want case-sensitive comparison")
	}
}
