// Package host answers questions about the machine the tool is running on:
// which OS version it is, where the user cache lives, and how to nudge the
// system processes that hold wallpaper state in memory.
package host

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/bartreardon/WallpaperFolderManager/internal/logging"
)

// Processes that cache store contents and need a restart to observe edits
// made behind their back. Both respawn on demand after a kill.
const (
	WallpaperAgent    = "WallpaperAgent"
	PreferencesDaemon = "cfprefsd"
)

// CacheDir returns the base directory for per-user caches.
func CacheDir() (string, error) {
	return os.UserCacheDir()
}

// Notify terminates the named process so it re-reads the store on its next
// launch. The call is best effort: the tool's edit is already durable on
// disk, so a failure here only delays when the system notices it. killall
// exits nonzero when no process matched, which is the common case on a
// machine where the agent has not started yet, so errors are logged at
// debug and swallowed.
func Notify(ctx context.Context, process string) {
	out, err := exec.CommandContext(ctx, "killall", process).CombinedOutput()
	if err != nil {
		logging.Debug("restart signal failed",
			zap.String("process", process),
			zap.Error(err),
			zap.ByteString("output", bytes.TrimSpace(out)))
	}
}
