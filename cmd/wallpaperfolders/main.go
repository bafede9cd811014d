// wallpaperfolders registers extra photo folders as wallpaper and
// screen-saver sources with the host desktop environment.
//
// The folder list lives in one of two incompatible store files depending on
// the host generation. The tool detects the right one per invocation and
// can be pinned with WFM_BACKEND; see internal/store for the schemas.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartreardon/WallpaperFolderManager/internal/bookmark"
	"github.com/bartreardon/WallpaperFolderManager/internal/config"
	"github.com/bartreardon/WallpaperFolderManager/internal/host"
	"github.com/bartreardon/WallpaperFolderManager/internal/logging"
	"github.com/bartreardon/WallpaperFolderManager/internal/store"
)

const version = "1.1.0"

var (
	flagVerbose bool
	flagNoApply bool
)

var rootCmd = &cobra.Command{
	Use:   "wallpaperfolders",
	Short: "Manage extra wallpaper and slideshow folders",
	Long: `wallpaperfolders maintains the list of extra photo folders the desktop
environment offers as wallpaper and screen-saver sources.

Folders are stored in the generation-appropriate system store: the wallpaper
store on macOS 14 and later, the slideshow preferences domain before that.
Set WFM_BACKEND=legacy or WFM_BACKEND=modern to pin a backend explicitly.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if flagVerbose {
			level = "debug"
		}
		return logging.Init(logging.Config{Level: level, Format: cfg.LogFormat})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <folder>",
	Short: "Register a folder as a wallpaper source",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove <folder>",
	Short: "Unregister a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered folders",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug output")
	for _, c := range []*cobra.Command{addCmd, removeCmd} {
		c.Flags().BoolVar(&flagNoApply, "no-apply", false, "do not signal the host to reload the store")
	}
	rootCmd.AddCommand(addCmd, removeCmd, listCmd)
}

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if err := st.Add(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Added %s\n", args[0])
	applyChanges(cmd.Context(), st.Kind())
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	if err := st.Remove(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	applyChanges(cmd.Context(), st.Kind())
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	entries, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	if !flagVerbose {
		for _, e := range entries {
			fmt.Println(e.Path)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tADDED\tPATH")
	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = "-"
		}
		added := "-"
		if !e.AddedAt.IsZero() {
			added = e.AddedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, added, e.Path)
	}
	return w.Flush()
}

func openStore() (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	desc, err := store.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	logging.Debug("store resolved",
		zap.String("kind", string(desc.Kind)),
		zap.String("path", desc.StorePath))
	return store.Open(desc, bookmark.New())
}

// applyChanges nudges the host process that caches the active store. The
// edit is already durable on disk, so this never fails the command.
func applyChanges(ctx context.Context, kind store.Kind) {
	if flagNoApply {
		return
	}
	switch kind {
	case store.KindModern:
		host.Notify(ctx, host.WallpaperAgent)
	default:
		host.Notify(ctx, host.PreferencesDaemon)
	}
}
