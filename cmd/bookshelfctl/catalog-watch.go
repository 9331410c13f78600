package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/seed"
)

const reloadDelay = 250 * time.Millisecond

// catalogWatchCmd represents the catalog watch command
var catalogWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a catalog document and import it whenever it changes",
	Long: `Import a catalog document, then import it again every time it is
written or replaced. Editors that save by renaming a temporary file over the
document are supported.

Example:
  bookshelfctl catalog watch /etc/bookshelf/catalog.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		database, err := connect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loader := newCatalogLoader(database)
		if err := watchCatalog(ctx, os.Stdout, loader, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch catalog: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	catalogCmd.AddCommand(catalogWatchCmd)
}

// watchCatalog imports path once and then on every change until ctx is done.
// The parent directory is watched because rename-on-save replaces the inode.
func watchCatalog(ctx context.Context, w io.Writer, loader *seed.Loader, path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	reload := func() {
		_, _ = fmt.Fprintf(w, "[%s] importing %s\n", time.Now().Format(time.RFC3339), path)
		if err := importCatalog(ctx, w, loader, path); err != nil {
			_, _ = fmt.Fprintf(w, "import failed: %v\n", err)
		}
	}

	_, _ = fmt.Fprintf(w, "Watching %s for catalog changes\n", path)
	reload()

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(reloadDelay)
			}
		case <-pending:
			pending = nil
			if _, err := os.Stat(path); err != nil {
				_, _ = fmt.Fprintf(w, "catalog unavailable: %v\n", err)
				continue
			}
			reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(w, "watcher error: %v\n", err)
		case <-ctx.Done():
			_, _ = fmt.Fprintln(w, "Shutting down...")
			return nil
		}
	}
}
