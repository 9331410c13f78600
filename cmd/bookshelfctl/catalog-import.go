package main

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/seed"
)

// catalogImportCmd represents the catalog import command
var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a catalog document",
	Long: `Import a catalog document into the database.

Use "-" to read the document from stdin. The counts of created records are
printed as JSON.

Example:
  bookshelfctl catalog import catalog.yml
  bookshelfctl catalog import --dry-run catalog.yml
  cat catalog.yml | bookshelfctl catalog import -`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		database, err := connect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		loader := newCatalogLoader(database).WithDryRun(dryRun)
		if err := importCatalog(cmd.Context(), os.Stdout, loader, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to import catalog: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	catalogCmd.AddCommand(catalogImportCmd)
	catalogImportCmd.Flags().Bool("dry-run", false, "Validate the document and report what would be created")
}

func importCatalog(ctx context.Context, w io.Writer, loader *seed.Loader, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open catalog file: %w", err)
		}
		defer func() { _ = file.Close() }()
		r = file
	}

	result, err := loader.LoadFromReader(ctx, r)
	if err != nil {
		return err
	}

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
