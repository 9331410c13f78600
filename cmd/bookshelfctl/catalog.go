package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/seed"
	gormstore "github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store/gorm"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the book catalog",
	Long: `Load authors, books and libraries from YAML catalog documents.

A catalog document looks like:

  authors:
    - name: J.R.R. Tolkien
      books:
        - title: The Hobbit
          publication_year: 1937
  libraries:
    - name: Central
      librarian: alice
      books:
        - title: The Hobbit
          author: J.R.R. Tolkien

Loading is idempotent: authors, books and libraries that already exist are
left alone. Each document loads in a single transaction, so a failed load
writes nothing.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'catalog' requires a subcommand (import, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func catalogStores(database *gorm.DB) seed.Stores {
	return seed.Stores{
		Authors:   gormstore.NewAuthorsStore(database),
		Books:     gormstore.NewBooksStore(database),
		Libraries: gormstore.NewLibrariesStore(database),
	}
}

// catalogTx runs a load inside one database transaction.
func catalogTx(database *gorm.DB) seed.TxFunc {
	return func(ctx context.Context, fn func(seed.Stores) error) error {
		return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(catalogStores(tx))
		})
	}
}

func newCatalogLoader(database *gorm.DB) *seed.Loader {
	return seed.NewLoader(catalogStores(database)).WithTransaction(catalogTx(database))
}
