package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bookshelfctl",
	Short: "Run and manage the bookshelf server",
	Long: `bookshelfctl runs the bookshelf HTTP server and manages its database,
configuration, permission groups, users and catalog.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
