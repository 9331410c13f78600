package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/db"
)

// groupsCmd represents the groups command
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage permission groups",
	Long: `Manage the permission groups used by the groups authorization model.

Users inherit the permissions (can_view, can_create, can_edit, can_delete)
of every group they belong to.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'groups' requires a subcommand (create, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}

// connect opens DATABASE_URL for the management commands.
func connect() (*gorm.DB, error) {
	return db.Connect(db.Config{})
}
