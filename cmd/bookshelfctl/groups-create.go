package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/audit"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store/gorm"
)

// groupsCreateCmd represents the groups create command
var groupsCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create permission groups",
	Long: `Create permission groups.

Without a name, the default groups are created (or reset to their default
permissions):

  Viewers  can_view
  Editors  can_view, can_create, can_edit
  Admins   can_view, can_create, can_edit, can_delete

With a name, a single group is created with the permissions given by
--permission. Running the command again replaces the group's permissions.

Example:
  bookshelfctl groups create
  bookshelfctl groups create Curators --permission can_view --permission can_edit`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		perms, _ := cmd.Flags().GetStringSlice("permission")

		groups, err := groupsFromArgs(args, perms)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid group: %v\n", err)
			os.Exit(1)
		}

		database, err := connect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		if err := createGroups(cmd.Context(), os.Stdout, gormstore.NewGroupsStore(database), groups); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create groups: %v\n", err)
			os.Exit(1)
		}
	},
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List permission groups",
	Run: func(cmd *cobra.Command, args []string) {
		database, err := connect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		if err := listGroups(cmd.Context(), os.Stdout, gormstore.NewGroupsStore(database)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list groups: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsListCmd)
	groupsCreateCmd.Flags().StringSlice("permission", nil,
		"Permission granted to the group ("+strings.Join(permission.PermissionStrings(), ", ")+")")
}

func groupsFromArgs(args []string, perms []string) ([]permission.Group, error) {
	if len(args) == 0 {
		if len(perms) > 0 {
			return nil, fmt.Errorf("--permission requires a group name")
		}
		return permission.DefaultGroups(), nil
	}

	name := strings.TrimSpace(args[0])
	if name == "" {
		return nil, fmt.Errorf("group name must not be blank")
	}

	group := permission.Group{Name: name}
	for _, p := range perms {
		perm, err := permission.PermissionString(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
		group.Permissions = append(group.Permissions, perm)
	}
	return []permission.Group{group}, nil
}

func createGroups(ctx context.Context, w io.Writer, groups store.GroupsStore, defs []permission.Group) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, def := range defs {
		_, created, err := groups.EnsureGroup(ctx, def.Name, def.Permissions)
		if err != nil {
			return fmt.Errorf("group %s: %w", def.Name, err)
		}

		names := permissionNames(def.Permissions)
		audit.Log(ctx, audit.GroupEvent{Group: def.Name, Permissions: names, Created: created})

		verb := "Updated"
		if created {
			verb = "Created"
		}
		_, _ = fmt.Fprintf(w, "%s group %s [%s]\n", verb, def.Name, strings.Join(names, ", "))
	}
	return nil
}

func listGroups(ctx context.Context, w io.Writer, groups store.GroupsStore) error {
	if ctx == nil {
		ctx = context.Background()
	}
	all, err := groups.ListGroups(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "%-20s %s\n", "NAME", "PERMISSIONS")
	for _, g := range all {
		perms := make([]permission.Permission, 0, len(g.Permissions))
		for _, gp := range g.Permissions {
			perms = append(perms, gp.Permission)
		}
		_, _ = fmt.Fprintf(w, "%-20s %s\n", g.Name, strings.Join(permissionNames(perms), ", "))
	}
	return nil
}

func permissionNames(perms []permission.Permission) []string {
	names := make([]string, 0, len(perms))
	for _, p := range permission.NewSet(perms...).Slice() {
		names = append(names, p.String())
	}
	return names
}
