package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/audit"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store/gorm"
)

const (
	envUserPassword   = "BOOKSHELF_USER_PASSWORD"
	minPasswordLength = 8
	maxPasswordBytes  = 72
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Long: `Create a user account with a role and group memberships.

The password is read from BOOKSHELF_USER_PASSWORD, from stdin when
--password-stdin is set, or prompted for on the terminal.

Roles: none, admin, librarian, member (default member)

Example:
  bookshelfctl user create alice --role librarian --group Editors
  echo "$PASSWORD" | bookshelfctl user create bob --password-stdin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		roleName, _ := cmd.Flags().GetString("role")
		groups, _ := cmd.Flags().GetStringSlice("group")
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		role, err := permission.RoleString(roleName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unknown role %q (valid: %s)\n", roleName, strings.Join(permission.RoleStrings(), ", "))
			os.Exit(1)
		}

		password, err := readPassword(fromStdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read password: %v\n", err)
			os.Exit(1)
		}

		database, err := connect()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		req := userRequest{Username: args[0], Password: password, Role: role, Groups: groups}
		user, err := createUser(cmd.Context(), gormstore.NewUsersStore(database), gormstore.NewGroupsStore(database), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("role", permission.RoleMember.String(), "User role")
	userCreateCmd.Flags().StringSlice("group", nil, "Permission group to join (repeatable)")
	userCreateCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}

type userRequest struct {
	Username string
	Password string
	Role     permission.Role
	Groups   []string
}

func readPassword(fromStdin bool) (string, error) {
	if password := os.Getenv(envUserPassword); password != "" {
		return password, nil
	}
	if fromStdin {
		return readPasswordFrom(os.Stdin)
	}

	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; set %s or use --password-stdin", envUserPassword)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func readPasswordFrom(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func createUser(ctx context.Context, users store.UsersStore, groups store.GroupsStore, req userRequest) (*model.User, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, errors.New("username must not be blank")
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{Username: username, PasswordHash: string(hash), Role: req.Role}
	if err := users.CreateUser(ctx, user); err != nil {
		audit.Log(ctx, audit.RegisterEvent{Username: username, Role: req.Role.String(), Success: false, ErrorMessage: err.Error()})
		return nil, err
	}
	audit.Log(ctx, audit.RegisterEvent{Username: username, Role: req.Role.String(), Success: true})

	for _, name := range req.Groups {
		if err := groups.AddUserToGroup(ctx, user.ID, name); err != nil {
			if errors.Is(err, store.ErrGroupNotFound) {
				return user, fmt.Errorf("group %q does not exist (run `bookshelfctl groups create` first)", name)
			}
			return user, err
		}
	}
	return user, nil
}
