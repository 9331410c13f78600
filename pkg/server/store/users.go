package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
)

var (
	// ErrUserNotFound is returned when a user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when creating a user whose username exists
	ErrUsernameTaken = errors.New("username already taken")

	// ErrGroupNotFound is returned when a group doesn't exist
	ErrGroupNotFound = errors.New("group not found")
)

// UsersStore abstracts user account persistence
type UsersStore interface {
	// CreateUser inserts user. Returns ErrUsernameTaken on a duplicate username.
	CreateUser(ctx context.Context, user *model.User) error

	// FetchUser returns the user with groups and group permissions.
	// Returns ErrUserNotFound if the user doesn't exist.
	FetchUser(ctx context.Context, id uint) (*model.User, error)

	// FetchUserByUsername is FetchUser keyed by username.
	FetchUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// GroupsStore abstracts permission group persistence
type GroupsStore interface {
	// EnsureGroup creates the group if needed and sets its permissions to
	// exactly perms. created reports whether the group was new.
	EnsureGroup(ctx context.Context, name string, perms []permission.Permission) (group *model.Group, created bool, err error)

	// AddUserToGroup makes the user a member of the named group.
	// Returns ErrUserNotFound or ErrGroupNotFound for unknown names.
	AddUserToGroup(ctx context.Context, userID uint, groupName string) error

	// ListGroups returns every group with its permissions.
	ListGroups(ctx context.Context) ([]model.Group, error)
}
