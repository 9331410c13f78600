package gorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
)

func TestUsersStore(t *testing.T) {
	gdb := newSQLiteDB(t)
	users := NewUsersStore(gdb)
	groups := NewGroupsStore(gdb)
	ctx := context.Background()

	alice := &model.User{Username: "alice", PasswordHash: "x", Role: permission.RoleLibrarian}
	require.NoError(t, users.CreateUser(ctx, alice))
	assert.NotZero(t, alice.ID)

	t.Run("duplicate username", func(t *testing.T) {
		err := users.CreateUser(ctx, &model.User{Username: "alice"})
		assert.ErrorIs(t, err, store.ErrUsernameTaken)
	})

	t.Run("fetch", func(t *testing.T) {
		got, err := users.FetchUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, permission.RoleLibrarian, got.Role)
		assert.Empty(t, got.Permissions().Slice())

		_, err = users.FetchUserByUsername(ctx, "bob")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("group permissions", func(t *testing.T) {
		editors, created, err := groups.EnsureGroup(ctx, "Editors",
			[]permission.Permission{permission.PermissionCanView, permission.PermissionCanEdit})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, editors.Permissions, 2)

		require.NoError(t, groups.AddUserToGroup(ctx, alice.ID, "Editors"))
		// second add is a no-op
		require.NoError(t, groups.AddUserToGroup(ctx, alice.ID, "Editors"))

		got, err := users.FetchUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, got.Groups, 1)
		perms := got.Permissions()
		assert.True(t, perms.Has(permission.PermissionCanEdit))
		assert.False(t, perms.Has(permission.PermissionCanDelete))
	})

	t.Run("ensure group replaces permissions", func(t *testing.T) {
		_, created, err := groups.EnsureGroup(ctx, "Editors", []permission.Permission{permission.PermissionCanDelete})
		require.NoError(t, err)
		assert.False(t, created)

		got, err := users.FetchUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []permission.Permission{permission.PermissionCanDelete}, got.Permissions().Slice())

		all, err := groups.ListGroups(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Len(t, all[0].Permissions, 1)
	})

	t.Run("unknown membership", func(t *testing.T) {
		assert.ErrorIs(t, groups.AddUserToGroup(ctx, 999, "Editors"), store.ErrUserNotFound)
		assert.ErrorIs(t, groups.AddUserToGroup(ctx, alice.ID, "Nobody"), store.ErrGroupNotFound)
	})
}
