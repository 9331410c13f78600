package permission

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPermissionString(t *testing.T) {
	tests := []struct {
		perm     Permission
		expected string
	}{
		{PermissionCanView, "can_view"},
		{PermissionCanCreate, "can_create"},
		{PermissionCanEdit, "can_edit"},
		{PermissionCanDelete, "can_delete"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.perm.String())

			parsed, err := PermissionString(tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.perm, parsed)
		})
	}
}

func TestPermissionString_Unknown(t *testing.T) {
	_, err := PermissionString("can_fly")
	assert.Error(t, err)
	assert.False(t, Permission(42).IsAPermission())
}

func TestPermission_JSONAndYAML(t *testing.T) {
	data, err := json.Marshal([]Permission{PermissionCanView, PermissionCanDelete})
	require.NoError(t, err)
	assert.JSONEq(t, `["can_view","can_delete"]`, string(data))

	var perms []Permission
	require.NoError(t, yaml.Unmarshal([]byte("[can_edit, can_create]"), &perms))
	assert.Equal(t, []Permission{PermissionCanEdit, PermissionCanCreate}, perms)
}

func TestPermission_Scan(t *testing.T) {
	var p Permission
	require.NoError(t, p.Scan([]byte("can_edit")))
	assert.Equal(t, PermissionCanEdit, p)

	v, err := PermissionCanDelete.Value()
	require.NoError(t, err)
	assert.Equal(t, "can_delete", v)

	assert.Error(t, p.Scan(3.14))
}

func TestSet(t *testing.T) {
	s := NewSet(PermissionCanEdit, PermissionCanView)
	assert.True(t, s.Has(PermissionCanView))
	assert.False(t, s.Has(PermissionCanDelete))
	assert.Equal(t, []Permission{PermissionCanView, PermissionCanEdit}, s.Slice())

	var empty Set
	assert.False(t, empty.Has(PermissionCanView))
}

func TestDefaultGroups(t *testing.T) {
	groups := DefaultGroups()
	require.Len(t, groups, 3)

	byName := map[string][]Permission{}
	for _, g := range groups {
		byName[g.Name] = g.Permissions
	}
	assert.Equal(t, []Permission{PermissionCanView}, byName["Viewers"])
	assert.NotContains(t, byName["Editors"], PermissionCanDelete)
	assert.Contains(t, byName["Admins"], PermissionCanDelete)
}

func TestRole(t *testing.T) {
	tests := []struct {
		role  Role
		name  string
		panel string
	}{
		{RoleNone, "none", ""},
		{RoleAdmin, "admin", "admin-panel"},
		{RoleLibrarian, "librarian", "librarian-panel"},
		{RoleMember, "member", "member-panel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.role.String())
			assert.Equal(t, tt.panel, tt.role.Panel())

			parsed, err := RoleString(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.role, parsed)
		})
	}

	_, err := RoleString("Admin")
	assert.NoError(t, err, "lookup falls back to lower case")
}
