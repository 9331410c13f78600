package permission

//go:generate go run github.com/dmarkham/enumer -type Permission -trimprefix Permission -transform snake -json -yaml -sql -output permission.gen.go

// Permission is a privilege that can be granted to a group.
type Permission int

const (
	PermissionCanView Permission = iota
	PermissionCanCreate
	PermissionCanEdit
	PermissionCanDelete
)

// Set is a collection of permissions held by a caller.
type Set map[Permission]struct{}

// NewSet builds a Set from the given permissions.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set. A nil set holds nothing.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the permissions in declaration order.
func (s Set) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for _, p := range PermissionValues() {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Group is a named bundle of permissions.
type Group struct {
	Name        string
	Permissions []Permission
}

// DefaultGroups returns the groups every deployment starts with.
func DefaultGroups() []Group {
	return []Group{
		{Name: "Viewers", Permissions: []Permission{PermissionCanView}},
		{Name: "Editors", Permissions: []Permission{PermissionCanView, PermissionCanCreate, PermissionCanEdit}},
		{Name: "Admins", Permissions: []Permission{PermissionCanView, PermissionCanCreate, PermissionCanEdit, PermissionCanDelete}},
	}
}
