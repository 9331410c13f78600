package permission

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform lower -json -yaml -sql -output role.gen.go

// Role is the single role attribute carried by every user. RoleNone is the
// zero value for users without a role.
type Role int

const (
	RoleNone Role = iota
	RoleAdmin
	RoleLibrarian
	RoleMember
)

// Panel returns the role panel path segment for r, or "" for RoleNone.
func (r Role) Panel() string {
	if r == RoleNone || !r.IsARole() {
		return ""
	}
	return r.String() + "-panel"
}
