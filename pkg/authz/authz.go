package authz

import (
	"errors"
	"fmt"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
)

var (
	// ErrUnauthorized is returned when a protected operation has no caller credentials
	ErrUnauthorized = errors.New("authentication credentials were not provided")

	// ErrForbidden is returned when an authenticated caller is not allowed
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// Operation is the kind of access a request needs.
type Operation int

const (
	OperationRead Operation = iota
	OperationCreate
	OperationUpdate
	OperationDelete
)

func (o Operation) String() string {
	switch o {
	case OperationRead:
		return "read"
	case OperationCreate:
		return "create"
	case OperationUpdate:
		return "update"
	case OperationDelete:
		return "delete"
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// IsWrite reports whether o mutates records.
func (o Operation) IsWrite() bool {
	return o != OperationRead
}

// ReadAccess selects whether anonymous callers may read.
type ReadAccess string

const (
	ReadPublic        ReadAccess = "public"
	ReadAuthenticated ReadAccess = "authenticated"
)

// Model selects how writes are authorized. A deployment uses exactly one.
type Model string

const (
	// ModelOwner lets any authenticated caller create, and only the creator
	// of a record update or delete it.
	ModelOwner Model = "owner"

	// ModelGroups checks typed permissions granted through groups and has no
	// object level rule.
	ModelGroups Model = "groups"
)

// ParseReadAccess validates a read access setting.
func ParseReadAccess(s string) (ReadAccess, error) {
	switch ReadAccess(s) {
	case ReadPublic, ReadAuthenticated:
		return ReadAccess(s), nil
	}
	return "", fmt.Errorf("invalid read access %q: expected %q or %q", s, ReadPublic, ReadAuthenticated)
}

// ParseModel validates an authorization model setting.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelOwner, ModelGroups:
		return Model(s), nil
	}
	return "", fmt.Errorf("invalid authorization model %q: expected %q or %q", s, ModelOwner, ModelGroups)
}

// Policy decides whether a caller may perform an operation.
type Policy struct {
	Read  ReadAccess
	Model Model
}

// DefaultPolicy is public reads with owner based writes.
func DefaultPolicy() Policy {
	return Policy{Read: ReadPublic, Model: ModelOwner}
}

var requiredPermission = map[Operation]permission.Permission{
	OperationRead:   permission.PermissionCanView,
	OperationCreate: permission.PermissionCanCreate,
	OperationUpdate: permission.PermissionCanEdit,
	OperationDelete: permission.PermissionCanDelete,
}

// Authorize is the request level gate. It runs before any record is looked
// up, so an anonymous write fails with ErrUnauthorized even for a missing
// record.
func (p Policy) Authorize(op Operation, caller *identity.Identity) error {
	if caller == nil {
		caller = identity.Anonymous()
	}

	if op == OperationRead && p.Read != ReadAuthenticated {
		return nil
	}
	if !caller.Authenticated {
		return ErrUnauthorized
	}
	if p.Model == ModelGroups && !caller.Can(requiredPermission[op]) {
		return fmt.Errorf("%w: missing %s", ErrForbidden, requiredPermission[op])
	}
	return nil
}

// AuthorizeObject is the object level gate for update and delete. It runs
// after the record has been found. ownerID is nil for records without an
// owner, which only the groups model can modify.
func (p Policy) AuthorizeObject(op Operation, caller *identity.Identity, ownerID *uint) error {
	if !op.IsWrite() || op == OperationCreate {
		return nil
	}
	if caller == nil || !caller.Authenticated {
		return ErrUnauthorized
	}
	if p.Model == ModelGroups {
		return nil
	}
	if ownerID == nil || *ownerID != caller.UserID {
		return fmt.Errorf("%w: not the owner", ErrForbidden)
	}
	return nil
}

// RequireRole gates the role panels. Anonymous callers and callers with any
// other role are both forbidden.
func RequireRole(caller *identity.Identity, role permission.Role) error {
	if caller == nil || !caller.Authenticated || caller.Role != role {
		return fmt.Errorf("%w: requires role %s", ErrForbidden, role)
	}
	return nil
}
