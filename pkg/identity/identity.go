package identity

import (
	"context"
	"net"
	"time"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity is the caller of a request. Every request carries one, anonymous
// callers included. Role is always set and is permission.RoleNone when the
// caller has no role.
type Identity struct {
	Authenticated bool
	UserID        uint
	Username      string
	Role          permission.Role
	Permissions   permission.Set

	// Token timestamps, zero for anonymous callers
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP  net.IP
	RequestID string
}

// Anonymous returns an unauthenticated identity.
func Anonymous() *Identity {
	return &Identity{Role: permission.RoleNone, Permissions: permission.NewSet()}
}

// ForUser returns an authenticated identity.
func ForUser(userID uint, username string, role permission.Role) *Identity {
	return &Identity{
		Authenticated: true,
		UserID:        userID,
		Username:      username,
		Role:          role,
		Permissions:   permission.NewSet(),
	}
}

// WithPermissions sets the granted permissions.
func (i *Identity) WithPermissions(perms permission.Set) *Identity {
	if perms == nil {
		perms = permission.NewSet()
	}
	i.Permissions = perms
	return i
}

// WithTokenTimes sets the token issue and expiry times.
func (i *Identity) WithTokenTimes(issuedAt, expiresAt time.Time) *Identity {
	i.IssuedAt = issuedAt
	i.ExpiresAt = expiresAt
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// WithRequestID sets the request id.
func (i *Identity) WithRequestID(id string) *Identity {
	i.RequestID = id
	return i
}

// Can reports whether the identity holds p. Anonymous callers hold nothing.
func (i *Identity) Can(p permission.Permission) bool {
	return i.Authenticated && i.Permissions.Has(p)
}

// Subject names the caller for logs and audit records.
func (i *Identity) Subject() string {
	if !i.Authenticated {
		return "anonymous"
	}
	return i.Username
}

// ClientIP returns the remote IP as a string, or "" when unknown.
func (i *Identity) ClientIP() string {
	if i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// FromContext returns the Identity in ctx, or an anonymous one.
func FromContext(ctx context.Context) *Identity {
	if id, ok := Get(ctx); ok && id != nil {
		return id
	}
	return Anonymous()
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
