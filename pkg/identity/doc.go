// Package identity carries the caller of a request through its context.
//
// The identity middleware resolves a bearer token to a user, then stores an
// Identity holding the user's id, role and group permissions. Requests
// without credentials get an anonymous Identity, so handlers never see a
// missing one.
//
//	id := identity.ForUser(user.ID, user.Username, user.Role).
//		WithPermissions(user.Permissions()).
//		WithRemoteIP(clientIP)
//	ctx = identity.Set(ctx, id)
//
//	caller := identity.FromContext(ctx)
package identity
