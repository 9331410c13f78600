// Package middleware provides HTTP middleware for the bookshelf server.
//
// The Authenticator reads an optional "Authorization: Bearer <jwt>" header,
// verifies it with the token signer and reloads the user so that role and
// group permissions are always current. The resulting identity.Identity,
// anonymous or not, is stored in the request context:
//
//	auth := middleware.NewAuthenticator(signer, users, cfg, logger)
//	router.Use(auth.Middleware)
//
//	caller := identity.FromContext(r.Context())
package middleware
