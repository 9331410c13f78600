// Package audit provides an audit trail for bookshelf operations.
//
// Events are written as RFC5424 syslog lines and, when AUDIT_DATABASE_URL
// is set, persisted to a messages table through pgx.
//
// # Event Types
//
//   - AuthenticateEvent: login attempts
//   - RegisterEvent: account registration
//   - BookEvent: book create, update and delete
//   - AccessDeniedEvent: requests rejected by the access policy
//   - GroupEvent: permission groups seeded from the CLI
//
// # Usage
//
//	audit.SetEnabled(true)
//	audit.Log(ctx, audit.BookEvent{
//	    User:      "alice",
//	    ClientIP:  "10.0.0.1",
//	    Operation: "create",
//	    BookID:    42,
//	    Success:   true,
//	})
package audit
