// Package permission defines the typed permission and role vocabularies used
// by the bookshelf service.
//
// Permissions are granted to users through groups. Roles are a single
// attribute on every user and gate the role panels.
//
// # Permissions
//
//   - can_view: read books when reads require authentication
//   - can_create: create books and authors
//   - can_edit: update books
//   - can_delete: delete books
//
// # Default Groups
//
// DefaultGroups mirrors the groups seeded by `bookshelfctl groups create`:
//
//	Viewers: can_view
//	Editors: can_view, can_create, can_edit
//	Admins:  can_view, can_create, can_edit, can_delete
package permission
