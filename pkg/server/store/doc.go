// Package store provides storage abstractions for the bookshelf server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// Endpoint tests use testify mocks of these interfaces; production uses the
// GORM implementations in the gorm subpackage.
//
// # Available Stores
//
//   - BooksStore: create, fetch, list, update and delete books
//   - AuthorsStore: authors with their books
//   - LibrariesStore: libraries, their books and librarians
//   - UsersStore: user accounts with role and group permissions
//   - GroupsStore: permission groups and membership
//   - HealthStore: database connectivity
//
// # Usage
//
//	books := gorm.NewBooksStore(db)
//	book, err := books.FetchBook(ctx, 42)
//	if err != nil {
//	    if errors.Is(err, store.ErrBookNotFound) {
//	        // Handle not found
//	    }
//	}
package store
