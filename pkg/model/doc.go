// Package model defines the GORM models for the bookshelf schema.
//
// # Catalog
//
//   - Author: has many Books
//   - Book: title, publication year, author and the creating user
//   - Library: many-to-many Books through library_books
//   - Librarian: one-to-one with a Library
//
// # Accounts
//
//   - User: username, bcrypt password hash and a required role
//   - Group: named permission bundle, joined to users through user_groups
//   - GroupPermission: one typed permission per row
//
// The tables are created by the SQL migrations in db/migrations for
// PostgreSQL, or by AutoMigrate for SQLite.
package model
