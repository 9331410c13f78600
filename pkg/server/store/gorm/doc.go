// Package gorm implements the bookshelf store interfaces with GORM.
//
// The same code runs against PostgreSQL and SQLite; db.Connect picks the
// dialector. Reads that render nested JSON (authors with books, libraries with
// books and librarian) preload their associations here so handlers never
// issue follow-up queries.
package gorm
