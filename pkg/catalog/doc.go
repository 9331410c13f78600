// Package catalog holds the book list query engine and the request
// validation rules.
//
// # Querying
//
// ParseQuery turns list parameters into a Query, and Filter applies it to the
// full book collection:
//
//	q := catalog.ParseQuery(r.URL.Query())
//	books = catalog.Filter(all, q)
//
// Supported parameters:
//
//   - title, author, publication_year: exact match, combined with AND.
//     author is an author id. Non-numeric author or publication_year values
//     match nothing.
//   - search: case-insensitive substring of the title or the author name.
//   - ordering: comma separated fields (id, title, publication_year, author),
//     "-" prefix for descending. Unknown fields fall back to title.
//
// Sorting is stable, so equal keys keep insertion order.
//
// # Validation
//
// Validator rejects a publication year after the current year with
//
//	{"publication_year": ["publication_year (2999) cannot be in the future (current year 2024)."]}
//
// and checks required fields and author ids for create and update bodies.
package catalog
