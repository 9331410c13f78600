// Package seed loads catalog documents into the bookshelf stores.
//
// A catalog document is YAML:
//
//	authors:
//	  - name: J.R.R. Tolkien
//	    books:
//	      - title: The Hobbit
//	        publication_year: 1937
//	  - name: George Orwell
//	    books:
//	      - title: "1984"
//	        publication_year: 1949
//	      - title: Animal Farm
//	        publication_year: 1945
//	libraries:
//	  - name: Central
//	    librarian: Marian
//	    books:
//	      - title: The Hobbit
//	        author: J.R.R. Tolkien
//
// Loading is idempotent. Authors, books and libraries are matched by name
// (books by title and author) and only missing records are created. Books
// created by a load have no owner.
//
//	loader := seed.NewLoader(stores)
//	result, err := loader.LoadFromReader(ctx, file)
package seed
