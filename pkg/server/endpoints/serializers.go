package endpoints

import (
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// AuthorRef is the nested author shape used when author_format is nested.
type AuthorRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookResponse is the JSON form of a book. Author holds either the author id
// or an AuthorRef.
type BookResponse struct {
	ID              uint        `json:"id"`
	Title           string      `json:"title"`
	PublicationYear int         `json:"publication_year"`
	Author          interface{} `json:"author"`
}

// AuthorResponse is an author with the books they wrote.
type AuthorResponse struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Books []BookResponse `json:"books"`
}

// LibrarianResponse is the librarian of a library.
type LibrarianResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LibraryResponse is a library with its books and librarian. Librarian is
// null when the library has none.
type LibraryResponse struct {
	ID        uint               `json:"id"`
	Name      string             `json:"name"`
	Books     []BookResponse     `json:"books"`
	Librarian *LibrarianResponse `json:"librarian"`
}

// bookSerializer renders books in the configured author format.
type bookSerializer struct {
	nested bool
}

func (bs bookSerializer) book(b model.Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		Author:          b.AuthorID,
	}
	if bs.nested {
		resp.Author = AuthorRef{ID: b.AuthorID, Name: b.Author.Name}
	}
	return resp
}

func (bs bookSerializer) books(books []model.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, bs.book(b))
	}
	return out
}

func (bs bookSerializer) author(a model.Author) AuthorResponse {
	books := make([]model.Book, len(a.Books))
	for i, b := range a.Books {
		// the nested form needs the name the author preload leaves empty
		b.Author = model.Author{ID: a.ID, Name: a.Name}
		books[i] = b
	}
	return AuthorResponse{ID: a.ID, Name: a.Name, Books: bs.books(books)}
}

func (bs bookSerializer) library(l model.Library) LibraryResponse {
	resp := LibraryResponse{ID: l.ID, Name: l.Name, Books: bs.books(l.Books)}
	if l.Librarian != nil {
		resp.Librarian = &LibrarianResponse{ID: l.Librarian.ID, Name: l.Librarian.Name}
	}
	return resp
}
