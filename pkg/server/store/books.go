package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// ErrBookNotFound is returned when a book doesn't exist
var ErrBookNotFound = errors.New("book not found")

// BookPatch holds the fields to change on a book. Nil fields are left alone.
type BookPatch struct {
	Title           *string
	PublicationYear *int
	AuthorID        *uint
}

// Empty reports whether the patch changes nothing.
func (p BookPatch) Empty() bool {
	return p.Title == nil && p.PublicationYear == nil && p.AuthorID == nil
}

// Apply writes the patch onto b.
func (p BookPatch) Apply(b *model.Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
	if p.AuthorID != nil {
		b.AuthorID = *p.AuthorID
	}
}

// BooksStore abstracts book persistence
type BooksStore interface {
	// CreateBook inserts book and sets its ID and Author.
	CreateBook(ctx context.Context, book *model.Book) error

	// FetchBook returns the book with its author.
	// Returns ErrBookNotFound if the book doesn't exist.
	FetchBook(ctx context.Context, id uint) (*model.Book, error)

	// FindBookByTitle returns the book with the given title by the given author.
	// Returns ErrBookNotFound if there is none.
	FindBookByTitle(ctx context.Context, title string, authorID uint) (*model.Book, error)

	// ListBooks returns every book with its author, in insertion order.
	ListBooks(ctx context.Context) ([]model.Book, error)

	// UpdateBook applies patch atomically and returns the updated book.
	// Returns ErrBookNotFound if the book doesn't exist.
	UpdateBook(ctx context.Context, id uint, patch BookPatch) (*model.Book, error)

	// DeleteBook removes the book and its library memberships.
	// Returns ErrBookNotFound if the book doesn't exist.
	DeleteBook(ctx context.Context, id uint) error
}
