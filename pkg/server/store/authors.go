package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// ErrAuthorNotFound is returned when an author doesn't exist
var ErrAuthorNotFound = errors.New("author not found")

// AuthorsStore abstracts author persistence
type AuthorsStore interface {
	CreateAuthor(ctx context.Context, author *model.Author) error

	// FetchAuthor returns the author with their books.
	// Returns ErrAuthorNotFound if the author doesn't exist.
	FetchAuthor(ctx context.Context, id uint) (*model.Author, error)

	// FindAuthorByName returns the first author with exactly this name, with books.
	// Returns ErrAuthorNotFound if there is none.
	FindAuthorByName(ctx context.Context, name string) (*model.Author, error)

	// ListAuthors returns every author with their books, in insertion order.
	ListAuthors(ctx context.Context) ([]model.Author, error)

	AuthorExists(ctx context.Context, id uint) (bool, error)
}
