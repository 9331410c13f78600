package store

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// ErrLibraryNotFound is returned when a library doesn't exist
var ErrLibraryNotFound = errors.New("library not found")

// LibrariesStore abstracts library and librarian persistence
type LibrariesStore interface {
	CreateLibrary(ctx context.Context, library *model.Library) error

	// FetchLibrary returns the library with its books (and their authors)
	// and its librarian. Returns ErrLibraryNotFound if it doesn't exist.
	FetchLibrary(ctx context.Context, id uint) (*model.Library, error)

	// FindLibraryByName returns the library with this name, loaded like FetchLibrary.
	FindLibraryByName(ctx context.Context, name string) (*model.Library, error)

	// ListLibraries returns every library with its librarian, in insertion order.
	ListLibraries(ctx context.Context) ([]model.Library, error)

	// AddBooks links books to a library. Existing links are kept.
	// Returns ErrLibraryNotFound or ErrBookNotFound for unknown ids.
	AddBooks(ctx context.Context, libraryID uint, bookIDs ...uint) error

	// AssignLibrarian sets the librarian of a library, replacing any previous one.
	AssignLibrarian(ctx context.Context, libraryID uint, name string) (*model.Librarian, error)
}
