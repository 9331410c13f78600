package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
)

// Stores are the stores a load writes to.
type Stores struct {
	Authors   store.AuthorsStore
	Books     store.BooksStore
	Libraries store.LibrariesStore
}

// LoadResult counts what a load created.
type LoadResult struct {
	AuthorsCreated    int  `json:"authors_created"`
	BooksCreated      int  `json:"books_created"`
	LibrariesCreated  int  `json:"libraries_created"`
	LibraryBooksAdded int  `json:"library_books_added"`
	LibrariansSet     int  `json:"librarians_set"`
	DryRun            bool `json:"dry_run,omitempty"`
}

// TxFunc runs fn with stores bound to a single transaction. The transaction
// is rolled back when fn returns an error.
type TxFunc func(ctx context.Context, fn func(Stores) error) error

// Loader writes catalog documents to the stores.
type Loader struct {
	stores Stores
	now    func() time.Time
	dryRun bool
	tx     TxFunc
}

// NewLoader creates a loader on the wall clock.
func NewLoader(stores Stores) *Loader {
	return &Loader{stores: stores, now: time.Now}
}

// WithClock overrides the clock used to validate publication years.
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

// WithDryRun validates only.
func (l *Loader) WithDryRun(dryRun bool) *Loader {
	l.dryRun = dryRun
	return l
}

// LoadFromReader parses, validates and loads a document.
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*LoadResult, error) {
	c, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, c)
}

// WithTransaction makes Load write through tx, so a failed load leaves the
// stores untouched.
func (l *Loader) WithTransaction(tx TxFunc) *Loader {
	l.tx = tx
	return l
}

// Load validates and loads c. Nothing is written when validation fails.
// Without WithTransaction a store error part way through leaves the records
// written so far in place; loading the same document again completes it.
func (l *Loader) Load(ctx context.Context, c *Catalog) (*LoadResult, error) {
	if err := c.Validate(currentYear(l.now)); err != nil {
		return nil, err
	}

	if l.dryRun {
		return &LoadResult{DryRun: true}, nil
	}

	if l.tx == nil {
		result := &LoadResult{}
		return result, l.write(ctx, c, result)
	}

	var result *LoadResult
	err := l.tx(ctx, func(stores Stores) error {
		bound := *l
		bound.stores = stores
		result = &LoadResult{}
		return bound.write(ctx, c, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Loader) write(ctx context.Context, c *Catalog, result *LoadResult) error {
	authorIDs := make(map[string]uint)
	for _, a := range c.Authors {
		author, created, err := l.ensureAuthor(ctx, a.Name)
		if err != nil {
			return err
		}
		if created {
			result.AuthorsCreated++
		}
		authorIDs[a.Name] = author.ID

		for _, b := range a.Books {
			_, created, err := l.ensureBook(ctx, author.ID, b)
			if err != nil {
				return err
			}
			if created {
				result.BooksCreated++
			}
		}
	}

	for _, lib := range c.Libraries {
		if err := l.loadLibrary(ctx, lib, authorIDs, result); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) ensureAuthor(ctx context.Context, name string) (*model.Author, bool, error) {
	author, err := l.stores.Authors.FindAuthorByName(ctx, name)
	if err == nil {
		return author, false, nil
	}
	if !errors.Is(err, store.ErrAuthorNotFound) {
		return nil, false, fmt.Errorf("failed to look up author %q: %w", name, err)
	}

	author = &model.Author{Name: name}
	if err := l.stores.Authors.CreateAuthor(ctx, author); err != nil {
		return nil, false, fmt.Errorf("failed to create author %q: %w", name, err)
	}
	return author, true, nil
}

func (l *Loader) ensureBook(ctx context.Context, authorID uint, b Book) (*model.Book, bool, error) {
	book, err := l.stores.Books.FindBookByTitle(ctx, b.Title, authorID)
	if err == nil {
		return book, false, nil
	}
	if !errors.Is(err, store.ErrBookNotFound) {
		return nil, false, fmt.Errorf("failed to look up book %q: %w", b.Title, err)
	}

	book = &model.Book{Title: b.Title, PublicationYear: b.PublicationYear, AuthorID: authorID}
	if err := l.stores.Books.CreateBook(ctx, book); err != nil {
		return nil, false, fmt.Errorf("failed to create book %q: %w", b.Title, err)
	}
	return book, true, nil
}

func (l *Loader) loadLibrary(ctx context.Context, lib Library, authorIDs map[string]uint, result *LoadResult) error {
	library, err := l.stores.Libraries.FindLibraryByName(ctx, lib.Name)
	switch {
	case errors.Is(err, store.ErrLibraryNotFound):
		library = &model.Library{Name: lib.Name}
		if err := l.stores.Libraries.CreateLibrary(ctx, library); err != nil {
			return fmt.Errorf("failed to create library %q: %w", lib.Name, err)
		}
		result.LibrariesCreated++
	case err != nil:
		return fmt.Errorf("failed to look up library %q: %w", lib.Name, err)
	}

	held := make(map[uint]bool, len(library.Books))
	for _, b := range library.Books {
		held[b.ID] = true
	}

	var bookIDs []uint
	for _, ref := range lib.Books {
		authorID, ok := authorIDs[ref.Author]
		if !ok {
			author, err := l.stores.Authors.FindAuthorByName(ctx, ref.Author)
			if err != nil {
				return fmt.Errorf("library %q: author %q: %w", lib.Name, ref.Author, err)
			}
			authorID = author.ID
			authorIDs[ref.Author] = authorID
		}

		book, err := l.stores.Books.FindBookByTitle(ctx, ref.Title, authorID)
		if err != nil {
			return fmt.Errorf("library %q: book %q: %w", lib.Name, ref.Title, err)
		}
		if !held[book.ID] {
			held[book.ID] = true
			bookIDs = append(bookIDs, book.ID)
		}
	}

	if len(bookIDs) > 0 {
		if err := l.stores.Libraries.AddBooks(ctx, library.ID, bookIDs...); err != nil {
			return fmt.Errorf("failed to add books to library %q: %w", lib.Name, err)
		}
		result.LibraryBooksAdded += len(bookIDs)
	}

	if lib.Librarian != "" && (library.Librarian == nil || library.Librarian.Name != lib.Librarian) {
		if _, err := l.stores.Libraries.AssignLibrarian(ctx, library.ID, lib.Librarian); err != nil {
			return fmt.Errorf("failed to assign librarian to %q: %w", lib.Name, err)
		}
		result.LibrariansSet++
	}
	return nil
}
