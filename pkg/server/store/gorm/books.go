package gorm

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure BooksStore implements store.BooksStore
var _ store.BooksStore = (*BooksStore)(nil)

// BooksStore implements store.BooksStore using GORM
type BooksStore struct {
	db *gorm.DB
}

// NewBooksStore creates a new BooksStore
func NewBooksStore(db *gorm.DB) *BooksStore {
	return &BooksStore{db: db}
}

// CreateBook inserts the book and loads its author.
func (s *BooksStore) CreateBook(ctx context.Context, book *model.Book) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit("Author").Create(book).Error; err != nil {
		return err
	}
	return db.First(&book.Author, book.AuthorID).Error
}

// FetchBook retrieves a book with its author.
func (s *BooksStore) FetchBook(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	err := s.db.WithContext(ctx).Preload("Author").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindBookByTitle retrieves a book by title and author.
func (s *BooksStore) FindBookByTitle(ctx context.Context, title string, authorID uint) (*model.Book, error) {
	var book model.Book
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("title = ? AND author_id = ?", title, authorID).
		Order("id").
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// ListBooks returns all books ordered by id.
func (s *BooksStore) ListBooks(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	err := s.db.WithContext(ctx).Preload("Author").Order("id").Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook applies the patch inside a transaction so a concurrent delete
// either wins entirely or not at all.
func (s *BooksStore) UpdateBook(ctx context.Context, id uint, patch store.BookPatch) (*model.Book, error) {
	var book model.Book
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.Book{}, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.PublicationYear != nil {
			updates["publication_year"] = *patch.PublicationYear
		}
		if patch.AuthorID != nil {
			updates["author_id"] = *patch.AuthorID
		}
		if len(updates) > 0 {
			if err := tx.Model(&model.Book{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Author").First(&book, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes the book and its library links.
func (s *BooksStore) DeleteBook(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&model.LibraryBook{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Book{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrBookNotFound
		}
		return nil
	})
}
