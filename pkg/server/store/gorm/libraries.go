package gorm

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure LibrariesStore implements store.LibrariesStore
var _ store.LibrariesStore = (*LibrariesStore)(nil)

// LibrariesStore implements store.LibrariesStore using GORM
type LibrariesStore struct {
	db *gorm.DB
}

// NewLibrariesStore creates a new LibrariesStore
func NewLibrariesStore(db *gorm.DB) *LibrariesStore {
	return &LibrariesStore{db: db}
}

func (s *LibrariesStore) CreateLibrary(ctx context.Context, library *model.Library) error {
	return s.db.WithContext(ctx).Omit("Books", "Librarian").Create(library).Error
}

func (s *LibrariesStore) loaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Books", booksByID).
		Preload("Books.Author").
		Preload("Librarian")
}

func (s *LibrariesStore) FetchLibrary(ctx context.Context, id uint) (*model.Library, error) {
	var library model.Library
	err := s.loaded(ctx).First(&library, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrLibraryNotFound
		}
		return nil, err
	}
	return &library, nil
}

func (s *LibrariesStore) FindLibraryByName(ctx context.Context, name string) (*model.Library, error) {
	var library model.Library
	err := s.loaded(ctx).Where("name = ?", name).Order("id").First(&library).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrLibraryNotFound
		}
		return nil, err
	}
	return &library, nil
}

func (s *LibrariesStore) ListLibraries(ctx context.Context) ([]model.Library, error) {
	libraries := []model.Library{}
	err := s.loaded(ctx).Order("id").Find(&libraries).Error
	if err != nil {
		return nil, err
	}
	return libraries, nil
}

// AddBooks links the given books to the library. Duplicate links are ignored.
func (s *LibrariesStore) AddBooks(ctx context.Context, libraryID uint, bookIDs ...uint) error {
	if len(bookIDs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Library{}).Where("id = ?", libraryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrLibraryNotFound
		}

		unique := make(map[uint]struct{}, len(bookIDs))
		rows := make([]model.LibraryBook, 0, len(bookIDs))
		for _, id := range bookIDs {
			if _, seen := unique[id]; seen {
				continue
			}
			unique[id] = struct{}{}
			rows = append(rows, model.LibraryBook{LibraryID: libraryID, BookID: id})
		}

		if err := tx.Model(&model.Book{}).Where("id IN ?", keys(unique)).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(rows) {
			return store.ErrBookNotFound
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// AssignLibrarian creates or renames the librarian of a library.
func (s *LibrariesStore) AssignLibrarian(ctx context.Context, libraryID uint, name string) (*model.Librarian, error) {
	var librarian model.Librarian
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Library{}).Where("id = ?", libraryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return store.ErrLibraryNotFound
		}

		err := tx.Where("library_id = ?", libraryID).First(&librarian).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			librarian = model.Librarian{Name: name, LibraryID: libraryID}
			return tx.Create(&librarian).Error
		case err != nil:
			return err
		}

		librarian.Name = name
		return tx.Model(&librarian).Update("name", name).Error
	})
	if err != nil {
		return nil, err
	}
	return &librarian, nil
}

func keys(m map[uint]struct{}) []uint {
	out := make([]uint, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
