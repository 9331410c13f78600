package gorm

import (
	"context"
	"errors"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"

	"gorm.io/gorm"
)

// Ensure AuthorsStore implements store.AuthorsStore
var _ store.AuthorsStore = (*AuthorsStore)(nil)

// AuthorsStore implements store.AuthorsStore using GORM
type AuthorsStore struct {
	db *gorm.DB
}

// NewAuthorsStore creates a new AuthorsStore
func NewAuthorsStore(db *gorm.DB) *AuthorsStore {
	return &AuthorsStore{db: db}
}

func booksByID(db *gorm.DB) *gorm.DB {
	return db.Order("books.id")
}

func (s *AuthorsStore) CreateAuthor(ctx context.Context, author *model.Author) error {
	return s.db.WithContext(ctx).Omit("Books").Create(author).Error
}

func (s *AuthorsStore) FetchAuthor(ctx context.Context, id uint) (*model.Author, error) {
	var author model.Author
	err := s.db.WithContext(ctx).Preload("Books", booksByID).First(&author, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

func (s *AuthorsStore) FindAuthorByName(ctx context.Context, name string) (*model.Author, error) {
	var author model.Author
	err := s.db.WithContext(ctx).
		Preload("Books", booksByID).
		Where("name = ?", name).
		Order("id").
		First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

func (s *AuthorsStore) ListAuthors(ctx context.Context) ([]model.Author, error) {
	authors := []model.Author{}
	err := s.db.WithContext(ctx).Preload("Books", booksByID).Order("id").Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func (s *AuthorsStore) AuthorExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Author{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
