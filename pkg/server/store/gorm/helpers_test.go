package gorm

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/db"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// newSQLiteDB opens a private in-memory database with the full schema.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect(db.Config{URL: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return gdb
}

// newMockDB wraps sqlmock in a postgres GORM connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return gdb, mock
}

func seedAuthor(t *testing.T, gdb *gorm.DB, name string) model.Author {
	t.Helper()
	author := model.Author{Name: name}
	require.NoError(t, gdb.Create(&author).Error)
	return author
}

func seedBook(t *testing.T, gdb *gorm.DB, title string, year int, author model.Author, owner *uint) model.Book {
	t.Helper()
	book := model.Book{Title: title, PublicationYear: year, AuthorID: author.ID, OwnerID: owner}
	require.NoError(t, gdb.Omit("Author").Create(&book).Error)
	return book
}

func ptr[T any](v T) *T {
	return &v
}
