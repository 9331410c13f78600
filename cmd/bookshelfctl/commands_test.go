package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/db"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store/gorm"
)

const catalogDoc = `
authors:
  - name: J.R.R. Tolkien
    books:
      - title: The Hobbit
        publication_year: 1937
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect(db.Config{URL: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t, "", withMigrationsTable(""))
	assert.Equal(t,
		"postgres://localhost/books?x-migrations-table=bookshelf_schema_migrations",
		withMigrationsTable("postgres://localhost/books"))
	assert.Equal(t,
		"postgres://localhost/books?sslmode=disable&x-migrations-table=bookshelf_schema_migrations",
		withMigrationsTable("postgres://localhost/books?sslmode=disable"))
}

func TestCheckTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	query := `SELECT to_regclass\(\$1\) IS NOT NULL`
	mock.ExpectQuery(query).WithArgs("public.authors").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs("public.books").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	missing, err := checkTables(conn, []string{"authors", "books"})
	require.NoError(t, err)
	assert.Equal(t, []string{"books"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupsFromArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		groups, err := groupsFromArgs(nil, nil)
		require.NoError(t, err)
		assert.Equal(t, permission.DefaultGroups(), groups)
	})

	t.Run("named", func(t *testing.T) {
		groups, err := groupsFromArgs([]string{"Curators"}, []string{"can_view", "can_edit"})
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.Equal(t, "Curators", groups[0].Name)
		assert.Equal(t, []permission.Permission{permission.PermissionCanView, permission.PermissionCanEdit}, groups[0].Permissions)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := groupsFromArgs(nil, []string{"can_view"})
		assert.EqualError(t, err, "--permission requires a group name")

		_, err = groupsFromArgs([]string{" "}, nil)
		assert.EqualError(t, err, "group name must not be blank")

		_, err = groupsFromArgs([]string{"Curators"}, []string{"can_fly"})
		assert.EqualError(t, err, `unknown permission "can_fly"`)
	})
}

func TestCreateAndListGroups(t *testing.T) {
	groups := gormstore.NewGroupsStore(newTestDB(t))
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, createGroups(ctx, &out, groups, permission.DefaultGroups()))
	assert.Contains(t, out.String(), "Created group Viewers [can_view]")
	assert.Contains(t, out.String(), "Created group Admins [can_view, can_create, can_edit, can_delete]")

	out.Reset()
	require.NoError(t, createGroups(ctx, &out, groups, permission.DefaultGroups()[:1]))
	assert.Equal(t, "Updated group Viewers [can_view]\n", out.String())

	out.Reset()
	require.NoError(t, listGroups(ctx, &out, groups))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "Editors")
	assert.Contains(t, lines[2], "can_view, can_create, can_edit")
}

func TestCreateUser(t *testing.T) {
	gdb := newTestDB(t)
	users := gormstore.NewUsersStore(gdb)
	groups := gormstore.NewGroupsStore(gdb)
	ctx := context.Background()
	require.NoError(t, createGroups(ctx, &bytes.Buffer{}, groups, permission.DefaultGroups()))

	t.Run("with role and group", func(t *testing.T) {
		user, err := createUser(ctx, users, groups, userRequest{
			Username: " alice ",
			Password: "correct horse",
			Role:     permission.RoleLibrarian,
			Groups:   []string{"Editors"},
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))

		fetched, err := users.FetchUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, permission.RoleLibrarian, fetched.Role)
		assert.True(t, fetched.Permissions().Has(permission.PermissionCanEdit))
		assert.False(t, fetched.Permissions().Has(permission.PermissionCanDelete))
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := createUser(ctx, users, groups, userRequest{Username: "alice", Password: "another secret"})
		assert.ErrorIs(t, err, store.ErrUsernameTaken)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := createUser(ctx, users, groups, userRequest{Username: "bob", Password: "short"})
		assert.EqualError(t, err, "password must be at least 8 characters")
	})

	t.Run("long password", func(t *testing.T) {
		_, err := createUser(ctx, users, groups, userRequest{Username: "bob", Password: strings.Repeat("p", 73)})
		assert.EqualError(t, err, "password must be at most 72 bytes")
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := createUser(ctx, users, groups, userRequest{Username: "carol", Password: "long enough", Groups: []string{"Nobody"}})
		assert.ErrorContains(t, err, `group "Nobody" does not exist`)
	})
}

func TestReadPasswordFrom(t *testing.T) {
	password, err := readPasswordFrom(strings.NewReader("s3cret pass\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret pass", password)

	password, err = readPasswordFrom(strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", password)
}

func TestImportCatalog(t *testing.T) {
	gdb := newTestDB(t)
	loader := newCatalogLoader(gdb)
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(catalogDoc), 0o600))

	var out bytes.Buffer
	require.NoError(t, importCatalog(context.Background(), &out, loader, path))
	assert.Contains(t, out.String(), `"authors_created": 1`)
	assert.Contains(t, out.String(), `"books_created": 1`)

	out.Reset()
	require.NoError(t, importCatalog(context.Background(), &out, loader, path))
	assert.Contains(t, out.String(), `"books_created": 0`)

	err := importCatalog(context.Background(), &out, loader, filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "failed to open catalog file")

	broken := filepath.Join(t.TempDir(), "broken.yml")
	require.NoError(t, os.WriteFile(broken, []byte(`
authors:
  - name: Frank Herbert
    books:
      - title: Dune
        publication_year: 1965
libraries:
  - name: Annex
    books:
      - title: Foundation
        author: Isaac Asimov
`), 0o600))
	err = importCatalog(context.Background(), &out, loader, broken)
	assert.ErrorContains(t, err, `author "Isaac Asimov"`)

	_, err = gormstore.NewAuthorsStore(gdb).FindAuthorByName(context.Background(), "Frank Herbert")
	assert.ErrorIs(t, err, store.ErrAuthorNotFound)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCatalog(t *testing.T) {
	gdb := newTestDB(t)
	loader := newCatalogLoader(gdb)
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(catalogDoc), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watchCatalog(ctx, out, loader, path) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"books_created": 1`)
	}, 5*time.Second, 20*time.Millisecond)

	updated := catalogDoc + `      - title: The Silmarillion
        publication_year: 1977
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	require.Eventually(t, func() bool {
		books, err := gormstore.NewBooksStore(gdb).ListBooks(context.Background())
		return err == nil && len(books) == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Contains(t, out.String(), "Shutting down...")
}
