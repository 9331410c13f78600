package endpoints

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/catalog"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/config"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/token"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// testEnv is a server wired to mock stores.
type testEnv struct {
	srv       *server.Server
	signer    *token.Signer
	books     *MockBooksStore
	authors   *MockAuthorsStore
	libraries *MockLibrariesStore
	users     *MockUsersStore
	groups    *MockGroupsStore
	health    *MockHealthStore
}

func newTestEnv(t *testing.T, cfg *config.BookshelfConfig) *testEnv {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}

	signer, err := token.NewSigner([]byte("endpoint-test-secret"), time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		signer:    signer,
		books:     &MockBooksStore{},
		authors:   &MockAuthorsStore{},
		libraries: &MockLibrariesStore{},
		users:     &MockUsersStore{},
		groups:    &MockGroupsStore{},
		health:    &MockHealthStore{},
	}

	validator := catalog.NewValidator(env.authors)
	validator.Now = func() time.Time { return testNow }

	env.srv, err = server.NewServer(
		server.Stores{
			Books:     env.books,
			Authors:   env.authors,
			Libraries: env.libraries,
			Users:     env.users,
			Groups:    env.groups,
			Health:    env.health,
		},
		cfg,
		signer,
		"127.0.0.1",
		"0",
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		server.WithAccessLog(io.Discard),
		server.WithValidator(validator),
	)
	require.NoError(t, err)

	RegisterAll(env.srv)

	t.Cleanup(func() {
		env.books.AssertExpectations(t)
		env.authors.AssertExpectations(t)
		env.libraries.AssertExpectations(t)
		env.users.AssertExpectations(t)
		env.health.AssertExpectations(t)
	})
	return env
}

// login registers user with the users mock and returns a bearer token.
func (e *testEnv) login(t *testing.T, user *model.User) string {
	t.Helper()

	e.users.On("FetchUser", mock.Anything, user.ID).Return(user, nil)
	tok, _, err := e.signer.Issue(user.ID, user.Username)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(method, path, body, tok string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	w := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(w, req)
	return w
}

func newUser(id uint, username string, role permission.Role, perms ...permission.Permission) *model.User {
	user := &model.User{ID: id, Username: username, Role: role}
	if len(perms) > 0 {
		group := model.Group{ID: 1, Name: "test"}
		for _, p := range perms {
			group.Permissions = append(group.Permissions, model.GroupPermission{GroupID: 1, Permission: p})
		}
		user.Groups = []model.Group{group}
	}
	return user
}

func ptr[T any](v T) *T {
	return &v
}

func sampleBooks() []model.Book {
	tolkien := model.Author{ID: 1, Name: "J.R.R. Tolkien"}
	orwell := model.Author{ID: 2, Name: "George Orwell"}
	return []model.Book{
		{ID: 1, Title: "The Hobbit", PublicationYear: 1937, AuthorID: 1, Author: tolkien},
		{ID: 2, Title: "1984", PublicationYear: 1949, AuthorID: 2, Author: orwell, OwnerID: ptr(uint(7))},
		{ID: 3, Title: "Animal Farm", PublicationYear: 1945, AuthorID: 2, Author: orwell, OwnerID: ptr(uint(7))},
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func bookTitles(books []BookResponse) []string {
	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	return titles
}
