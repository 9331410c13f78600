package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/config"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/token"
)

type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) CreateUser(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUsersStore) FetchUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FetchUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSigner(t *testing.T) *token.Signer {
	t.Helper()
	signer, err := token.NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	return signer.WithClock(func() time.Time { return testNow })
}

// capture runs the middleware and returns the identity the handler saw.
func capture(t *testing.T, auth *Authenticator, req *http.Request) (*httptest.ResponseRecorder, *identity.Identity) {
	t.Helper()
	var seen *identity.Identity
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = identity.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{`Token token="abc"`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIP(t *testing.T) {
	cfg := &config.BookshelfConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	req := httptest.NewRequest("GET", "/books/", nil)
	req.RemoteAddr = "10.1.1.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.1.1.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req, cfg).String())

	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req, cfg).String())
	assert.Equal(t, "192.0.2.1", ClientIP(req, nil).String())
}

func TestMiddleware_Anonymous(t *testing.T) {
	users := new(MockUsersStore)
	auth := NewAuthenticator(newTestSigner(t), users, nil, nil)

	req := httptest.NewRequest("GET", "/books/", nil)
	rec, caller := capture(t, auth, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, caller)
	assert.False(t, caller.Authenticated)
	assert.Equal(t, permission.RoleNone, caller.Role)
	assert.NotEmpty(t, caller.RequestID)
	assert.Equal(t, caller.RequestID, rec.Header().Get(RequestIDHeader))
	users.AssertNotCalled(t, "FetchUser", mock.Anything, mock.Anything)
}

func TestMiddleware_KeepsRequestID(t *testing.T) {
	auth := NewAuthenticator(newTestSigner(t), new(MockUsersStore), nil, nil)

	req := httptest.NewRequest("GET", "/books/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec, caller := capture(t, auth, req)

	assert.Equal(t, "req-123", caller.RequestID)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_ValidToken(t *testing.T) {
	signer := newTestSigner(t)
	users := new(MockUsersStore)
	users.On("FetchUser", mock.Anything, uint(7)).Return(&model.User{
		ID:       7,
		Username: "alice",
		Role:     permission.RoleLibrarian,
		Groups: []model.Group{{
			Name:        "Editors",
			Permissions: []model.GroupPermission{{Permission: permission.PermissionCanEdit}},
		}},
	}, nil)

	tok, expiresAt, err := signer.Issue(7, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/books/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec, caller := capture(t, NewAuthenticator(signer, users, nil, nil), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, caller)
	assert.True(t, caller.Authenticated)
	assert.Equal(t, uint(7), caller.UserID)
	assert.Equal(t, "alice", caller.Username)
	assert.Equal(t, permission.RoleLibrarian, caller.Role)
	assert.True(t, caller.Can(permission.PermissionCanEdit))
	assert.False(t, caller.Can(permission.PermissionCanDelete))
	assert.Equal(t, expiresAt.Unix(), caller.ExpiresAt.Unix())
	users.AssertExpectations(t)
}

func TestMiddleware_Rejections(t *testing.T) {
	signer := newTestSigner(t)

	expired, _, err := signer.Issue(7, "alice")
	require.NoError(t, err)
	later, err := token.NewSigner([]byte("test-secret"), time.Hour)
	require.NoError(t, err)
	later.WithClock(func() time.Time { return testNow.Add(2 * time.Hour) })

	foreign, err := token.NewSigner([]byte("other-secret"), time.Hour)
	require.NoError(t, err)
	forged, _, err := foreign.WithClock(func() time.Time { return testNow }).Issue(7, "alice")
	require.NoError(t, err)

	gone, _, err := signer.Issue(99, "ghost")
	require.NoError(t, err)

	users := new(MockUsersStore)
	users.On("FetchUser", mock.Anything, uint(99)).Return(nil, store.ErrUserNotFound)

	tests := []struct {
		name   string
		signer *token.Signer
		header string
		code   int
		body   string
	}{
		{"malformed header", signer, "Token token=\"abc\"", http.StatusUnauthorized, msgMalformedHeader},
		{"garbage token", signer, "Bearer not-a-jwt", http.StatusUnauthorized, msgInvalidToken},
		{"expired", later, "Bearer " + expired, http.StatusUnauthorized, msgTokenExpired},
		{"wrong secret", signer, "Bearer " + forged, http.StatusUnauthorized, msgInvalidToken},
		{"deleted user", signer, "Bearer " + gone, http.StatusUnauthorized, msgUnknownUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := NewAuthenticator(tt.signer, users, nil, nil)
			handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			}))

			req := httptest.NewRequest("GET", "/books/", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.body+`"}`, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		})
	}
}

func TestMiddleware_StoreFailure(t *testing.T) {
	signer := newTestSigner(t)
	users := new(MockUsersStore)
	users.On("FetchUser", mock.Anything, uint(7)).Return(nil, errors.New("db down"))

	tok, _, err := signer.Issue(7, "alice")
	require.NoError(t, err)

	handler := NewAuthenticator(signer, users, nil, nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	}))
	req := httptest.NewRequest("GET", "/books/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
