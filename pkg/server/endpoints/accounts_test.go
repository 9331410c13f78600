package endpoints

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
)

func TestRegister(t *testing.T) {
	t.Run("creates a member", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "carol" &&
				u.Role == permission.RoleMember &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")) == nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = 11
		}).Return(nil)

		w := env.do("POST", "/register/", `{"username":" carol ","password":"correct horse"}`, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t, `{"id":11,"username":"carol","role":"member"}`, w.Body.String())
	})

	t.Run("username taken", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.On("CreateUser", mock.Anything, mock.Anything).Return(store.ErrUsernameTaken)

		w := env.do("POST", "/register/", `{"username":"carol","password":"correct horse"}`, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"username":["A user with that username already exists."]}`, w.Body.String())
	})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "missing username", body: `{"password":"correct horse"}`, field: "username"},
		{name: "missing password", body: `{"username":"carol"}`, field: "password"},
		{name: "short password", body: `{"username":"carol","password":"short"}`, field: "password"},
		{name: "long password", body: `{"username":"carol","password":"` + strings.Repeat("p", MaxPasswordBytes+8) + `"}`, field: "password"},
		{name: "username not a string", body: `{"username":5,"password":"correct horse"}`, field: "username"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			w := env.do("POST", "/register/", tc.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody[map[string][]string](t, w)
			assert.Contains(t, body, tc.field)
			env.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	carol := &model.User{ID: 11, Username: "carol", PasswordHash: string(hash), Role: permission.RoleMember}

	t.Run("issues a token", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.On("FetchUserByUsername", mock.Anything, "carol").Return(carol, nil)

		w := env.do("POST", "/login/", `{"username":"carol","password":"correct horse"}`, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decodeBody[TokenResponse](t, w)
		assert.Equal(t, "Bearer", resp.TokenType)

		claims, err := env.signer.Verify(resp.Token)
		require.NoError(t, err)
		id, err := claims.UserID()
		require.NoError(t, err)
		assert.Equal(t, uint(11), id)
		assert.Equal(t, "carol", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.On("FetchUserByUsername", mock.Anything, "carol").Return(carol, nil)

		w := env.do("POST", "/login/", `{"username":"carol","password":"wrong horse"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, `Bearer realm="bookshelf"`, w.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error":"invalid username or password"}`, w.Body.String())
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.users.On("FetchUserByUsername", mock.Anything, "dave").Return(nil, store.ErrUserNotFound)

		w := env.do("POST", "/login/", `{"username":"dave","password":"correct horse"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid username or password"}`, w.Body.String())
	})
}

func TestWhoami(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("GET", "/whoami", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authenticated", func(t *testing.T) {
		env := newTestEnv(t, nil)
		tok := env.login(t, newUser(7, "alice", permission.RoleLibrarian,
			permission.PermissionCanView, permission.PermissionCanEdit))

		w := env.do("GET", "/whoami", "", tok)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBody[WhoamiResponse](t, w)
		assert.Equal(t, uint(7), resp.ID)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "librarian", resp.Role)
		assert.Equal(t, []string{"can_view", "can_edit"}, resp.Permissions)
		assert.NotZero(t, resp.TokenIAT)
		assert.Equal(t, "192.0.2.1", resp.ClientIP)
	})
}

func TestPanels(t *testing.T) {
	tests := []struct {
		path string
		role permission.Role
		want int
	}{
		{path: "/admin-panel/", role: permission.RoleAdmin, want: http.StatusOK},
		{path: "/admin-panel/", role: permission.RoleMember, want: http.StatusForbidden},
		{path: "/librarian-panel/", role: permission.RoleLibrarian, want: http.StatusOK},
		{path: "/librarian-panel/", role: permission.RoleNone, want: http.StatusForbidden},
		{path: "/member-panel/", role: permission.RoleMember, want: http.StatusOK},
		{path: "/member-panel/", role: permission.RoleAdmin, want: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.path+" as "+tc.role.String(), func(t *testing.T) {
			env := newTestEnv(t, nil)
			tok := env.login(t, newUser(7, "alice", tc.role))

			w := env.do("GET", tc.path, "", tok)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	t.Run("anonymous is forbidden", func(t *testing.T) {
		env := newTestEnv(t, nil)

		w := env.do("GET", "/member-panel/", "", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
