package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/audit"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/catalog"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
)

// Account field limits.
const (
	MaxUsernameLength = 150
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest password bcrypt accepts.
	MaxPasswordBytes = 72
)

const msgUsernameTaken = "A user with that username already exists."

// errInvalidCredentials is returned by login for an unknown user or a wrong
// password. The two cases are not told apart.
var errInvalidCredentials = errors.New("invalid username or password")

// UserResponse is the public form of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenResponse is returned by login.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type credentials struct {
	Username string
	Password string
}

// RegisterAccountsEndpoints registers self-service registration and login.
// Neither route reads the Authorization header.
func RegisterAccountsEndpoints(s *server.Server) {
	s.Router.HandleFunc("/register/", handleRegister(s)).Methods("POST")
	s.Router.HandleFunc("/login/", handleLogin(s)).Methods("POST")
}

func decodeCredentials(r *http.Request) (credentials, error) {
	fields, err := readObject(r)
	if err != nil {
		return credentials{}, err
	}

	verr := &catalog.ValidationError{}
	var c credentials
	if v := stringField(fields, "username", verr); v != nil {
		c.Username = strings.TrimSpace(*v)
	}
	if v := stringField(fields, "password", verr); v != nil {
		c.Password = *v
	}
	if _, failed := verr.Fields["username"]; !failed && c.Username == "" {
		verr.Add("username", catalog.MsgRequired)
	}
	if _, failed := verr.Fields["password"]; !failed && c.Password == "" {
		verr.Add("password", catalog.MsgRequired)
	}
	return c, verr.ErrOrNil()
}

func validateRegistration(c credentials) error {
	verr := &catalog.ValidationError{}
	if len([]rune(c.Username)) > MaxUsernameLength {
		verr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", MaxUsernameLength))
	}
	if len(c.Password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if len(c.Password) > MaxPasswordBytes {
		verr.Add("password", fmt.Sprintf("This password is too long. It must contain at most %d bytes.", MaxPasswordBytes))
	}
	return verr.ErrOrNil()
}

// handleRegister creates a member account.
func handleRegister(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := requestIP(s, r)

		c, err := decodeCredentials(r)
		if err == nil {
			err = validateRegistration(c)
		}
		if err != nil {
			writeError(s, w, r, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(s, w, r, fmt.Errorf("failed to hash password: %w", err))
			return
		}

		user := &model.User{
			Username:     c.Username,
			PasswordHash: string(hash),
			Role:         permission.RoleMember,
		}
		if err := s.UsersStore.CreateUser(r.Context(), user); err != nil {
			audit.Log(r.Context(), audit.RegisterEvent{
				Username:     c.Username,
				ClientIP:     clientIP,
				Role:         user.Role.String(),
				ErrorMessage: err.Error(),
			})
			if errors.Is(err, store.ErrUsernameTaken) {
				verr := &catalog.ValidationError{}
				verr.Add("username", msgUsernameTaken)
				err = verr
			}
			writeError(s, w, r, err)
			return
		}

		audit.Log(r.Context(), audit.RegisterEvent{
			Username: user.Username,
			ClientIP: clientIP,
			Role:     user.Role.String(),
			Success:  true,
		})
		s.Logger.Info("user registered", "id", user.ID, "username", user.Username)

		respondWithJSON(w, http.StatusCreated, UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role.String(),
		})
	}
}

// handleLogin checks a username and password and issues a bearer token.
func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := requestIP(s, r)

		c, err := decodeCredentials(r)
		if err != nil {
			writeError(s, w, r, err)
			return
		}

		fail := func(err error) {
			audit.Log(r.Context(), audit.AuthenticateEvent{
				Username:     c.Username,
				ClientIP:     clientIP,
				Method:       "password",
				ErrorMessage: err.Error(),
			})
			writeError(s, w, r, err)
		}

		user, err := s.UsersStore.FetchUserByUsername(r.Context(), c.Username)
		if errors.Is(err, store.ErrUserNotFound) {
			fail(errInvalidCredentials)
			return
		}
		if err != nil {
			fail(err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)); err != nil {
			fail(errInvalidCredentials)
			return
		}

		tok, expiresAt, err := s.Signer.Issue(user.ID, user.Username)
		if err != nil {
			fail(fmt.Errorf("failed to issue token: %w", err))
			return
		}

		audit.Log(r.Context(), audit.AuthenticateEvent{
			Username: user.Username,
			ClientIP: clientIP,
			Method:   "password",
			Success:  true,
		})

		respondWithJSON(w, http.StatusOK, TokenResponse{
			Token:     tok,
			TokenType: "Bearer",
			ExpiresAt: expiresAt.UTC(),
		})
	}
}
