package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/config"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/token"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const (
	msgMalformedHeader = "Malformed authorization header"
	msgTokenExpired    = "Token expired"
	msgInvalidToken    = "Invalid token"
	msgUnknownUser     = "User no longer exists"
)

// Authenticator is middleware that resolves the caller of every request.
// Requests without an Authorization header continue as anonymous; requests
// with a bad one are rejected with 401.
type Authenticator struct {
	Signer *token.Signer
	Users  store.UsersStore
	Config *config.BookshelfConfig
	Logger *slog.Logger
}

// NewAuthenticator creates a new authenticator middleware
func NewAuthenticator(signer *token.Signer, users store.UsersStore, cfg *config.BookshelfConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{Signer: signer, Users: users, Config: cfg, Logger: logger}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// ClientIP returns the caller address. X-Forwarded-For is honoured only when
// the direct peer is a trusted proxy.
func ClientIP(r *http.Request, cfg *config.BookshelfConfig) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if cfg != nil && cfg.IsTrustedProxy(host) {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip
			}
		}
	}
	return net.ParseIP(host)
}

// Middleware returns an HTTP middleware that stores an identity.Identity in
// the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		remoteIP := ClientIP(r, a.Config)

		caller, status, msg := a.resolve(r)
		if caller == nil {
			a.Logger.Debug("authentication rejected",
				"request_id", requestID,
				"remote_ip", remoteIP.String(),
				"reason", msg,
			)
			writeError(w, status, msg)
			return
		}

		caller.WithRemoteIP(remoteIP).WithRequestID(requestID)
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), caller)))
	})
}

// resolve returns the caller, or a nil identity with the status and message
// to reject the request with.
func (a *Authenticator) resolve(r *http.Request) (*identity.Identity, int, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return identity.Anonymous(), 0, ""
	}

	raw, ok := BearerToken(header)
	if !ok {
		return nil, http.StatusUnauthorized, msgMalformedHeader
	}

	claims, err := a.Signer.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return nil, http.StatusUnauthorized, msgTokenExpired
		}
		return nil, http.StatusUnauthorized, msgInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, http.StatusUnauthorized, msgInvalidToken
	}

	user, err := a.Users.FetchUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, http.StatusUnauthorized, msgUnknownUser
		}
		a.Logger.Error("failed to load user", "user_id", userID, "error", err.Error())
		return nil, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}

	caller := identity.ForUser(user.ID, user.Username, user.Role).WithPermissions(user.Permissions())
	if claims.IssuedAt != nil && claims.ExpiresAt != nil {
		caller.WithTokenTimes(claims.IssuedAt.Time, claims.ExpiresAt.Time)
	}
	return caller, 0, ""
}

func writeError(w http.ResponseWriter, code int, msg string) {
	body, _ := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(map[string]string{"error": msg})

	w.Header().Set("Content-Type", "application/json")
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="bookshelf"`)
	}
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
