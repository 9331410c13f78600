package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	ClientIP    string   `json:"client_ip,omitempty"`
	TokenIAT    int64    `json:"token_iat,omitempty"`
	TokenExp    int64    `json:"token_exp,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	s.Router.Handle("/whoami", authenticated(s)(handleWhoami(s))).Methods("GET")
}

func handleWhoami(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if !caller.Authenticated {
			writeError(s, w, r, authz.ErrUnauthorized)
			return
		}

		perms := caller.Permissions.Slice()
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			names = append(names, p.String())
		}

		response := WhoamiResponse{
			ID:          caller.UserID,
			Username:    caller.Username,
			Role:        caller.Role.String(),
			Permissions: names,
			ClientIP:    caller.ClientIP(),
		}
		if !caller.IssuedAt.IsZero() {
			response.TokenIAT = caller.IssuedAt.Unix()
			response.TokenExp = caller.ExpiresAt.Unix()
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
