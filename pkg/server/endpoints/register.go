package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/middleware"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAccountsEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterBooksEndpoints(srv)
	RegisterAuthorsEndpoints(srv)
	RegisterLibrariesEndpoints(srv)
	RegisterPanelEndpoints(srv)
}

// authenticated wraps handlers with the identity middleware. Anonymous
// requests pass through; requests with a bad token stop with 401.
func authenticated(s *server.Server) func(http.HandlerFunc) http.Handler {
	authn := middleware.NewAuthenticator(s.Signer, s.UsersStore, s.Config, s.Logger)
	return func(h http.HandlerFunc) http.Handler {
		return authn.Middleware(h)
	}
}
