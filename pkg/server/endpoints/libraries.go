package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
)

// RegisterLibrariesEndpoints registers the read-only library routes.
func RegisterLibrariesEndpoints(s *server.Server) {
	authn := authenticated(s)
	ser := bookSerializer{nested: s.Config.NestedAuthors()}

	s.Router.Handle("/libraries/", authn(handleListLibraries(s, ser))).Methods("GET")
	s.Router.Handle("/libraries/{id:[0-9]+}/", authn(handleGetLibrary(s, ser))).Methods("GET")
}

func handleListLibraries(s *server.Server, ser bookSerializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := s.Policy.Authorize(authz.OperationRead, caller); err != nil {
			auditDenied(r, caller, authz.OperationRead, "libraries", err)
			writeError(s, w, r, err)
			return
		}

		libraries, err := s.LibrariesStore.ListLibraries(r.Context())
		if err != nil {
			writeError(s, w, r, err)
			return
		}

		out := make([]LibraryResponse, 0, len(libraries))
		for _, l := range libraries {
			out = append(out, ser.library(l))
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleGetLibrary(s *server.Server, ser bookSerializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := s.Policy.Authorize(authz.OperationRead, caller); err != nil {
			auditDenied(r, caller, authz.OperationRead, "libraries", err)
			writeError(s, w, r, err)
			return
		}

		id, err := pathID(r)
		if err != nil {
			writeError(s, w, r, err)
			return
		}

		library, err := s.LibrariesStore.FetchLibrary(r.Context(), id)
		if err != nil {
			writeError(s, w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, ser.library(*library))
	}
}
