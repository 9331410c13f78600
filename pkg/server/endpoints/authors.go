package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
)

// RegisterAuthorsEndpoints registers the author routes. Authors are listed
// with the books they wrote.
func RegisterAuthorsEndpoints(s *server.Server) {
	authn := authenticated(s)
	ser := bookSerializer{nested: s.Config.NestedAuthors()}

	s.Router.Handle("/authors/", authn(handleListAuthors(s, ser))).Methods("GET")
	s.Router.Handle("/authors/", authn(handleCreateAuthor(s, ser))).Methods("POST")
	s.Router.Handle("/authors/{id:[0-9]+}/", authn(handleGetAuthor(s, ser))).Methods("GET")
}

func handleListAuthors(s *server.Server, ser bookSerializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := s.Policy.Authorize(authz.OperationRead, caller); err != nil {
			auditDenied(r, caller, authz.OperationRead, "authors", err)
			writeError(s, w, r, err)
			return
		}

		authors, err := s.AuthorsStore.ListAuthors(r.Context())
		if err != nil {
			writeError(s, w, r, err)
			return
		}

		out := make([]AuthorResponse, 0, len(authors))
		for _, a := range authors {
			out = append(out, ser.author(a))
		}
		respondWithJSON(w, http.StatusOK, out)
	}
}

func handleGetAuthor(s *server.Server, ser bookSerializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := s.Policy.Authorize(authz.OperationRead, caller); err != nil {
			auditDenied(r, caller, authz.OperationRead, "authors", err)
			writeError(s, w, r, err)
			return
		}

		id, err := pathID(r)
		if err != nil {
			writeError(s, w, r, err)
			return
		}

		author, err := s.AuthorsStore.FetchAuthor(r.Context(), id)
		if err != nil {
			writeError(s, w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, ser.author(*author))
	}
}

func handleCreateAuthor(s *server.Server, ser bookSerializer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := s.Policy.Authorize(authz.OperationCreate, caller); err != nil {
			auditDenied(r, caller, authz.OperationCreate, "authors", err)
			writeError(s, w, r, err)
			return
		}

		in, err := decodeAuthorInput(r)
		if err != nil {
			writeError(s, w, r, err)
			return
		}
		if err := s.Validator.ValidateAuthor(in); err != nil {
			writeError(s, w, r, err)
			return
		}

		author := &model.Author{Name: *in.Name}
		if err := s.AuthorsStore.CreateAuthor(r.Context(), author); err != nil {
			writeError(s, w, r, err)
			return
		}

		s.Logger.Info("author created", "id", author.ID, "user", caller.Subject())
		respondWithJSON(w, http.StatusCreated, ser.author(*author))
	}
}
