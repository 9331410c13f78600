package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/catalog"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errNotFound is the body for unknown ids and unparsable path ids.
var errNotFound = errors.New("not found")

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// writeError maps domain errors to HTTP responses. Unknown errors are logged
// and answered with 500.
func writeError(s *server.Server, w http.ResponseWriter, r *http.Request, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, errMalformedBody):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errInvalidCredentials), errors.Is(err, authz.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", `Bearer realm="bookshelf"`)
		respondWithError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, authz.ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrBookNotFound),
		errors.Is(err, store.ErrAuthorNotFound),
		errors.Is(err, store.ErrLibraryNotFound),
		errors.Is(err, errNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		s.Logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		respondWithError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// pathID reads the {id} route variable. Ids that do not fit a uint are
// reported as not found, the same as ids with no record.
func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, errNotFound
	}
	return uint(id), nil
}
