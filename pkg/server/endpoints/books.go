package endpoints

import (
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/catalog"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
)

const bookID = "{id:[0-9]+}"

// RegisterBooksEndpoints registers the book list, detail and mutation routes.
// Every route accepts both the REST form and the explicit create, update and
// delete paths.
func RegisterBooksEndpoints(s *server.Server) {
	authn := authenticated(s)
	h := &booksHandler{s: s, ser: bookSerializer{nested: s.Config.NestedAuthors()}}

	s.Router.Handle("/books/", authn(h.list)).Methods("GET")
	s.Router.Handle("/books/", authn(h.create)).Methods("POST")
	s.Router.Handle("/books/create/", authn(h.create)).Methods("POST")

	s.Router.Handle("/books/"+bookID+"/", authn(h.detail)).Methods("GET")
	s.Router.Handle("/books/"+bookID+"/", authn(h.update(false))).Methods("PUT")
	s.Router.Handle("/books/"+bookID+"/", authn(h.update(true))).Methods("PATCH")
	s.Router.Handle("/books/"+bookID+"/", authn(h.delete)).Methods("DELETE")

	s.Router.Handle("/books/update/"+bookID+"/", authn(h.update(false))).Methods("PUT")
	s.Router.Handle("/books/update/"+bookID+"/", authn(h.update(true))).Methods("PATCH")
	s.Router.Handle("/books/delete/"+bookID+"/", authn(h.delete)).Methods("DELETE")
}

type booksHandler struct {
	s   *server.Server
	ser bookSerializer
}

func bookResource(id uint) string {
	if id == 0 {
		return "books"
	}
	return fmt.Sprintf("books/%d", id)
}

// authorize runs the request gate and audits a rejection.
func (h *booksHandler) authorize(r *http.Request, op authz.Operation, caller *identity.Identity) error {
	if err := h.s.Policy.Authorize(op, caller); err != nil {
		auditDenied(r, caller, op, bookResource(0), err)
		return err
	}
	return nil
}

func (h *booksHandler) list(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := h.authorize(r, authz.OperationRead, caller); err != nil {
		writeError(h.s, w, r, err)
		return
	}

	books, err := h.s.BooksStore.ListBooks(r.Context())
	if err != nil {
		writeError(h.s, w, r, err)
		return
	}

	q := catalog.ParseQuery(r.URL.Query())
	respondWithJSON(w, http.StatusOK, h.ser.books(catalog.Filter(books, q)))
}

func (h *booksHandler) detail(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := h.authorize(r, authz.OperationRead, caller); err != nil {
		writeError(h.s, w, r, err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(h.s, w, r, err)
		return
	}

	book, err := h.s.BooksStore.FetchBook(r.Context(), id)
	if err != nil {
		writeError(h.s, w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.ser.book(*book))
}

func (h *booksHandler) create(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := h.authorize(r, authz.OperationCreate, caller); err != nil {
		writeError(h.s, w, r, err)
		return
	}

	in, err := decodeBookInput(r)
	if err != nil {
		writeError(h.s, w, r, err)
		return
	}
	if err := h.s.Validator.ValidateBook(r.Context(), in, false); err != nil {
		writeError(h.s, w, r, err)
		return
	}

	owner := caller.UserID
	book := &model.Book{
		Title:           *in.Title,
		PublicationYear: *in.PublicationYear,
		AuthorID:        *in.Author,
		OwnerID:         &owner,
	}
	if err := h.s.BooksStore.CreateBook(r.Context(), book); err != nil {
		auditBook(r, caller, authz.OperationCreate, 0, book.Title, err)
		writeError(h.s, w, r, err)
		return
	}
	auditBook(r, caller, authz.OperationCreate, book.ID, book.Title, nil)

	h.s.Logger.Info("book created", "id", book.ID, "user", caller.Subject(), "request_id", caller.RequestID)
	respondWithJSON(w, http.StatusCreated, h.ser.book(*book))
}

// fetchForWrite looks up the book and runs the object gate. A missing book
// is reported before a failed ownership check.
func (h *booksHandler) fetchForWrite(r *http.Request, op authz.Operation, caller *identity.Identity) (*model.Book, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}

	book, err := h.s.BooksStore.FetchBook(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if err := h.s.Policy.AuthorizeObject(op, caller, book.OwnerID); err != nil {
		auditDenied(r, caller, op, bookResource(book.ID), err)
		return nil, err
	}
	return book, nil
}

// update handles PUT (every field required) and PATCH (only the sent
// fields change).
func (h *booksHandler) update(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := h.authorize(r, authz.OperationUpdate, caller); err != nil {
			writeError(h.s, w, r, err)
			return
		}

		book, err := h.fetchForWrite(r, authz.OperationUpdate, caller)
		if err != nil {
			writeError(h.s, w, r, err)
			return
		}

		in, err := decodeBookInput(r)
		if err != nil {
			writeError(h.s, w, r, err)
			return
		}
		if err := h.s.Validator.ValidateBook(r.Context(), in, partial); err != nil {
			writeError(h.s, w, r, err)
			return
		}

		patch := store.BookPatch{Title: in.Title, PublicationYear: in.PublicationYear, AuthorID: in.Author}
		if patch.Empty() {
			respondWithJSON(w, http.StatusOK, h.ser.book(*book))
			return
		}

		updated, err := h.s.BooksStore.UpdateBook(r.Context(), book.ID, patch)
		if err != nil {
			auditBook(r, caller, authz.OperationUpdate, book.ID, book.Title, err)
			writeError(h.s, w, r, err)
			return
		}
		auditBook(r, caller, authz.OperationUpdate, updated.ID, updated.Title, nil)

		respondWithJSON(w, http.StatusOK, h.ser.book(*updated))
	}
}

func (h *booksHandler) delete(w http.ResponseWriter, r *http.Request) {
	caller := identity.FromContext(r.Context())
	if err := h.authorize(r, authz.OperationDelete, caller); err != nil {
		writeError(h.s, w, r, err)
		return
	}

	book, err := h.fetchForWrite(r, authz.OperationDelete, caller)
	if err != nil {
		writeError(h.s, w, r, err)
		return
	}

	if err := h.s.BooksStore.DeleteBook(r.Context(), book.ID); err != nil {
		auditBook(r, caller, authz.OperationDelete, book.ID, book.Title, err)
		writeError(h.s, w, r, err)
		return
	}
	auditBook(r, caller, authz.OperationDelete, book.ID, book.Title, nil)

	w.WriteHeader(http.StatusNoContent)
}
