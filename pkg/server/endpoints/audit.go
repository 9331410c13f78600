package endpoints

import (
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/audit"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/middleware"
)

// auditDenied records a policy rejection. Errors that are not policy
// errors are ignored.
func auditDenied(r *http.Request, caller *identity.Identity, op authz.Operation, resource string, err error) {
	if !errors.Is(err, authz.ErrUnauthorized) && !errors.Is(err, authz.ErrForbidden) {
		return
	}
	audit.Log(r.Context(), audit.AccessDeniedEvent{
		User:      caller.Subject(),
		ClientIP:  caller.ClientIP(),
		Operation: op.String(),
		Resource:  resource,
		Reason:    err.Error(),
	})
}

func auditBook(r *http.Request, caller *identity.Identity, op authz.Operation, id uint, title string, err error) {
	event := audit.BookEvent{
		User:      caller.Subject(),
		ClientIP:  caller.ClientIP(),
		Operation: op.String(),
		BookID:    id,
		Title:     title,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(r.Context(), event)
}

// requestIP is the client address for routes that run without the
// identity middleware.
func requestIP(s *server.Server, r *http.Request) string {
	if ip := middleware.ClientIP(r, s.Config); ip != nil {
		return ip.String()
	}
	return ""
}
