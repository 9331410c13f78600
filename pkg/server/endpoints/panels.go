package endpoints

import (
	"fmt"
	"net/http"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/identity"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/permission"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
)

// PanelResponse is the body of a role panel.
type PanelResponse struct {
	Panel    string `json:"panel"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// RegisterPanelEndpoints registers one panel per role. Only callers holding
// exactly that role may open it.
func RegisterPanelEndpoints(s *server.Server) {
	authn := authenticated(s)

	for _, role := range []permission.Role{permission.RoleAdmin, permission.RoleLibrarian, permission.RoleMember} {
		s.Router.Handle("/"+role.Panel()+"/", authn(handlePanel(s, role))).Methods("GET")
	}
}

func handlePanel(s *server.Server, role permission.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := identity.FromContext(r.Context())
		if err := authz.RequireRole(caller, role); err != nil {
			auditDenied(r, caller, authz.OperationRead, role.Panel(), err)
			writeError(s, w, r, err)
			return
		}

		respondWithJSON(w, http.StatusOK, PanelResponse{
			Panel:    role.String(),
			Username: caller.Username,
			Message:  fmt.Sprintf("Welcome to the %s panel, %s.", role, caller.Username),
		})
	}
}
