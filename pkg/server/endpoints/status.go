package endpoints

import (
	"bytes"
	"context"
	_ "embed"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
)

//go:embed static/status.md
var statusMarkdown string

const healthTimeout = 5 * time.Second

// StatusResponse is the JSON form of the status page.
type StatusResponse struct {
	Version            string `json:"version"`
	ReadAccess         string `json:"read_access"`
	AuthorizationModel string `json:"authorization_model"`
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status page and health check
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status page (no auth required)
	s.Router.HandleFunc("/", handleStatus(s)).Methods("GET")

	// GET /health - Database connectivity (no auth required)
	s.Router.HandleFunc("/health", handleHealth(s)).Methods("GET")
}

func version() string {
	if v := os.Getenv("BOOKSHELF_VERSION"); v != "" {
		return v
	}
	return "0.1.0"
}

// renderStatusPage converts the status markdown to a complete HTML page.
func renderStatusPage(status StatusResponse) ([]byte, error) {
	source := strings.NewReplacer(
		"{{version}}", status.Version,
		"{{read_access}}", status.ReadAccess,
		"{{authorization_model}}", status.AuthorizationModel,
	).Replace(statusMarkdown)

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n  <head>\n    <meta charset=\"utf-8\">\n    <title>Bookshelf Status</title>\n  </head>\n  <body>\n")
	page.Write(body.Bytes())
	page.WriteString("  </body>\n</html>\n")
	return page.Bytes(), nil
}

func handleStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := StatusResponse{
			Version:            version(),
			ReadAccess:         string(s.Policy.Read),
			AuthorizationModel: string(s.Policy.Model),
		}

		// Check if JSON is requested via Accept header or format query param
		accept := r.Header.Get("Accept")
		format := r.URL.Query().Get("format")
		if format == "json" || strings.Contains(accept, "application/json") {
			respondWithJSON(w, http.StatusOK, status)
			return
		}

		page, err := renderStatusPage(status)
		if err != nil {
			writeError(s, w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := s.HealthStore.CheckConnectivity(ctx); err != nil {
			s.Logger.Warn("health check failed", "error", err.Error())
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
