package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/catalog"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/config"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store"
	storegorm "github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/token"
)

// ErrMissingStore is returned by NewServer when a store is nil.
var ErrMissingStore = errors.New("server: every store must be set")

// Stores groups the persistence dependencies of the server.
type Stores struct {
	Books     store.BooksStore
	Authors   store.AuthorsStore
	Libraries store.LibrariesStore
	Users     store.UsersStore
	Groups    store.GroupsStore
	Health    store.HealthStore
}

// GormStores builds every store on one GORM connection.
func GormStores(db *gorm.DB) Stores {
	return Stores{
		Books:     storegorm.NewBooksStore(db),
		Authors:   storegorm.NewAuthorsStore(db),
		Libraries: storegorm.NewLibrariesStore(db),
		Users:     storegorm.NewUsersStore(db),
		Groups:    storegorm.NewGroupsStore(db),
		Health:    storegorm.NewHealthStore(db),
	}
}

func (s Stores) validate() error {
	if s.Books == nil || s.Authors == nil || s.Libraries == nil ||
		s.Users == nil || s.Groups == nil || s.Health == nil {
		return ErrMissingStore
	}
	return nil
}

type Server struct {
	Router    *mux.Router
	Config    *config.BookshelfConfig
	Policy    authz.Policy
	Validator *catalog.Validator
	Signer    *token.Signer
	Logger    *slog.Logger

	BooksStore     store.BooksStore
	AuthorsStore   store.AuthorsStore
	LibrariesStore store.LibrariesStore
	UsersStore     store.UsersStore
	GroupsStore    store.GroupsStore
	HealthStore    store.HealthStore

	accessLog io.Writer
	srv       *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the application logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithAccessLog sets where the combined access log is written.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

// WithValidator replaces the default validator, e.g. to pin the clock.
func WithValidator(v *catalog.Validator) Option {
	return func(s *Server) {
		s.Validator = v
	}
}

// NewServer wires a server. cfg must already be validated.
func NewServer(
	stores Stores,
	cfg *config.BookshelfConfig,
	signer *token.Signer,
	host string,
	port string,
	options ...Option,
) (*Server, error) {
	if err := stores.validate(); err != nil {
		return nil, err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	s := &Server{
		Router:         router,
		Config:         cfg,
		Policy:         policy,
		Validator:      catalog.NewValidator(stores.Authors),
		Signer:         signer,
		Logger:         slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})),
		BooksStore:     stores.Books,
		AuthorsStore:   stores.Authors,
		LibrariesStore: stores.Libraries,
		UsersStore:     stores.Users,
		GroupsStore:    stores.Groups,
		HealthStore:    stores.Health,
		accessLog:      os.Stdout,
	}
	for _, option := range options {
		option(s)
	}

	s.srv = &http.Server{
		Handler: s.Handler(),
		Addr:    net.JoinHostPort(host, port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return s, nil
}

// Handler is the router wrapped with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.Logger.Handler(), slog.LevelError)),
	)
	return handlers.LoggingHandler(s.accessLog, recovery(s.Router))
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// StartWithListener serves on an existing listener.
func (s *Server) StartWithListener(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
