package audit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
)

const (
	defaultTableName = "messages"
	dialectPostgres  = "postgres"

	logMsgBuildInsertFailed = "failed to build audit insert"
	logMsgExecFailed        = "audit insert failed"
	logMsgSaved             = "audit message saved"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrMsgID            = "msgid"
	logAttrDurationMS       = "duration_ms"
)

// ErrNilDatabaseConnection is returned when a store is built without a connection.
var ErrNilDatabaseConnection = errors.New("audit: database connection must not be nil")

// ErrEmptyTableName is returned by WithTableName("").
var ErrEmptyTableName = errors.New("audit: table name must not be empty")

// StoreLogger receives operational messages from the store. *slog.Logger
// satisfies it.
type StoreLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// dbAdapter runs a fully interpolated statement.
type dbAdapter interface {
	Exec(ctx context.Context, query string) error
	Close() error
}

type pgxAdapter struct {
	pool *pgxpool.Pool
}

func (a pgxAdapter) Exec(ctx context.Context, query string) error {
	_, err := a.pool.Exec(ctx, query)
	return err
}

func (a pgxAdapter) Close() error {
	a.pool.Close()
	return nil
}

type sqlxAdapter struct {
	db *sqlx.DB
}

func (a sqlxAdapter) Exec(ctx context.Context, query string) error {
	_, err := a.db.ExecContext(ctx, query)
	return err
}

func (a sqlxAdapter) Close() error {
	return a.db.Close()
}

// Store handles audit message persistence to database
type Store struct {
	db        dbAdapter
	tableName string
	hostname  string
	pid       int
	logger    StoreLogger
	newID     func() uuid.UUID
	now       func() time.Time
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithTableName sets the table audit messages are written to.
func WithTableName(name string) Option {
	return func(s *Store) error {
		if name == "" {
			return ErrEmptyTableName
		}
		s.tableName = name
		return nil
	}
}

// WithLogger sets the logger for the Store.
// Debug level receives the SQL, Error level receives failed inserts.
func WithLogger(logger StoreLogger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

func newStore(db dbAdapter, options ...Option) (*Store, error) {
	hostname, _ := os.Hostname()
	s := &Store{
		db:        db,
		tableName: defaultTableName,
		hostname:  hostname,
		pid:       os.Getpid(),
		newID:     uuid.New,
		now:       time.Now,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewStore creates a new audit store from AUDIT_DATABASE_URL.
// Returns nil if AUDIT_DATABASE_URL is not set (audit DB disabled).
func NewStore(ctx context.Context, options ...Option) (*Store, error) {
	dbURL := os.Getenv("AUDIT_DATABASE_URL")
	if dbURL == "" {
		return nil, nil
	}

	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse audit database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewStoreFromPGXPool(pool, options...)
}

// NewStoreFromPGXPool creates a store on an existing pgx pool.
func NewStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Store, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newStore(pgxAdapter{pool: pool}, options...)
}

// NewStoreFromSQLX creates a store on an existing sqlx connection.
// Useful for testing with sqlmock.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newStore(sqlxAdapter{db: db}, options...)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// insertSQL renders the INSERT for one event with all values interpolated.
func (s *Store) insertSQL(event Event) (string, error) {
	sdata, err := jsoniter.ConfigFastest.Marshal(event.StructuredData())
	if err != nil {
		return "", err
	}

	insert := goqu.Dialect(dialectPostgres).
		Insert(s.tableName).
		Rows(goqu.Record{
			"id":        s.newID().String(),
			"facility":  event.Facility(),
			"severity":  int(event.Severity()),
			"timestamp": s.now().UTC(),
			"hostname":  s.hostname,
			"appname":   AppName,
			"procid":    fmt.Sprint(s.pid),
			"msgid":     event.MessageID(),
			"sdata":     string(sdata),
			"message":   event.Message(),
		})

	query, _, err := insert.ToSQL()
	return query, err
}

// Save persists an audit event to the database
func (s *Store) Save(ctx context.Context, event Event) error {
	if s == nil || s.db == nil {
		return nil
	}

	query, err := s.insertSQL(event)
	if err != nil {
		s.logError(logMsgBuildInsertFailed, err)
		return err
	}

	start := s.now()
	if err := s.db.Exec(ctx, query); err != nil {
		s.logError(logMsgExecFailed, err)
		return err
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSaved,
			logAttrMsgID, event.MessageID(),
			logAttrQuery, query,
			logAttrDurationMS, s.now().Sub(start).Milliseconds(),
		)
	}
	return nil
}

func (s *Store) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, logAttrError, err.Error())
	}
}
