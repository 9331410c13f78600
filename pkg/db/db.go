package db

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/model"
)

// Supported dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// ErrNoURL is returned when neither Config.URL nor DATABASE_URL is set.
var ErrNoURL = errors.New("DATABASE_URL environment variable is required")

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Debug enables SQL query logging
	Debug bool
}

// Dialect picks the driver for a database URL.
func Dialect(url string) (string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "sqlite:"), strings.HasPrefix(url, "file:"):
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported database url scheme in %q", redact(url))
}

// SQLitePath strips the sqlite scheme so the rest can be handed to go-sqlite3.
func SQLitePath(url string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
// SQLite databases have their schema created on connect; PostgreSQL schemas
// are managed by `bookshelfctl db migrate`.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, ErrNoURL
	}

	dialect, err := Dialect(dbURL)
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	}

	var db *gorm.DB
	switch dialect {
	case DialectSQLite:
		db, err = gorm.Open(sqlite.Open(SQLitePath(dbURL)), gormCfg)
		if err == nil {
			err = AutoMigrate(db)
		}
	default:
		db, err = gorm.Open(
			postgres.New(postgres.Config{
				DSN:                  dbURL,
				PreferSimpleProtocol: true, // disables implicit prepared statement usage
			}),
			gormCfg,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Models lists every persisted type in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Author{},
		&model.Book{},
		&model.Library{},
		&model.LibraryBook{},
		&model.Librarian{},
		&model.Group{},
		&model.GroupPermission{},
		&model.User{},
	}
}

// AutoMigrate creates or updates tables for every model.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}

func redact(url string) string {
	if i := strings.Index(url, "@"); i >= 0 {
		if j := strings.Index(url, "://"); j >= 0 && j < i {
			return url[:j+3] + "***" + url[i:]
		}
	}
	return url
}
