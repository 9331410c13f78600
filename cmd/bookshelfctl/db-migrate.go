package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/db"
)

const migrationsTable = "bookshelf_schema_migrations"

// schemaTables must all exist once migrations have run.
var schemaTables = []string{
	"authors", "books", "users", "libraries", "library_books",
	"librarians", "groups", "group_permissions", "user_groups", "messages",
}

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

PostgreSQL databases are migrated with the SQL files under db/migrations.
SQLite databases (DATABASE_URL=sqlite://...) have their tables created
directly from the models.

Example:
  bookshelfctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).
Only PostgreSQL databases are supported.

Example:
  bookshelfctl db down      # Rollback 1 migration
  bookshelfctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			_, _ = fmt.Sscanf(args[0], "%d", &steps)
		}

		if err := runMigrationsDown(steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version and any missing tables.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// withMigrationsTable points golang-migrate at its own version table.
func withMigrationsTable(dbURL string) string {
	if dbURL == "" {
		return ""
	}
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + migrationsTable
	}
	return dbURL + "?x-migrations-table=" + migrationsTable
}

// databaseURL returns DATABASE_URL and its dialect.
func databaseURL() (string, string, error) {
	dbURL := db.URL()
	if dbURL == "" {
		return "", "", db.ErrNoURL
	}
	dialect, err := db.Dialect(dbURL)
	if err != nil {
		return "", "", err
	}
	return dbURL, dialect, nil
}

func runMigrations() error {
	dbURL, dialect, err := databaseURL()
	if err != nil {
		return err
	}

	if dialect == db.DialectSQLite {
		if _, err := db.Connect(db.Config{URL: dbURL}); err != nil {
			return err
		}
		fmt.Println("SQLite schema is up to date")
		return nil
	}

	m, err := createMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("No migrations to run - database is up to date")
	} else {
		newVersion, _, _ := m.Version()
		fmt.Printf("Migrated to version: %d\n", newVersion)
	}

	missing, err := missingTables(dbURL)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema is incomplete, missing tables: %s", strings.Join(missing, ", "))
	}

	fmt.Println("Migrations complete")
	return nil
}

// missingTables lists the bookshelf tables that do not exist in the database.
func missingTables(dbURL string) ([]string, error) {
	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return checkTables(conn, schemaTables)
}

func checkTables(conn *sql.DB, tables []string) ([]string, error) {
	var missing []string
	for _, table := range tables {
		var exists bool
		err := conn.QueryRow("SELECT to_regclass($1) IS NOT NULL", "public."+table).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}

func runMigrationsDown(steps int) error {
	dbURL, dialect, err := databaseURL()
	if err != nil {
		return err
	}
	if dialect != db.DialectPostgres {
		return fmt.Errorf("rollback is only supported for PostgreSQL databases")
	}
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	m, err := createMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("Rolled back all migrations")
		return nil
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	dbURL, dialect, err := databaseURL()
	if err != nil {
		return err
	}
	if dialect == db.DialectSQLite {
		fmt.Println("SQLite databases are migrated automatically on connect")
		return nil
	}

	m, err := createMigrateInstance(withMigrationsTable(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations have been applied yet")
			return nil
		}
		return err
	}

	fmt.Printf("Current version: %d\n", version)
	if dirty {
		fmt.Println("Warning: Database is in a dirty state")
	}

	files, err := listMigrationFiles()
	if err == nil {
		fmt.Printf("Available migrations: %d\n", len(files))
	}

	missing, err := missingTables(dbURL)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		fmt.Printf("Missing tables: %s\n", strings.Join(missing, ", "))
	}
	return nil
}
