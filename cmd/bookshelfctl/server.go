package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/audit"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/config"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/db"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/token"
)

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the bookshelf application server",
	Long: `Run the bookshelf application server.

To run the server requires the environment variables BOOKSHELF_TOKEN_SECRET
and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(host, port string, noMigrate bool) error {
	// Validate configuration and secrets first (fail fast)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	secret := config.TokenSecret()
	if secret == "" {
		return fmt.Errorf("%s environment variable is required", config.EnvTokenSecret)
	}
	if db.URL() == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if !noMigrate {
		logger.Info("running database migrations")
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	database, err := db.Connect(db.Config{Debug: cfg.SlogLevel() == slog.LevelDebug})
	if err != nil {
		return err
	}

	signer, err := token.NewSigner([]byte(secret), cfg.TokenLifetime())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit.SetEnabled(cfg.AuditEnabled)
	if cfg.AuditEnabled {
		auditStore, err := audit.NewStore(ctx, audit.WithLogger(logger))
		if err != nil {
			logger.Warn("audit database unavailable, audit messages go to stderr only", "error", err.Error())
		}
		audit.SetStore(auditStore)
		defer func() { _ = auditStore.Close() }()
	}

	s, err := server.NewServer(server.GormStores(database), cfg, signer, host, port, server.WithLogger(logger))
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("running server", "addr", s.Addr(),
			"read_access", cfg.ReadAccess,
			"authorization_model", cfg.AuthorizationModel,
		)
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
