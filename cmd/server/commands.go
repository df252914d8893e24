package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/sujalbistaa/openforum/internal/config"
	"github.com/sujalbistaa/openforum/internal/db"
	routes "github.com/sujalbistaa/openforum/internal/http"
	"github.com/sujalbistaa/openforum/internal/store"
	"github.com/sujalbistaa/openforum/internal/ws"
)

var (
	// Global flags
	configPath string
	dbURL      string
	port       string
)

// rootCmd serves the forum.
var rootCmd = &cobra.Command{
	Use:   "openforum",
	Short: "OpenForum - a small discussion forum",
	Long: `OpenForum serves a post list with search and sorting, a post creation
form and a post page with comments, upvotes, editing and deletion.

Settings come from defaults, an optional TOML file (--config) and the
PORT, DATABASE_URL, CORS_ORIGIN and SHUTDOWN_TIMEOUT variables. Flags win
over both.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// migrateCmd creates the tables and exits.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the posts and comments tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return s.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (postgres://, sqlite:// or bolt://)")
	rootCmd.Flags().StringVar(&port, "port", "", "Port to listen on")

	rootCmd.AddCommand(migrateCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if port != "" {
		cfg.Port = port
	}
	return cfg, cfg.Validate()
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	s, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Println("Running database migrations...")
	if err := s.Init(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Migrations complete.")
	return s, nil
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	hub := ws.NewHub()
	go hub.Run(ctx)

	router := gin.New()
	routes.SetupRoutes(router, s, hub, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Block until a signal is received or the listener fails.
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}
