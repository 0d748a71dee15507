// Command server runs the blog API.
//
//	server              serve HTTP (default)
//	server migrate      create the tables and exit
//	server version      print the version
//
// Configuration comes from environment variables (see internal/config);
// flags override them.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/database"
	"github.com/sakif/blog-api/internal/server"
)

// version is overridden at build time:
//
//	go build -ldflags "-X main.version=1.4.0" ./cmd/server
var version = "dev"

// flag values; applied only when the flag was set explicitly
var (
	dbType   string
	dbURL    string
	host     string
	port     int
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Users and posts REST API on SQLite or PostgreSQL",
	Long: `Serves a JSON REST API for users and their posts under /api/v1.

The backing store is chosen once at startup with DATABASE_TYPE:
  sqlite       an embedded database file at DATABASE_URL (default ./dev.db)
  postgresql   a PostgreSQL server at DATABASE_URL (postgres:// URL)

Tables are created on startup if they do not exist.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes, then exit",
	RunE:  runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbType, "db-type", "", "database type: sqlite or postgresql (env DATABASE_TYPE)")
	flags.StringVar(&dbURL, "db-url", "", "database file path or connection URL (env DATABASE_URL)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	rootCmd.Flags().StringVar(&host, "host", "", "listen host (env HOST)")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (env PORT)")

	rootCmd.AddCommand(migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, applies explicitly set flags and
// validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db-type") {
		if cfg.Database.Type, err = config.ParseDatabaseType(dbType); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-url") {
		cfg.Database.URL = dbURL
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = config.ParseLogLevel(logLevel); err != nil {
			return nil, err
		}
	}
	if flags.Lookup("host") != nil && flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes text logs, or JSON in production where they are
// shipped to a collector.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newConnector(cfg *config.Config, logger *slog.Logger) (*database.Connector, error) {
	backend, err := database.NewBackend(cfg.Database)
	if err != nil {
		return nil, err
	}
	return database.NewConnector(backend, logger), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	connector, err := newConnector(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), cfg, connector, logger, version)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	// Start blocks until SIGINT/SIGTERM and closes the database on return.
	return srv.Start()
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	connector, err := newConnector(cfg, logger)
	if err != nil {
		return err
	}
	defer connector.Close()

	// Get applies the schema as part of connecting.
	if _, err := connector.Get(cmd.Context()); err != nil {
		return err
	}

	logger.Info("migration complete",
		slog.String("database", cfg.Database.Type),
		slog.String("url", redact(cfg)),
	)
	return nil
}

// redact hides credentials in a postgres URL; sqlite paths are printed as is.
func redact(cfg *config.Config) string {
	if cfg.Database.Type != config.DatabasePostgreSQL {
		return cfg.Database.URL
	}
	return "(postgresql connection string)"
}
