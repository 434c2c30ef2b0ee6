// Package cli wires the application together behind cobra commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/lingua/internal/config"
	"github.com/example/lingua/internal/database"
	"github.com/example/lingua/internal/logging"
)

// Execute runs the root command and exits on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the lingua command tree
func NewRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "lingua",
		Short:         "Spaced repetition scheduling for vocabulary and grammar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default ./config.yaml)")

	load := func(ctx context.Context) (*app, error) {
		return newApp(ctx, configFile)
	}
	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(load),
		newImportCommand(load),
		newRemindCommand(load),
		newUserCommand(load),
	)
	return root
}

type appLoader func(ctx context.Context) (*app, error)

// app holds what every command needs: validated config, logger and a migrated database
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *sqlx.DB
}

func newApp(ctx context.Context, configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.WithField("driver", cfg.Database.Driver).Debug("Database ready")

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
}
