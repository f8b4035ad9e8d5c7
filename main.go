package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"lotterypay/cmd"
	"lotterypay/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "lotterypay",
		Short:         "Lottery ticket payment service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and payment callback worker",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Run(ctx)
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			databaseURL, err := migrationDatabaseURL()
			if err != nil {
				return err
			}
			return database.MigrateUp(databaseURL)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			databaseURL, err := migrationDatabaseURL()
			if err != nil {
				return err
			}
			steps := "1"
			if len(args) > 0 {
				steps = args[0]
			}
			return database.MigrateDown(databaseURL, steps)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			databaseURL, err := migrationDatabaseURL()
			if err != nil {
				return err
			}
			return database.MigrateStatus(databaseURL)
		},
	})

	return migrate
}

// migrationDatabaseURL resolves the target without loading the full service configuration
func migrationDatabaseURL() (string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to load .env file: %w", err)
	}

	databaseURL := database.MigrationDatabaseURL()
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return databaseURL, nil
}
