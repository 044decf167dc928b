package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gymadmin/internal/log"
	"gymadmin/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply every pending up migration for the configured SQL backend.

The memory backend has no schema; the command is a no-op there.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	var (
		dialect storage.Dialect
		dsn     string
	)
	switch cfg.DataBackend {
	case "sqlite":
		dialect, dsn = storage.DialectSQLite, cfg.SQLiteDBPath
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}
		}
	case "postgres":
		dialect, dsn = storage.DialectPostgres, cfg.DatabaseURL
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "backend %s has no migrations\n", cfg.DataBackend)
		return nil
	}

	if err := storage.RunMigrations(dialect, dsn); err != nil {
		return err
	}
	logger.Info("Migrations applied", log.FieldOperation, log.OpMigrate, log.FieldBackend, cfg.DataBackend)
	fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", cfg.DataBackend)
	return nil
}
