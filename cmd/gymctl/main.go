// Command gymctl runs administrative tasks against the configured gym
// backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gymadmin/internal/backend"
	"gymadmin/internal/cli"
	"gymadmin/internal/config"
	"gymadmin/internal/log"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gymctl",
	Short: "Administer the gym backend",
	Long: `gymctl runs one-off tasks against the backend selected by the
environment (DATA_BACKEND, SQLITE_DB_PATH, DATABASE_URL, ...).

A .env file in the working directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		loaded, err := cli.LoadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = cli.SetupLogger(cfg, "gymctl")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, reportCmd, expireCmd, eventsCmd)
}

// openBackend builds the service without applying the seed.
func openBackend(ctx context.Context) (*backend.Result, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, bcfg)
}

func main() {
	ctx, stop := cli.SignalContext(log.Nop())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
