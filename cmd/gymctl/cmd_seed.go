package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gymadmin/internal/log"
	"gymadmin/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Insert default settings and sample plans",
	Long: `Insert settings whose key is missing, and the sample membership plans
when no plan exists yet.

Without a file argument SEED_FILE is used, and without that the built-in
defaults.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := cfg.SeedFile
	if len(args) == 1 {
		path = args[0]
	}
	data, err := seed.Load(path)
	if err != nil {
		return err
	}

	res, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer res.Cleanup()

	added, err := seed.Apply(cmd.Context(), res.Service, data, logger.WithComponent(log.ComponentSeed))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d settings and %d plans\n", added.Settings, added.Plans)
	return nil
}
