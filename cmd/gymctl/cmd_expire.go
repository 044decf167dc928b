package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gymadmin/internal/worker"
)

var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark lapsed subscriptions as expired once",
	Long: `Run a single expiry sweep: every active subscription whose end date is
before today (in GYM_TIMEZONE) becomes expired and is activity-logged.`,
	Args: cobra.NoArgs,
	RunE: runExpire,
}

func runExpire(cmd *cobra.Command, args []string) error {
	res, err := openBackend(cmd.Context())
	if err != nil {
		return err
	}
	defer res.Cleanup()

	n, err := worker.NewExpiryWorker(res.Service, time.Hour, logger).RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "expired %d subscriptions\n", n)
	return nil
}
