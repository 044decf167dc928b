package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"gymadmin/internal/reports"
)

var reportDashboard bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the reports bundle as JSON",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportDashboard, "dashboard", false, "print the dashboard summary instead")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	res, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	snap, err := reports.Load(ctx, res.Store)
	if err != nil {
		return err
	}

	var out any
	if reportDashboard {
		recent, err := res.Service.ListActivity(ctx, reports.RecentActivityLimit)
		if err != nil {
			return err
		}
		out = reports.BuildDashboard(snap, recent, res.Service.Now())
	} else {
		out = reports.Build(snap, res.Service.Now())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
