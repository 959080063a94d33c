package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var siteCmd = &cobra.Command{
	Use:   "site-details",
	Short: "Display details about your site",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		sites, err := client.SiteData(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching site details: %w", err)
		}
		logger.Debug("fetched sites", slog.Int("records", len(sites)))

		return printResult(cmd, sites)
	},
}

func init() {
	rootCmd.AddCommand(siteCmd)
}
