package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var spikeCmd = &cobra.Command{
	Use:   "spike-status",
	Short: "Describe the spike status of the current interval",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		siteID, err := lookupSiteID(cmd.Context(), client)
		if err != nil {
			return err
		}

		msg, err := client.SpikeStatus(cmd.Context(), siteID)
		if err != nil {
			return fmt.Errorf("fetching spike status: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(spikeCmd)
}
