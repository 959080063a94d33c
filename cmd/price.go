package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/api"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show prices for the current, previous or next interval",
}

// windowCommands builds one subcommand per window, all sharing run.
func windowCommands(run func(cmd *cobra.Command, w api.Window) error) []*cobra.Command {
	short := map[api.Window]string{
		api.Current:  "Current interval data",
		api.Previous: "Previous interval data",
		api.Next:     "Forecast interval data",
	}

	var cmds []*cobra.Command
	for _, w := range []api.Window{api.Current, api.Previous, api.Next} {
		w := w
		cmds = append(cmds, &cobra.Command{
			Use:   w.String(),
			Short: short[w],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, w)
			},
		})
	}
	return cmds
}

func runPrice(cmd *cobra.Command, w api.Window) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	siteID, err := lookupSiteID(cmd.Context(), client)
	if err != nil {
		return err
	}

	prices, err := client.Prices(cmd.Context(), siteID, w)
	if err != nil {
		return fmt.Errorf("fetching %s prices: %w", w, err)
	}
	logger.Debug("fetched prices", slog.String("window", w.String()), slog.Int("records", len(prices)))

	return printResult(cmd, prices)
}

func init() {
	priceCmd.AddCommand(windowCommands(runPrice)...)
	rootCmd.AddCommand(priceCmd)
}
