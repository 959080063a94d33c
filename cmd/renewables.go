package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/api"
)

var renewablesCmd = &cobra.Command{
	Use:   "renewables",
	Short: "Show the renewables share of your state's grid",
}

func runRenewables(cmd *cobra.Command, w api.Window) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	if err := cfg.RequireState(); err != nil {
		return err
	}

	records, err := client.Renewables(cmd.Context(), cfg.State, w)
	if err != nil {
		return fmt.Errorf("fetching %s renewables for %s: %w", w, cfg.State, err)
	}
	logger.Debug("fetched renewables", slog.String("state", cfg.State), slog.String("window", w.String()), slog.Int("records", len(records)))

	return printResult(cmd, records)
}

func init() {
	renewablesCmd.AddCommand(windowCommands(runRenewables)...)
	rootCmd.AddCommand(renewablesCmd)
}
