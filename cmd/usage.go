package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/api"
	"github.com/aure/amberctl/internal/output"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show historical usage",
}

var usageDateRangeCmd = &cobra.Command{
	Use:   "date-range START_DATE END_DATE [FILE]",
	Short: "Usage between two dates (yyyy-mm-dd), optionally exported as CSV",
	Long: `Fetch 30 minute usage records between START_DATE and END_DATE.

Both dates must be real calendar dates in yyyy-mm-dd form; otherwise nothing is
requested and the command exits with status 65. When FILE is given the records
are written there as CSV instead of being printed.

Examples:
  amberctl usage date-range 2023-12-18 2023-12-19
  amberctl usage date-range 2023-12-01 2023-12-31 december.csv`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reject bad dates before the site lookup touches the network.
		dates, err := api.NewDateRange(args[0], args[1])
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		siteID, err := lookupSiteID(cmd.Context(), client)
		if err != nil {
			return err
		}

		usage, err := client.UsageByDate(cmd.Context(), siteID, dates.Start, dates.End)
		if err != nil {
			return fmt.Errorf("fetching usage: %w", err)
		}
		logger.Debug("fetched usage", slog.String("start", dates.Start), slog.String("end", dates.End), slog.Int("records", len(usage)))

		if len(args) == 3 {
			file := args[2]
			logger.Info("writing usage to file", slog.String("file", file), slog.Int("records", len(usage)))
			if err := output.WriteUsageCSVFile(file, usage); err != nil {
				return fmt.Errorf("exporting usage: %w", err)
			}
			return nil
		}

		return printResult(cmd, usage)
	},
}

func init() {
	usageCmd.AddCommand(usageDateRangeCmd)
	rootCmd.AddCommand(usageCmd)
}
