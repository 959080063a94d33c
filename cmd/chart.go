package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/db"
)

var chartDays int

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Display daily average prices as an ASCII chart",
	Long: `Display one bar per day and channel with the average archived price.

Days are NEM days (UTC+10), the calendar the market and your bill use. --days
counts calendar days including today, whatever the number of channels.

Examples:
  amberctl chart
  amberctl chart --days 14`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		daily, err := database.GetDailyPrices(chartDays)
		if err != nil {
			return err
		}

		printDailyChart(cmd.OutOrStdout(), daily)
		return nil
	},
}

func printDailyChart(out io.Writer, daily []db.DailyPrice) {
	if len(daily) == 0 {
		fmt.Fprintln(out, "No data available.")
		return
	}

	maxAvg := 0.0
	for _, d := range daily {
		if d.AvgPerKwh > maxAvg {
			maxAvg = d.AvgPerKwh
		}
	}

	if maxAvg <= 0 {
		maxAvg = 1
	}

	barWidth := 30

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Daily Average Price (c/kWh)")
	fmt.Fprintln(out, "  "+strings.Repeat("─", 60))

	for _, d := range daily {
		barLen := int(d.AvgPerKwh / maxAvg * float64(barWidth))
		if barLen < 0 {
			barLen = 0
		}
		bar := strings.Repeat("█", barLen) + strings.Repeat("░", barWidth-barLen)
		spikes := ""
		if d.Spikes > 0 {
			spikes = fmt.Sprintf(" (%d spike)", d.Spikes)
		}
		fmt.Fprintf(out, "  %s %-14s │%s│ %.2f%s\n", d.Day, d.ChannelType, bar, d.AvgPerKwh, spikes)
	}

	fmt.Fprintln(out)
}

func init() {
	chartCmd.Flags().IntVar(&chartDays, "days", 7, "Number of days to display")
	rootCmd.AddCommand(chartCmd)
}
