package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/db"
)

var historyDays int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived price intervals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		since := time.Now().AddDate(0, 0, -historyDays)
		prices, err := database.GetPriceHistory(since)
		if err != nil {
			return fmt.Errorf("getting price history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(prices) == 0 {
			fmt.Fprintln(out, "No data available. Run 'amberctl collect' first.")
			return nil
		}

		fmt.Fprintf(out, "Price History (last %d days)\n", historyDays)
		fmt.Fprintln(out, "──────────────────────────────────────────────────────────────────────")
		fmt.Fprintf(out, "%-17s %-15s %9s %9s %7s %-9s %s\n", "Start", "Channel", "c/kWh", "Spot", "Ren%", "Spike", "Descriptor")
		fmt.Fprintln(out, "──────────────────────────────────────────────────────────────────────")

		for i := len(prices) - 1; i >= 0; i-- {
			p := prices[i]
			fmt.Fprintf(out, "%-17s %-15s %9s %9s %7s %-9s %s\n",
				p.StartTime.Local().Format("2006-01-02 15:04"),
				p.ChannelType,
				p.PerKwh,
				p.SpotPerKwh,
				p.Renewables,
				p.SpikeStatus,
				p.Descriptor,
			)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of days to show")
	rootCmd.AddCommand(historyCmd)
}
