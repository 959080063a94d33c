package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/api"
	"github.com/aure/amberctl/internal/db"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Archive the current price interval and renewables share",
	Long: `Fetch the current price window (and the current renewables share when a
state is configured) and append them to the local SQLite archive. Run it from
cron every 30 minutes to build a price history for 'history' and 'chart'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		database, err := db.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx := cmd.Context()
		siteID, err := lookupSiteID(ctx, client)
		if err != nil {
			return err
		}

		collection := db.Collection{
			RunID:       uuid.NewString(),
			CollectedAt: time.Now(),
			SiteID:      siteID,
			State:       cfg.State,
		}

		collection.Prices, err = client.Prices(ctx, siteID, api.Current)
		if err != nil {
			return fmt.Errorf("fetching prices: %w", err)
		}

		if cfg.State != "" {
			if err := cfg.RequireState(); err != nil {
				return err
			}
			collection.Renewables, err = client.Renewables(ctx, cfg.State, api.Current)
			if err != nil {
				return fmt.Errorf("fetching renewables: %w", err)
			}
		} else {
			logger.Debug("no state configured, skipping renewables")
		}

		if err := database.SaveCollection(collection); err != nil {
			return fmt.Errorf("saving collection: %w", err)
		}

		logger.Debug("saved collection", slog.String("run_id", collection.RunID), slog.String("db", cfg.DBPath))
		fmt.Fprintf(cmd.OutOrStdout(), "Collected %d price and %d renewables intervals (run %s)\n",
			len(collection.Prices), len(collection.Renewables), collection.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
