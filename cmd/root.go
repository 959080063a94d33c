package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aure/amberctl/internal/api"
	"github.com/aure/amberctl/internal/config"
	"github.com/aure/amberctl/internal/output"
)

// exitDataErr is EX_DATAERR from sysexits.h.
const exitDataErr = 65

var cfgFile string
var debug bool
var outputFormat string

var cfg *config.Config
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "amberctl",
	Short: "Query the Amber Electric API from the command line",
	Long: `amberctl queries Amber Electric's REST API: site details, price windows,
historical usage and the renewables share of your state's grid.

Results are printed as JSON (or YAML with --output yaml).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr(), debug)
		slog.SetDefault(logger)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		if cfg.File != "" {
			logger.Debug("using config file", slog.String("file", cfg.File))
		}
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(handleError(os.Stderr, err))
	}
}

// handleError logs err, prints the user-facing diagnostic and returns the
// process exit code.
func handleError(w io.Writer, err error) int {
	logger.Error("command failed", slog.Any("error", err))
	reportError(w, err)
	return exitCode(err)
}

func exitCode(err error) int {
	if errors.Is(err, api.ErrInvalidDateFormat) {
		return exitDataErr
	}
	return 1
}

func reportError(w io.Writer, err error) {
	if errors.Is(err, api.ErrInvalidDateFormat) {
		fmt.Fprintln(w, "Error:", err)
		fmt.Fprintln(w, "Can not query the Amber API, exiting.")
		return
	}
	fmt.Fprintln(w, "Error:", err)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug || strings.EqualFold(os.Getenv("AMBER_LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newClient validates the loaded config and builds the API client. The
// token itself is never logged.
func newClient() (*api.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("creating API client", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return api.NewClient(cfg.BaseURL, cfg.AuthToken, cfg.Timeout), nil
}

// lookupSiteID is called at most once per run; the id is then passed to
// every query that needs it.
func lookupSiteID(ctx context.Context, client *api.Client) (string, error) {
	siteID, err := client.UserSiteID(ctx)
	if err != nil {
		return "", fmt.Errorf("looking up site id: %w", err)
	}
	logger.Debug("resolved site id", slog.String("site_id", siteID))
	return siteID, nil
}

func printResult(cmd *cobra.Command, v any) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), format, v)
}

func init() {
	decimal.MarshalJSONWithoutQuotes = true

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.amberctl.toml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format (json, yaml)")
}
