package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MiruVL/events/internal/config"
	"github.com/MiruVL/events/internal/extract"
	"github.com/MiruVL/events/internal/fetch"
	"github.com/MiruVL/events/internal/logging"
	"github.com/MiruVL/events/internal/store"
)

const (
	ExitSuccess       = 0
	ExitError         = 1
	ExitVenueFailures = 2
)

// errVenueFailures distinguishes "ran, but some venues failed" from fatal
// errors. It propagates out of RunE so deferred cleanup still runs.
var errVenueFailures = errors.New("completed with venue failures")

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Scrape venue schedules into a reconciled event database",
		Long: `A pipeline that scrapes live venue schedule pages, extracts structured
event data with a language model, and reconciles the results against the
event database so repeated runs converge instead of duplicating.`,
		SilenceUsage:  true,
		SilenceErrors: true, // Execute prints errors once, with the exit code
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVenuesCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newExtractCmd())

	return cmd
}

// loadConfig resolves configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
	}
	logging.Init(parseLevel(cfg.LogLevel), cfg.LogFormat)
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(flagFormat)
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	st, err := store.OpenSQL(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

func newFetcher(cfg *config.Config) (*fetch.Fetcher, error) {
	cache, err := fetch.NewDirCache(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("initializing page cache: %w", err)
	}
	static := fetch.NewStaticRenderer(cfg.FetchTimeout.Std())
	browser := fetch.NewBrowserRenderer(cfg.FetchTimeout.Std())
	return fetch.New(cache, static, browser), nil
}

func newExtractor(cfg *config.Config) extract.Extractor {
	return extract.NewLLMExtractor(extract.NewClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout.Std()))
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, errVenueFailures) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errVenueFailures):
		return ExitVenueFailures
	default:
		return ExitError
	}
}
