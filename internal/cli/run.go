package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MiruVL/events/internal/logging"
	"github.com/MiruVL/events/internal/metrics"
	"github.com/MiruVL/events/internal/pipeline"
)

var (
	flagVenue       string
	flagMonths      int
	flagNoCache     bool
	flagConcurrency int
	flagMetricsAddr string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape venues and reconcile the event database",
		Long: `Run the full pipeline over the scrapable venues: fetch each venue's
schedule pages, extract event candidates, and reconcile them against the
stored events. Per-venue failures are reported in the summary and set
exit code 2; the run itself only fails on setup errors.`,
		Args: cobra.NoArgs,
		RunE: runPipeline,
	}

	cmd.Flags().StringVar(&flagVenue, "venue", "", "Only venues whose name contains this text")
	cmd.Flags().IntVar(&flagMonths, "months", 0, "Months to cover (default from config)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Ignore cached pages and fetch live")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 1, "Venues processed in parallel")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve /metrics on this address during the run")

	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagMonths > 0 {
		cfg.Months = flagMonths
	}
	if flagMetricsAddr != "" {
		cfg.MetricsAddr = flagMetricsAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		errc := metrics.Serve(cfg.MetricsAddr)
		go func() {
			if err := <-errc; err != nil {
				logging.New("cli").Error("metrics listener", "error", err)
			}
		}()
	}

	runner := pipeline.NewRunner(st, fetcher, newExtractor(cfg), cfg.WarnThreshold)
	summary, err := runner.Run(ctx, pipeline.Options{
		VenueFilter: flagVenue,
		Months:      cfg.Months,
		UseCache:    !flagNoCache,
		Concurrency: flagConcurrency,
	})
	if err != nil {
		return err
	}

	if err := WriteSummary(os.Stdout, summary, format); err != nil {
		return err
	}

	if summary.Failures > 0 {
		// Surfaced as exit code 2 by Execute, after deferred cleanup runs.
		return errVenueFailures
	}
	return nil
}
