package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MiruVL/events/internal/extract"
	"github.com/MiruVL/events/internal/fetch"
	"github.com/MiruVL/events/internal/venue"
)

var (
	flagFetchBrowser  bool
	flagFetchNoCache  bool
	flagFetchSelector string
	flagFetchOffset   int

	flagExtractVenue string
	flagExtractHints string
	flagExtractKind  string
)

// newFetchCmd fetches a single page exactly as the pipeline would and
// prints the normalized text, for tuning selectors and hints.
func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch one page and print its normalized text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			fetcher, err := newFetcher(cfg)
			if err != nil {
				return err
			}

			v := &venue.Venue{
				ID:          "adhoc",
				Name:        "ad hoc",
				ScheduleURL: args[0],
				RenderMode:  venue.RenderStatic,
				ContentSel:  flagFetchSelector,
			}
			if flagFetchBrowser {
				v.RenderMode = venue.RenderBrowser
			}

			entry, err := fetcher.Page(cmd.Context(), v, flagFetchOffset, flagFetchNoCache)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, entry.Text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagFetchBrowser, "browser", false, "Render with a headless browser")
	cmd.Flags().BoolVar(&flagFetchNoCache, "no-cache", false, "Ignore the cached copy and fetch live")
	cmd.Flags().StringVar(&flagFetchSelector, "selector", "", "CSS selector to scope extraction to")
	cmd.Flags().IntVar(&flagFetchOffset, "month-offset", 0, "Month offset substituted into templated URLs")

	return cmd
}

// newExtractCmd runs the language model over saved page text, for testing
// prompts and hints without touching the live site.
func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract event candidates from saved page text",
		Long: `Extract event candidates from a file holding page text, either a cache
entry written by the fetcher or plain text, and print them as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			text, err := readPageText(args[0])
			if err != nil {
				return err
			}

			kind := extract.PageKind(flagExtractKind)
			switch kind {
			case extract.KindSchedule, extract.KindDetail, extract.KindStubs:
			default:
				return fmt.Errorf("invalid kind: %s (must be schedule, detail, or stubs)", flagExtractKind)
			}

			cands, err := newExtractor(cfg).Extract(cmd.Context(), extract.Request{
				VenueName: flagExtractVenue,
				Hints:     flagExtractHints,
				PageText:  text,
				Kind:      kind,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cands)
		},
	}

	cmd.Flags().StringVar(&flagExtractVenue, "venue-name", "unknown venue", "Venue name for the prompt")
	cmd.Flags().StringVar(&flagExtractHints, "hints", "", "Venue-specific extraction hints")
	cmd.Flags().StringVar(&flagExtractKind, "kind", "schedule", "Page kind: schedule, detail, or stubs")

	return cmd
}

// readPageText loads page text from either a fetch cache entry or a plain
// text file.
func readPageText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading page file: %w", err)
	}
	var entry fetch.Entry
	if json.Unmarshal(data, &entry) == nil && entry.Text != "" {
		return entry.Text, nil
	}
	return string(data), nil
}
