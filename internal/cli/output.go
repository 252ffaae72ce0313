package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MiruVL/events/internal/pipeline"
	"github.com/MiruVL/events/internal/venue"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteSummary writes a run summary in the specified format
func WriteSummary(w io.Writer, summary *pipeline.Summary, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, summary)
	}
	return writeSummaryText(w, summary)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeSummaryText(w io.Writer, summary *pipeline.Summary) error {
	if len(summary.Venues) == 0 {
		fmt.Fprintln(w, "No scrapable venues matched.")
		return nil
	}

	var inserted, updated, deleted int
	for _, res := range summary.Venues {
		if res.Error != "" {
			fmt.Fprintf(w, "FAIL %s: %s\n", res.Name, res.Error)
			if res.State == venue.StateWarning {
				fmt.Fprintf(w, "     venue flagged for review\n")
			}
			continue
		}
		fmt.Fprintf(w, "  ok %s: +%d ~%d -%d (%d months)\n",
			res.Name, res.Inserted, res.Updated, res.Deleted, res.Months)
		inserted += res.Inserted
		updated += res.Updated
		deleted += res.Deleted
	}

	fmt.Fprintf(w, "\nTotal: %d inserted, %d updated, %d deleted across %d venues in %s\n",
		inserted, updated, deleted, len(summary.Venues), summary.Duration.Round(time.Millisecond))
	if summary.Failures > 0 {
		fmt.Fprintf(w, "%d venues failed.\n", summary.Failures)
	}
	return nil
}

// WriteVenues writes the venue registry in the specified format
func WriteVenues(w io.Writer, venues []*venue.Venue, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, venues)
	}

	if len(venues) == 0 {
		fmt.Fprintln(w, "No venues registered.")
		return nil
	}
	for _, v := range venues {
		fmt.Fprintf(w, "%-20s %-10s %-20s %s", v.ID, v.State, v.Name, v.ScheduleURL)
		if v.FailStreak > 0 {
			fmt.Fprintf(w, "  (failing x%d)", v.FailStreak)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nTotal: %d venues\n", len(venues))
	return nil
}
