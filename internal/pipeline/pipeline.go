// Package pipeline runs the scrape, extract, and reconcile cycle over a set
// of venues and records the outcome per venue.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MiruVL/events/internal/event"
	"github.com/MiruVL/events/internal/extract"
	"github.com/MiruVL/events/internal/fetch"
	"github.com/MiruVL/events/internal/logging"
	"github.com/MiruVL/events/internal/metrics"
	"github.com/MiruVL/events/internal/store"
	"github.com/MiruVL/events/internal/venue"
)

// Options selects what a run covers.
type Options struct {
	// VenueFilter narrows the run to venues whose name contains this
	// fragment, case-insensitively. Empty means all scrapable venues.
	VenueFilter string
	// Months is how many consecutive months to cover, starting with the
	// current one. Venues that cannot navigate months are clamped to 1.
	Months int
	// UseCache serves pages from the fetch cache when present.
	UseCache bool
	// Concurrency is the number of venues processed in parallel.
	Concurrency int
}

// VenueResult is one venue's outcome within a run summary.
type VenueResult struct {
	VenueID  string      `json:"venue_id"`
	Name     string      `json:"name"`
	Months   int         `json:"months"`
	Inserted int         `json:"inserted"`
	Updated  int         `json:"updated"`
	Deleted  int         `json:"deleted"`
	State    venue.State `json:"state"`
	Error    string      `json:"error,omitempty"`
}

// Summary is the outcome of one pipeline run.
type Summary struct {
	RanAt    time.Time     `json:"ran_at"`
	Duration time.Duration `json:"duration"`
	Venues   []VenueResult `json:"venues"`
	Failures int           `json:"failures"`
}

// Runner drives the pipeline. Venues are isolated from each other: one
// venue failing is recorded in the summary and never stops the run.
type Runner struct {
	store         store.Store
	fetcher       *fetch.Fetcher
	extractor     extract.Extractor
	warnThreshold int
	log           *slog.Logger
	now           func() time.Time
}

func NewRunner(st store.Store, fetcher *fetch.Fetcher, extractor extract.Extractor, warnThreshold int) *Runner {
	if warnThreshold <= 0 {
		warnThreshold = 3
	}
	return &Runner{
		store:         st,
		fetcher:       fetcher,
		extractor:     extractor,
		warnThreshold: warnThreshold,
		log:           logging.New("pipeline"),
		now:           time.Now,
	}
}

// WithClock overrides the runner's notion of now. Test hook.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run processes the selected venues and returns a summary. The returned
// error is reserved for failures of the run itself, such as not being able
// to list venues; per-venue failures live in the summary.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := r.now()
	if opts.Months < 1 {
		opts.Months = 1
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	all, err := r.store.FindVenues(ctx, opts.VenueFilter)
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	var venues []*venue.Venue
	for _, v := range all {
		if v.Scrapable() {
			venues = append(venues, v)
		}
	}
	r.log.Info("starting run", "venues", len(venues), "months", opts.Months, "cache", opts.UseCache)

	results := make([]VenueResult, len(venues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, v := range venues {
		g.Go(func() error {
			results[i] = r.runVenue(gctx, v, opts)
			return nil
		})
	}
	_ = g.Wait() // workers record failures in results, never return errors

	summary := &Summary{
		RanAt:    start,
		Duration: r.now().Sub(start),
		Venues:   results,
	}
	for _, res := range results {
		if res.Error != "" {
			summary.Failures++
		}
	}
	r.log.Info("run finished", "venues", len(venues), "failures", summary.Failures, "duration", summary.Duration)
	return summary, nil
}

func (r *Runner) runVenue(ctx context.Context, v *venue.Venue, opts Options) VenueResult {
	res := VenueResult{VenueID: v.ID, Name: v.Name, State: v.State}

	months := opts.Months
	if !v.Templated() && v.NextMonthSel == "" {
		months = 1
	}
	res.Months = months

	changes, err := r.scrapeAndReconcile(ctx, v, months, opts.UseCache)
	if err != nil {
		r.log.Error("venue failed", "venue", v.Name, "error", err)
		metrics.VenueFailures.Inc()
		res.Error = err.Error()
		res.State = r.recordFailure(ctx, v)
		return res
	}

	res.Inserted = len(changes.Inserted)
	res.Updated = len(changes.Updated)
	res.Deleted = len(changes.Deleted)
	res.State = r.recordSuccess(ctx, v)

	r.log.Info("venue reconciled", "venue", v.Name,
		"inserted", res.Inserted, "updated", res.Updated, "deleted", res.Deleted)
	return res
}

// CoverageWindow is the span of calendar dates a run over the given number
// of months looks at: the first day of the current month through the last
// day of the final covered month.
func CoverageWindow(now time.Time, months int) event.Window {
	return event.Window{
		Start: venue.MonthStart(now, 0),
		End:   venue.MonthStart(now, months).AddDate(0, 0, -1),
	}
}

func (r *Runner) scrapeAndReconcile(ctx context.Context, v *venue.Venue, months int, useCache bool) (event.Changes, error) {
	var candidates []event.Candidate
	for offset := 0; offset < months; offset++ {
		page, err := r.fetcher.Page(ctx, v, offset, !useCache)
		if err != nil {
			return event.Changes{}, err
		}

		var cands []event.Candidate
		switch v.Strategy {
		case venue.StrategyScheduleAndDetail:
			cands, err = r.extractViaDetails(ctx, v, page.Text, useCache)
		default:
			cands, err = r.extractor.Extract(ctx, extract.Request{
				VenueName: v.Name,
				Hints:     v.Hints,
				PageText:  page.Text,
				Kind:      extract.KindSchedule,
			})
		}
		if err != nil {
			return event.Changes{}, err
		}
		candidates = append(candidates, cands...)
	}

	if v.DefaultImageURL != "" {
		for i := range candidates {
			if candidates[i].ImageURL == "" {
				candidates[i].ImageURL = v.DefaultImageURL
			}
		}
	}

	existing, err := r.store.ListEvents(ctx, v.ID)
	if err != nil {
		return event.Changes{}, fmt.Errorf("loading stored events: %w", err)
	}

	now := r.now()
	changes := event.Reconcile(v.ID, existing, candidates, CoverageWindow(now, months), now)

	if err := store.ApplyChanges(ctx, r.store, v.ID, changes); err != nil {
		return event.Changes{}, fmt.Errorf("applying changes: %w", err)
	}
	metrics.ReconcileOps.WithLabelValues("inserted").Add(float64(len(changes.Inserted)))
	metrics.ReconcileOps.WithLabelValues("updated").Add(float64(len(changes.Updated)))
	metrics.ReconcileOps.WithLabelValues("deleted").Add(float64(len(changes.Deleted)))
	return changes, nil
}

// extractViaDetails runs the two-step strategy: pull stubs off the schedule
// page, then enrich each stub from its detail page. A stub whose detail
// page cannot be fetched or read still enters reconciliation as-is, so a
// single broken detail page does not drop the event.
func (r *Runner) extractViaDetails(ctx context.Context, v *venue.Venue, scheduleText string, useCache bool) ([]event.Candidate, error) {
	stubs, err := r.extractor.Extract(ctx, extract.Request{
		VenueName: v.Name,
		Hints:     v.Hints,
		PageText:  scheduleText,
		Kind:      extract.KindStubs,
	})
	if err != nil {
		return nil, err
	}

	out := make([]event.Candidate, 0, len(stubs))
	for _, stub := range stubs {
		if stub.DetailURL == "" {
			out = append(out, stub)
			continue
		}
		page, err := r.fetcher.Detail(ctx, v, stub.DetailURL, !useCache)
		if err != nil {
			r.log.Warn("detail page fetch failed, keeping stub", "venue", v.Name, "url", stub.DetailURL, "error", err)
			out = append(out, stub)
			continue
		}
		detail, err := r.extractor.Extract(ctx, extract.Request{
			VenueName:     v.Name,
			Hints:         v.Hints,
			PageText:      page.Text,
			Kind:          extract.KindDetail,
			ExpectedTitle: stub.Title,
			ExpectedDate:  stub.Date,
		})
		if err != nil || len(detail) == 0 {
			r.log.Warn("detail page extraction failed, keeping stub", "venue", v.Name, "url", stub.DetailURL, "error", err)
			out = append(out, stub)
			continue
		}
		out = append(out, mergeStub(stub, pickDetail(detail, stub)))
	}
	return out, nil
}

// pickDetail chooses the detail-page candidate that matches the stub, or
// the first one when none match by title.
func pickDetail(cands []event.Candidate, stub event.Candidate) event.Candidate {
	if stub.Title != "" {
		want := event.TitleKey(stub.Title)
		for _, c := range cands {
			if event.TitleKey(c.Title) == want {
				return c
			}
		}
	}
	return cands[0]
}

// mergeStub overlays the richer detail-page record on the stub, keeping the
// stub's fields wherever the detail page did not provide one.
func mergeStub(stub, detail event.Candidate) event.Candidate {
	out := detail
	if out.Title == "" {
		out.Title = stub.Title
	}
	if out.Date == "" {
		out.Date = stub.Date
	}
	if out.DetailURL == "" {
		out.DetailURL = stub.DetailURL
	}
	return out
}

func (r *Runner) recordFailure(ctx context.Context, v *venue.Venue) venue.State {
	streak := v.FailStreak + 1
	if err := r.store.SetVenueFailStreak(ctx, v.ID, streak); err != nil {
		r.log.Error("recording fail streak", "venue", v.Name, "error", err)
	}
	if streak >= r.warnThreshold && v.State != venue.StateWarning {
		if err := r.store.SetVenueState(ctx, v.ID, venue.StateWarning); err != nil {
			r.log.Error("setting warning state", "venue", v.Name, "error", err)
		} else {
			r.log.Warn("venue flagged for review", "venue", v.Name, "streak", streak)
			return venue.StateWarning
		}
	}
	return v.State
}

func (r *Runner) recordSuccess(ctx context.Context, v *venue.Venue) venue.State {
	if v.FailStreak > 0 {
		if err := r.store.SetVenueFailStreak(ctx, v.ID, 0); err != nil {
			r.log.Error("resetting fail streak", "venue", v.Name, "error", err)
		}
	}
	if v.State == venue.StateWarning {
		if err := r.store.SetVenueState(ctx, v.ID, venue.StateConfigured); err != nil {
			r.log.Error("clearing warning state", "venue", v.Name, "error", err)
		} else {
			return venue.StateConfigured
		}
	}
	return v.State
}
