package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MiruVL/events/internal/logging"
	"github.com/MiruVL/events/internal/metrics"
	"github.com/MiruVL/events/internal/venue"
)

// Fetcher retrieves pages through the cache discipline: on a cache hit the
// stored rendering is returned as-is; otherwise the page is rendered live
// and the result written back before returning.
type Fetcher struct {
	cache   Cache
	static  Renderer
	browser Renderer
	log     *slog.Logger
	now     func() time.Time
}

// New wires a fetcher. Either renderer may be nil when a deployment never
// uses that mode; selecting a nil renderer is a fetch error, not a panic.
func New(cache Cache, static, browser Renderer) *Fetcher {
	return &Fetcher{
		cache:   cache,
		static:  static,
		browser: browser,
		log:     logging.New("fetch"),
		now:     time.Now,
	}
}

// WithClock overrides the fetcher's notion of now. Test hook.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Page fetches the venue's schedule page for the given month offset.
// Templated schedule URLs address the month directly; untemplated venues
// with a next-month selector use browser navigation instead, and the offset
// becomes part of the render request.
func (f *Fetcher) Page(ctx context.Context, v *venue.Venue, offset int, force bool) (*Entry, error) {
	target := venue.ResolveScheduleURL(v.ScheduleURL, venue.MonthStart(f.now(), offset))

	req := RenderRequest{URL: target, ContentSel: v.ContentSel}
	if !v.Templated() && v.NextMonthSel != "" {
		req.MonthOffset = offset
		req.NextMonthSel = v.NextMonthSel
	}

	return f.fetch(ctx, v, Key{URL: target, MonthOffset: req.MonthOffset}, req, force)
}

// Detail fetches an event detail page under the same caching discipline.
// Detail pages have no month dimension; their key offset is always zero.
func (f *Fetcher) Detail(ctx context.Context, v *venue.Venue, url string, force bool) (*Entry, error) {
	req := RenderRequest{URL: url}
	return f.fetch(ctx, v, Key{URL: url}, req, force)
}

func (f *Fetcher) fetch(ctx context.Context, v *venue.Venue, key Key, req RenderRequest, force bool) (*Entry, error) {
	if !force {
		entry, ok, err := f.cache.Get(key)
		if err != nil {
			f.log.Warn("cache read failed, fetching live", "url", key.URL, "error", err)
		} else if ok {
			metrics.PageFetches.WithLabelValues("cache", "ok").Inc()
			f.log.Debug("cache hit", "venue", v.Name, "url", key.URL, "offset", key.MonthOffset)
			return entry, nil
		}
	}

	renderer := f.static
	if v.RenderMode == venue.RenderBrowser {
		renderer = f.browser
	}
	if renderer == nil {
		return nil, &FetchError{Venue: v.Name, URL: key.URL, Err: errors.New("no renderer configured for mode " + string(v.RenderMode))}
	}

	f.log.Info("fetching", "venue", v.Name, "url", key.URL, "offset", key.MonthOffset, "mode", v.RenderMode)
	text, err := renderer.Render(ctx, req)
	if err != nil {
		metrics.PageFetches.WithLabelValues("live", "error").Inc()
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.Venue = v.Name
			return nil, fe
		}
		return nil, &FetchError{Venue: v.Name, URL: key.URL, Err: err}
	}
	metrics.PageFetches.WithLabelValues("live", "ok").Inc()

	entry := &Entry{Text: text, FetchedAt: f.now()}
	if err := f.cache.Put(key, entry); err != nil {
		f.log.Warn("cache write failed", "url", key.URL, "error", err)
	}
	return entry, nil
}
