package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// UserAgent identifies the scraper to venue sites.
	UserAgent = "events-pipeline/1.0 (github.com/MiruVL/events)"

	DefaultTimeout = 30 * time.Second
)

// RenderRequest describes one page rendering.
type RenderRequest struct {
	URL string

	// MonthOffset and NextMonthSel drive client-side month navigation in
	// the browser renderer: the selector is clicked MonthOffset times after
	// the initial load. Ignored by the static renderer.
	MonthOffset  int
	NextMonthSel string

	// ContentSel optionally scopes the normalized output.
	ContentSel string
}

// Renderer turns a page into normalized text.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}

// StaticRenderer fetches pages over plain HTTP. Sufficient for venues whose
// schedules are server-rendered.
type StaticRenderer struct {
	client *http.Client
}

// NewStaticRenderer creates a renderer with the given request timeout.
func NewStaticRenderer(timeout time.Duration) *StaticRenderer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StaticRenderer{
		client: &http.Client{Timeout: timeout},
	}
}

func (r *StaticRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("User-Agent", UserAgent)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: req.URL, Status: resp.StatusCode}
	}

	text, err := Normalize(resp.Body, req.URL, req.ContentSel)
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: err}
	}
	return text, nil
}
