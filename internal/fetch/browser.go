package fetch

import (
	"context"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserRenderer renders pages in a headless browser. Required for venues
// whose schedules are built by JavaScript or paged by client-side month
// navigation. Navigation is forward-only: recovering an arbitrary month
// directly is not reliable, so each month offset is a fresh load followed by
// offset clicks on the venue's next-month control.
type BrowserRenderer struct {
	timeout   time.Duration
	navPause  time.Duration
	loadPause time.Duration
}

// NewBrowserRenderer creates a renderer with the given per-page timeout.
func NewBrowserRenderer(timeout time.Duration) *BrowserRenderer {
	if timeout <= 0 {
		timeout = 2 * DefaultTimeout
	}
	return &BrowserRenderer{
		timeout:   timeout,
		navPause:  500 * time.Millisecond,
		loadPause: time.Second,
	}
}

func (r *BrowserRenderer) Render(ctx context.Context, req RenderRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	tasks := chromedp.Tasks{
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.loadPause),
	}
	if req.MonthOffset > 0 && req.NextMonthSel != "" {
		for i := 0; i < req.MonthOffset; i++ {
			tasks = append(tasks,
				chromedp.Click(req.NextMonthSel, chromedp.ByQuery),
				chromedp.Sleep(r.navPause),
			)
		}
	}

	var pageHTML string
	tasks = append(tasks, chromedp.OuterHTML("html", &pageHTML, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return "", &FetchError{URL: req.URL, Err: err}
	}

	text, err := Normalize(strings.NewReader(pageHTML), req.URL, req.ContentSel)
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: err}
	}
	return text, nil
}
