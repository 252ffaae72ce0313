package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/MiruVL/events/internal/event"
	"github.com/MiruVL/events/internal/logging"
	"github.com/MiruVL/events/internal/metrics"
)

// Extractor turns normalized page text into candidate event records.
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]event.Candidate, error)
}

// LLMExtractor asks a language model to read the page. It retries a parse
// failure once with a stricter instruction before giving up.
type LLMExtractor struct {
	client *Client
	log    *slog.Logger
}

func NewLLMExtractor(client *Client) *LLMExtractor {
	return &LLMExtractor{
		client: client,
		log:    logging.New("extract"),
	}
}

func (e *LLMExtractor) Extract(ctx context.Context, req Request) ([]event.Candidate, error) {
	start := time.Now()
	cands, attempts, err := e.extract(ctx, req)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExtractionCalls.WithLabelValues("error").Inc()
		return nil, &ExtractionError{Venue: req.VenueName, Attempts: attempts, Err: err}
	}
	metrics.ExtractionCalls.WithLabelValues("ok").Inc()
	return cands, nil
}

func (e *LLMExtractor) extract(ctx context.Context, req Request) ([]event.Candidate, int, error) {
	system := systemPrompt(req.Kind)
	user := userPrompt(req)

	raw, err := e.client.Complete(ctx, system, user)
	if err != nil {
		return nil, 1, err
	}
	cands, parseErr := parseCandidates(raw)
	if parseErr == nil {
		return normalize(cands), 1, nil
	}

	e.log.Warn("unparseable model output, retrying strictly",
		"venue", req.VenueName,
		"error", parseErr,
		"response", truncate(raw, 200))

	raw, err = e.client.Complete(ctx, system+strictRetry, user)
	if err != nil {
		return nil, 2, err
	}
	cands, parseErr = parseCandidates(raw)
	if parseErr != nil {
		return nil, 2, parseErr
	}
	return normalize(cands), 2, nil
}

// normalize trims titles, drops records without one, and derives a numeric
// price from price text when the model returned only the text form.
func normalize(cands []event.Candidate) []event.Candidate {
	out := make([]event.Candidate, 0, len(cands))
	for _, c := range cands {
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			continue
		}
		c.Date = strings.TrimSpace(c.Date)
		if c.Price == nil && c.PriceText != "" {
			c.Price = event.ParsePrice(c.PriceText)
		}
		for i, a := range c.Artists {
			c.Artists[i] = strings.TrimSpace(a)
		}
		out = append(out, c)
	}
	return out
}
