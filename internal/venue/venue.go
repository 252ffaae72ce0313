// Package venue defines the venue registry model: which schedule pages are
// scraped, how they are rendered, and the per-venue extraction strategy.
package venue

import (
	"fmt"
	"strings"
	"time"
)

// Strategy selects how events are extracted for a venue.
type Strategy string

const (
	// StrategyScheduleOnly extracts events from the schedule page alone.
	StrategyScheduleOnly Strategy = "schedule_only"
	// StrategyScheduleAndDetail extracts event stubs from the schedule page,
	// then fetches each stub's detail page for the full record.
	StrategyScheduleAndDetail Strategy = "schedule_and_detail"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyScheduleOnly || s == StrategyScheduleAndDetail
}

// State is the operational lifecycle state of a venue.
type State string

const (
	StateNew        State = "new"        // added but not yet configured for scraping
	StateConfigured State = "configured" // active
	StateDisabled   State = "disabled"   // excluded from scraping by an operator
	StateWarning    State = "warning"    // flagged after repeated extraction failures
)

// RenderMode selects how a venue's pages are turned into text.
type RenderMode string

const (
	// RenderStatic fetches the page over plain HTTP and normalizes the HTML.
	RenderStatic RenderMode = "static"
	// RenderBrowser renders the page in a headless browser, required for
	// JavaScript-built schedules and client-side month navigation.
	RenderBrowser RenderMode = "browser"
)

// Venue is a registered event venue with its scraping configuration.
type Venue struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// ScheduleURL may contain {year}, {month}, and {month:02} placeholders
	// for venues whose schedule pages are addressed per month.
	ScheduleURL string   `yaml:"schedule_url" json:"schedule_url"`
	Strategy    Strategy `yaml:"strategy" json:"strategy"`

	// Hints is free-text guidance included in extraction prompts,
	// e.g. "prices are listed as ADV/DOOR pairs".
	Hints string `yaml:"hints,omitempty" json:"hints,omitempty"`

	// DefaultImageURL is used for events without their own flyer image.
	DefaultImageURL string `yaml:"default_image_url,omitempty" json:"default_image_url,omitempty"`

	RenderMode RenderMode `yaml:"render_mode,omitempty" json:"render_mode,omitempty"`

	// NextMonthSel is the CSS selector of the schedule page's forward month
	// navigation control, clicked once per month offset in browser mode.
	NextMonthSel string `yaml:"next_month_selector,omitempty" json:"next_month_selector,omitempty"`

	// ContentSel optionally scopes extraction input to one page region.
	ContentSel string `yaml:"content_selector,omitempty" json:"content_selector,omitempty"`

	State      State `yaml:"state,omitempty" json:"state"`
	FailStreak int   `yaml:"-" json:"fail_streak"`
}

// Validate checks the fields required before a venue can be scraped.
func (v *Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return fmt.Errorf("venue has no name")
	}
	// IDs key the store; an empty one would collide every venue onto the
	// same row.
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("venue %q has no id", v.Name)
	}
	if strings.TrimSpace(v.ScheduleURL) == "" {
		return fmt.Errorf("venue %q has no schedule_url", v.Name)
	}
	if !v.Strategy.Valid() {
		return fmt.Errorf("venue %q has unknown strategy %q", v.Name, v.Strategy)
	}
	if v.RenderMode != "" && v.RenderMode != RenderStatic && v.RenderMode != RenderBrowser {
		return fmt.Errorf("venue %q has unknown render_mode %q", v.Name, v.RenderMode)
	}
	return nil
}

// Scrapable reports whether the pipeline should process this venue.
// Warning venues stay in the working set so a later clean run can clear them.
func (v *Venue) Scrapable() bool {
	return v.State == StateConfigured || v.State == StateWarning
}

// Templated reports whether the schedule URL addresses months directly.
func (v *Venue) Templated() bool {
	return strings.Contains(v.ScheduleURL, "{")
}

// MonthStart returns the first day of the month `offset` months after t,
// at midnight UTC. Month arithmetic is anchored to day 1 so offsets near
// month ends cannot spill over.
func MonthStart(t time.Time, offset int) time.Time {
	y, m := t.Year(), int(t.Month())
	m += offset
	for m > 12 {
		y++
		m -= 12
	}
	for m < 1 {
		y--
		m += 12
	}
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

// ResolveScheduleURL substitutes {year}, {month}, and {month:02} in template
// for the given time. An untemplated URL is returned unchanged.
func ResolveScheduleURL(template string, t time.Time) string {
	if !strings.Contains(template, "{") {
		return template
	}
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%d", t.Year()),
		"{month:02}", fmt.Sprintf("%02d", int(t.Month())),
		"{month}", fmt.Sprintf("%d", int(t.Month())),
	)
	return r.Replace(template)
}
