package event

import (
	"slices"
	"time"
)

// Window is the set of calendar dates a pipeline run attempted to cover.
// Only existing events dated inside the window are eligible for deletion;
// dates the run never looked at are protected.
type Window struct {
	Start time.Time // first covered date, inclusive
	End   time.Time // last covered date, inclusive
}

// Contains reports whether the calendar date d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Changes is the outcome of reconciling candidates against stored events.
type Changes struct {
	Inserted []Event  // new events, IDs assigned by the store on apply
	Updated  []Event  // existing events with refreshed mutable fields
	Deleted  []string // IDs of events no longer sighted on the source
}

// Empty reports whether the reconciliation produced no changes.
func (c Changes) Empty() bool {
	return len(c.Inserted) == 0 && len(c.Updated) == 0 && len(c.Deleted) == 0
}

// Reconcile merges freshly extracted candidates into a venue's stored events.
//
// Two records represent the same real-world event when they share a calendar
// date and their titles are equal under case/whitespace-insensitive
// comparison. A matched candidate updates the stored event's mutable fields
// in place, preserving its identity. An unmatched candidate is inserted.
// An existing event inside the coverage window that no candidate sighted is
// deleted, unless its date has already passed relative to now, in which
// case it is kept as history. Candidates whose dates cannot be normalized
// are dropped individually.
func Reconcile(venueID string, existing []Event, candidates []Candidate, window Window, now time.Time) Changes {
	var changes Changes

	byKey := make(map[string]*Event, len(existing))
	for i := range existing {
		key := matchKey(existing[i].Date, existing[i].Title)
		if _, dup := byKey[key]; !dup {
			byKey[key] = &existing[i]
		}
	}

	sighted := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		date := ParseEventDate(cand.Date)
		if date.IsZero() || TitleKey(cand.Title) == "" {
			continue
		}

		key := matchKey(date, cand.Title)
		if sighted[key] {
			// Same occurrence extracted twice in one run (e.g. a schedule
			// page overlapping two fetched months); first sighting wins.
			continue
		}
		sighted[key] = true

		if current, ok := byKey[key]; ok {
			if updated, changed := applyCandidate(*current, cand, now); changed {
				changes.Updated = append(changes.Updated, updated)
			}
			continue
		}

		changes.Inserted = append(changes.Inserted, Event{
			VenueID:   venueID,
			Title:     cand.Title,
			Date:      date,
			TimeOpen:  cand.TimeOpen,
			TimeStart: cand.TimeStart,
			Price:     cand.Price,
			PriceText: cand.PriceText,
			Artists:   cand.Artists,
			ImageURL:  cand.ImageURL,
			DetailURL: cand.DetailURL,
			ScrapedAt: now,
		})
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := range existing {
		ev := &existing[i]
		key := matchKey(ev.Date, ev.Title)
		if sighted[key] {
			continue
		}
		if !window.Contains(ev.Date) {
			continue
		}
		if ev.Date.Before(today) {
			// Past events are history: absence on a later run cannot
			// retroactively cancel them.
			continue
		}
		changes.Deleted = append(changes.Deleted, ev.ID)
	}

	return changes
}

// applyCandidate copies the candidate's mutable fields onto the stored
// event, reporting whether anything actually changed. Identity fields
// (ID, venue, title, date) are never touched.
func applyCandidate(current Event, cand Candidate, now time.Time) (Event, bool) {
	updated := current
	updated.TimeOpen = cand.TimeOpen
	updated.TimeStart = cand.TimeStart
	updated.Price = cand.Price
	updated.PriceText = cand.PriceText
	updated.Artists = cand.Artists
	updated.ImageURL = cand.ImageURL
	updated.DetailURL = cand.DetailURL

	if mutableEqual(current, updated) {
		return current, false
	}
	updated.ScrapedAt = now
	return updated, true
}

func mutableEqual(a, b Event) bool {
	return a.TimeOpen == b.TimeOpen &&
		a.TimeStart == b.TimeStart &&
		intPtrEqual(a.Price, b.Price) &&
		a.PriceText == b.PriceText &&
		slices.Equal(a.Artists, b.Artists) &&
		a.ImageURL == b.ImageURL &&
		a.DetailURL == b.DetailURL
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
