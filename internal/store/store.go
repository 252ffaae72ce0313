// Package store persists venues and events. Two implementations exist: a
// SQLite store for real runs and an in-memory store for tests.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/MiruVL/events/internal/event"
	"github.com/MiruVL/events/internal/venue"
)

// ErrNotFound is returned when a venue or event does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary of the pipeline.
type Store interface {
	// UpsertVenue inserts a venue or replaces its configuration. The
	// operational fields (State, FailStreak) of an existing venue are
	// preserved so a config re-import does not reset them.
	UpsertVenue(ctx context.Context, v *venue.Venue) error
	GetVenue(ctx context.Context, id string) (*venue.Venue, error)
	ListVenues(ctx context.Context) ([]*venue.Venue, error)
	// FindVenues returns venues whose name contains the fragment,
	// case-insensitively. An empty fragment matches everything.
	FindVenues(ctx context.Context, nameFragment string) ([]*venue.Venue, error)
	SetVenueState(ctx context.Context, id string, state venue.State) error
	SetVenueFailStreak(ctx context.Context, id string, streak int) error

	// ListEvents returns a venue's events ordered by date then title.
	ListEvents(ctx context.Context, venueID string) ([]event.Event, error)
	// InsertEvent assigns ev.ID and persists the event.
	InsertEvent(ctx context.Context, ev *event.Event) error
	UpdateEvent(ctx context.Context, ev event.Event) error
	DeleteEvent(ctx context.Context, venueID, id string) error

	Close() error
}

// ApplyChanges writes one venue's reconciliation outcome. It stops at the
// first error so a failed write does not leave later operations applied
// ahead of earlier ones.
func ApplyChanges(ctx context.Context, s Store, venueID string, ch event.Changes) error {
	for i := range ch.Inserted {
		if err := s.InsertEvent(ctx, &ch.Inserted[i]); err != nil {
			return err
		}
	}
	for _, ev := range ch.Updated {
		if err := s.UpdateEvent(ctx, ev); err != nil {
			return err
		}
	}
	for _, id := range ch.Deleted {
		if err := s.DeleteEvent(ctx, venueID, id); err != nil {
			return err
		}
	}
	return nil
}

func newID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
