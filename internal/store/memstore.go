package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/MiruVL/events/internal/event"
	"github.com/MiruVL/events/internal/venue"
)

// MemStore keeps everything in maps. It exists for tests and dry runs.
type MemStore struct {
	mu     sync.Mutex
	venues map[string]*venue.Venue
	events map[string]map[string]event.Event // venueID -> eventID -> event
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		venues: make(map[string]*venue.Venue),
		events: make(map[string]map[string]event.Event),
	}
}

func (s *MemStore) UpsertVenue(_ context.Context, v *venue.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *v
	if existing, ok := s.venues[v.ID]; ok {
		cp.State = existing.State
		cp.FailStreak = existing.FailStreak
	}
	s.venues[v.ID] = &cp
	return nil
}

func (s *MemStore) GetVenue(_ context.Context, id string) (*venue.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.venues[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *MemStore) ListVenues(ctx context.Context) ([]*venue.Venue, error) {
	return s.FindVenues(ctx, "")
}

func (s *MemStore) FindVenues(_ context.Context, nameFragment string) ([]*venue.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frag := strings.ToLower(nameFragment)
	var out []*venue.Venue
	for _, v := range s.venues {
		if frag != "" && !strings.Contains(strings.ToLower(v.Name), frag) {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *venue.Venue) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *MemStore) SetVenueState(_ context.Context, id string, state venue.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.venues[id]
	if !ok {
		return ErrNotFound
	}
	v.State = state
	return nil
}

func (s *MemStore) SetVenueFailStreak(_ context.Context, id string, streak int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.venues[id]
	if !ok {
		return ErrNotFound
	}
	v.FailStreak = streak
	return nil
}

func (s *MemStore) ListEvents(_ context.Context, venueID string) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]event.Event, 0, len(s.events[venueID]))
	for _, ev := range s.events[venueID] {
		ev.Artists = slices.Clone(ev.Artists)
		out = append(out, ev)
	}
	slices.SortFunc(out, func(a, b event.Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func (s *MemStore) InsertEvent(_ context.Context, ev *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.ID = newID()
	if s.events[ev.VenueID] == nil {
		s.events[ev.VenueID] = make(map[string]event.Event)
	}
	cp := *ev
	cp.Artists = slices.Clone(ev.Artists)
	s.events[ev.VenueID][ev.ID] = cp
	return nil
}

func (s *MemStore) UpdateEvent(_ context.Context, ev event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[ev.VenueID][ev.ID]; !ok {
		return ErrNotFound
	}
	ev.Artists = slices.Clone(ev.Artists)
	s.events[ev.VenueID][ev.ID] = ev
	return nil
}

func (s *MemStore) DeleteEvent(_ context.Context, venueID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[venueID][id]; !ok {
		return ErrNotFound
	}
	delete(s.events[venueID], id)
	return nil
}

func (s *MemStore) Close() error { return nil }
