package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MiruVL/events/internal/event"
	"github.com/MiruVL/events/internal/venue"
)

const schema = `
CREATE TABLE IF NOT EXISTS venues (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	schedule_url      TEXT NOT NULL,
	strategy          TEXT NOT NULL,
	hints             TEXT NOT NULL DEFAULT '',
	default_image_url TEXT NOT NULL DEFAULT '',
	render_mode       TEXT NOT NULL,
	next_month_sel    TEXT NOT NULL DEFAULT '',
	content_sel       TEXT NOT NULL DEFAULT '',
	state             TEXT NOT NULL,
	fail_streak       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	venue_id   TEXT NOT NULL,
	title      TEXT NOT NULL,
	date       TEXT NOT NULL,
	time_open  TEXT NOT NULL DEFAULT '',
	time_start TEXT NOT NULL DEFAULT '',
	price      INTEGER,
	price_text TEXT NOT NULL DEFAULT '',
	artists    TEXT NOT NULL DEFAULT '[]',
	image_url  TEXT NOT NULL DEFAULT '',
	detail_url TEXT NOT NULL DEFAULT '',
	scraped_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_venue_date ON events(venue_id, date);
`

// SQLStore persists venues and events in a SQLite database. Dates are
// stored as YYYY-MM-DD text so index order matches calendar order.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// OpenSQL opens (and if needed creates) the database at path. Use
// ":memory:" for an ephemeral store.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent venue workers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) UpsertVenue(ctx context.Context, v *venue.Venue) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO venues (id, name, schedule_url, strategy, hints, default_image_url,
			render_mode, next_month_sel, content_sel, state, fail_streak)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			schedule_url = excluded.schedule_url,
			strategy = excluded.strategy,
			hints = excluded.hints,
			default_image_url = excluded.default_image_url,
			render_mode = excluded.render_mode,
			next_month_sel = excluded.next_month_sel,
			content_sel = excluded.content_sel`,
		v.ID, v.Name, v.ScheduleURL, string(v.Strategy), v.Hints, v.DefaultImageURL,
		string(v.RenderMode), v.NextMonthSel, v.ContentSel, string(v.State), v.FailStreak)
	if err != nil {
		return fmt.Errorf("upserting venue %s: %w", v.ID, err)
	}
	return nil
}

func (s *SQLStore) GetVenue(ctx context.Context, id string) (*venue.Venue, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, schedule_url, strategy, hints, default_image_url,
			render_mode, next_month_sel, content_sel, state, fail_streak
		FROM venues WHERE id = ?`, id)
	v, err := scanVenue(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading venue %s: %w", id, err)
	}
	return v, nil
}

func (s *SQLStore) ListVenues(ctx context.Context) ([]*venue.Venue, error) {
	return s.FindVenues(ctx, "")
}

func (s *SQLStore) FindVenues(ctx context.Context, nameFragment string) ([]*venue.Venue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, schedule_url, strategy, hints, default_image_url,
			render_mode, next_month_sel, content_sel, state, fail_streak
		FROM venues
		WHERE instr(lower(name), lower(?)) > 0 OR ? = ''
		ORDER BY name`, nameFragment, nameFragment)
	if err != nil {
		return nil, fmt.Errorf("querying venues: %w", err)
	}
	defer rows.Close()

	var out []*venue.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning venue: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) SetVenueState(ctx context.Context, id string, state venue.State) error {
	return s.updateVenueField(ctx, id, "state", string(state))
}

func (s *SQLStore) SetVenueFailStreak(ctx context.Context, id string, streak int) error {
	return s.updateVenueField(ctx, id, "fail_streak", streak)
}

func (s *SQLStore) updateVenueField(ctx context.Context, id, column string, value any) error {
	res, err := s.db.ExecContext(ctx, `UPDATE venues SET `+column+` = ? WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("updating venue %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListEvents(ctx context.Context, venueID string) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, venue_id, title, date, time_open, time_start, price,
			price_text, artists, image_url, detail_url, scraped_at
		FROM events WHERE venue_id = ? ORDER BY date, title`, venueID)
	if err != nil {
		return nil, fmt.Errorf("querying events for %s: %w", venueID, err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var (
			ev           event.Event
			price        sql.NullInt64
			dateStr      string
			artistsJSON  string
			scrapedAtStr string
		)
		if err := rows.Scan(&ev.ID, &ev.VenueID, &ev.Title, &dateStr, &ev.TimeOpen,
			&ev.TimeStart, &price, &ev.PriceText, &artistsJSON, &ev.ImageURL,
			&ev.DetailURL, &scrapedAtStr); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if ev.Date, err = time.ParseInLocation("2006-01-02", dateStr, time.UTC); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", dateStr, err)
		}
		if ev.ScrapedAt, err = time.Parse(time.RFC3339, scrapedAtStr); err != nil {
			return nil, fmt.Errorf("stored scraped_at %q: %w", scrapedAtStr, err)
		}
		if price.Valid {
			p := int(price.Int64)
			ev.Price = &p
		}
		if artistsJSON != "" && artistsJSON != "[]" {
			if err := json.Unmarshal([]byte(artistsJSON), &ev.Artists); err != nil {
				return nil, fmt.Errorf("stored artists %q: %w", artistsJSON, err)
			}
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertEvent(ctx context.Context, ev *event.Event) error {
	ev.ID = newID()
	price, artists, err := encodeEventFields(*ev)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, venue_id, title, date, time_open, time_start,
			price, price_text, artists, image_url, detail_url, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.VenueID, ev.Title, ev.Date.Format("2006-01-02"), ev.TimeOpen,
		ev.TimeStart, price, ev.PriceText, artists, ev.ImageURL, ev.DetailURL,
		ev.ScrapedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting event %q: %w", ev.Title, err)
	}
	return nil
}

func (s *SQLStore) UpdateEvent(ctx context.Context, ev event.Event) error {
	price, artists, err := encodeEventFields(ev)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, date = ?, time_open = ?, time_start = ?,
			price = ?, price_text = ?, artists = ?, image_url = ?,
			detail_url = ?, scraped_at = ?
		WHERE id = ? AND venue_id = ?`,
		ev.Title, ev.Date.Format("2006-01-02"), ev.TimeOpen, ev.TimeStart,
		price, ev.PriceText, artists, ev.ImageURL, ev.DetailURL,
		ev.ScrapedAt.UTC().Format(time.RFC3339), ev.ID, ev.VenueID)
	if err != nil {
		return fmt.Errorf("updating event %s: %w", ev.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteEvent(ctx context.Context, venueID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND venue_id = ?`, id, venueID)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeEventFields(ev event.Event) (price sql.NullInt64, artists string, err error) {
	if ev.Price != nil {
		price = sql.NullInt64{Int64: int64(*ev.Price), Valid: true}
	}
	if len(ev.Artists) == 0 {
		return price, "[]", nil
	}
	buf, err := json.Marshal(ev.Artists)
	if err != nil {
		return price, "", fmt.Errorf("encoding artists: %w", err)
	}
	return price, string(buf), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*venue.Venue, error) {
	var v venue.Venue
	err := row.Scan(&v.ID, &v.Name, &v.ScheduleURL, &v.Strategy, &v.Hints,
		&v.DefaultImageURL, &v.RenderMode, &v.NextMonthSel, &v.ContentSel,
		&v.State, &v.FailStreak)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
