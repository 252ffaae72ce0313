package event

import (
	"strings"
	"time"
)

// Event is a stored event at a venue. Its ID is assigned by the store on
// first insertion and never changes while later runs keep sighting the same
// real-world event, so external references stay valid.
type Event struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venue_id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"` // calendar date, midnight UTC
	TimeOpen  string    `json:"time_open,omitempty"`
	TimeStart string    `json:"time_start,omitempty"`
	Price     *int      `json:"price,omitempty"` // advance price in yen
	PriceText string    `json:"price_text,omitempty"`
	Artists   []string  `json:"artists,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	DetailURL string    `json:"detail_url,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Candidate is an extracted, not-yet-persisted event record. Dates arrive as
// strings because the language model emits them; Validate normalizes them.
type Candidate struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	TimeOpen  string   `json:"time_open,omitempty"`
	TimeStart string   `json:"time_start,omitempty"`
	Price     *int     `json:"price,omitempty"`
	PriceText string   `json:"price_text,omitempty"`
	Artists   []string `json:"artists,omitempty"`
	ImageURL  string   `json:"image_url,omitempty"`
	DetailURL string   `json:"detail_url,omitempty"`
}

// TitleKey normalizes a title for identity comparison: lower-cased with all
// runs of whitespace collapsed to a single space.
func TitleKey(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// matchKey identifies "the same real-world event" within one venue.
func matchKey(date time.Time, title string) string {
	return date.Format("2006-01-02") + "|" + TitleKey(title)
}
