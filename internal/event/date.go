package event

import (
	"time"
)

// dateFormats are the calendar forms accepted from extraction output. The
// prompt asks for 2006-01-02; the slash variants cover the most common
// model drift.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
}

// ParseEventDate parses an extracted date string into a calendar date
// (midnight UTC). Returns the zero time if the string matches no accepted
// form; the caller drops that single candidate, not the batch.
func ParseEventDate(s string) time.Time {
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}
