package extract

import (
	"fmt"
	"strings"
)

// PageKind selects which extraction prompt is used.
type PageKind string

const (
	// KindSchedule extracts full event records from a schedule page.
	KindSchedule PageKind = "schedule"
	// KindDetail extracts the main event(s) from a single detail page.
	KindDetail PageKind = "detail"
	// KindStubs extracts provisional title/date/detail-link stubs from a
	// schedule page, for the schedule_and_detail strategy.
	KindStubs PageKind = "stubs"
)

const schemaDescription = `For each event, output an object with exactly these fields:
- "title": event/show name (string, required)
- "date": date in YYYY-MM-DD format (string, required)
- "time_open": door open time in HH:MM format, or null
- "time_start": show start time in HH:MM format, or null
- "price": advance ticket price in yen as an integer, or null if not stated
- "price_text": the price text exactly as written on the page, or null
- "artists": array of performer names (may be empty)
- "image_url": absolute URL of the event flyer image, or null
- "detail_url": absolute URL of the event detail page, or null

Rules:
- Convert Japanese date forms (e.g. 6月10日(火)) to YYYY-MM-DD, using the page's year context.
- The integer price is the advance/pre-sale (前売) amount. Never invent a number; use null when unclear.
- Split artist listings on common separators (/, ・, ,, and).
- Use null for missing fields, not empty strings.
- Output ONLY the JSON array. No explanation, no markdown fences.`

const schedulePrompt = `You are a data extraction assistant. You extract live event information from a venue's schedule page.

Extract ALL events from the main schedule section into a JSON array. The main schedule is the primary list or calendar carrying the most events and detail, usually under a heading like "SCHEDULE" or the month name.

Do NOT extract from featured/pickup boxes, sidebars, ads, or "other venues" sections.

` + schemaDescription

const detailPrompt = `You are a data extraction assistant. You extract live event information from a single event detail page.

Extract the event(s) that are the main subject of this page into a JSON array. Ignore related-event sidebars, teasers, and ads. If an expected title or date is given, the page is about that event; include what matches.

` + schemaDescription

const stubsPrompt = `You are a data extraction assistant. You extract event detail page links from a venue's schedule page.

Find every link in the main schedule that points to an individual event's detail page, and output a JSON array of objects:
- "title": the event title shown next to the link, or null
- "date": the event date in YYYY-MM-DD form if visible, or null
- "detail_url": the absolute URL of the detail page (required)

Do NOT include month navigation, archive, ticket shop, social media, or external links. Output ONLY the JSON array. No explanation, no markdown fences.`

// strictRetry is appended to the system prompt when the first response
// could not be parsed as the schema.
const strictRetry = `

IMPORTANT: Your previous answer was not valid JSON. Respond with NOTHING but a syntactically valid JSON array matching the schema. No prose, no code fences, no trailing commas.`

func systemPrompt(kind PageKind) string {
	switch kind {
	case KindDetail:
		return detailPrompt
	case KindStubs:
		return stubsPrompt
	default:
		return schedulePrompt
	}
}

// Request carries one extraction call's input.
type Request struct {
	VenueName string
	Hints     string
	PageText  string
	Kind      PageKind

	// ExpectedTitle and ExpectedDate pin detail-page extraction to the
	// stub that led there.
	ExpectedTitle string
	ExpectedDate  string
}

func userPrompt(req Request) string {
	var b strings.Builder

	switch req.Kind {
	case KindDetail:
		fmt.Fprintf(&b, "Extract the main event(s) from this detail page for venue: %s\n", req.VenueName)
		if req.ExpectedTitle != "" {
			fmt.Fprintf(&b, "Expected event title: %s\n", req.ExpectedTitle)
		}
		if req.ExpectedDate != "" {
			fmt.Fprintf(&b, "Expected date: %s\n", req.ExpectedDate)
		}
	case KindStubs:
		fmt.Fprintf(&b, "Extract all event detail page links from the schedule for venue: %s\n", req.VenueName)
	default:
		fmt.Fprintf(&b, "Extract all events from the main schedule section for venue: %s\n", req.VenueName)
	}

	if req.Hints != "" {
		fmt.Fprintf(&b, "\nVenue-specific notes: %s\n", req.Hints)
	}

	fmt.Fprintf(&b, "\nPage content:\n\n%s", req.PageText)
	return b.String()
}
