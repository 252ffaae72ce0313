package fetch

import (
	"os"
	"strings"
	"testing"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/schedule.html")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return string(data)
}

func TestNormalize(t *testing.T) {
	html := loadFixture(t)

	text, err := Normalize(strings.NewReader(html), "https://clubx.example.com/schedule", "")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	t.Run("keeps schedule content", func(t *testing.T) {
		for _, want := range []string{
			"SCHEDULE 2025.06",
			"2025-06-10",
			"OPEN 18:00 / START 19:00",
			"前売 ¥3000 / 当日 ¥3500",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("normalized text missing %q\n%s", want, text)
			}
		}
	})

	t.Run("strips boilerplate", func(t *testing.T) {
		for _, gone := range []string{
			"window.tracker",
			"color: red",
			"ACCESS",
			"Copyright 2025",
			"PICK UP",
		} {
			if strings.Contains(text, gone) {
				t.Errorf("normalized text should not contain %q", gone)
			}
		}
	})

	t.Run("resolves relative links", func(t *testing.T) {
		if !strings.Contains(text, "[Live Night](https://clubx.example.com/events/live-night)") {
			t.Errorf("expected resolved detail link, got:\n%s", text)
		}
		if !strings.Contains(text, "[Midnight Special](https://other.example.com/midnight)") {
			t.Errorf("expected absolute link untouched, got:\n%s", text)
		}
	})

	t.Run("renders images", func(t *testing.T) {
		if !strings.Contains(text, "![Live Night flyer](https://clubx.example.com/img/flyer-0610.jpg)") {
			t.Errorf("expected image reference, got:\n%s", text)
		}
	})

	t.Run("no blank line runs", func(t *testing.T) {
		if strings.Contains(text, "\n\n\n") {
			t.Error("expected blank lines collapsed")
		}
	})
}

func TestNormalizeContentSelector(t *testing.T) {
	html := loadFixture(t)

	text, err := Normalize(strings.NewReader(html), "https://clubx.example.com/schedule", "#main .event")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if !strings.Contains(text, "Live Night") {
		t.Errorf("scoped text missing event content:\n%s", text)
	}
	if strings.Contains(text, "SCHEDULE 2025.06") {
		t.Errorf("scoped text should exclude the heading outside the selector:\n%s", text)
	}
	// An unmatched selector falls back to the whole page.
	text, err = Normalize(strings.NewReader(html), "https://clubx.example.com/schedule", "#no-such-region")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if !strings.Contains(text, "SCHEDULE 2025.06") {
		t.Error("unmatched selector should fall back to full page")
	}
}
