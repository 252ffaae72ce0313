package venue

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveScheduleURL(t *testing.T) {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"untemplated", "https://example.com/schedule", "https://example.com/schedule"},
		{"year and month", "https://example.com/{year}/{month}/", "https://example.com/2026/2/"},
		{"padded month", "https://example.com/schedule?ym={year}{month:02}", "https://example.com/schedule?ym=202602"},
		{"month twice", "https://example.com/{month:02}/{month}", "https://example.com/02/2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveScheduleURL(tt.template, at)
			if got != tt.want {
				t.Errorf("ResolveScheduleURL(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	tests := []struct {
		name   string
		from   time.Time
		offset int
		want   time.Time
	}{
		{
			"zero offset",
			time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
			0,
			time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"next month",
			time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"year rollover",
			time.Date(2025, 11, 30, 23, 0, 0, 0, time.UTC),
			2,
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"month end no spill",
			time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			1,
			time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthStart(tt.from, tt.offset)
			if !got.Equal(tt.want) {
				t.Errorf("MonthStart(%v, %d) = %v, want %v", tt.from, tt.offset, got, tt.want)
			}
		})
	}
}

func TestVenueValidate(t *testing.T) {
	valid := Venue{
		ID:          "club-x",
		Name:        "Club X",
		ScheduleURL: "https://clubx.example.com/schedule",
		Strategy:    StrategyScheduleOnly,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid venue rejected: %v", err)
	}

	t.Run("missing id", func(t *testing.T) {
		v := valid
		v.ID = " "
		if err := v.Validate(); err == nil {
			t.Error("expected error for missing id")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		v := valid
		v.Name = "  "
		if err := v.Validate(); err == nil {
			t.Error("expected error for missing name")
		}
	})

	t.Run("missing schedule URL", func(t *testing.T) {
		v := valid
		v.ScheduleURL = ""
		if err := v.Validate(); err == nil {
			t.Error("expected error for missing schedule_url")
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		v := valid
		v.Strategy = "scrape_everything"
		if err := v.Validate(); err == nil {
			t.Error("expected error for unknown strategy")
		}
	})

	t.Run("unknown render mode", func(t *testing.T) {
		v := valid
		v.RenderMode = "puppeteer"
		if err := v.Validate(); err == nil {
			t.Error("expected error for unknown render_mode")
		}
	})
}

func TestScrapable(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateNew, false},
		{StateConfigured, true},
		{StateDisabled, false},
		{StateWarning, true},
	}

	for _, tt := range tests {
		v := Venue{State: tt.state}
		if got := v.Scrapable(); got != tt.want {
			t.Errorf("Scrapable() with state %q = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "venues.yaml")
		content := `venues:
  - name: Club X
    schedule_url: https://clubx.example.com/schedule
    strategy: schedule_only
    hints: prices listed as ADV/DOOR
  - name: Hall Y
    schedule_url: https://hally.example.com/{year}/{month:02}/
    strategy: schedule_and_detail
    render_mode: browser
    next_month_selector: ".cal-next"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		venues, err := LoadSeedFile(path)
		if err != nil {
			t.Fatalf("LoadSeedFile failed: %v", err)
		}
		if len(venues) != 2 {
			t.Fatalf("expected 2 venues, got %d", len(venues))
		}
		if venues[0].ID != "club-x" || venues[1].ID != "hall-y" {
			// Id-less entries must still come out individually keyed.
			t.Errorf("derived IDs = %q, %q", venues[0].ID, venues[1].ID)
		}
		if venues[0].State != StateConfigured {
			t.Errorf("expected default state configured, got %q", venues[0].State)
		}
		if venues[0].RenderMode != RenderStatic {
			t.Errorf("expected default render mode static, got %q", venues[0].RenderMode)
		}
		if !venues[1].Templated() {
			t.Error("expected Hall Y schedule URL to be templated")
		}
	})

	t.Run("explicit id preserved", func(t *testing.T) {
		path := filepath.Join(dir, "explicit.yaml")
		content := "venues:\n  - id: legacy-name\n    name: Club X\n    schedule_url: https://clubx.example.com/\n    strategy: schedule_only\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		venues, err := LoadSeedFile(path)
		if err != nil {
			t.Fatalf("LoadSeedFile failed: %v", err)
		}
		if venues[0].ID != "legacy-name" {
			t.Errorf("ID = %q, want explicit id kept", venues[0].ID)
		}
	})

	t.Run("duplicate ids rejected", func(t *testing.T) {
		path := filepath.Join(dir, "dup.yaml")
		content := "venues:\n" +
			"  - name: Club X\n    schedule_url: https://a.example.com/\n    strategy: schedule_only\n" +
			"  - name: club x\n    schedule_url: https://b.example.com/\n    strategy: schedule_only\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSeedFile(path); err == nil {
			t.Error("expected error for two venues slugging to the same id")
		}
	})

	t.Run("invalid venue rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		content := "venues:\n  - name: Broken\n    strategy: schedule_only\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadSeedFile(path); err == nil {
			t.Error("expected error for venue without schedule_url")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSeedFile(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Club X", "club-x"},
		{"下北沢SHELTER", "shelter"},
		{"  The   Basement  ", "the-basement"},
		{"O-EAST", "o-east"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.name); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
