package event

import (
	"testing"
	"time"
)

func TestParseEventDate(t *testing.T) {
	want := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso", "2025-06-10", want},
		{"slashes padded", "2025/06/10", want},
		{"slashes bare", "2025/6/10", want},
		{"dashes bare", "2025-6-10", want},
		{"garbage", "next friday", time.Time{}},
		{"japanese form", "6月10日", time.Time{}},
		{"empty", "", time.Time{}},
		{"date with time", "2025-06-10 19:00", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseEventDate(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("ParseEventDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
