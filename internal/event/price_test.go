package event

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	ptr := func(n int) *int { return &n }

	tests := []struct {
		name string
		text string
		want *int
	}{
		{"lone yen amount", "¥3000", ptr(3000)},
		{"lone amount with unit", "3000円", ptr(3000)},
		{"comma separated", "¥12,000", ptr(12000)},
		{"advance and door pair", "前売 3500円 / 当日 4000円", ptr(3500)},
		{"adv marker english", "ADV ¥2500 / DOOR ¥3000", ptr(2500)},
		{"two unmarked amounts ambiguous", "3000円 or 3500円", nil},
		{"no amount", "ticket price TBA", nil},
		{"empty", "", nil},
		{"free text around lone amount", "ticket 2000 yen at the door", ptr(2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.text)
			switch {
			case got == nil && tt.want != nil:
				t.Errorf("ParsePrice(%q) = nil, want %d", tt.text, *tt.want)
			case got != nil && tt.want == nil:
				t.Errorf("ParsePrice(%q) = %d, want nil", tt.text, *got)
			case got != nil && tt.want != nil && *got != *tt.want:
				t.Errorf("ParsePrice(%q) = %d, want %d", tt.text, *got, *tt.want)
			}
		})
	}
}
