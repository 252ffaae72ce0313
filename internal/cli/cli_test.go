package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clean run", nil, ExitSuccess},
		{"venue failures", errVenueFailures, ExitVenueFailures},
		{"wrapped venue failures", fmt.Errorf("run: %w", errVenueFailures), ExitVenueFailures},
		{"fatal error", errors.New("opening store: no such file"), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
