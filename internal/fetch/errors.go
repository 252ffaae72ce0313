package fetch

import "fmt"

// FetchError reports a failed page fetch or render. The orchestrator treats
// it as venue-scoped and non-fatal.
type FetchError struct {
	Venue  string
	URL    string
	Status int // HTTP status, 0 when the failure was not an HTTP response
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
