package extract

import "fmt"

// ExtractionError reports a model call or schema-parse failure that
// persisted through the retry. The orchestrator treats it as venue-scoped
// and non-fatal; the extraction yields no candidates.
type ExtractionError struct {
	Venue    string
	Attempts int
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction for %s failed after %d attempt(s): %v", e.Venue, e.Attempts, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
