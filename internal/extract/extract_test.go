package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MiruVL/events/internal/event"
)

// fakeCompletions serves an OpenAI-compatible chat completions endpoint that
// replies with the scripted contents in order, repeating the last one.
func fakeCompletions(t *testing.T, replies []string, calls *[]chatRequest) *httptest.Server {
	t.Helper()
	n := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if calls != nil {
			*calls = append(*calls, req)
		}
		reply := replies[min(n, len(replies)-1)]
		n++
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
	}))
}

func newTestExtractor(srv *httptest.Server) *LLMExtractor {
	return NewLLMExtractor(NewClient(srv.URL+"/v1", "test-model", 5*time.Second))
}

func TestExtractSchedule(t *testing.T) {
	var calls []chatRequest
	srv := fakeCompletions(t, []string{
		`[{"title":"  Live Night ","date":"2025-06-10","price_text":"前売 ¥3000","artists":["The Examples"]}]`,
	}, &calls)
	defer srv.Close()

	ex := newTestExtractor(srv)
	cands, err := ex.Extract(context.Background(), Request{
		VenueName: "Club X",
		Hints:     "schedule is one table row per event",
		PageText:  "June schedule...",
		Kind:      KindSchedule,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	price := 3000
	want := []event.Candidate{{
		Title:     "Live Night",
		Date:      "2025-06-10",
		Price:     &price,
		PriceText: "前売 ¥3000",
		Artists:   []string{"The Examples"},
	}}
	if diff := cmp.Diff(want, cands); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}

	if len(calls) != 1 {
		t.Fatalf("got %d completion calls, want 1", len(calls))
	}
	sys := calls[0].Messages[0].Content
	if !strings.Contains(sys, "schedule page") {
		t.Errorf("system prompt does not mention the schedule page:\n%s", sys)
	}
	user := calls[0].Messages[1].Content
	for _, want := range []string{"Club X", "one table row per event", "June schedule..."} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestExtractRetriesUnparseableOutput(t *testing.T) {
	var calls []chatRequest
	srv := fakeCompletions(t, []string{
		"Sorry, I can't see any structured data here.",
		`[{"title":"Live Night","date":"2025-06-10"}]`,
	}, &calls)
	defer srv.Close()

	ex := newTestExtractor(srv)
	cands, err := ex.Extract(context.Background(), Request{VenueName: "Club X", Kind: KindSchedule})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(cands) != 1 || cands[0].Title != "Live Night" {
		t.Errorf("candidates = %+v", cands)
	}

	if len(calls) != 2 {
		t.Fatalf("got %d completion calls, want 2", len(calls))
	}
	if !strings.Contains(calls[1].Messages[0].Content, "valid JSON") {
		t.Errorf("retry call did not use the strict instruction")
	}
}

func TestExtractPersistentFailure(t *testing.T) {
	srv := fakeCompletions(t, []string{"no dice", "still no dice"}, nil)
	defer srv.Close()

	ex := newTestExtractor(srv)
	cands, err := ex.Extract(context.Background(), Request{VenueName: "Club X", Kind: KindSchedule})
	if cands != nil {
		t.Errorf("candidates = %+v, want nil", cands)
	}
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
	if extErr.Venue != "Club X" || extErr.Attempts != 2 {
		t.Errorf("ExtractionError = %+v", extErr)
	}
}

func TestExtractStubs(t *testing.T) {
	var calls []chatRequest
	srv := fakeCompletions(t, []string{
		`[{"title":"Live Night","date":"2025-06-10","detail_url":"https://clubx.example.com/events/live-night"}]`,
	}, &calls)
	defer srv.Close()

	ex := newTestExtractor(srv)
	cands, err := ex.Extract(context.Background(), Request{VenueName: "Club X", Kind: KindStubs})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(cands) != 1 || cands[0].DetailURL != "https://clubx.example.com/events/live-night" {
		t.Errorf("candidates = %+v", cands)
	}
	if !strings.Contains(calls[0].Messages[0].Content, "detail page links") {
		t.Errorf("stubs call did not use the stub prompt")
	}
}

func TestExtractDropsUntitledCandidates(t *testing.T) {
	srv := fakeCompletions(t, []string{
		`[{"title":"","date":"2025-06-10"},{"title":"Live Night","date":"2025-06-10"}]`,
	}, nil)
	defer srv.Close()

	ex := newTestExtractor(srv)
	cands, err := ex.Extract(context.Background(), Request{VenueName: "Club X", Kind: KindSchedule})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(cands) != 1 || cands[0].Title != "Live Night" {
		t.Errorf("candidates = %+v", cands)
	}
}

func TestExtractEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusNotFound)
	}))
	defer srv.Close()

	ex := newTestExtractor(srv)
	_, err := ex.Extract(context.Background(), Request{VenueName: "Club X", Kind: KindSchedule})
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("error = %v, want *ExtractionError", err)
	}
}
