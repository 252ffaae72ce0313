package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/MiruVL/events/internal/event"
)

// wrapperKeys are object keys models sometimes wrap the array in despite
// instructions ("{"events": [...]}").
var wrapperKeys = []string{"events", "links", "data", "results"}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// parseCandidates turns a raw model response into candidate records. The
// pipeline is: strip code fences, strict parse, repair common JSON damage,
// and finally recover individual objects from a broken array. An error
// means nothing usable could be recovered.
func parseCandidates(raw string) ([]event.Candidate, error) {
	text := stripFences(raw)
	if text == "" || text == "null" {
		return nil, fmt.Errorf("empty response")
	}

	if cands, err := decodeCandidates(text); err == nil {
		return cands, nil
	}

	repaired := repairJSON(text)
	if cands, err := decodeCandidates(repaired); err == nil {
		return cands, nil
	}

	if cands := recoverPartial(text); len(cands) > 0 {
		return cands, nil
	}

	return nil, fmt.Errorf("response is not a parseable candidate array")
}

// decodeCandidates parses text as a JSON array of candidates, unwrapping a
// single-object wrapper or a bare object when needed.
func decodeCandidates(text string) ([]event.Candidate, error) {
	var cands []event.Candidate
	if err := json.Unmarshal([]byte(text), &cands); err == nil {
		return cands, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("not a JSON array or object")
	}

	for _, key := range wrapperKeys {
		if inner, ok := obj[key]; ok {
			if err := json.Unmarshal(inner, &cands); err == nil {
				return cands, nil
			}
		}
	}

	// A bare single-event object.
	var one event.Candidate
	if err := json.Unmarshal([]byte(text), &one); err == nil && one.Title != "" {
		return []event.Candidate{one}, nil
	}

	return nil, fmt.Errorf("object carries no candidate array")
}

// stripFences removes a surrounding markdown code fence.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// repairJSON fixes the damage small models most often produce: trailing
// commas and an output truncated before its closing brackets.
func repairJSON(text string) string {
	text = trailingComma.ReplaceAllString(text, "$1")
	openBraces := strings.Count(text, "{") - strings.Count(text, "}")
	openBrackets := strings.Count(text, "[") - strings.Count(text, "]")
	text = strings.TrimRight(strings.TrimSpace(text), ",")
	text += strings.Repeat("}", max(0, openBraces))
	text += strings.Repeat("]", max(0, openBrackets))
	return text
}

// recoverPartial extracts individually valid objects from a broken array,
// so one mangled record does not discard the batch.
func recoverPartial(text string) []event.Candidate {
	var cands []event.Candidate
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, ch := range []byte(text) {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				var cand event.Candidate
				if err := json.Unmarshal([]byte(text[start:i+1]), &cand); err == nil && cand.Title != "" {
					cands = append(cands, cand)
				}
				start = -1
			}
		}
	}
	return cands
}
