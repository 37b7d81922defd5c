package ai

import (
	"encoding/json"
	"strings"
)

// Result is the tagged outcome of parsing a model response. Either the
// response decoded as JSON (Parsed true, Data set) or it did not (Parsed
// false, Raw and Reason set). Callers handle the malformed case explicitly
// instead of scraping strings.
type Result struct {
	Parsed bool
	Data   json.RawMessage
	Raw    string
	Reason string
}

// ParseResult strips markdown code fences and decodes the remainder as
// JSON. Models wrap JSON in ```json fences often enough that stripping them
// is part of the contract, not a heuristic.
func ParseResult(text string) Result {
	cleaned := stripCodeFences(text)

	if !json.Valid([]byte(cleaned)) {
		return Result{Raw: text, Reason: "response is not valid JSON"}
	}

	return Result{Parsed: true, Data: json.RawMessage(cleaned)}
}

// Decode unmarshals a parsed result into v. Returns false without touching
// v when the result is unparsed.
func (r Result) Decode(v interface{}) (bool, error) {
	if !r.Parsed {
		return false, nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return false, err
	}
	return true, nil
}

func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")

	return strings.TrimSpace(cleaned)
}
