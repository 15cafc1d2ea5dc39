// Package extract locates and decodes the JSON payload inside a free-form
// model completion. The model is asked for a bare JSON array but in practice
// wraps it in code fences, surrounds it with prose, or returns a single
// object, so location is an ordered list of strategies and the first matching
// span wins.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/zaikan-ops/zaikan/internal/record"
)

// NoJSONError means no parsable JSON could be located in the model output.
// Raw carries the full output so the operator can see what came back instead
// of losing the response.
type NoJSONError struct {
	Raw string
}

func (e *NoJSONError) Error() string {
	return "no JSON found in model output"
}

type strategy struct {
	name string
	re   *regexp.Regexp
	// group is the capture group holding the JSON span; 0 means whole match.
	group int
}

// Ordered by preference: an explicitly tagged fence beats a generic fence
// beats a bare array beats a bare object. Array and object matches are
// greedy, spanning to the last closing bracket in the text.
var strategies = []strategy{
	{name: "fenced-json", re: regexp.MustCompile("(?s)```json\\n(.*?)\\n```"), group: 1},
	{name: "fenced", re: regexp.MustCompile("(?s)```\\n(.*?)\\n```"), group: 1},
	{name: "bare-array", re: regexp.MustCompile(`(?s)\[.*\]`)},
	{name: "bare-object", re: regexp.MustCompile(`(?s)\{.*\}`)},
}

// locate returns the JSON span of the first matching strategy, or the whole
// trimmed output when nothing matches.
func locate(raw string) string {
	for _, s := range strategies {
		m := s.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		return m[s.group]
	}
	return strings.TrimSpace(raw)
}

// Records extracts candidate records for a domain from raw model output.
// A single JSON object is treated as a one-element array; a scalar or
// unparsable span is a failed extraction. Every returned record is
// normalized onto the domain schema, so no field is ever missing.
func Records(d record.Domain, raw string) ([]record.Record, error) {
	var decoded any
	if err := json.Unmarshal([]byte(locate(raw)), &decoded); err != nil {
		return nil, &NoJSONError{Raw: raw}
	}

	var items []any
	switch v := decoded.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, &NoJSONError{Raw: raw}
	}

	records := make([]record.Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		records = append(records, record.Normalize(d, obj))
	}
	return records, nil
}
