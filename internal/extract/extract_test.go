package extract

import (
	"errors"
	"testing"

	"github.com/zaikan-ops/zaikan/internal/record"
)

func TestRecords_FencedJSONInProse(t *testing.T) {
	raw := "Here is the extracted data:\n\n```json\n[{\"orderNo\":\"ORD1\",\"product\":\"Widget\"}]\n```\n\nLet me know if you need anything else."

	recs, err := Records(record.DomainSchedule, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].String("orderNo") != "ORD1" {
		t.Errorf("expected orderNo ORD1, got %q", recs[0].String("orderNo"))
	}
	if recs[0].String("channel") != "Online" {
		t.Errorf("expected normalized channel default, got %q", recs[0].String("channel"))
	}
}

func TestRecords_PriorityOrder(t *testing.T) {
	// All four shapes present; the tagged fence must win.
	raw := "intro {\"orderNo\":\"from-object\"}\n" +
		"[{\"orderNo\":\"from-array\"}]\n" +
		"```\n[{\"orderNo\":\"from-fence\"}]\n```\n" +
		"```json\n[{\"orderNo\":\"from-json-fence\"}]\n```\n"

	recs, err := Records(record.DomainSchedule, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := recs[0].String("orderNo"); got != "from-json-fence" {
		t.Errorf("expected json fence to win, got %q", got)
	}

	// Without the tagged fence, the generic fence wins.
	raw = "{\"orderNo\":\"from-object\"} and [{\"orderNo\":\"from-array\"}]\n" +
		"```\n[{\"orderNo\":\"from-fence\"}]\n```\n"
	recs, err = Records(record.DomainSchedule, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := recs[0].String("orderNo"); got != "from-fence" {
		t.Errorf("expected generic fence to win, got %q", got)
	}

	// Bare array beats bare object.
	raw = "note {\"orderNo\":\"from-object\"} then [{\"orderNo\":\"from-array\"}] done"
	recs, err = Records(record.DomainSchedule, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := recs[0].String("orderNo"); got != "from-array" {
		t.Errorf("expected bare array to win, got %q", got)
	}
}

func TestRecords_BareObjectWrapped(t *testing.T) {
	raw := "{\"orderNo\":\"ORD9\",\"skuCode\":\"SKU-9\"}"

	recs, err := Records(record.DomainSKU, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected single object wrapped into one record, got %d", len(recs))
	}
	if recs[0].String("skuCode") != "SKU-9" {
		t.Errorf("expected skuCode SKU-9, got %q", recs[0].String("skuCode"))
	}
}

func TestRecords_WholeOutputAsJSON(t *testing.T) {
	// No fence, and the leading/trailing whitespace means the array spans
	// the whole trimmed output.
	raw := "  [{\"title\":\"Pack order 12\"}]  "

	recs, err := Records(record.DomainTask, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recs[0].String("title") != "Pack order 12" {
		t.Errorf("expected title, got %q", recs[0].String("title"))
	}
}

func TestRecords_NoJSONReturnsRawUnchanged(t *testing.T) {
	raw := "Sorry, I could not find any structured data in that text."

	_, err := Records(record.DomainSchedule, raw)
	var noJSON *NoJSONError
	if !errors.As(err, &noJSON) {
		t.Fatalf("expected NoJSONError, got %v", err)
	}
	if noJSON.Raw != raw {
		t.Errorf("expected raw text carried unchanged, got %q", noJSON.Raw)
	}
}

func TestRecords_MalformedFence(t *testing.T) {
	raw := "```json\n[{\"orderNo\": broken\n```"

	_, err := Records(record.DomainSchedule, raw)
	var noJSON *NoJSONError
	if !errors.As(err, &noJSON) {
		t.Fatalf("expected NoJSONError for malformed span, got %v", err)
	}
	if noJSON.Raw != raw {
		t.Errorf("expected full raw output, got %q", noJSON.Raw)
	}
}

func TestRecords_ScalarIsFailure(t *testing.T) {
	_, err := Records(record.DomainTask, "42")
	var noJSON *NoJSONError
	if !errors.As(err, &noJSON) {
		t.Fatalf("expected NoJSONError for scalar JSON, got %v", err)
	}
}

func TestRecords_SkipsNonObjectElements(t *testing.T) {
	raw := `[{"title":"Count stock"}, "stray note", {"title":"Ship samples"}]`

	recs, err := Records(record.DomainTask, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
}

func TestRecords_ScheduleScenario(t *testing.T) {
	// The pipe-separated line from the review scenario, as the model would
	// return it.
	raw := "```json\n" +
		`[{"orderNo":"ORD1","product":"Widget","brand":"BrandX","channel":"Online","shipDate":"2024-01-10","eta":"2024-01-15","warehouseDate":"2024-01-20"}]` +
		"\n```"

	recs, err := Records(record.DomainSchedule, raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	want := map[string]string{
		"orderNo":       "ORD1",
		"product":       "Widget",
		"brand":         "BrandX",
		"channel":       "Online",
		"shipDate":      "2024-01-10",
		"eta":           "2024-01-15",
		"warehouseDate": "2024-01-20",
	}
	for f, v := range want {
		if got := recs[0].String(f); got != v {
			t.Errorf("field %s: expected %q, got %q", f, v, got)
		}
	}
}
