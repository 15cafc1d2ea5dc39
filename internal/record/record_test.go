package record

import "testing"

func TestParseDomain(t *testing.T) {
	for _, s := range []string{"task", "schedule", "sku"} {
		if _, err := ParseDomain(s); err != nil {
			t.Errorf("ParseDomain(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseDomain("inventory"); err == nil {
		t.Error("expected error for unknown domain")
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	r := Normalize(DomainSchedule, map[string]any{
		"orderNo": "ORD1",
		"product": "Widget",
	})

	for _, f := range Fields(DomainSchedule) {
		if _, ok := r[f]; !ok {
			t.Errorf("field %q missing after normalize", f)
		}
	}
	if r.String("orderNo") != "ORD1" {
		t.Errorf("expected orderNo ORD1, got %q", r.String("orderNo"))
	}
	if r.String("brand") != "" {
		t.Errorf("expected empty brand default, got %q", r.String("brand"))
	}
	if r.String("channel") != "Online" {
		t.Errorf("expected channel default Online, got %q", r.String("channel"))
	}
	if r.String("shipDate") != "" {
		t.Errorf("expected empty shipDate, got %q", r.String("shipDate"))
	}
}

func TestNormalize_CoercesTypes(t *testing.T) {
	r := Normalize(DomainSKU, map[string]any{
		"orderNo":  12345.0, // model returned a number for a string field
		"skuCode":  "SKU-1",
		"quantity": "7", // and a string for a numeric one
	})

	if r.String("orderNo") != "12345" {
		t.Errorf("expected orderNo 12345, got %q", r.String("orderNo"))
	}
	if r.Int("quantity") != 7 {
		t.Errorf("expected quantity 7, got %d", r.Int("quantity"))
	}
}

func TestNormalize_NumericDefaults(t *testing.T) {
	sku := Normalize(DomainSKU, map[string]any{})
	if sku.Int("quantity") != 1 {
		t.Errorf("expected sku quantity default 1, got %d", sku.Int("quantity"))
	}
	sched := Normalize(DomainSchedule, map[string]any{"quantity": "lots"})
	if sched.Int("quantity") != 0 {
		t.Errorf("expected schedule quantity default 0 on bad input, got %d", sched.Int("quantity"))
	}
}

func TestNormalize_DropsUnknownFields(t *testing.T) {
	r := Normalize(DomainTask, map[string]any{
		"title":      "Restock shelf A",
		"confidence": 0.9,
	})
	if _, ok := r["confidence"]; ok {
		t.Error("expected unknown field to be dropped")
	}
	if r.String("category") != "task" {
		t.Errorf("expected category default task, got %q", r.String("category"))
	}
	if r.String("priority") != "medium" {
		t.Errorf("expected priority default medium, got %q", r.String("priority"))
	}
}

func TestKey(t *testing.T) {
	r := Normalize(DomainTask, map[string]any{
		"title":    "Ship order",
		"deadline": "2024-01-10",
		"assignee": "tanaka",
	})
	key := Key(DomainTask, r)
	want := []string{"Ship order", "2024-01-10", "tanaka"}
	if len(key) != len(want) {
		t.Fatalf("expected %d key parts, got %d", len(want), len(key))
	}
	for i := range want {
		if key[i] != want[i] {
			t.Errorf("key[%d]: expected %q, got %q", i, want[i], key[i])
		}
	}
}
