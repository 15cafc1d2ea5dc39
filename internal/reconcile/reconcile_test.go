package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/zaikan-ops/zaikan/internal/record"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLookup answers Exists from a set of stored natural keys.
type fakeLookup struct {
	keys map[string]bool
	err  error
	seen [][]string
}

func (f *fakeLookup) Exists(_ context.Context, _ record.Domain, key []string) (bool, error) {
	f.seen = append(f.seen, key)
	if f.err != nil {
		return false, f.err
	}
	return f.keys[strings.Join(key, "|")], nil
}

func TestFlags_ExactKeyMatch(t *testing.T) {
	lookup := &fakeLookup{keys: map[string]bool{"ORD1|Widget": true}}
	r := New(lookup, discardLogger())

	candidates := []record.Record{
		record.Normalize(record.DomainSchedule, map[string]any{"orderNo": "ORD1", "product": "Widget"}),
		record.Normalize(record.DomainSchedule, map[string]any{"orderNo": "ORD1", "product": "Gadget"}),
		record.Normalize(record.DomainSchedule, map[string]any{"orderNo": "ORD2", "product": "Widget"}),
	}

	flags := r.Flags(context.Background(), record.DomainSchedule, candidates)

	if !flags[0] {
		t.Error("expected index 0 flagged duplicate")
	}
	if flags[1] {
		t.Error("changed product must flip the flag to false")
	}
	if flags[2] {
		t.Error("changed orderNo must flip the flag to false")
	}
	if len(lookup.seen) != 3 {
		t.Errorf("expected one lookup per candidate, got %d", len(lookup.seen))
	}
}

func TestFlags_TaskKeyUsesTitleDeadlineAssignee(t *testing.T) {
	lookup := &fakeLookup{keys: map[string]bool{"Pack order|2024-02-01|sato": true}}
	r := New(lookup, discardLogger())

	candidates := []record.Record{
		record.Normalize(record.DomainTask, map[string]any{
			"title": "Pack order", "deadline": "2024-02-01", "assignee": "sato",
		}),
		record.Normalize(record.DomainTask, map[string]any{
			"title": "Pack order", "deadline": "2024-02-01", "assignee": "suzuki",
		}),
	}

	flags := r.Flags(context.Background(), record.DomainTask, candidates)
	if !flags[0] || flags[1] {
		t.Errorf("expected [true false], got %v", flags)
	}
}

func TestFlags_LookupFailureFailsOpen(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection reset")}
	r := New(lookup, discardLogger())

	candidates := []record.Record{
		record.Normalize(record.DomainSKU, map[string]any{"orderNo": "ORD1", "skuCode": "S1"}),
	}

	flags := r.Flags(context.Background(), record.DomainSKU, candidates)
	if flags[0] {
		t.Error("lookup failure must fail open (not duplicate)")
	}
}

func TestCheck_PropagatesError(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("boom")}
	r := New(lookup, discardLogger())

	rec := record.Normalize(record.DomainSKU, map[string]any{"orderNo": "ORD1", "skuCode": "S1"})
	if _, err := r.Check(context.Background(), record.DomainSKU, rec); err == nil {
		t.Fatal("expected error from Check")
	}
}
