// Package staging holds extracted candidates between parse and commit. A
// session is the editable review list for one operator's paste: items are
// edited and toggled in place, then either committed selectively or
// discarded. Sessions never touch the permanent store until Commit.
package staging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/zaikan-ops/zaikan/internal/record"
)

// Creator is the write slice of the permanent store used at commit time.
type Creator interface {
	Create(ctx context.Context, d record.Domain, rec record.Record) error
}

// Item is one staged candidate with its parse-time duplicate flag and the
// operator's selection. The flag is not re-checked after edits; re-submitting
// the text is the refresh path.
type Item struct {
	Record    record.Record `json:"record"`
	Duplicate bool          `json:"duplicate"`
	Selected  bool          `json:"selected"`
}

// Session is one staged parse result, addressed by handle.
type Session struct {
	ID     uuid.UUID     `json:"id"`
	Domain record.Domain `json:"domain"`
	Items  []Item        `json:"items"`
}

// NewSession stages candidates with their duplicate flags. Non-duplicates are
// pre-selected; inserting a flagged duplicate requires an explicit opt-in.
func NewSession(d record.Domain, candidates []record.Record, flags map[int]bool) *Session {
	items := make([]Item, len(candidates))
	for i, c := range candidates {
		items[i] = Item{
			Record:    c,
			Duplicate: flags[i],
			Selected:  !flags[i],
		}
	}
	return &Session{ID: uuid.New(), Domain: d, Items: items}
}

// UpdateItem merges field edits into one staged record.
func (s *Session) UpdateItem(index int, patch map[string]any) error {
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	record.Apply(s.Domain, s.Items[index].Record, patch)
	return nil
}

// SetSelected toggles whether an item is part of the next commit.
func (s *Session) SetSelected(index int, selected bool) error {
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("item index %d out of range", index)
	}
	s.Items[index].Selected = selected
	return nil
}

// ItemFailure reports one candidate that could not be committed.
type ItemFailure struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// CommitResult reports a selective commit: how many records were inserted
// and which selected candidates failed.
type CommitResult struct {
	Added    int           `json:"addedCount"`
	Failures []ItemFailure `json:"failures"`
}

// Commit inserts the selected items in original order, one create per item.
// Failures are collected per item and never abort the rest of the batch.
func (s *Session) Commit(ctx context.Context, store Creator, logger *slog.Logger) *CommitResult {
	result := &CommitResult{Failures: []ItemFailure{}}
	for i, item := range s.Items {
		if !item.Selected {
			continue
		}
		rec := commitRecord(s.Domain, item.Record)
		if err := store.Create(ctx, s.Domain, rec); err != nil {
			logger.Warn("commit item failed",
				"domain", s.Domain,
				"index", i,
				"error", err,
			)
			result.Failures = append(result.Failures, ItemFailure{Index: i, Message: err.Error()})
			continue
		}
		result.Added++
	}
	logger.Info("commit finished",
		"domain", s.Domain,
		"session", s.ID,
		"added", result.Added,
		"failed", len(result.Failures),
	)
	return result
}

// commitRecord applies domain-specific defaults at insert time. Guide items
// share the task create path but are non-actionable: they get a low priority
// and keep their procedural content in notes.
func commitRecord(d record.Domain, rec record.Record) record.Record {
	if d != record.DomainTask || rec.String("category") != "guide" {
		return rec
	}
	out := rec.Clone()
	out["priority"] = "low"
	return out
}
