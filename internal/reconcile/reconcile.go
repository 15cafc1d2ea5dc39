// Package reconcile annotates extracted candidates against the permanent
// store. It only ever reads.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/zaikan-ops/zaikan/internal/record"
)

// Lookup is the slice of the permanent store the reconciler needs: one
// existence check under a domain's natural key.
type Lookup interface {
	Exists(ctx context.Context, d record.Domain, key []string) (bool, error)
}

type Reconciler struct {
	lookup Lookup
	logger *slog.Logger
}

func New(lookup Lookup, logger *slog.Logger) *Reconciler {
	return &Reconciler{lookup: lookup, logger: logger}
}

// Flags computes the duplicate flag for each candidate, one lookup per
// candidate in candidate order. A failed lookup fails open: the candidate is
// flagged not-duplicate and the failure is logged, so a transient store error
// degrades duplicate detection instead of blocking the parse.
func (r *Reconciler) Flags(ctx context.Context, d record.Domain, candidates []record.Record) map[int]bool {
	flags := make(map[int]bool, len(candidates))
	for i, c := range candidates {
		dup, err := r.lookup.Exists(ctx, d, record.Key(d, c))
		if err != nil {
			r.logger.Warn("duplicate lookup failed, treating as not duplicate",
				"domain", d,
				"index", i,
				"error", err,
			)
			flags[i] = false
			continue
		}
		flags[i] = dup
	}
	return flags
}

// Check is the single-record duplicate check exposed on the service boundary.
// Unlike Flags it propagates lookup errors to the caller.
func (r *Reconciler) Check(ctx context.Context, d record.Domain, rec record.Record) (bool, error) {
	return r.lookup.Exists(ctx, d, record.Key(d, rec))
}
