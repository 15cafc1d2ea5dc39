// Package pipeline wires the extraction flow end to end: prompt → completion
// → JSON extraction → duplicate reconciliation → staged session → selective
// commit. Every step is sequential, so lookup and commit order always match
// candidate order.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zaikan-ops/zaikan/internal/catalog"
	"github.com/zaikan-ops/zaikan/internal/events"
	"github.com/zaikan-ops/zaikan/internal/extract"
	"github.com/zaikan-ops/zaikan/internal/reconcile"
	"github.com/zaikan-ops/zaikan/internal/record"
	"github.com/zaikan-ops/zaikan/internal/staging"
)

// ErrSessionNotFound is returned for a handle that was never created or was
// already discarded.
var ErrSessionNotFound = errors.New("staging session not found")

// Completer sends one prompt+text block to the model.
type Completer interface {
	Complete(ctx context.Context, prompt, text string) (string, error)
}

// Store is the slice of the permanent store the pipeline touches.
type Store interface {
	Create(ctx context.Context, d record.Domain, rec record.Record) error
	Exists(ctx context.Context, d record.Domain, key []string) (bool, error)
	List(ctx context.Context, d record.Domain) ([]record.Record, error)
}

type Pipeline struct {
	store      Store
	llm        Completer
	reconciler *reconcile.Reconciler
	sessions   *staging.Manager
	events     *events.Publisher
	logger     *slog.Logger
}

func New(store Store, llm Completer, ev *events.Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		llm:        llm,
		reconciler: reconcile.New(store, logger),
		sessions:   staging.NewManager(),
		events:     ev,
		logger:     logger,
	}
}

// Parse sends the operator's text through the model, extracts candidates,
// annotates duplicates and stages the result for review. Completion and
// extraction errors propagate untouched so the API layer can surface the
// exact failure (missing key, upstream status, raw unparsable output).
func (p *Pipeline) Parse(ctx context.Context, d record.Domain, text string) (*staging.Session, error) {
	raw, err := p.llm.Complete(ctx, catalog.Prompt(d), text)
	if err != nil {
		return nil, err
	}

	candidates, err := extract.Records(d, raw)
	if err != nil {
		return nil, err
	}

	flags := p.reconciler.Flags(ctx, d, candidates)
	session := staging.NewSession(d, candidates, flags)
	p.sessions.Add(session)

	p.logger.Info("parse staged",
		"domain", d,
		"session", session.ID,
		"candidates", len(candidates),
	)
	return session, nil
}

// Session returns a staged session by handle.
func (p *Pipeline) Session(id uuid.UUID) (*staging.Session, error) {
	s, ok := p.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// UpdateItem edits fields of one staged candidate.
func (p *Pipeline) UpdateItem(id uuid.UUID, index int, patch map[string]any) error {
	s, err := p.Session(id)
	if err != nil {
		return err
	}
	return s.UpdateItem(index, patch)
}

// SetSelected toggles a staged candidate in or out of the next commit.
func (p *Pipeline) SetSelected(id uuid.UUID, index int, selected bool) error {
	s, err := p.Session(id)
	if err != nil {
		return err
	}
	return s.SetSelected(index, selected)
}

// CheckDuplicate is the single-record duplicate probe used by manual entry.
func (p *Pipeline) CheckDuplicate(ctx context.Context, d record.Domain, raw map[string]any) (bool, error) {
	return p.reconciler.Check(ctx, d, record.Normalize(d, raw))
}

// Commit inserts the selected candidates and discards the session. The
// session is discarded even when some items failed; the result tells the
// operator exactly which ones, and re-parsing is the retry path.
func (p *Pipeline) Commit(ctx context.Context, id uuid.UUID) (*staging.CommitResult, error) {
	s, err := p.Session(id)
	if err != nil {
		return nil, err
	}

	result := s.Commit(ctx, p.store, p.logger)
	p.sessions.Remove(id)

	if err := p.events.Publish(events.SubjectCommitted, events.Committed{
		Domain:    string(s.Domain),
		SessionID: s.ID.String(),
		Added:     result.Added,
		Failed:    len(result.Failures),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		p.logger.Warn("failed to publish commit event", "error", err)
	}
	return result, nil
}

// Cancel discards a session unconditionally.
func (p *Pipeline) Cancel(id uuid.UUID) error {
	if _, err := p.Session(id); err != nil {
		return err
	}
	p.sessions.Remove(id)
	return nil
}

// Records lists stored records for the review surface.
func (p *Pipeline) Records(ctx context.Context, d record.Domain) ([]record.Record, error) {
	return p.store.List(ctx, d)
}
