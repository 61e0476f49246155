// Package history implements a bounded, linear undo/redo timeline over
// document snapshots and the shared debounce timer used to coalesce rapid edits.
//
// The Engine never applies a snapshot itself. Undo and Redo move the cursor and
// hand back a copy; applying it to live state is the caller's job.
package history

import (
	"time"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// DefaultLimit is the default maximum number of entries kept.
const DefaultLimit = 20

// Engine is a bounded list of snapshots plus a cursor.
// It is not safe for concurrent use; the owning store serializes access.
type Engine struct {
	entries []domain.Snapshot
	index   int
	limit   int
	now     func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLimit sets the maximum number of entries. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an empty history.
func New(opts ...Option) *Engine {
	e := &Engine{
		index: -1,
		limit: DefaultLimit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Save records a deep copy of doc. Entries after the cursor are discarded and
// the oldest entries are evicted once the limit is exceeded.
func (e *Engine) Save(doc domain.Document, description string) domain.Snapshot {
	snap := domain.Snapshot{
		Document:    doc.Clone(),
		Description: description,
		Timestamp:   e.now(),
	}

	e.entries = append(e.entries[:e.index+1], snap)
	if overflow := len(e.entries) - e.limit; overflow > 0 {
		// Copy to drop references to the evicted snapshots.
		e.entries = append([]domain.Snapshot(nil), e.entries[overflow:]...)
	}
	e.index = len(e.entries) - 1
	return snap.Clone()
}

// Undo moves the cursor back and returns the snapshot now current.
// It returns false at the start of the timeline.
func (e *Engine) Undo() (*domain.Snapshot, bool) {
	if !e.CanUndo() {
		return nil, false
	}
	e.index--
	snap := e.entries[e.index].Clone()
	return &snap, true
}

// Redo moves the cursor forward and returns the snapshot now current.
// It returns false at the end of the timeline.
func (e *Engine) Redo() (*domain.Snapshot, bool) {
	if !e.CanRedo() {
		return nil, false
	}
	e.index++
	snap := e.entries[e.index].Clone()
	return &snap, true
}

// Reset collapses the timeline to a single entry holding doc.
func (e *Engine) Reset(doc domain.Document, description string) domain.Snapshot {
	e.entries = nil
	e.index = -1
	return e.Save(doc, description)
}

// CanUndo reports whether an earlier entry exists.
func (e *Engine) CanUndo() bool {
	return e.index > 0
}

// CanRedo reports whether a later entry exists.
func (e *Engine) CanRedo() bool {
	return e.index >= 0 && e.index < len(e.entries)-1
}

// Index returns the cursor, or -1 when the history is empty.
func (e *Engine) Index() int {
	return e.index
}

// Len returns the number of entries.
func (e *Engine) Len() int {
	return len(e.entries)
}

// Limit returns the configured maximum number of entries.
func (e *Engine) Limit() int {
	return e.limit
}

// Current returns a copy of the entry under the cursor.
func (e *Engine) Current() (*domain.Snapshot, bool) {
	if e.index < 0 {
		return nil, false
	}
	snap := e.entries[e.index].Clone()
	return &snap, true
}

// Entries returns the timeline without document bodies.
func (e *Engine) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(e.entries))
	for i, s := range e.entries {
		out[i] = domain.HistoryEntry{
			Index:       i,
			Description: s.Description,
			Version:     s.Version,
			Timestamp:   s.Timestamp,
			Current:     i == e.index,
		}
	}
	return out
}
