package document

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lessonflow/internal/logging"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/history"
	"github.com/aretw0/lessonflow/pkg/registry"
	"github.com/google/uuid"
)

// Normalizer rewrites derived parts of the document after each mutation
// (e.g. pruning selections that became invalid). It returns a note per rewrite.
type Normalizer func(doc *domain.Document) []string

// Applier pushes a restored document to the rendering layer.
// It runs while the store is flagged as restoring.
type Applier func(doc domain.Document)

type recordMode int

const (
	recordNow recordMode = iota
	recordDebounced
	recordNone
)

// Store is the single source of truth of a flow document. All mutation goes
// through it, and it decides which mutations become history entries.
// Safe for concurrent use, although the editor is designed for a single writer.
type Store struct {
	mu        sync.Mutex
	doc       domain.Document
	history   *history.Engine
	debounce  *history.Debouncer
	restoring bool

	registry  *registry.Registry
	normalize Normalizer
	applier   Applier
	newID     func() string
	now       func() time.Time
	logger    *slog.Logger
	hooks     domain.LifecycleHooks

	historyLimit  int
	debounceDelay time.Duration

	subscribers map[int]func(domain.CommitEvent)
	nextSubID   int
	outbox      []func()
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHistoryLimit sets the maximum number of history entries.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		s.historyLimit = n
	}
}

// WithDebounceDelay sets the delay before a debounced edit is recorded.
func WithDebounceDelay(d time.Duration) Option {
	return func(s *Store) {
		s.debounceDelay = d
	}
}

// WithIDGenerator overrides the id generator (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// WithDocument sets the initial document (the default two-node flow otherwise).
func WithDocument(doc domain.Document) Option {
	return func(s *Store) {
		s.doc = doc.Clone()
	}
}

// WithNormalizer registers the commit-time normalizer.
func WithNormalizer(fn Normalizer) Option {
	return func(s *Store) {
		s.normalize = fn
	}
}

// WithApplier registers the function that pushes restored documents to the view.
func WithApplier(fn Applier) Option {
	return func(s *Store) {
		s.applier = fn
	}
}

// WithRegistry sets the block type registry.
func WithRegistry(r *registry.Registry) Option {
	return func(s *Store) {
		s.registry = r
	}
}

// New creates a Store and records the initial state as the first history entry.
func New(opts ...Option) *Store {
	s := &Store{
		doc:         domain.NewDefaultDocument(),
		newID:       uuid.NewString,
		now:         time.Now,
		logger:      logging.NewNop(),
		subscribers: make(map[int]func(domain.CommitEvent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = registry.Default()
	}
	if s.doc.NodeBlocks == nil {
		s.doc.NodeBlocks = map[string][]domain.Block{}
	}
	s.history = history.New(history.WithLimit(s.historyLimit), history.WithClock(s.now))
	s.debounce = history.NewDebouncer(s.debounceDelay)
	s.history.Save(s.doc, "Initial state")
	return s
}

// --- Queries ---

// Document returns a deep copy of the live document.
func (s *Store) Document() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Nodes returns a copy of the live nodes.
func (s *Store) Nodes() []domain.Node {
	return s.Document().Nodes
}

// Edges returns a copy of the live edges.
func (s *Store) Edges() []domain.Edge {
	return s.Document().Edges
}

// Node returns a copy of one node.
func (s *Store) Node(id string) (domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.doc.FindNode(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// GetNodeBlocks returns a copy of the ordered blocks of a node.
func (s *Store) GetNodeBlocks(nodeID string) []domain.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	blocks := s.doc.NodeBlocks[nodeID]
	out := make([]domain.Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// Version returns the document version.
func (s *Store) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Version
}

// History returns the timeline.
func (s *Store) History() []domain.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// HistoryIndex returns the history cursor.
func (s *Store) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Index()
}

// CanUndo reports whether Undo would move the cursor.
// A pending debounced edit counts, since Undo records it first.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo() || s.debounce.Pending()
}

// CanRedo reports whether Redo would move the cursor.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo() && !s.debounce.Pending()
}

// HasPendingSave reports whether a debounced edit awaits recording.
func (s *Store) HasPendingSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debounce.Pending()
}

// IsRestoring reports whether a history restore is being applied.
func (s *Store) IsRestoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoring
}

// Registry returns the block type registry.
func (s *Store) Registry() *registry.Registry {
	return s.registry
}

// Subscribe registers fn to be called after every commit. It returns the
// function that removes the subscription.
func (s *Store) Subscribe(fn func(domain.CommitEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// --- Internals (callers hold s.mu) ---

// commitLocked finalizes a mutation of s.doc.
func (s *Store) commitLocked(description string, mode recordMode) {
	if s.normalize != nil && !s.restoring {
		for _, note := range s.normalize(&s.doc) {
			s.logger.Debug("Normalized document", "detail", note)
		}
	}

	switch mode {
	case recordNow:
		s.saveLocked(description)
	case recordDebounced:
		if s.restoring {
			s.logger.Debug("Debounced snapshot suppressed while restoring", "description", description)
			break
		}
		s.debounce.Arm(description, s.onDebounceFire)
	}
	s.emitCommit(description)
}

// saveLocked records the live document. A pending debounced edit is folded
// into this entry instead of producing a second one.
func (s *Store) saveLocked(description string) {
	if s.restoring {
		s.logger.Debug("Snapshot suppressed while restoring", "description", description)
		return
	}
	s.debounce.Cancel()

	s.doc.Version++
	snap := s.history.Save(s.doc, description)

	s.logger.Debug("Snapshot saved",
		"description", description,
		"index", s.history.Index(),
		"length", s.history.Len(),
		"version", snap.Version,
	)

	if s.hooks.OnSnapshot != nil {
		ev := s.historyEvent(domain.EventSnapshot, description)
		if data, err := json.Marshal(snap.Document); err == nil {
			ev.Size = len(data)
		}
		s.enqueue(func() { s.hooks.OnSnapshot(ev) })
	}
}

// flushLocked records a pending debounced edit right away.
func (s *Store) flushLocked() {
	if description, ok := s.debounce.Cancel(); ok {
		s.logger.Debug("Flushing pending snapshot", "description", description)
		s.saveLocked(description)
	}
}

func (s *Store) onDebounceFire(generation uint64) {
	s.mu.Lock()
	defer s.unlockAndNotify()

	description, ok := s.debounce.Take(generation)
	if !ok {
		// Cancelled or superseded while the timer goroutine was waiting for the lock.
		return
	}
	s.saveLocked(description)
}

func (s *Store) historyEvent(t domain.EventType, description string) *domain.HistoryEvent {
	return &domain.HistoryEvent{
		Timestamp:   s.now(),
		Type:        t,
		Description: description,
		Index:       s.history.Index(),
		Length:      s.history.Len(),
		Version:     s.doc.Version,
	}
}

func (s *Store) emitCommit(reason string) {
	ev := domain.CommitEvent{
		Timestamp: s.now(),
		Reason:    reason,
		Version:   s.doc.Version,
		Restoring: s.restoring,
	}
	subs := make([]func(domain.CommitEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	hook := s.hooks.OnCommit
	s.enqueue(func() {
		if hook != nil {
			hook(&ev)
		}
		for _, fn := range subs {
			fn(ev)
		}
	})
}

func (s *Store) enqueue(fn func()) {
	s.outbox = append(s.outbox, fn)
}

// unlockAndNotify releases the lock, then runs queued callbacks so that
// subscribers may call back into the store.
func (s *Store) unlockAndNotify() {
	outbox := s.outbox
	s.outbox = nil
	s.mu.Unlock()
	for _, fn := range outbox {
		fn()
	}
}
