package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/internal/logging"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates flow access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.FlowStore

	mu      sync.Mutex            // guards locks and editors
	locks   map[string]*lockEntry // active per-flow locks
	editors map[string]*lessonflow.Editor

	locker     ports.DistributedLocker // optional
	lockTTL    time.Duration
	editorOpts []lessonflow.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the TTL of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions sets options applied to every editor the manager opens.
func WithEditorOptions(opts ...lessonflow.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.FlowStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		editors: make(map[string]*lessonflow.Editor),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

func (m *Manager) newEditor(opts ...lessonflow.Option) *lessonflow.Editor {
	all := []lessonflow.Option{lessonflow.WithLogger(m.logger)}
	all = append(all, m.editorOpts...)
	return lessonflow.New(append(all, opts...)...)
}

func (m *Manager) cached(id string) (*lessonflow.Editor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ed, ok := m.editors[id]
	return ed, ok
}

func (m *Manager) remember(ed *lessonflow.Editor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editors[ed.ID()] = ed
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.editors, id)
}

// Create starts a new flow, persists it and keeps its editor open.
func (m *Manager) Create(ctx context.Context, name, description string) (*lessonflow.Editor, error) {
	ed := m.newEditor(lessonflow.WithFlowInfo(domain.FlowInfo{Name: name, Description: description}))
	err := m.WithLock(ctx, ed.ID(), func(ctx context.Context) error {
		return m.persist(ctx, ed)
	})
	if err != nil {
		return nil, err
	}
	m.remember(ed)
	m.logger.Info("Flow created", "flow_id", ed.ID(), "name", name)
	return ed, nil
}

// Open returns the editor of a flow, loading it from the store if needed.
// Returns domain.ErrFlowNotFound if the flow does not exist.
func (m *Manager) Open(ctx context.Context, id string) (*lessonflow.Editor, error) {
	if ed, ok := m.cached(id); ok {
		return ed, nil
	}

	var ed *lessonflow.Editor
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		// Another caller may have loaded it while we waited.
		if cached, ok := m.cached(id); ok {
			ed = cached
			return nil
		}
		flow, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		opts := append([]lessonflow.Option{lessonflow.WithLogger(m.logger)}, m.editorOpts...)
		ed = lessonflow.Open(flow, opts...)
		m.remember(ed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ed, nil
}

// Save persists the current state of an open flow.
func (m *Manager) Save(ctx context.Context, id string) error {
	ed, ok := m.cached(id)
	if !ok {
		return fmt.Errorf("%w: %s is not open", domain.ErrFlowNotFound, id)
	}
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.persist(ctx, ed)
	})
}

// Put stores a flow file as-is, replacing the open editor if any.
func (m *Manager) Put(ctx context.Context, flow domain.FlowFile) (*lessonflow.Editor, error) {
	var ed *lessonflow.Editor
	err := m.WithLock(ctx, flow.ID, func(ctx context.Context) error {
		if err := m.store.Save(ctx, flow); err != nil {
			return err
		}
		opts := append([]lessonflow.Option{lessonflow.WithLogger(m.logger)}, m.editorOpts...)
		ed = lessonflow.Open(flow, opts...)
		m.remember(ed)
		return nil
	})
	return ed, err
}

// Close persists an open flow and drops its editor from memory.
func (m *Manager) Close(ctx context.Context, id string) error {
	ed, ok := m.cached(id)
	if !ok {
		return nil
	}
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		ed.Close()
		return m.persist(ctx, ed)
	})
	if err != nil {
		return err
	}
	m.forget(id)
	return nil
}

// Delete removes the flow from the store and from memory.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.forget(id)
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying flow store.
func (m *Manager) Store() ports.FlowStore {
	return m.store
}

// SaveAll persists every open flow. Errors are joined.
func (m *Manager) SaveAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.editors))
	for id := range m.editors {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.Save(ctx, id); err != nil && !errors.Is(err, domain.ErrFlowNotFound) {
			errs = append(errs, fmt.Errorf("save %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) persist(ctx context.Context, ed *lessonflow.Editor) error {
	flow, err := ed.Export()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, flow); err != nil {
		return fmt.Errorf("failed to persist flow: %w", err)
	}
	return nil
}

// WithLock executes a function while holding the lock for the flow.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"flow_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
