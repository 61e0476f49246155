package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// Store implements ports.FlowStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.FlowFile
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.FlowFile),
	}
}

// Save persists the flow in memory.
func (s *Store) Save(ctx context.Context, flow domain.FlowFile) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := flow.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flow.ID] = copied
	return nil
}

// Load retrieves the flow from memory.
func (s *Store) Load(ctx context.Context, id string) (domain.FlowFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flow, ok := s.data[id]
	if !ok {
		return domain.FlowFile{}, domain.ErrFlowNotFound
	}

	// Copy on read so callers can't mutate stored flows.
	return flow.Clone(), nil
}

// Delete removes the flow.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored flow ids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
