package document

import (
	"fmt"

	"github.com/aretw0/lessonflow/pkg/domain"
)

// SaveState records the live document right away. A pending debounced edit is
// folded into this entry.
func (s *Store) SaveState(description string) {
	s.mu.Lock()
	defer s.unlockAndNotify()
	s.saveLocked(description)
}

// FlushPendingSaves records a pending debounced edit immediately.
func (s *Store) FlushPendingSaves() {
	s.mu.Lock()
	defer s.unlockAndNotify()
	s.flushLocked()
}

// Undo steps back one entry and applies it to the live document.
// It returns false when there is nothing to undo.
func (s *Store) Undo() (*domain.Snapshot, bool) {
	return s.step(domain.EventUndo)
}

// Redo steps forward one entry and applies it to the live document.
// It returns false when there is nothing to redo.
func (s *Store) Redo() (*domain.Snapshot, bool) {
	return s.step(domain.EventRedo)
}

// JumpToState walks the history to entry target, one step at a time, and
// returns the snapshot applied last.
func (s *Store) JumpToState(target int) (*domain.Snapshot, error) {
	s.FlushPendingSaves()

	s.mu.Lock()
	length, index := s.history.Len(), s.history.Index()
	s.mu.Unlock()

	if target < 0 || target >= length {
		return nil, fmt.Errorf("jump to state: %w: %d of %d", domain.ErrIndexOutOfRange, target, length)
	}

	var last *domain.Snapshot
	for index != target {
		var (
			snap *domain.Snapshot
			ok   bool
		)
		if index > target {
			snap, ok = s.Undo()
		} else {
			snap, ok = s.Redo()
		}
		if !ok {
			break
		}
		last = snap
		index = s.HistoryIndex()
	}

	if last == nil {
		s.mu.Lock()
		last, _ = s.history.Current()
		s.mu.Unlock()
	}
	return last, nil
}

// ClearHistory collapses the timeline into a single entry holding the live document.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.unlockAndNotify()

	s.flushLocked()
	s.history.Reset(s.doc, "Clear history")
	s.logger.Debug("History cleared", "version", s.doc.Version)

	if s.hooks.OnNavigate != nil {
		ev := s.historyEvent(domain.EventClear, "Clear history")
		s.enqueue(func() { s.hooks.OnNavigate(ev) })
	}
	s.emitCommit("Clear history")
}

// Restore replaces the live document with snap without recording it. A
// pending debounced edit is recorded first so its timer cannot fire against
// the restored document.
func (s *Store) Restore(snap domain.Snapshot) {
	s.mu.Lock()
	s.flushLocked()
	view := s.beginRestoreLocked(snap.Document, snap.Description)
	s.unlockAndNotify()
	s.finishRestore(view)
}

func (s *Store) step(kind domain.EventType) (*domain.Snapshot, bool) {
	s.mu.Lock()
	s.flushLocked()

	move := s.history.Undo
	if kind == domain.EventRedo {
		move = s.history.Redo
	}
	snap, ok := move()
	if !ok {
		s.unlockAndNotify()
		return nil, false
	}

	s.logger.Debug("History step", "direction", kind, "index", s.history.Index(), "description", snap.Description)
	if s.hooks.OnNavigate != nil {
		ev := s.historyEvent(kind, snap.Description)
		ev.Version = snap.Version
		s.enqueue(func() { s.hooks.OnNavigate(ev) })
	}

	view := s.beginRestoreLocked(snap.Document, fmt.Sprintf("%s: %s", kind, snap.Description))
	s.unlockAndNotify()
	s.finishRestore(view)
	return snap, true
}

// beginRestoreLocked swaps the live document and raises the restoring flag.
// finishRestore must follow once the lock is released.
func (s *Store) beginRestoreLocked(doc domain.Document, reason string) domain.Document {
	s.restoring = true
	s.doc = doc.Clone()
	if s.doc.NodeBlocks == nil {
		s.doc.NodeBlocks = map[string][]domain.Block{}
	}
	if s.hooks.OnRestore != nil {
		ev := s.historyEvent(domain.EventRestore, reason)
		s.enqueue(func() { s.hooks.OnRestore(ev) })
	}
	s.emitCommit(reason)
	return s.doc.Clone()
}

// finishRestore pushes view to the applier and clears the restoring flag even
// if the applier panics. Mutations made by the applier are not recorded.
func (s *Store) finishRestore(view domain.Document) {
	defer func() {
		s.mu.Lock()
		s.restoring = false
		s.mu.Unlock()
	}()
	if s.applier != nil {
		s.applier(view)
	}
}
