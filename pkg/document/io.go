package document

import (
	"fmt"

	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/aretw0/lessonflow/pkg/schema"
)

// Import replaces the live document with a persisted flow. The payload is fully
// validated before any state is touched; on error nothing changes.
// The replacement is recorded as an undoable entry.
func (s *Store) Import(data []byte) (domain.FlowFile, error) {
	file, err := schema.ParseFlow(data)
	if err != nil {
		return domain.FlowFile{}, fmt.Errorf("import: %w", err)
	}
	s.Load(file.Document(), "Import flow")
	return file, nil
}

// Load replaces the live document with doc and records it under description.
// The applier receives the new document as it does for undo and redo.
func (s *Store) Load(doc domain.Document, description string) {
	s.mu.Lock()
	s.flushLocked()

	doc = doc.Clone()
	if doc.Version < s.doc.Version {
		// Keep versions monotonic across the timeline.
		doc.Version = s.doc.Version
	}
	s.doc = doc
	s.commitLocked(description, recordNow)

	view := s.doc.Clone()
	s.restoring = true
	s.unlockAndNotify()
	s.finishRestore(view)
}

// Export builds the persisted representation of the live document.
func (s *Store) Export(info domain.FlowInfo, viewport domain.Viewport) (domain.FlowFile, error) {
	doc := s.Document()
	return schema.ExportFlow(doc, info, viewport, s.now())
}
