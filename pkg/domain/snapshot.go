package domain

import "time"

// Snapshot is a history entry: an independent copy of the Document tagged with
// a human readable description for the timeline UI.
type Snapshot struct {
	Document
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.Document = s.Document.Clone()
	return s
}

// HistoryEntry is the timeline view of a snapshot, without the document body.
type HistoryEntry struct {
	Index       int       `json:"index"`
	Description string    `json:"description"`
	Version     int       `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	Current     bool      `json:"current"`
}
