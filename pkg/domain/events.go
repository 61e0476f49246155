package domain

import (
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventUndo     EventType = "undo"
	EventRedo     EventType = "redo"
	EventClear    EventType = "clear"
	EventRestore  EventType = "restore"
	EventCommit   EventType = "commit"
)

// HistoryEvent describes a change of the history timeline.
type HistoryEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	Index       int       `json:"index"`
	Length      int       `json:"length"`
	Version     int       `json:"version"`
	// Size is the encoded size of the snapshot in bytes, when known.
	Size int `json:"size,omitempty"`
}

// CommitEvent is emitted after every state change of the live document,
// recorded or not.
type CommitEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	Version   int       `json:"version"`
	Restoring bool      `json:"restoring"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnSnapshot func(*HistoryEvent)
	OnNavigate func(*HistoryEvent)
	OnRestore  func(*HistoryEvent)
	OnCommit   func(*CommitEvent)
}
