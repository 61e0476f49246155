package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/lessonflow"
	"github.com/aretw0/lessonflow/pkg/domain"
	"github.com/oapi-codegen/runtime"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // FlowID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(flowID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[flowID]; !ok {
		sm.subscribers[flowID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[flowID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[flowID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, flowID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(flowID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "flow_id", flowID, "payload_size", len(msg))

	for ch := range sm.subscribers[flowID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "flow_id", flowID)
		}
	}
}

// diffFeed turns the commits of one editor into document diffs.
type diffFeed struct {
	mu   sync.Mutex
	last domain.Document
}

// watch attaches the editor to the stream manager once.
func (s *Server) watch(ed *lessonflow.Editor) {
	if _, loaded := s.watched.LoadOrStore(ed, struct{}{}); loaded {
		return
	}
	feed := &diffFeed{last: ed.Document()}
	id := ed.ID()
	ed.Subscribe(func(domain.CommitEvent) {
		cur := ed.Document()
		feed.mu.Lock()
		diff := domain.Diff(&feed.last, &cur)
		feed.last = cur
		feed.mu.Unlock()
		if diff == nil {
			return
		}
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(bytes))
		}
	})
}

// keepDiff applies the watch filter of a subscription.
func keepDiff(msg string, watchList []string) bool {
	if len(watchList) == 0 {
		return true
	}
	var diff domain.DocumentDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch strings.TrimSpace(field) {
		case "nodes":
			if len(diff.AddedNodes)+len(diff.RemovedNodes)+len(diff.ChangedNodes) > 0 {
				return true
			}
		case "edges":
			if len(diff.AddedEdges)+len(diff.RemovedEdges)+len(diff.ChangedEdges) > 0 {
				return true
			}
		case "blocks":
			if len(diff.ChangedBlocks) > 0 {
				return true
			}
		}
	}
	return false
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	var flowID string
	if err := runtime.BindQueryParameter("form", true, true, "flowId", r.URL.Query(), &flowID); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid flowId: %w", err))
		return
	}
	var watch *string
	if err := runtime.BindQueryParameter("form", true, false, "watch", r.URL.Query(), &watch); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid watch: %w", err))
		return
	}

	ed, err := s.Flows.Open(r.Context(), flowID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.watch(ed)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to flow updates", "flow_id", flowID)
	ch, cancel := s.Streams.Subscribe(flowID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watchList []string
	if watch != nil && *watch != "" {
		watchList = strings.Split(*watch, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "flow_id", flowID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !keepDiff(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
