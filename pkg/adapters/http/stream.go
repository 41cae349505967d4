package http

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// sseEvent is one named server-sent event. Phase transitions stream as
// "phase" events; per-turn state deltas stream as "diff" events.
type sseEvent struct {
	Name string
	Data string
}

// streamManager fans events out to the SSE subscribers of a session.
type streamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- sseEvent]struct{}
}

func newStreamManager() *streamManager {
	return &streamManager{
		subscribers: make(map[string]map[chan<- sseEvent]struct{}),
	}
}

func (sm *streamManager) subscribe(sessionID string) (chan sseEvent, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan sseEvent, 16)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- sseEvent]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// broadcast delivers to every subscriber without blocking: a full buffer
// means a slow client, and the event is dropped for that client only.
func (sm *streamManager) broadcast(sessionID string, ev sseEvent) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// streamEvents handles GET /sessions/{sessionID}/events: an SSE stream of
// the session's phase transitions and per-turn state diffs, open until the
// client disconnects.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Detail: "streaming not supported"})
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("sse subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected", "session_id", sessionID)
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
