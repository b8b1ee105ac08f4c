package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// allSessions is the subscription key of clients that did not pick a session.
const allSessions = ""

// Message is one event queued for an SSE client.
type Message struct {
	Kind domain.EventType
	Data string
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Message]struct{} // SessionID -> set of channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan Message]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan Message]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Broadcast sends v to the subscribers of its session and to global subscribers.
func (sm *StreamManager) Broadcast(sessionID string, kind domain.EventType, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: encode failed", "err", err)
		return
	}
	msg := Message{Kind: kind, Data: string(data)}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	keys := []string{allSessions}
	if sessionID != allSessions {
		keys = append(keys, sessionID)
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: Client buffer full, dropping message", "session", sessionID)
			}
		}
	}
}

// Subscribers counts the clients listening to sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Hooks streams automaton lifecycle events to SSE clients.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			sm.Broadcast(e.SessionID, e.Type, e)
		},
		OnSignal: func(_ context.Context, e *domain.SignalEvent) {
			sm.Broadcast(e.SessionID, e.Type, e)
		},
		OnSegment: func(_ context.Context, e *domain.SegmentEvent) {
			sm.Broadcast(e.SessionID, e.Type, e)
		},
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// ?session_id= narrows the stream to one trip; ?watch=state_enter,segment
// keeps only the listed event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := r.URL.Query().Get("session_id")
	var watch map[domain.EventType]bool
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watch = make(map[domain.EventType]bool)
		for _, kind := range strings.Split(raw, ",") {
			watch[domain.EventType(strings.TrimSpace(kind))] = true
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.Logger.Info("SSE: client subscribed", "session", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE: client disconnected", "session", sessionID)
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if watch != nil && !watch[msg.Kind] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Kind, msg.Data)
			flusher.Flush()
		}
	}
}
