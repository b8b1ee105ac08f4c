package memory

import (
	"context"
	"sync"

	"github.com/aretw0/wayfinder/pkg/ports"
)

// TouchHub implements ports.TouchSignal in process.
// Publish fans a value out to every subscriber of the event.
type TouchHub struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]func(float64)
}

// NewTouchHub creates an empty hub.
func NewTouchHub() *TouchHub {
	return &TouchHub{subs: make(map[string]map[int]func(float64))}
}

// Subscribe registers fn for event until the returned function is called.
func (h *TouchHub) Subscribe(ctx context.Context, event string, fn func(float64)) (ports.Unsubscribe, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	if h.subs[event] == nil {
		h.subs[event] = make(map[int]func(float64))
	}
	h.subs[event][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[event], id)
			if len(h.subs[event]) == 0 {
				delete(h.subs, event)
			}
		})
	}, nil
}

// Publish delivers value to the subscribers of event and returns how many received it.
func (h *TouchHub) Publish(event string, value float64) int {
	h.mu.RLock()
	fns := make([]func(float64), 0, len(h.subs[event]))
	for _, fn := range h.subs[event] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(value)
	}
	return len(fns)
}

// Subscribers returns the number of active subscriptions for event.
func (h *TouchHub) Subscribers(event string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[event])
}
