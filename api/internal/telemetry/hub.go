package telemetry

import (
	"sync"

	"cifra/api/internal/core/domain"
)

// Hub fans transform events out to live subscribers (the SSE feed).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan domain.TransformEvent]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan domain.TransformEvent]struct{}),
		buffer:      100,
	}
}

// Subscribe registers a new listener. The returned channel is closed by Unsubscribe.
func (h *Hub) Subscribe() chan domain.TransformEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan domain.TransformEvent, h.buffer) // Buffer so a slow client never blocks a transform
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (h *Hub) Unsubscribe(ch chan domain.TransformEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Publish implements domain.EventPublisher.
func (h *Hub) Publish(event domain.TransformEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default: // Drop if the subscriber's buffer is full
		}
	}
}

// Subscribers reports the number of live listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
