package notifier

import (
	"log"
	"sync"
)

// EventType identifies the kind of externally-visible mutation that occurred.
type EventType string

const (
	EventProfileCreated    EventType = "profile_created"
	EventUserStatusChanged EventType = "user_status_changed"
	EventResultAppended    EventType = "result_appended"
	EventSessionSaved      EventType = "session_saved"
)

// Event is a "state changed" signal published on every mutation that changes
// externally-visible state. Consumers re-query the store on receipt; the event
// deliberately carries no payload beyond identity, so stale events are
// harmless.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id,omitempty"` // Affected user, when the mutation is user-scoped
	Origin string    `json:"origin,omitempty"`  // Process instance that produced the event (set by the bridge)
}

// Hub is the in-process publish/observe channel. It delivers every published
// event to all local subscribers, including the publisher's own context —
// the platform's native cross-context signal never reaches the writer, so
// this synthetic same-context channel exists alongside it.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// NewHub creates an empty notification hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new observer. The returned cancel function must be
// called when the observer goes away; subscription and unsubscription are
// deterministic (no polling of shared state).
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans the event out to every current subscriber. A subscriber that
// has fallen behind its buffer is skipped rather than blocking the writer;
// consumers re-query the store on any signal, so a dropped duplicate loses
// nothing.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			log.Printf("WARN: [Notifier] Subscriber %d is not keeping up, dropping event '%s'.", id, event.Type)
		}
	}
}

// SubscriberCount reports the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
