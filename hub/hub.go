// Package hub fans check-in notifications out to connected admin observers.
package hub

import (
	"sync"

	"github.com/google/uuid"
)

const subscriptionBuffer = 256

// Subscription is one observer's handle on the hub. Messages arrive on C until
// Unsubscribe closes it.
type Subscription struct {
	ID string
	C  chan []byte
}

// Hub holds the flat, unordered set of subscribed observers. Delivery is
// best-effort: no retry, no persistence, and a subscriber that cannot keep up
// has the message dropped rather than blocking publish.
type Hub struct {
	mutex sync.RWMutex
	subs  map[*Subscription]bool
}

func New() *Hub {
	return &Hub{subs: make(map[*Subscription]bool)}
}

func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ID: uuid.NewString(),
		C:  make(chan []byte, subscriptionBuffer),
	}
	h.mutex.Lock()
	h.subs[sub] = true
	h.mutex.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, exists := h.subs[sub]; exists {
		delete(h.subs, sub)
		close(sub.C)
	}
}

// Publish delivers payload to every currently subscribed observer.
func (h *Hub) Publish(payload []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for sub := range h.subs {
		select {
		case sub.C <- payload:
		default:
		}
	}
}

// Count reports how many observers are currently subscribed.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subs)
}
