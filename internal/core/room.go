package core

import "sync"

// Room fans events out to the sessions currently subscribed to it. The
// subscriber lock is held for the duration of one Broadcast, which makes
// delivery FIFO per room relative to the order publishers commit.
type Room struct {
	Name string

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no subscribers.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// Subscribe inserts a client into the room. Returns true if newly added.
func (r *Room) Subscribe(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// Unsubscribe deletes a client from the room. Returns true if removed.
func (r *Room) Unsubscribe(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all subscribed clients. Sends are
// best-effort: a slow or disconnecting consumer's event is dropped, never
// queued for redelivery.
func (r *Room) Broadcast(event *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for client := range r.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// Empty returns true if no clients are subscribed.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients) == 0
}
