package core

import "sync"

// Client is one live connection as seen by the core layer. It is bound to
// a single authenticated user for its lifetime and holds the set of rooms
// it has joined (joining a second room does not leave the first).
type Client struct {
	ID     string
	UserID int64
	Name   string

	// Events carries broadcasts toward the transport write loop. Sends
	// are non-blocking; a full buffer means dropped events, never a
	// stalled publisher.
	Events chan *Event

	mu     sync.Mutex
	rooms  map[string]int64 // room name -> room ID
	closed bool
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string, userID int64, name string) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Name:   name,
		Events: make(chan *Event, 64),
		rooms:  make(map[string]int64),
	}
}

// roomID reports the stored room ID and whether the client has joined room.
func (c *Client) roomID(room string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.rooms[room]
	return id, ok
}

// send delivers an event directly to this client, dropping it if the
// buffer is full or the session is already closing.
func (c *Client) send(ev *Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Events <- ev:
	default:
	}
}
