package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventChatMessage notifies clients about a user-authored message in a room.
	EventChatMessage EventKind = iota
	// EventSystemNotice announces a join or leave, authored by SystemUser.
	EventSystemNotice
	// EventUserCount carries the updated presence count for a room.
	EventUserCount
	// EventHistory delivers message history to a client upon joining a room.
	EventHistory
	// EventError notifies a single client about a local failure.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Count    int
	Message  Message
	Messages []Message // For EventHistory
	Error    *CoreError
}
