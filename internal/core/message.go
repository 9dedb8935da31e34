package core

import "time"

// SystemUser is the synthetic author of join/leave notices.
const SystemUser = "System"

// Message is the domain model for a chat message as broadcast to rooms.
type Message struct {
	ID        int64
	Room      string
	From      string
	Text      string
	File      string
	CreatedAt time.Time
}
