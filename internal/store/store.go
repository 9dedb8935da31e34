package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Room represents a PIN-protected chat room. Rooms are created once and
// never deleted; Active is advisory and not consulted by broadcast logic.
type Room struct {
	ID        int64
	Name      string
	PINHash   string
	CreatorID int64
	Active    bool
	CreatedAt time.Time
}

// Message represents a persisted chat message. Immutable once created.
// FileAttachment holds the sanitized filename of an upload, or "" for
// plain text messages.
type Message struct {
	ID             int64
	RoomID         int64
	UserID         int64
	Username       string
	Content        string
	FileAttachment string
	CreatedAt      time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a new room with a hashed join PIN.
	CreateRoom(ctx context.Context, name, pinHash string, creatorID int64) (*Room, error)

	// GetRoomByName retrieves a room by its unique name.
	GetRoomByName(ctx context.Context, name string) (*Room, error)

	// ListRooms lists all active rooms, newest first.
	ListRooms(ctx context.Context) ([]*Room, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// AppendMessage persists a message and fills in its ID. CreatedAt is
	// set by the caller.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages retrieves a room's messages ordered by creation time
	// ascending, ties broken by insertion order. limit <= 0 means all;
	// otherwise the most recent limit messages are returned, still
	// ascending.
	ListMessages(ctx context.Context, roomID int64, limit int) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
