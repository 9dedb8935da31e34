package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pinchat/pinchat-server/internal/files"
	"github.com/pinchat/pinchat-server/internal/store"
)

// TimestampFormat is how message timestamps appear on the wire.
const TimestampFormat = "2006-01-02 15:04:05"

// Hub coordinates sessions, presence and per-room broadcast. Its methods
// are called directly from transport goroutines; there is no global
// serialization point. Each room's state is guarded by its own lock, so
// rooms progress in parallel while mutations within one room are
// linearized.
type Hub struct {
	store    store.Store
	files    *files.Store
	presence *Presence
	log      *zerolog.Logger

	// historyLimit caps history replay on join; 0 disables replay.
	historyLimit int

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewHub creates a hub backed by the given store and upload store.
func NewHub(st store.Store, fs *files.Store, historyLimit int, logger *zerolog.Logger) *Hub {
	return &Hub{
		store:        st,
		files:        fs,
		presence:     NewPresence(),
		log:          logger,
		historyLimit: historyLimit,
		rooms:        make(map[string]*Room),
	}
}

// Presence exposes the tracker for read-only inspection.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// room returns the fan-out channel for name, creating it on first use.
// Fan-out channels are kept for the process lifetime: rooms are never
// deleted in this design.
func (h *Hub) room(name string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[name]
	if !ok {
		r = NewRoom(name)
		h.rooms[name] = r
	}
	return r
}

// JoinRoom subscribes the session to an existing room, records presence
// and broadcasts the updated count plus a join notice. Joining a room the
// session already joined is a silent no-op. A room absent from the store
// fails with room_not_found and publishes nothing.
func (h *Hub) JoinRoom(ctx context.Context, c *Client, roomName string) error {
	rec, err := h.store.GetRoomByName(ctx, roomName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return coreError(ErrCodeRoomNotFound, fmt.Sprintf("room %q does not exist", roomName))
		}
		return fmt.Errorf("lookup room: %w", err)
	}

	r := h.room(roomName)

	// Subscribe under the client lock so a concurrent Disconnect either
	// sees this room in the session's set or prevents the subscription
	// entirely. Teardown always wins.
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if _, already := c.rooms[roomName]; already {
		c.mu.Unlock()
		return nil
	}
	c.rooms[roomName] = rec.ID
	r.Subscribe(c)
	count, _ := h.presence.Join(roomName, c.UserID)
	c.mu.Unlock()

	now := time.Now().UTC()
	r.Broadcast(&Event{Kind: EventUserCount, Room: roomName, Count: count})
	r.Broadcast(&Event{
		Kind: EventSystemNotice,
		Room: roomName,
		Message: Message{
			Room:      roomName,
			From:      SystemUser,
			Text:      fmt.Sprintf("%s has joined the room", c.Name),
			CreatedAt: now,
		},
	})

	h.log.Debug().Str("client_id", c.ID).Str("room", roomName).Int("count", count).Msg("client joined room")

	h.replayHistory(ctx, c, rec)
	return nil
}

// replayHistory delivers recent messages to the joining session only.
func (h *Hub) replayHistory(ctx context.Context, c *Client, rec *store.Room) {
	if h.historyLimit <= 0 {
		return
	}

	stored, err := h.store.ListMessages(ctx, rec.ID, h.historyLimit)
	if err != nil {
		h.log.Warn().Err(err).Str("room", rec.Name).Msg("failed to load history")
		return
	}
	if len(stored) == 0 {
		return
	}

	messages := make([]Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, Message{
			ID:        m.ID,
			Room:      rec.Name,
			From:      m.Username,
			Text:      m.Content,
			File:      m.FileAttachment,
			CreatedAt: m.CreatedAt,
		})
	}
	c.send(&Event{Kind: EventHistory, Room: rec.Name, Messages: messages})
}

// LeaveRoom retracts the session from a room and broadcasts the updated
// count plus a leave notice. Leaving a room the session never joined is a
// silent no-op: nothing is published.
func (h *Hub) LeaveRoom(c *Client, roomName string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, joined := c.rooms[roomName]; !joined {
		c.mu.Unlock()
		return
	}
	delete(c.rooms, roomName)
	c.mu.Unlock()

	h.retract(c, roomName)
}

// retract performs the shared leave path: presence, unsubscribe, notices.
// The caller must already have removed roomName from the session's set.
func (h *Hub) retract(c *Client, roomName string) {
	r := h.room(roomName)
	count, _ := h.presence.Leave(roomName, c.UserID)
	r.Unsubscribe(c)

	now := time.Now().UTC()
	r.Broadcast(&Event{Kind: EventUserCount, Room: roomName, Count: count})
	r.Broadcast(&Event{
		Kind: EventSystemNotice,
		Room: roomName,
		Message: Message{
			Room:      roomName,
			From:      SystemUser,
			Text:      fmt.Sprintf("%s has left the room", c.Name),
			CreatedAt: now,
		},
	})

	h.log.Debug().Str("client_id", c.ID).Str("room", roomName).Int("count", count).Msg("client left room")
}

// Disconnect tears the session down: every joined room is left exactly as
// if an explicit leave had been requested, then the event channel is
// closed. Safe to call at any time, including concurrently with in-flight
// joins or sends from the same session; teardown wins and presence never
// leaks stale membership.
func (h *Hub) Disconnect(c *Client) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	rooms := c.rooms
	c.rooms = make(map[string]int64)
	c.mu.Unlock()

	for roomName := range rooms {
		h.retract(c, roomName)
	}

	// No subscription can reach this session anymore; in-flight direct
	// sends are excluded by the closed flag.
	c.mu.Lock()
	close(c.Events)
	c.mu.Unlock()

	h.log.Debug().Str("client_id", c.ID).Int("rooms", len(rooms)).Msg("client disconnected")
}

// SendMessage runs the ingest pipeline for a text message: validate the
// session is in the room, persist, then broadcast. A session that is not
// in the target room is dropped silently. A persistence failure is
// returned to the originating session only and nothing is broadcast.
func (h *Hub) SendMessage(ctx context.Context, c *Client, roomName, text string) error {
	if text == "" {
		return coreError(ErrCodeBadRequest, "message text is required")
	}

	roomID, joined := c.roomID(roomName)
	if !joined {
		h.log.Debug().Str("client_id", c.ID).Str("room", roomName).Msg("dropping message from session not in room")
		return nil
	}

	msg := &store.Message{
		RoomID:    roomID,
		UserID:    c.UserID,
		Username:  c.Name,
		Content:   text,
		CreatedAt: time.Now().UTC(),
	}
	// Persist before touching any room lock so storage I/O never
	// serializes fan-out.
	if err := h.store.AppendMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("room", roomName).Msg("failed to persist message")
		return coreError(ErrCodePersistFailed, "message could not be saved")
	}

	h.room(roomName).Broadcast(&Event{
		Kind: EventChatMessage,
		Room: roomName,
		Message: Message{
			ID:        msg.ID,
			Room:      roomName,
			From:      c.Name,
			Text:      msg.Content,
			CreatedAt: msg.CreatedAt,
		},
	})
	return nil
}

// SendFile runs the ingest pipeline for a file attachment: sanitize the
// filename, write the bytes to the content store, persist a message
// referencing the sanitized name, then broadcast. Collisions on the
// sanitized name overwrite previous content.
func (h *Hub) SendFile(ctx context.Context, c *Client, roomName, filename string, data []byte) error {
	roomID, joined := c.roomID(roomName)
	if !joined {
		h.log.Debug().Str("client_id", c.ID).Str("room", roomName).Msg("dropping file from session not in room")
		return nil
	}

	sanitized, err := files.Sanitize(filename)
	if err != nil {
		return coreError(ErrCodeInvalidFile, "filename is not acceptable")
	}
	if err := h.files.Save(sanitized, data); err != nil {
		h.log.Error().Err(err).Str("file", sanitized).Msg("failed to store upload")
		return coreError(ErrCodePersistFailed, "file could not be saved")
	}

	msg := &store.Message{
		RoomID:         roomID,
		UserID:         c.UserID,
		Username:       c.Name,
		Content:        fmt.Sprintf("Shared file: %s", sanitized),
		FileAttachment: sanitized,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.store.AppendMessage(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("room", roomName).Msg("failed to persist file message")
		return coreError(ErrCodePersistFailed, "message could not be saved")
	}

	h.room(roomName).Broadcast(&Event{
		Kind: EventChatMessage,
		Room: roomName,
		Message: Message{
			ID:        msg.ID,
			Room:      roomName,
			From:      c.Name,
			Text:      msg.Content,
			File:      sanitized,
			CreatedAt: msg.CreatedAt,
		},
	})
	return nil
}
