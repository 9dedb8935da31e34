package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pinchat/pinchat-server/internal/auth"
	"github.com/pinchat/pinchat-server/internal/core"
	"github.com/pinchat/pinchat-server/internal/store"
)

// RoomHandlers provides HTTP handlers for room management endpoints.
type RoomHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		store: st,
		log:   logger,
	}
}

// CreateRoomRequest represents the create room request body.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
	PIN  string `json:"pin" binding:"required,min=4"`
}

// JoinRoomRequest represents the join room request body.
type JoinRoomRequest struct {
	Name string `json:"name" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
}

// RoomResponse represents a room in API responses. The PIN hash never
// leaves the server.
type RoomResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatorID int64  `json:"creator_id"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// MessageResponse mirrors the broadcast shape of a chat message.
type MessageResponse struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	CreatedAt string `json:"created_at"`
}

func roomResponse(room *store.Room) RoomResponse {
	return RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatorID: room.CreatorID,
		Active:    room.Active,
		CreatedAt: room.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateRoom handles room creation. The join PIN is bcrypt-hashed before
// it reaches the store.
// POST /api/rooms
func (h *RoomHandlers) CreateRoom(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		h.log.Error().Msg("user_id not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	pinHash, err := auth.HashSecret(req.PIN)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to hash room pin")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	room, err := h.store.CreateRoom(c.Request.Context(), req.Name, pinHash, uid)
	if err != nil {
		// SQLite UNIQUE constraint on the room name.
		if strings.Contains(err.Error(), "UNIQUE") {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "room with this name already exists"})
			return
		}
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to create room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("room_name", room.Name).Int64("room_id", room.ID).Int64("creator_id", uid).Msg("room created")
	c.JSON(http.StatusCreated, roomResponse(room))
}

// JoinRoom verifies a room's PIN for the calling user. A wrong PIN is an
// authorization failure reported to the caller only; nothing is broadcast.
// POST /api/rooms/join
func (h *RoomHandlers) JoinRoom(c *gin.Context) {
	if _, ok := userID(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid join room request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	room, err := h.store.GetRoomByName(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_name", req.Name).Msg("failed to look up room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	if err := auth.CompareSecret(room.PINHash, req.PIN); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid room name or PIN"})
		return
	}

	c.JSON(http.StatusOK, roomResponse(room))
}

// ListRooms handles listing active rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	if _, ok := userID(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	rooms, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		response = append(response, roomResponse(room))
	}

	c.JSON(http.StatusOK, response)
}

// ListMessages returns a room's full history, oldest first, with fields
// matching the broadcast shape.
// GET /api/rooms/:name/messages
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	if _, ok := userID(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	name := c.Param("name")
	room, err := h.store.GetRoomByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		h.log.Error().Err(err).Str("room_name", name).Msg("failed to look up room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.ListMessages(c.Request.Context(), room.ID, 0)
	if err != nil {
		h.log.Error().Err(err).Str("room_name", name).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, MessageResponse{
			Username:  msg.Username,
			Message:   msg.Content,
			File:      msg.FileAttachment,
			CreatedAt: msg.CreatedAt.Format(core.TimestampFormat),
		})
	}

	c.JSON(http.StatusOK, response)
}
