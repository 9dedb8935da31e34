package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin    = "join"
	InboundTypeLeave   = "leave"
	InboundTypeMessage = "message"
	InboundTypeFile    = "file"

	OutboundTypeMessage   = "message"
	OutboundTypeUserCount = "user_count"
	OutboundTypeHistory   = "history"
	OutboundTypeError     = "error"
)

// JoinData requests to join or leave a specific room.
type JoinData struct {
	Room string `json:"room"`
}

// MessageData is a chat message from the client.
type MessageData struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// FileData is a file upload riding the connection. Data is base64 on the
// wire (encoding/json's []byte representation).
type FileData struct {
	Room     string `json:"room"`
	Filename string `json:"filename"`
	Data     []byte `json:"data"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage carries a chat message or system notice to clients.
// CreatedAt is formatted as "YYYY-MM-DD HH:MM:SS".
type EventMessage struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	CreatedAt string `json:"created_at"`
}

// EventUserCount carries the updated presence count for a room.
type EventUserCount struct {
	Room  string `json:"room"`
	Count int    `json:"count"`
}

// EventHistory replays recent messages to a joining client.
type EventHistory struct {
	Room     string         `json:"room"`
	Messages []EventMessage `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
