package http

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/pinchat/pinchat-server/internal/core"
	"github.com/pinchat/pinchat-server/internal/proto"
)

// dispatch routes one inbound envelope to the hub. It returns a protocol
// error to surface to this client only, or a transport error that tears
// the connection down.
func (h *WSHandler) dispatch(ctx context.Context, client *core.Client, inbound proto.Inbound) (*proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, err
		}
		if join.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return protoErrorFrom(h.hub.JoinRoom(ctx, client, join.Room))

	case proto.InboundTypeLeave:
		var leave proto.JoinData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, err
		}
		if leave.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		h.hub.LeaveRoom(client, leave.Room)
		return nil, nil

	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, err
		}
		if msg.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return protoErrorFrom(h.hub.SendMessage(ctx, client, msg.Room, msg.Message))

	case proto.InboundTypeFile:
		var file proto.FileData
		if err := json.Unmarshal(inbound.Data, &file); err != nil {
			return nil, err
		}
		if file.Room == "" {
			return &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return protoErrorFrom(h.hub.SendFile(ctx, client, file.Room, file.Filename, file.Data))

	default:
		return &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

// protoErrorFrom maps a domain error to a wire error. Unexpected errors
// propagate and close the connection.
func protoErrorFrom(err error) (*proto.Error, error) {
	if err == nil {
		return nil, nil
	}
	var coreErr *core.CoreError
	if errors.As(err, &coreErr) {
		return &proto.Error{Code: coreErr.Code, Msg: coreErr.Message}, nil
	}
	return nil, err
}

func eventMessage(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		Username:  msg.From,
		Message:   msg.Text,
		File:      msg.File,
		CreatedAt: msg.CreatedAt.Format(core.TimestampFormat),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventChatMessage, core.EventSystemNotice:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: eventMessage(event.Message),
		}
	case core.EventUserCount:
		return proto.Outbound{
			Type: proto.OutboundTypeUserCount,
			Data: proto.EventUserCount{
				Room:  event.Room,
				Count: event.Count,
			},
		}
	case core.EventHistory:
		messages := make([]proto.EventMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, eventMessage(msg))
		}
		return proto.Outbound{
			Type: proto.OutboundTypeHistory,
			Data: proto.EventHistory{
				Room:     event.Room,
				Messages: messages,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}
