package http

import (
	"encoding/json"
	"time"

	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/proto"
)

// inboundToCommand maps a decoded envelope to a core command. A nil
// command with a nil error means the payload was malformed and should
// be dropped with a log entry but no client notice; a non-nil
// proto.Error is sent back as a protocol error frame.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, nil
		}
		if join.Username == "" || join.Room == "" {
			return nil, nil, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			User: join.Username,
			Room: join.Room,
		}, nil, nil

	case proto.InboundTypeChatMessage:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, nil
		}
		if msg.Text == "" {
			return nil, nil, nil
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Text: msg.Text,
		}, nil, nil

	case proto.InboundTypePrivateMessage:
		var pm proto.PrivateMessageData
		if err := json.Unmarshal(inbound.Data, &pm); err != nil {
			return nil, nil, nil
		}
		if pm.RecipientID == "" || pm.Message == "" {
			return nil, nil, nil
		}
		return &core.Command{
			Kind:        core.CommandSendPrivate,
			RecipientID: pm.RecipientID,
			Text:        pm.Message,
		}, nil, nil

	case proto.InboundTypeMessageRead:
		var read proto.MessageReadData
		if err := json.Unmarshal(inbound.Data, &read); err != nil {
			return nil, nil, nil
		}
		if read.MessageID == "" || read.RoomID == "" {
			return nil, nil, nil
		}
		return &core.Command{
			Kind:      core.CommandMarkRead,
			MessageID: read.MessageID,
			Room:      read.RoomID,
		}, nil, nil

	case proto.InboundTypeTyping:
		return &core.Command{Kind: core.CommandTyping}, nil, nil

	case proto.InboundTypeStopTyping:
		return &core.Command{Kind: core.CommandStopTyping}, nil, nil

	case proto.InboundTypeLeaveRoom:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil, nil

	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessage,
			Data:  wireFromMessage(event.Message),
		}
	case core.EventMessageUpdated:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventMessageUpdated,
			Data:  wireFromMessage(event.Message),
		}
	case core.EventHistory:
		messages := make([]proto.WireMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, wireFromMessage(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomMessages,
			Data: proto.RoomMessagesData{
				Room:     event.Room,
				Messages: messages,
			},
		}
	case core.EventRoomUsers:
		users := make([]proto.RoomUser, 0, len(event.Users))
		for _, p := range event.Users {
			users = append(users, proto.RoomUser{ConnID: p.ConnID, Username: p.Name})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventRoomUsers,
			Data: proto.RoomUsersData{
				Room:  event.Room,
				Users: users,
			},
		}
	case core.EventTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTyping,
			Data:  event.User,
		}
	case core.EventStopTyping:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventStopTyping,
			Data:  event.User,
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func wireFromMessage(msg *core.Message) proto.WireMessage {
	if msg == nil {
		return proto.WireMessage{}
	}
	readBy := msg.ReadBy
	if readBy == nil {
		readBy = []string{}
	}
	return proto.WireMessage{
		ID:          msg.ID,
		Username:    msg.Sender,
		Text:        msg.Text,
		Room:        msg.Room,
		Timestamp:   msg.CreatedAt.Format(time.RFC3339),
		ReadBy:      readBy,
		IsPrivate:   msg.IsPrivate,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
	}
}
