package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoinRoom       = "joinRoom"
	InboundTypeChatMessage    = "chatMessage"
	InboundTypePrivateMessage = "privateMessage"
	InboundTypeMessageRead    = "messageRead"
	InboundTypeTyping         = "typing"
	InboundTypeStopTyping     = "stopTyping"
	InboundTypeLeaveRoom      = "leaveRoom"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventMessage        = "message"
	EventMessageUpdated = "messageUpdated"
	EventRoomMessages   = "roomMessages"
	EventRoomUsers      = "roomUsers"
	EventTyping         = "typing"
	EventStopTyping     = "stopTyping"
)

// JoinRoomData requests to join a room under a display name.
type JoinRoomData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// ChatMessageData is a public chat message from the client.
type ChatMessageData struct {
	Text string `json:"text"`
}

// PrivateMessageData is a direct message to one connection.
type PrivateMessageData struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

// MessageReadData records that the client has read a message.
type MessageReadData struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

// WireMessage is the message object shape shared by the message,
// messageUpdated, and roomMessages events.
type WireMessage struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Text        string   `json:"text"`
	Room        string   `json:"room"`
	Timestamp   string   `json:"timestamp"` // ISO-8601
	ReadBy      []string `json:"readBy"`
	IsPrivate   bool     `json:"isPrivate"`
	SenderID    string   `json:"senderId,omitempty"`
	RecipientID string   `json:"recipientId,omitempty"`
}

// RoomMessagesData is the one-time history batch delivered on join.
type RoomMessagesData struct {
	Room     string        `json:"room"`
	Messages []WireMessage `json:"messages"`
}

// RoomUser is one roster entry.
type RoomUser struct {
	ConnID   string `json:"connId"`
	Username string `json:"username"`
}

// RoomUsersData is the current roster of a room.
type RoomUsersData struct {
	Room  string     `json:"room"`
	Users []RoomUser `json:"users"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
