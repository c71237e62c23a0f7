package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom enters a room under a display name, leaving any
	// current room first.
	CommandJoinRoom CommandKind = iota
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandSendPrivate delivers a direct message to one connection.
	CommandSendPrivate
	// CommandMarkRead records a read receipt for a message.
	CommandMarkRead
	// CommandTyping relays a typing indicator to the room.
	CommandTyping
	// CommandStopTyping clears a typing indicator.
	CommandStopTyping
	// CommandLeaveRoom exits the current room without disconnecting.
	CommandLeaveRoom
)

// Command represents an action requested by a client.
type Command struct {
	Kind        CommandKind
	User        string // display name, joinRoom only
	Room        string // joinRoom target or markRead room context
	Text        string // chat and private message body
	RecipientID string // private message target connection
	MessageID   string // markRead target
}
