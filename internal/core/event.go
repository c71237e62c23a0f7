package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessage carries a single live chat message or system notice.
	EventMessage EventKind = iota
	// EventMessageUpdated carries the full message after a read-state
	// change so all views converge on the same ReadBy set.
	EventMessageUpdated
	// EventHistory delivers message history to a client upon joining a
	// room, as one ordered batch.
	EventHistory
	// EventRoomUsers delivers the current roster of a room.
	EventRoomUsers
	// EventTyping relays that a user started typing.
	EventTyping
	// EventStopTyping relays that a user stopped typing.
	EventStopTyping
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	User     string     // display name for typing events
	Message  *Message   // EventMessage, EventMessageUpdated
	Messages []*Message // EventHistory
	Users    []Presence // EventRoomUsers
}
