package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a message lookup matches nothing.
var ErrNotFound = errors.New("message not found")

// Message represents a persisted chat message.
//
// Private messages are stored under a room id derived from the two
// participant connection identities. Identities are session-scoped, so
// a private conversation is only reachable while both original
// connections are alive; this is a known limitation, not a bug.
type Message struct {
	ID          string // externally visible identifier, authoritative for lookups
	Room        string
	Sender      string // display name
	SenderID    string // connection identity, empty for system-originated rows
	RecipientID string // set for private messages
	Body        string
	IsPrivate   bool
	ReadBy      []string // connection identities, set semantics
	CreatedAt   time.Time
}

// MessageStore handles message persistence.
type MessageStore interface {
	// InsertMessage persists a new message.
	InsertMessage(ctx context.Context, msg *Message) error

	// ListRoomMessages returns every non-private message for a room,
	// ordered by creation time ascending.
	ListRoomMessages(ctx context.Context, room string) ([]*Message, error)

	// GetMessage retrieves a message by id, scoped to a room.
	// Returns ErrNotFound when no such message exists.
	GetMessage(ctx context.Context, id, room string) (*Message, error)

	// AppendReadBy adds readerID to the message's read set and returns
	// the updated message. Returns (nil, nil) when readerID is already
	// present, and ErrNotFound when the message does not exist.
	AppendReadBy(ctx context.Context, id, room, readerID string) (*Message, error)
}

// Store aggregates the storage interfaces consumed by the relay.
type Store interface {
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
