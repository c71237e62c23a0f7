package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/roomrelay/roomrelay-server/internal/store"
)

// SystemSender is the reserved sender name for server-generated
// notices. Clients style these distinctly; they are never persisted.
const SystemSender = "system"

// Message is the domain model for a chat message.
type Message struct {
	ID          string
	Room        string
	Sender      string // display name
	SenderID    string // connection identity; empty for system notices
	RecipientID string // set for private messages
	Text        string
	ReadBy      []string // connection identities, set semantics
	IsPrivate   bool
	CreatedAt   time.Time
}

// NewMessage builds a public room message. The sender has trivially
// read their own message, so ReadBy starts with their identity.
func NewMessage(room, sender, senderID, text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Room:      room,
		Sender:    sender,
		SenderID:  senderID,
		Text:      text,
		ReadBy:    []string{senderID},
		CreatedAt: time.Now().UTC(),
	}
}

// NewPrivateMessage builds a direct message between two connections.
// The room id derives from both identities so either side resolves the
// same conversation.
func NewPrivateMessage(sender, senderID, recipientID, text string) *Message {
	msg := NewMessage(DirectRoom(senderID, recipientID), sender, senderID, text)
	msg.RecipientID = recipientID
	msg.IsPrivate = true
	return msg
}

// NewSystemNotice builds a notice from the reserved system sender.
// Notices are delivered over the same channel as chat messages but are
// never written to the store.
func NewSystemNotice(room, text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Room:      room,
		Sender:    SystemSender,
		Text:      text,
		ReadBy:    []string{},
		CreatedAt: time.Now().UTC(),
	}
}

// DirectRoom derives the private conversation id for two connection
// identities. Symmetric: DirectRoom(a, b) == DirectRoom(b, a).
// Identities are session-scoped, so a direct room does not survive
// either party reconnecting under a new identity.
func DirectRoom(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}

func toStore(m *Message) *store.Message {
	return &store.Message{
		ID:          m.ID,
		Room:        m.Room,
		Sender:      m.Sender,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Text,
		IsPrivate:   m.IsPrivate,
		ReadBy:      m.ReadBy,
		CreatedAt:   m.CreatedAt,
	}
}

func fromStore(m *store.Message) *Message {
	return &Message{
		ID:          m.ID,
		Room:        m.Room,
		Sender:      m.Sender,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Text:        m.Body,
		IsPrivate:   m.IsPrivate,
		ReadBy:      m.ReadBy,
		CreatedAt:   m.CreatedAt,
	}
}
