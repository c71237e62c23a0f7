package core

import (
	"context"
	"errors"

	"github.com/roomrelay/roomrelay-server/internal/store"
)

// markRead appends the reader to a message's read set and re-broadcasts
// the full updated message to everyone currently in the room, so all
// views converge on the same ReadBy state. Idempotent: a reader already
// in the set causes no store write and no broadcast, and an unknown
// message id is a no-op.
func (h *Hub) markRead(c *Client, messageID, room string) {
	if messageID == "" || room == "" {
		h.log.Warn().
			Str("conn_id", c.ID).
			Str("event", "messageRead").
			Msg("missing messageId or roomId, dropped")
		return
	}
	if _, ok := h.presence.Get(c.ID); !ok {
		h.noticeToOne(c.ID, "You must join a room before marking messages read.")
		return
	}
	if h.store == nil {
		return
	}

	updated, err := h.store.AppendReadBy(context.Background(), messageID, room, c.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.log.Debug().
				Str("conn_id", c.ID).
				Str("room", room).
				Str("message_id", messageID).
				Msg("read receipt for unknown message")
			return
		}
		h.log.Error().Err(err).
			Str("conn_id", c.ID).
			Str("room", room).
			Str("event", "messageRead").
			Msg("update read state")
		return
	}
	if updated == nil {
		// Reader already present.
		return
	}

	msg := fromStore(updated)
	ev := &Event{Kind: EventMessageUpdated, Room: room, Message: msg}

	// A private room has no presences, so route the update straight to
	// the two participants.
	if msg.IsPrivate {
		h.router.ToOne(msg.SenderID, ev)
		if msg.RecipientID != msg.SenderID {
			h.router.ToOne(msg.RecipientID, ev)
		}
		return
	}
	h.router.ToRoom(room, ev)
}
