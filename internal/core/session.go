package core

import "context"

// joinRoom moves the connection into a room under the given display
// name. A connection already joined elsewhere leaves its prior room
// first, with the usual leave notifications there.
func (h *Hub) joinRoom(c *Client, name, room string) {
	if name == "" || room == "" {
		h.log.Warn().
			Str("conn_id", c.ID).
			Str("event", "joinRoom").
			Msg("missing username or room, dropped")
		return
	}

	if prev, ok := h.presence.Get(c.ID); ok {
		h.leaveEffects(c, prev)
	}
	h.presence.Set(c.ID, name, room)

	// Welcome and history go only to the joining connection.
	h.router.ToOne(c.ID, &Event{
		Kind:    EventMessage,
		Room:    room,
		Message: NewSystemNotice(room, "Welcome to "+room+", "+name+"!"),
	})
	h.router.ToOne(c.ID, &Event{
		Kind:     EventHistory,
		Room:     room,
		Messages: h.loadHistory(c, room),
	})

	h.router.ToRoomExcept(room, c.ID, &Event{
		Kind:    EventMessage,
		Room:    room,
		Message: NewSystemNotice(room, name+" has joined the room"),
	})
	h.broadcastRoster(room)
}

// sendMessage persists and broadcasts a public message. A connection
// with no presence gets a system notice and nothing is stored.
func (h *Hub) sendMessage(c *Client, text string) {
	p, ok := h.presence.Get(c.ID)
	if !ok {
		h.noticeToOne(c.ID, "You must join a room before sending messages.")
		return
	}

	msg := NewMessage(p.Room, p.Name, c.ID, text)
	if !h.persist(c, "chatMessage", msg) {
		return
	}
	h.router.ToRoom(p.Room, &Event{Kind: EventMessage, Room: p.Room, Message: msg})
}

// sendPrivate persists a direct message and delivers it to exactly two
// connections: the recipient and the sender's own echo.
func (h *Hub) sendPrivate(c *Client, recipientID, text string) {
	p, ok := h.presence.Get(c.ID)
	if !ok {
		h.noticeToOne(c.ID, "You must join a room before sending messages.")
		return
	}
	if _, ok := h.presence.Get(recipientID); !ok {
		h.noticeToOne(c.ID, "That user is no longer connected.")
		return
	}

	msg := NewPrivateMessage(p.Name, c.ID, recipientID, text)
	if !h.persist(c, "privateMessage", msg) {
		return
	}

	ev := &Event{Kind: EventMessage, Room: msg.Room, Message: msg}
	h.router.ToOne(recipientID, ev)
	h.router.ToOne(c.ID, ev)
}

// relayTyping is fire-and-forget: no state is retained and events from
// connections with no presence are silently dropped.
func (h *Hub) relayTyping(c *Client, kind EventKind) {
	p, ok := h.presence.Get(c.ID)
	if !ok {
		return
	}
	h.router.ToRoomExcept(p.Room, c.ID, &Event{Kind: kind, Room: p.Room, User: p.Name})
}

// leaveRoom removes presence and notifies the room. The transport
// connection stays open; the client may join another room afterwards.
func (h *Hub) leaveRoom(c *Client) {
	p, ok := h.presence.Get(c.ID)
	if !ok {
		return
	}
	h.leaveEffects(c, p)
}

// disconnect is the terminal transition. Without presence there is
// nothing to announce.
func (h *Hub) disconnect(c *Client) {
	p, ok := h.presence.Get(c.ID)
	if !ok {
		return
	}
	h.leaveEffects(c, p)
}

// leaveEffects removes the presence record and, if the room still has
// members, sends the leave notice and an updated roster. An empty room
// after removal produces no broadcast at all.
func (h *Hub) leaveEffects(c *Client, p Presence) {
	h.presence.Remove(c.ID)

	if len(h.presence.ListByRoom(p.Room)) == 0 {
		return
	}
	h.router.ToRoomExcept(p.Room, c.ID, &Event{
		Kind:    EventMessage,
		Room:    p.Room,
		Message: NewSystemNotice(p.Room, p.Name+" has left the room"),
	})
	h.broadcastRoster(p.Room)
}

func (h *Hub) broadcastRoster(room string) {
	h.router.ToRoom(room, &Event{
		Kind:  EventRoomUsers,
		Room:  room,
		Users: h.presence.ListByRoom(room),
	})
}

func (h *Hub) noticeToOne(connID, text string) {
	h.router.ToOne(connID, &Event{
		Kind:    EventMessage,
		Message: NewSystemNotice("", text),
	})
}

// persist writes a message to the store. A store failure is scoped to
// this one event: it is logged with correlation fields and the message
// is not broadcast.
func (h *Hub) persist(c *Client, event string, msg *Message) bool {
	if h.store == nil {
		return true
	}
	if err := h.store.InsertMessage(context.Background(), toStore(msg)); err != nil {
		h.log.Error().Err(err).
			Str("conn_id", c.ID).
			Str("room", msg.Room).
			Str("event", event).
			Msg("persist message")
		return false
	}
	return true
}

// loadHistory fetches the ordered public history for a room. On store
// failure the join proceeds with an empty batch.
func (h *Hub) loadHistory(c *Client, room string) []*Message {
	if h.store == nil {
		return []*Message{}
	}
	stored, err := h.store.ListRoomMessages(context.Background(), room)
	if err != nil {
		h.log.Error().Err(err).
			Str("conn_id", c.ID).
			Str("room", room).
			Str("event", "joinRoom").
			Msg("load history")
		return []*Message{}
	}

	messages := make([]*Message, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, fromStore(m))
	}
	return messages
}
