package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomrelay/roomrelay-server/internal/store"
)

// Hub owns the session lifecycle for every connection. Each registered
// client gets its own session goroutine that consumes commands strictly
// in order, which serializes all presence mutations for that
// connection; cross-connection safety comes from the presence table's
// internal locking.
type Hub struct {
	store    store.MessageStore
	presence *PresenceTable
	router   *Router
	log      *zerolog.Logger

	done chan struct{}
	once sync.Once
}

// NewHub constructs a hub. A nil store disables persistence and history
// replay (messages still relay live); a nil logger disables logging.
func NewHub(st store.MessageStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	presence := NewPresenceTable()
	return &Hub{
		store:    st,
		presence: presence,
		router:   NewRouter(presence),
		log:      logger,
		done:     make(chan struct{}),
	}
}

// Presence exposes the table for read-only collaborators such as the
// roster endpoint.
func (h *Hub) Presence() *PresenceTable {
	return h.presence
}

// Run blocks until ctx is cancelled, then stops every session loop.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.once.Do(func() { close(h.done) })
}

// RegisterClient adds a connection and starts its session loop.
func (h *Hub) RegisterClient(c *Client) {
	h.router.Add(c)
	go h.serve(c)
}

// UnregisterClient drives the disconnect transition. Commands already
// queued for the client are processed first; the disconnect effects run
// after them on the same session goroutine. Must be called at most once
// per client, after the last command has been sent.
func (h *Hub) UnregisterClient(c *Client) {
	close(c.Commands)
}

func (h *Hub) serve(c *Client) {
	defer func() {
		h.disconnect(c)
		h.router.Remove(c.ID)
	}()

	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			h.dispatch(c, cmd)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.joinRoom(c, cmd.User, cmd.Room)
	case CommandSendMessage:
		h.sendMessage(c, cmd.Text)
	case CommandSendPrivate:
		h.sendPrivate(c, cmd.RecipientID, cmd.Text)
	case CommandMarkRead:
		h.markRead(c, cmd.MessageID, cmd.Room)
	case CommandTyping:
		h.relayTyping(c, EventTyping)
	case CommandStopTyping:
		h.relayTyping(c, EventStopTyping)
	case CommandLeaveRoom:
		h.leaveRoom(c)
	default:
		h.log.Warn().Str("conn_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}
