package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/proto"
	"github.com/roomrelay/roomrelay-server/internal/store"
)

// RoomHandlers provides read-only REST endpoints over rooms.
type RoomHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListMessages returns the persisted public history of a room, in the
// same order history replay uses.
// GET /api/rooms/:room/messages
func (h *RoomHandlers) ListMessages(c *gin.Context) {
	room := c.Param("room")

	stored, err := h.store.ListRoomMessages(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("list room messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load messages"})
		return
	}

	messages := make([]proto.WireMessage, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, proto.WireMessage{
			ID:        m.ID,
			Username:  m.Sender,
			Text:      m.Body,
			Room:      m.Room,
			Timestamp: m.CreatedAt.Format(time.RFC3339),
			ReadBy:    m.ReadBy,
			IsPrivate: m.IsPrivate,
			SenderID:  m.SenderID,
		})
	}

	c.JSON(http.StatusOK, proto.RoomMessagesData{Room: room, Messages: messages})
}

// ListUsers returns the current roster of a room from the presence
// table.
// GET /api/rooms/:room/users
func (h *RoomHandlers) ListUsers(c *gin.Context) {
	room := c.Param("room")

	present := h.hub.Presence().ListByRoom(room)
	users := make([]proto.RoomUser, 0, len(present))
	for _, p := range present {
		users = append(users, proto.RoomUser{ConnID: p.ConnID, Username: p.Name})
	}

	c.JSON(http.StatusOK, proto.RoomUsersData{Room: room, Users: users})
}
