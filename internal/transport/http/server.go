package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomrelay/roomrelay-server/internal/config"
	"github.com/roomrelay/roomrelay-server/internal/core"
	"github.com/roomrelay/roomrelay-server/internal/store"
)

// NewServer builds the HTTP server: health check, read-only REST
// endpoints for history and rosters, and the WebSocket upgrade.
func NewServer(hub *core.Hub, st store.Store, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, st, logger)
	api := router.Group("/api")
	{
		api.GET("/rooms/:room/messages", rooms.ListMessages)
		api.GET("/rooms/:room/users", rooms.ListUsers)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
