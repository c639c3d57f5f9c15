// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"console-agent/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The agent only listens on loopback; the UI may be served from any
	// local port.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *notify.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *notify.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades the request and attaches the consumer to the
// notification hub.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := notify.NewClient(h.hub, conn)
	h.hub.Register(client)
	go client.Serve()
}
