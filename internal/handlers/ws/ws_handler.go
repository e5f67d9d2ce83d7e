// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	"leadpulse-service/internal/middleware"
	"leadpulse-service/internal/pkg/response"
	ws "leadpulse-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades an authenticated request to a board feed client
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)
	userID := middleware.MustGetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, orgID, userID, h.logger)
	client.Start()
}

// GetStats reports connected board clients per organization
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	response.Success(c, http.StatusOK, "websocket stats", h.hub.Stats())
}
