package services

import (
	"net/http"

	ws "github.com/SRIDEV20/AI-powered-interview-simulator/websocket"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler upgrades authenticated requests and streams the caller's
// interview events.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, allowedOrigins string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				ok := CheckOrigin(r, allowedOrigins)
				if !ok {
					logger.Warn("WebSocket connection rejected: origin not allowed", zap.String("origin", r.Header.Get("Origin")))
				}
				return ok
			},
		},
		logger: logger,
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client, err := h.hub.RegisterClient(conn, user.ID)
	if err != nil {
		h.logger.Warn("WebSocket hub unavailable", zap.Error(err))
		conn.Close()
		return
	}

	h.logger.Info("WebSocket connection established", zap.String("user_id", user.ID))
	go client.WritePump()
	client.ReadPump()
}
