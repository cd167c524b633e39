package handler

import (
	"encoding/json"

	"legal-assistant-be/internal/controller"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/service"
	internalWS "legal-assistant-be/internal/websocket"
	"legal-assistant-be/pkg/conversation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionStreamHandler streams session snapshots (typing indicator included) to the browser
type SessionStreamHandler struct {
	engine service.IChatEngineService
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSessionStreamHandler(engine service.IChatEngineService, hub *internalWS.Hub, log logger.ILogger) *SessionStreamHandler {
	return &SessionStreamHandler{
		engine: engine,
		hub:    hub,
		logger: log,
	}
}

func (h *SessionStreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/ws", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *SessionStreamHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake
	clientID, err := controller.ParseClientID(c.Query("client_id"))
	if err != nil {
		return err
	}

	var user conversation.User
	if tokenStr := c.Query("token"); tokenStr != "" {
		userID, email, ok := serverutils.IdentityFromToken(tokenStr)
		if !ok {
			h.logger.Warn("SessionStreamHandler", "Invalid token in WS handshake", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}
		user = conversation.User{ID: userID, Email: email}
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	initial, err := json.Marshal(map[string]interface{}{
		"type": service.SnapshotMessageType,
		"data": h.engine.Session(c.UserContext(), clientID, user),
	})
	if err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("SessionStreamHandler", "Starting WebSocket session", map[string]interface{}{"client_id": clientID})
		internalWS.ServeWs(h.hub, conn, clientID, initial)
		h.logger.Info("SessionStreamHandler", "WebSocket session ended", map[string]interface{}{"client_id": clientID})
	})(c)
}
