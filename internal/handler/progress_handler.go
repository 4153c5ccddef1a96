package handler

import (
	"ai-blueprint-be/internal/pkg/logger"
	internalWS "ai-blueprint-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ProgressHandler upgrades pollers that want live updates to a websocket
// watching one request id. Polling GET /generation/v1/:id remains the
// contract of record; this is a delivery optimization.
type ProgressHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *internalWS.Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/generation/v1")
	g.Get("/ws", websocket.New(h.serveWs))
}

// UpgradeMiddleware validates the request id before the protocol upgrade,
// so bad requests get a JSON error instead of a dropped socket.
func (h *ProgressHandler) UpgradeMiddleware(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	requestId := c.Query("request_id")
	if _, err := uuid.Parse(requestId); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Query param 'request_id' must be a valid id",
		})
	}
	c.Locals("request_id", requestId)
	return c.Next()
}

func (h *ProgressHandler) serveWs(conn *websocket.Conn) {
	requestId, _ := conn.Locals("request_id").(string)
	if requestId == "" {
		conn.Close()
		return
	}

	client := internalWS.NewClient(h.hub, conn, requestId)
	client.Serve()
}
