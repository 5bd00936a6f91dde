package handler

import (
	"context"
	"time"

	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/internal/pkg/serverutils"
	"ai-studyroom-be/internal/service"
	ws "ai-studyroom-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ChatWsHandler upgrades chat connections and walks them through the
// handshake: token verification, membership check, then hand-off to the
// mediator. Failures close with a policy-violation code; the connection
// never becomes active.
type ChatWsHandler struct {
	hub         *ws.Hub
	mediator    *ws.Mediator
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatWsHandler(hub *ws.Hub, mediator *ws.Mediator, chatService service.IChatService, log logger.ILogger) *ChatWsHandler {
	return &ChatWsHandler{
		hub:         hub,
		mediator:    mediator,
		chatService: chatService,
		logger:      log,
	}
}

func (h *ChatWsHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/chat")
	g.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	g.Get("/ws/:roomId/:topicId", websocket.New(h.serve))
}

func (h *ChatWsHandler) serve(conn *websocket.Conn) {
	roomId, err1 := uuid.Parse(conn.Params("roomId"))
	topicId, err2 := uuid.Parse(conn.Params("topicId"))
	if err1 != nil || err2 != nil {
		h.closePolicyViolation(conn, "invalid room or topic id")
		return
	}

	token := conn.Query("token")
	if token == "" {
		token = bearerToken(conn.Headers("Authorization"))
	}
	userId, err := serverutils.VerifyToken(token)
	if err != nil {
		h.closePolicyViolation(conn, "authentication failed")
		return
	}

	if err := h.chatService.VerifyParticipant(context.Background(), roomId, topicId, userId); err != nil {
		h.logger.Warn("ChatWs", "membership rejected", map[string]interface{}{
			"room_id": roomId, "topic_id": topicId, "user_id": userId, "error": err.Error(),
		})
		h.closePolicyViolation(conn, "not a participant")
		return
	}

	client := ws.NewClient(h.hub, conn, userId, roomId, topicId)

	// Blocks for the lifetime of the connection.
	h.mediator.Serve(client)
}

func (h *ChatWsHandler) closePolicyViolation(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	conn.Close()
}

func bearerToken(header string) string {
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return ""
}
