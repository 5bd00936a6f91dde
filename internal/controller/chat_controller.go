package controller

import (
	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/pkg/serverutils"
	"ai-studyroom-be/internal/service"
	ws "ai-studyroom-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
	Presence(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	hub         *ws.Hub
}

func NewChatController(chatService service.IChatService, hub *ws.Hub) IChatController {
	return &chatController{
		chatService: chatService,
		hub:         hub,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Get("history/:roomId/:topicId", c.History)
	h.Delete("history/:roomId/:topicId", c.ClearHistory)

	rooms := r.Group("/rooms")
	rooms.Use(serverutils.JwtMiddleware)
	rooms.Get(":id/presence", c.Presence)
}

func (c *chatController) scope(ctx *fiber.Ctx) (roomId, topicId, userId uuid.UUID, err error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err = uuid.Parse(userIdStr)
	if err != nil {
		return
	}
	roomId, err = uuid.Parse(ctx.Params("roomId"))
	if err != nil {
		err = apperr.Wrapf(apperr.ErrValidation, "invalid room id")
		return
	}
	topicId, err = uuid.Parse(ctx.Params("topicId"))
	if err != nil {
		err = apperr.Wrapf(apperr.ErrValidation, "invalid topic id")
	}
	return
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	roomId, topicId, userId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.VerifyParticipant(ctx.Context(), roomId, topicId, userId); err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 50)
	messages, err := c.chatService.RecentDecrypted(ctx.Context(), roomId, topicId, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", dto.ChatHistoryResponse{
		RoomId:   roomId,
		TopicId:  topicId,
		Messages: messages,
	}))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	roomId, topicId, userId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.VerifyParticipant(ctx.Context(), roomId, topicId, userId); err != nil {
		return err
	}

	if err := c.chatService.Clear(ctx.Context(), roomId, topicId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear chat history", nil))
}

func (c *chatController) Presence(ctx *fiber.Ctx) error {
	roomId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Wrapf(apperr.ErrValidation, "invalid room id")
	}

	byTopic := c.hub.ListUsers(roomId)
	topics := make([]dto.PresenceTopic, 0, len(byTopic))
	for topicId, userIds := range byTopic {
		topics = append(topics, dto.PresenceTopic{TopicId: topicId, UserIds: userIds})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get room presence", dto.PresenceResponse{
		RoomId: roomId,
		Topics: topics,
	}))
}
