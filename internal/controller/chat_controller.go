package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	ListChats(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.SendChat)
	r.Post("/chat/session", c.CreateSession)
	r.Get("/chat/history", c.GetChatHistory)

	r.Get("/sessions", c.ListSessions)
	r.Get("/sessions/:id/chats", c.ListChats)
	r.Delete("/sessions/:id", c.DeleteSession)
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Answer(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.chatService.CreateSession(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	chatId, err := uuid.Parse(ctx.Query("chat_id"))
	if err != nil {
		return apperr.Invalid("chat_id must be a valid uuid")
	}

	res, err := c.chatService.GetChatHistory(ctx.Context(), chatId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.chatService.ListSessions(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *chatController) ListChats(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Invalid("session id must be a valid uuid")
	}

	res, err := c.chatService.ListChats(ctx.Context(), sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chats", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Invalid("session id must be a valid uuid")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}
