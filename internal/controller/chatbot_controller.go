package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/dto"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/internal/service"
)

type IChatBotController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatBotController struct {
	chatbotService service.IChatBotService
}

func NewChatBotController(chatbotService service.IChatBotService) IChatBotController {
	return &chatBotController{
		chatbotService: chatbotService,
	}
}

func (c *chatBotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chatbots")
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Delete("/:id", c.Delete)
}

func (c *chatBotController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateChatBotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chatbot", res))
}

func (c *chatBotController) List(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.List(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chatbots", res))
}

func (c *chatBotController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Invalid("chatbot id must be a valid uuid")
	}

	if err := c.chatbotService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chatbot", nil))
}
