package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/internal/service"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type queryController struct {
	queryService service.IQueryService
}

func NewQueryController(queryService service.IQueryService) IQueryController {
	return &queryController{
		queryService: queryService,
	}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	r.Get("/query", c.Search)
}

func (c *queryController) Search(ctx *fiber.Ctx) error {
	chatbotId, err := uuid.Parse(ctx.Query("chatbot_id"))
	if err != nil {
		return apperr.Invalid("chatbot_id must be a valid uuid")
	}

	query := ctx.Query("query", "")
	limit := ctx.QueryInt("limit", 0)

	res, err := c.queryService.Search(ctx.Context(), chatbotId, query, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search knowledge", res))
}
