package controller

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"rag-chatbot-be/internal/apperr"
	"rag-chatbot-be/internal/pkg/serverutils"
	"rag-chatbot-be/internal/service"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge")
	h.Post("/upload", c.Upload)
}

func (c *knowledgeController) Upload(ctx *fiber.Ctx) error {
	chatbotId, err := uuid.Parse(ctx.FormValue("chatbot_id"))
	if err != nil {
		return apperr.Invalid("chatbot_id must be a valid uuid")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperr.Invalid("file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperr.Invalid("failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperr.Invalid("failed to read uploaded file")
	}

	res, err := c.knowledgeService.Ingest(ctx.Context(), chatbotId, fileHeader.Filename, data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest document", res))
}
