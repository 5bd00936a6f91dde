package controller

import (
	"io"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/pkg/serverutils"
	"ai-studyroom-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
	h.Post(":id/ask", c.Ask)
}

func (c *documentController) ownerId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, apperr.Wrapf(apperr.ErrAuthentication, "missing user identity")
	}
	return userId, nil
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	ownerId, err := c.ownerId(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperr.Wrapf(apperr.ErrValidation, "file field is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperr.Wrap(apperr.ErrValidation, err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return apperr.Wrap(apperr.ErrValidation, err)
	}

	title := ctx.FormValue("title")
	res, err := c.documentService.Upload(ctx.Context(), ownerId, fileHeader.Filename, title, raw)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Document queued for ingestion", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	ownerId, err := c.ownerId(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.Context(), ownerId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	ownerId, err := c.ownerId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Wrapf(apperr.ErrValidation, "invalid document id")
	}

	res, err := c.documentService.Show(ctx.Context(), ownerId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.ErrNotFound
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	ownerId, err := c.ownerId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Wrapf(apperr.ErrValidation, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), ownerId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete document", nil))
}

func (c *documentController) Ask(ctx *fiber.Ctx) error {
	ownerId, err := c.ownerId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperr.Wrapf(apperr.ErrValidation, "invalid document id")
	}

	var req dto.AskDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperr.Wrap(apperr.ErrValidation, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Ask(ctx.Context(), ownerId, id, req.Question)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success ask document", res))
}
