package controller

import (
	"errors"
	"io"

	"school-assistant-be/internal/dto"
	"school-assistant-be/internal/pkg/serverutils"
	"school-assistant-be/internal/service"
	"school-assistant-be/pkg/extract"
	"school-assistant-be/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
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
	h := r.Group("/document/v1")
	h.Post("", c.Upload)
	h.Post("search", c.Search)
	h.Get("", c.List)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing 'file' form field")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.documentService.Ingest(ctx.Context(), fileHeader.Filename, data)
	if err != nil {
		var unsupported *extract.ErrUnsupportedType
		if errors.As(err, &unsupported) {
			return fiber.NewError(fiber.StatusUnsupportedMediaType, unsupported.Error())
		}
		if errors.Is(err, service.ErrEmptyDocument) {
			return fiber.NewError(fiber.StatusBadRequest, service.ErrEmptyDocument.Error())
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success ingest document", res))
}

func (c *documentController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Search(ctx.Context(), req.Query, req.TopK)
	if err != nil {
		if errors.Is(err, vectorstore.ErrStoreEmpty) {
			return fiber.NewError(fiber.StatusNotFound, "no documents have been uploaded yet")
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search documents", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	res, err := c.documentService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}
