package controller

import (
	"errors"
	"io"
	"strings"

	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/pkg/serverutils"
	"ai-learning-partner-be/internal/service"
	"ai-learning-partner-be/pkg/youtube"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxUploadBytes caps PDF uploads at 20 MiB.
const maxUploadBytes = 20 << 20

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	IngestYouTube(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
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
	h.Use(serverutils.JwtMiddleware)
	h.Post("upload", c.Upload)
	h.Post("youtube", c.IngestYouTube)
	h.Get("", c.List)
	h.Get(":id/download", c.Download)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file exceeds upload limit")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "only pdf files are supported")
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

	res, err := c.documentService.Upload(ctx.Context(), userId, fileHeader.Filename, data)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if res.AlreadyExists {
		status = fiber.StatusOK
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) IngestYouTube(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.IngestYouTubeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.IngestYouTube(ctx.Context(), userId, req.URL)
	if err != nil {
		if errors.Is(err, youtube.ErrInvalidURL) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	status := fiber.StatusCreated
	if res.AlreadyExists {
		status = fiber.StatusOK
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success ingest video transcript", res))
}

func (c *documentController) Download(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	url, err := c.documentService.DownloadURL(ctx.Context(), userId, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create download link", dto.DownloadDocumentResponse{URL: url}))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.documentService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}
