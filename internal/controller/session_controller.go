package controller

import (
	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/pkg/serverutils"
	"ai-learning-partner-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	SetMode(ctx *fiber.Ctx) error
	SetLevel(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Put("mode", c.SetMode)
	h.Put("level", c.SetLevel)
	h.Get("", c.Show)
}

func (c *sessionController) SetMode(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.SetModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetMode(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set mode", res))
}

func (c *sessionController) SetLevel(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.SetLevelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.SetLevel(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success set knowledge level", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.sessionService.Get(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

// currentUserId reads the authenticated user set by the JWT middleware.
func currentUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}
