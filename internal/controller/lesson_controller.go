package controller

import (
	"ai-learning-partner-be/internal/dto"
	"ai-learning-partner-be/internal/pkg/serverutils"
	"ai-learning-partner-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILessonController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Quiz(ctx *fiber.Ctx) error
	Answer(ctx *fiber.Ctx) error
	Continue(ctx *fiber.Ctx) error
	FinalQuiz(ctx *fiber.Ctx) error
	End(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
}

type lessonController struct {
	lessonService service.ILessonService
}

func NewLessonController(lessonService service.ILessonService) ILessonController {
	return &lessonController{
		lessonService: lessonService,
	}
}

func (c *lessonController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/lesson/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("start", c.Start)
	h.Post("quiz", c.Quiz)
	h.Post("answer", c.Answer)
	h.Post("continue", c.Continue)
	h.Post("final-quiz", c.FinalQuiz)
	h.Post("end", c.End)
	h.Get("state", c.State)
}

func (c *lessonController) Start(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.StartLessonRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.lessonService.Start(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success start lesson", res))
}

func (c *lessonController) Quiz(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.lessonService.Quiz(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create quiz", res))
}

func (c *lessonController) Answer(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.lessonService.Answer(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit answer", res))
}

func (c *lessonController) Continue(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.lessonService.Continue(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success continue lesson", res))
}

func (c *lessonController) FinalQuiz(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.lessonService.FinalQuiz(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create final quiz", res))
}

func (c *lessonController) End(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.lessonService.End(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success end lesson", res))
}

func (c *lessonController) State(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.lessonService.State(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show lesson state", res))
}
