package serverutils

import (
	"errors"
	"fmt"

	"ai-learning-partner-be/pkg/lesson"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

var validate = validator.New()

// ValidationError carries field-level validation failures to the error handler.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for fields: %v", e.Fields)
}

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

// ErrorHandlerMiddleware converts service errors into the uniform JSON envelope.
// Failures never crash the request; they surface as messages the client can show.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError

		var verr *ValidationError
		var ferr *fiber.Error
		switch {
		case errors.As(err, &verr):
			status = fiber.StatusBadRequest
		case errors.As(err, &ferr):
			status = ferr.Code
		case errors.Is(err, lesson.ErrTopicRequired),
			errors.Is(err, lesson.ErrGoalRequired):
			status = fiber.StatusBadRequest
		case errors.Is(err, lesson.ErrInvalidPhase),
			errors.Is(err, lesson.ErrQuizAlreadyAnswered),
			errors.Is(err, lesson.ErrQuizNotAnswered),
			errors.Is(err, lesson.ErrStepsRemaining):
			// The session is in the wrong place for this operation.
			status = fiber.StatusConflict
		case errors.Is(err, lesson.ErrMalformedQuiz),
			errors.Is(err, lesson.ErrEmptyPlan),
			errors.Is(err, lesson.ErrEmptyQuiz):
			// Upstream generation produced unusable output; retryable.
			status = fiber.StatusBadGateway
		}

		return ctx.Status(status).JSON(APIResponse[any]{
			Success: false,
			Message: err.Error(),
		})
	}
}
