package exts

import (
	"errors"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Data:    data,
		Message: message,
		Status:  status,
	})
}

// ErrorHandler renders every error as {message, status}. Details of internal errors are logged, never sent.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, insights.ErrBadRequest):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, insights.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("An error occurred when handling request...")
		message = "internal server error"
	}

	return c.Status(status).JSON(ErrorBody{
		Message: message,
		Status:  status,
	})
}
