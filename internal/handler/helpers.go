package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
	"github.com/sahayak-edu/sahayak-api/pkg/backend"
)

const genericErrorMessage = "Something went wrong. Please try again."

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return genericErrorMessage
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, fieldError.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	return strings.Join(messages, ", ")
}

// respondServiceError converts a module action failure into the inline error
// the caller displays. Backend messages pass through as-is; everything
// unexpected collapses to a generic message.
func respondServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, "Session expired. Please sign in again.")
	case errors.As(err, &apiErr):
		return utils.SendError(c, apiErr.Status, apiErr.Message)
	case errors.Is(err, service.ErrUnsupportedAudio):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	default:
		logger.Error().Err(err).Msg("module action failed")
		return utils.SendError(c, fiber.StatusInternalServerError, genericErrorMessage)
	}
}
