package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// PreferenceHandler exposes the per-user language preference.
type PreferenceHandler struct {
	preferences service.PreferenceService
	validator   *validator.Validate
	logger      zerolog.Logger
}

func NewPreferenceHandler(preferences service.PreferenceService, validate *validator.Validate, logger zerolog.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		preferences: preferences,
		validator:   validate,
		logger:      logger.With().Str("component", "preference_handler").Logger(),
	}
}

func (h *PreferenceHandler) Register(router fiber.Router) {
	router.Get("/language", h.language)
	router.Put("/language", h.setLanguage)
}

func (h *PreferenceHandler) language(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	preference := dto.LanguagePreference{Language: h.preferences.Language(c.UserContext(), userID)}
	return utils.SendSuccess(c, "language preference", preference)
}

func (h *PreferenceHandler) setLanguage(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.LanguagePreference
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	if err := h.preferences.SetLanguage(c.UserContext(), userID, req.Language); err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "language preference saved", req)
}
