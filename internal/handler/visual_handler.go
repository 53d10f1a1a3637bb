package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// VisualHandler exposes the visual-aid generator module.
type VisualHandler struct {
	service service.VisualService
	logger  zerolog.Logger
}

// NewVisualHandler constructs a handler instance.
func NewVisualHandler(service service.VisualService, logger zerolog.Logger) *VisualHandler {
	return &VisualHandler{
		service: service,
		logger:  logger.With().Str("component", "visual_handler").Logger(),
	}
}

// Register binds the visual-aid routes. Generation is a GET with the prompt
// in the query, matching the backend's own surface.
func (h *VisualHandler) Register(router fiber.Router) {
	router.Get("/generate-image", h.generate)
	router.Get("/history", h.history)
	router.Delete("/history/:id", h.remove)
}

func (h *VisualHandler) generate(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	req := dto.VisualGenerateRequest{
		Prompt: c.Query("prompt"),
		Style:  c.Query("style"),
	}

	response, err := h.service.Generate(c.UserContext(), userID, req)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "visual aid generated", response)
}

func (h *VisualHandler) history(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	entries := h.service.History(c.UserContext(), userID)
	return utils.SendSuccess(c, "visual history", dto.HistoryResponse{Entries: entries})
}

func (h *VisualHandler) remove(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	entryID := c.Params("id")
	if entryID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "entry id required")
	}

	if err := h.service.Delete(c.UserContext(), userID, entryID); err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "entry removed", nil)
}
