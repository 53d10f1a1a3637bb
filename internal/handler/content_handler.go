package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// ContentHandler exposes the content generation module.
type ContentHandler struct {
	service service.ContentService
	logger  zerolog.Logger
}

// NewContentHandler constructs a handler instance.
func NewContentHandler(service service.ContentService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register binds the content routes.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Post("/generate", h.generate)
	router.Get("/history", h.history)
	router.Delete("/history/:id", h.remove)
}

func (h *ContentHandler) generate(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.ContentGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Generate(c.UserContext(), userID, req)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "content generated", response)
}

func (h *ContentHandler) history(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	entries := h.service.History(c.UserContext(), userID)
	return utils.SendSuccess(c, "content history", dto.HistoryResponse{Entries: entries})
}

func (h *ContentHandler) remove(c *fiber.Ctx) error {
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
