package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// KnowledgeHandler exposes the instant question answering module.
type KnowledgeHandler struct {
	service service.KnowledgeService
	logger  zerolog.Logger
}

// NewKnowledgeHandler constructs a handler instance.
func NewKnowledgeHandler(service service.KnowledgeService, logger zerolog.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		service: service,
		logger:  logger.With().Str("component", "knowledge_handler").Logger(),
	}
}

// Register binds the knowledge routes.
func (h *KnowledgeHandler) Register(router fiber.Router) {
	router.Post("/ask", h.ask)
	router.Get("/history", h.history)
	router.Delete("/history/:id", h.remove)
}

func (h *KnowledgeHandler) ask(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.KnowledgeAskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Ask(c.UserContext(), userID, req)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "question answered", response)
}

func (h *KnowledgeHandler) history(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	entries := h.service.History(c.UserContext(), userID)
	return utils.SendSuccess(c, "question history", dto.HistoryResponse{Entries: entries})
}

func (h *KnowledgeHandler) remove(c *fiber.Ctx) error {
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
