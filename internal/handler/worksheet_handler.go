package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// WorksheetHandler exposes the vision-based worksheet generator.
type WorksheetHandler struct {
	service service.WorksheetService
	logger  zerolog.Logger
}

// NewWorksheetHandler constructs a handler instance.
func NewWorksheetHandler(service service.WorksheetService, logger zerolog.Logger) *WorksheetHandler {
	return &WorksheetHandler{
		service: service,
		logger:  logger.With().Str("component", "worksheet_handler").Logger(),
	}
}

// Register binds the worksheet routes.
func (h *WorksheetHandler) Register(router fiber.Router) {
	router.Post("/generate-with-vision", h.generate)
	router.Get("/history", h.history)
	router.Delete("/history/:id", h.remove)
}

func (h *WorksheetHandler) generate(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.WorksheetGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Generate(c.UserContext(), userID, req)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "worksheets generated", response)
}

func (h *WorksheetHandler) history(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	entries := h.service.History(c.UserContext(), userID)
	return utils.SendSuccess(c, "worksheet history", dto.HistoryResponse{Entries: entries})
}

func (h *WorksheetHandler) remove(c *fiber.Ctx) error {
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
