package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// AssessmentHandler exposes the reading assessment module.
type AssessmentHandler struct {
	service service.AssessmentService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs a handler instance.
func NewAssessmentHandler(service service.AssessmentService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register binds the assessment routes.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("/generate-text", h.generateText)
	router.Post("/analyze", h.analyze)
	router.Get("/history", h.history)
	router.Delete("/history/:id", h.remove)
}

func (h *AssessmentHandler) generateText(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var req dto.ReadingTextRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.GenerateText(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "practice text generated", response)
}

// analyze accepts the recording as multipart form data, mirroring the shape
// the backend expects.
func (h *AssessmentHandler) analyze(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "audio recording required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read audio recording")
	}
	defer func() { _ = file.Close() }()

	audio, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read audio recording")
	}

	wordLimit, err := strconv.Atoi(strings.TrimSpace(c.FormValue("word_limit")))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid word limit")
	}

	input := service.AssessmentAnalyzeInput{
		Audio:        audio,
		AudioName:    fileHeader.Filename,
		OriginalText: c.FormValue("original_text"),
		Language:     c.FormValue("language"),
		GradeLevel:   c.FormValue("grade_level"),
		WordLimit:    wordLimit,
	}

	response, err := h.service.Analyze(c.UserContext(), userID, input)
	if err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "assessment completed", response)
}

func (h *AssessmentHandler) history(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	entries := h.service.History(c.UserContext(), userID)
	return utils.SendSuccess(c, "assessment history", dto.HistoryResponse{Entries: entries})
}

func (h *AssessmentHandler) remove(c *fiber.Ctx) error {
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
