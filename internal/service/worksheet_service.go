package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/notify"
	"github.com/sahayak-edu/sahayak-api/internal/observability"
	"github.com/sahayak-edu/sahayak-api/pkg/backend"
)

// WorksheetService drives the vision-based worksheet generator module.
type WorksheetService interface {
	Generate(ctx context.Context, userID string, req dto.WorksheetGenerateRequest) (dto.WorksheetGenerateResponse, error)
	History(ctx context.Context, userID string) []history.Entry
	Delete(ctx context.Context, userID, entryID string) error
}

type worksheetService struct {
	backend   *backend.Client
	histories history.Provider
	activity  ActivityService
	notifier  notify.Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewWorksheetService builds the worksheet module service.
func NewWorksheetService(client *backend.Client, histories history.Provider, activity ActivityService, notifier notify.Notifier, validate *validator.Validate, logger zerolog.Logger) WorksheetService {
	return &worksheetService{
		backend:   client,
		histories: histories,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "worksheet_service").Logger(),
		tracer:    otel.Tracer("github.com/sahayak-edu/sahayak-api/internal/service/worksheet"),
	}
}

// Generate forwards the textbook page image to the backend and records the
// per-grade worksheets it returns. The image itself is not persisted, only
// the derived texts.
func (s *worksheetService) Generate(ctx context.Context, userID string, req dto.WorksheetGenerateRequest) (dto.WorksheetGenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WorksheetGenerateResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "worksheets.generate", trace.WithAttributes(
		attribute.String("worksheet.subject", req.Subject),
		attribute.Int("worksheet.grades", len(req.Grades)),
	))
	defer span.End()

	worksheets, err := s.backend.GenerateWorksheets(spanCtx, backend.WorksheetRequest{
		Image:   req.Image,
		Grades:  req.Grades,
		Subject: req.Subject,
	})
	if err != nil {
		observability.GenerationFailures().WithLabelValues(string(history.ModuleWorksheets)).Inc()
		span.RecordError(err)
		return dto.WorksheetGenerateResponse{}, err
	}

	entry := history.NewEntry(map[string]any{
		"subject":    req.Subject,
		"grades":     req.Grades,
		"worksheets": worksheets,
	})

	if _, err := s.histories(userID).Module(history.ModuleWorksheets).Append(spanCtx, entry); err != nil {
		span.RecordError(err)
		return dto.WorksheetGenerateResponse{}, fmt.Errorf("record worksheet history: %w", err)
	}

	s.notifier.Publish(spanCtx, notify.Event{UserID: userID, Module: string(history.ModuleWorksheets)})
	s.activity.Record(spanCtx, userID, ActivityWorksheetCreated, fmt.Sprintf("Created worksheets: %s", req.Subject))
	observability.Generations().WithLabelValues(string(history.ModuleWorksheets)).Inc()

	return dto.WorksheetGenerateResponse{Worksheets: worksheets, Entry: entry}, nil
}

func (s *worksheetService) History(ctx context.Context, userID string) []history.Entry {
	return s.histories(userID).Module(history.ModuleWorksheets).List(ctx)
}

func (s *worksheetService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.histories(userID).Module(history.ModuleWorksheets).Remove(ctx, entryID); err != nil {
		return fmt.Errorf("remove worksheet entry: %w", err)
	}

	s.notifier.Publish(ctx, notify.Event{UserID: userID, Module: string(history.ModuleWorksheets)})
	s.activity.RecordDeletion(ctx, userID, ActivityWorksheetCreated, fmt.Sprintf("Deleted entry %s", entryID))
	observability.HistoryDeletions().WithLabelValues(string(history.ModuleWorksheets)).Inc()

	return nil
}
