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

// ContentService drives the content generation module.
type ContentService interface {
	Generate(ctx context.Context, userID string, req dto.ContentGenerateRequest) (dto.ContentGenerateResponse, error)
	History(ctx context.Context, userID string) []history.Entry
	Delete(ctx context.Context, userID, entryID string) error
}

type contentService struct {
	backend   *backend.Client
	histories history.Provider
	activity  ActivityService
	notifier  notify.Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewContentService builds the content module service.
func NewContentService(client *backend.Client, histories history.Provider, activity ActivityService, notifier notify.Notifier, validate *validator.Validate, logger zerolog.Logger) ContentService {
	return &contentService{
		backend:   client,
		histories: histories,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "content_service").Logger(),
		tracer:    otel.Tracer("github.com/sahayak-edu/sahayak-api/internal/service/content"),
	}
}

// Generate calls the backend, records the result in the content history and
// announces the change. The notification goes out only after the entry is
// persisted.
func (s *contentService) Generate(ctx context.Context, userID string, req dto.ContentGenerateRequest) (dto.ContentGenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ContentGenerateResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "content.generate", trace.WithAttributes(
		attribute.String("content.topic", req.Topic),
		attribute.String("content.type", req.ContentType),
	))
	defer span.End()

	content, err := s.backend.GenerateContent(spanCtx, backend.ContentRequest{
		Topic:       req.Topic,
		ContentType: req.ContentType,
		GradeLevel:  req.GradeLevel,
		Language:    req.Language,
		Length:      req.Length,
	})
	if err != nil {
		observability.GenerationFailures().WithLabelValues(string(history.ModuleContent)).Inc()
		span.RecordError(err)
		return dto.ContentGenerateResponse{}, err
	}

	entry := history.NewEntry(map[string]any{
		"topic":       req.Topic,
		"contentType": req.ContentType,
		"gradeLevel":  req.GradeLevel,
		"language":    req.Language,
		"length":      req.Length,
		"content":     content,
	})

	if _, err := s.histories(userID).Module(history.ModuleContent).Append(spanCtx, entry); err != nil {
		span.RecordError(err)
		return dto.ContentGenerateResponse{}, fmt.Errorf("record content history: %w", err)
	}

	s.notifier.Publish(spanCtx, notify.Event{UserID: userID, Module: string(history.ModuleContent)})
	s.activity.Record(spanCtx, userID, ActivityContentGenerated, fmt.Sprintf("Generated: %s", req.Topic))
	observability.Generations().WithLabelValues(string(history.ModuleContent)).Inc()

	return dto.ContentGenerateResponse{Content: content, Entry: entry}, nil
}

func (s *contentService) History(ctx context.Context, userID string) []history.Entry {
	return s.histories(userID).Module(history.ModuleContent).List(ctx)
}

func (s *contentService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.histories(userID).Module(history.ModuleContent).Remove(ctx, entryID); err != nil {
		return fmt.Errorf("remove content entry: %w", err)
	}

	s.notifier.Publish(ctx, notify.Event{UserID: userID, Module: string(history.ModuleContent)})
	s.activity.RecordDeletion(ctx, userID, ActivityContentGenerated, fmt.Sprintf("Deleted entry %s", entryID))
	observability.HistoryDeletions().WithLabelValues(string(history.ModuleContent)).Inc()

	return nil
}
