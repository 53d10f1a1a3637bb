package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/notify"
	"github.com/sahayak-edu/sahayak-api/internal/observability"
	"github.com/sahayak-edu/sahayak-api/pkg/backend"
)

// LessonService drives the weekly lesson planner module.
type LessonService interface {
	Generate(ctx context.Context, userID string, req dto.LessonGenerateRequest) (dto.LessonGenerateResponse, error)
	History(ctx context.Context, userID string) []history.Entry
	Delete(ctx context.Context, userID, entryID string) error
}

type lessonService struct {
	backend   *backend.Client
	histories history.Provider
	activity  ActivityService
	notifier  notify.Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewLessonService builds the lesson planner service.
func NewLessonService(client *backend.Client, histories history.Provider, activity ActivityService, notifier notify.Notifier, validate *validator.Validate, logger zerolog.Logger) LessonService {
	return &lessonService{
		backend:   client,
		histories: histories,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
		tracer:    otel.Tracer("github.com/sahayak-edu/sahayak-api/internal/service/lesson"),
	}
}

func (s *lessonService) Generate(ctx context.Context, userID string, req dto.LessonGenerateRequest) (dto.LessonGenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.LessonGenerateResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "lessons.generate")
	defer span.End()

	plan, err := s.backend.GenerateLesson(spanCtx, backend.LessonRequest{
		Topic:      req.Topic,
		Subject:    req.Subject,
		GradeLevel: req.GradeLevel,
		Language:   req.Language,
	})
	if err != nil {
		observability.GenerationFailures().WithLabelValues(string(history.ModuleLessons)).Inc()
		span.RecordError(err)
		return dto.LessonGenerateResponse{}, err
	}

	entry := history.NewEntry(map[string]any{
		"topic":      req.Topic,
		"subject":    req.Subject,
		"gradeLevel": req.GradeLevel,
		"language":   req.Language,
		"lessonPlan": plan,
	})

	if _, err := s.histories(userID).Module(history.ModuleLessons).Append(spanCtx, entry); err != nil {
		span.RecordError(err)
		return dto.LessonGenerateResponse{}, fmt.Errorf("record lesson history: %w", err)
	}

	s.notifier.Publish(spanCtx, notify.Event{UserID: userID, Module: string(history.ModuleLessons)})
	s.activity.Record(spanCtx, userID, ActivityLessonPlanned, fmt.Sprintf("Planned: %s", req.Topic))
	observability.Generations().WithLabelValues(string(history.ModuleLessons)).Inc()

	return dto.LessonGenerateResponse{LessonPlan: plan, Entry: entry}, nil
}

func (s *lessonService) History(ctx context.Context, userID string) []history.Entry {
	return s.histories(userID).Module(history.ModuleLessons).List(ctx)
}

func (s *lessonService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.histories(userID).Module(history.ModuleLessons).Remove(ctx, entryID); err != nil {
		return fmt.Errorf("remove lesson entry: %w", err)
	}

	s.notifier.Publish(ctx, notify.Event{UserID: userID, Module: string(history.ModuleLessons)})
	s.activity.RecordDeletion(ctx, userID, ActivityLessonPlanned, fmt.Sprintf("Deleted entry %s", entryID))
	observability.HistoryDeletions().WithLabelValues(string(history.ModuleLessons)).Inc()

	return nil
}
