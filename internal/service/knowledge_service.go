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

// KnowledgeService drives the instant question answering module.
type KnowledgeService interface {
	Ask(ctx context.Context, userID string, req dto.KnowledgeAskRequest) (dto.KnowledgeAskResponse, error)
	History(ctx context.Context, userID string) []history.Entry
	Delete(ctx context.Context, userID, entryID string) error
}

type knowledgeService struct {
	backend   *backend.Client
	histories history.Provider
	activity  ActivityService
	notifier  notify.Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewKnowledgeService builds the knowledge module service.
func NewKnowledgeService(client *backend.Client, histories history.Provider, activity ActivityService, notifier notify.Notifier, validate *validator.Validate, logger zerolog.Logger) KnowledgeService {
	return &knowledgeService{
		backend:   client,
		histories: histories,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "knowledge_service").Logger(),
		tracer:    otel.Tracer("github.com/sahayak-edu/sahayak-api/internal/service/knowledge"),
	}
}

func (s *knowledgeService) Ask(ctx context.Context, userID string, req dto.KnowledgeAskRequest) (dto.KnowledgeAskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.KnowledgeAskResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "knowledge.ask")
	defer span.End()

	answer, err := s.backend.AskQuestion(spanCtx, backend.KnowledgeRequest{
		Question:   req.Question,
		Language:   req.Language,
		GradeLevel: req.GradeLevel,
		Length:     req.Length,
	})
	if err != nil {
		observability.GenerationFailures().WithLabelValues(string(history.ModuleQuestions)).Inc()
		span.RecordError(err)
		return dto.KnowledgeAskResponse{}, err
	}

	entry := history.NewEntry(map[string]any{
		"question":   req.Question,
		"language":   req.Language,
		"gradeLevel": req.GradeLevel,
		"length":     req.Length,
		"answer":     answer,
	})

	if _, err := s.histories(userID).Module(history.ModuleQuestions).Append(spanCtx, entry); err != nil {
		span.RecordError(err)
		return dto.KnowledgeAskResponse{}, fmt.Errorf("record question history: %w", err)
	}

	s.notifier.Publish(spanCtx, notify.Event{UserID: userID, Module: string(history.ModuleQuestions)})
	s.activity.Record(spanCtx, userID, ActivityQuestionAnswered, fmt.Sprintf("Answered: %s", req.Question))
	observability.Generations().WithLabelValues(string(history.ModuleQuestions)).Inc()

	return dto.KnowledgeAskResponse{Answer: answer, Entry: entry}, nil
}

func (s *knowledgeService) History(ctx context.Context, userID string) []history.Entry {
	return s.histories(userID).Module(history.ModuleQuestions).List(ctx)
}

func (s *knowledgeService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.histories(userID).Module(history.ModuleQuestions).Remove(ctx, entryID); err != nil {
		return fmt.Errorf("remove question entry: %w", err)
	}

	s.notifier.Publish(ctx, notify.Event{UserID: userID, Module: string(history.ModuleQuestions)})
	s.activity.RecordDeletion(ctx, userID, ActivityQuestionAnswered, fmt.Sprintf("Deleted entry %s", entryID))
	observability.HistoryDeletions().WithLabelValues(string(history.ModuleQuestions)).Inc()

	return nil
}
