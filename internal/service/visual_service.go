package service

import (
	"context"
	"fmt"
	"strings"

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

// VisualMirror re-hosts a generated image at a durable URL. Optional; when
// absent the backend's own URL is stored.
type VisualMirror interface {
	UploadRemote(ctx context.Context, name, url string) (string, error)
}

// VisualService drives the visual-aid generator module.
type VisualService interface {
	Generate(ctx context.Context, userID string, req dto.VisualGenerateRequest) (dto.VisualGenerateResponse, error)
	History(ctx context.Context, userID string) []history.Entry
	Delete(ctx context.Context, userID, entryID string) error
}

type visualService struct {
	backend   *backend.Client
	mirror    VisualMirror
	histories history.Provider
	activity  ActivityService
	notifier  notify.Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewVisualService builds the visual module service. mirror may be nil.
func NewVisualService(client *backend.Client, mirror VisualMirror, histories history.Provider, activity ActivityService, notifier notify.Notifier, validate *validator.Validate, logger zerolog.Logger) VisualService {
	return &visualService{
		backend:   client,
		mirror:    mirror,
		histories: histories,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "visual_service").Logger(),
		tracer:    otel.Tracer("github.com/sahayak-edu/sahayak-api/internal/service/visual"),
	}
}

func (s *visualService) Generate(ctx context.Context, userID string, req dto.VisualGenerateRequest) (dto.VisualGenerateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.VisualGenerateResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "visuals.generate")
	defer span.End()

	prompt := req.Prompt
	if req.Style != "" {
		prompt = fmt.Sprintf("%s, %s style", req.Prompt, req.Style)
	}

	imageURL, err := s.backend.GenerateImage(spanCtx, prompt)
	if err != nil {
		observability.GenerationFailures().WithLabelValues(string(history.ModuleVisuals)).Inc()
		span.RecordError(err)
		return dto.VisualGenerateResponse{}, err
	}

	if s.mirror != nil && imageURL != "" {
		name := fmt.Sprintf("visual-aid-%s", strings.ReplaceAll(strings.ToLower(req.Prompt), " ", "-"))
		if mirrored, err := s.mirror.UploadRemote(spanCtx, name, imageURL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to mirror visual aid, keeping backend url")
		} else {
			imageURL = mirrored
		}
	}

	entry := history.NewEntry(map[string]any{
		"prompt":   req.Prompt,
		"style":    req.Style,
		"imageUrl": imageURL,
	})

	if _, err := s.histories(userID).Module(history.ModuleVisuals).Append(spanCtx, entry); err != nil {
		span.RecordError(err)
		return dto.VisualGenerateResponse{}, fmt.Errorf("record visual history: %w", err)
	}

	s.notifier.Publish(spanCtx, notify.Event{UserID: userID, Module: string(history.ModuleVisuals)})
	s.activity.Record(spanCtx, userID, ActivityVisualGenerated, fmt.Sprintf("Generated visual: %s", req.Prompt))
	observability.Generations().WithLabelValues(string(history.ModuleVisuals)).Inc()

	return dto.VisualGenerateResponse{ImageURL: imageURL, Entry: entry}, nil
}

func (s *visualService) History(ctx context.Context, userID string) []history.Entry {
	return s.histories(userID).Module(history.ModuleVisuals).List(ctx)
}

func (s *visualService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.histories(userID).Module(history.ModuleVisuals).Remove(ctx, entryID); err != nil {
		return fmt.Errorf("remove visual entry: %w", err)
	}

	s.notifier.Publish(ctx, notify.Event{UserID: userID, Module: string(history.ModuleVisuals)})
	s.activity.RecordDeletion(ctx, userID, ActivityVisualGenerated, fmt.Sprintf("Deleted entry %s", entryID))
	observability.HistoryDeletions().WithLabelValues(string(history.ModuleVisuals)).Inc()

	return nil
}
