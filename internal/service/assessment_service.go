package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
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

// ErrUnsupportedAudio reports an uploaded recording that is not audio.
var ErrUnsupportedAudio = errors.New("uploaded file is not an audio recording")

// AssessmentAnalyzeInput is the assessment module's form input; Audio holds
// the raw recording bytes.
type AssessmentAnalyzeInput struct {
	Audio        []byte `validate:"required"`
	AudioName    string
	OriginalText string `validate:"required"`
	Language     string `validate:"required"`
	GradeLevel   string `validate:"required"`
	WordLimit    int    `validate:"required,min=10,max=500"`
}

// AssessmentService drives the reading assessment module.
type AssessmentService interface {
	GenerateText(ctx context.Context, req dto.ReadingTextRequest) (dto.ReadingTextResponse, error)
	Analyze(ctx context.Context, userID string, input AssessmentAnalyzeInput) (dto.AssessmentAnalyzeResponse, error)
	History(ctx context.Context, userID string) []history.Entry
	Delete(ctx context.Context, userID, entryID string) error
}

type assessmentService struct {
	backend   *backend.Client
	histories history.Provider
	activity  ActivityService
	notifier  notify.Notifier
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAssessmentService builds the assessment module service.
func NewAssessmentService(client *backend.Client, histories history.Provider, activity ActivityService, notifier notify.Notifier, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		backend:   client,
		histories: histories,
		activity:  activity,
		notifier:  notifier,
		validator: validate,
		logger:    logger.With().Str("component", "assessment_service").Logger(),
		tracer:    otel.Tracer("github.com/sahayak-edu/sahayak-api/internal/service/assessment"),
	}
}

// GenerateText fetches a practice passage. Passages are not recorded in
// history; only completed assessments are.
func (s *assessmentService) GenerateText(ctx context.Context, req dto.ReadingTextRequest) (dto.ReadingTextResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ReadingTextResponse{}, err
	}

	text, err := s.backend.GenerateReadingText(ctx, backend.ReadingTextRequest{
		GradeLevel: req.GradeLevel,
		Language:   req.Language,
		Difficulty: req.Difficulty,
		WordLimit:  req.WordLimit,
	})
	if err != nil {
		return dto.ReadingTextResponse{}, err
	}

	return dto.ReadingTextResponse{Text: text}, nil
}

// Analyze submits the recording for scoring and records the report. The
// recording is sniffed first; non-audio uploads are rejected before any
// backend call.
func (s *assessmentService) Analyze(ctx context.Context, userID string, input AssessmentAnalyzeInput) (dto.AssessmentAnalyzeResponse, error) {
	if err := s.validator.Struct(input); err != nil {
		return dto.AssessmentAnalyzeResponse{}, err
	}

	detected := mimetype.Detect(input.Audio)
	if !isAudioMIME(detected.String()) {
		return dto.AssessmentAnalyzeResponse{}, fmt.Errorf("%w: got %s", ErrUnsupportedAudio, detected.String())
	}

	spanCtx, span := s.tracer.Start(ctx, "assessment.analyze")
	defer span.End()

	report, err := s.backend.AnalyzeReading(spanCtx, backend.AnalyzeRequest{
		Audio:        bytes.NewReader(input.Audio),
		AudioName:    input.AudioName,
		OriginalText: input.OriginalText,
		Language:     input.Language,
		GradeLevel:   input.GradeLevel,
		WordLimit:    input.WordLimit,
	})
	if err != nil {
		observability.GenerationFailures().WithLabelValues(string(history.ModuleAssessment)).Inc()
		span.RecordError(err)
		return dto.AssessmentAnalyzeResponse{}, err
	}

	entry := history.NewEntry(map[string]any{
		"text":       input.OriginalText,
		"language":   input.Language,
		"gradeLevel": input.GradeLevel,
		"wordLimit":  input.WordLimit,
		"results": map[string]any{
			"overall_score": report.OverallScore,
			"accuracy":      report.Accuracy,
			"fluency":       report.Fluency,
			"pronunciation": report.Pronunciation,
			"transcription": report.Transcription,
			"feedback":      report.Feedback,
			"suggestions":   report.Suggestions,
		},
	})

	if _, err := s.histories(userID).Module(history.ModuleAssessment).Append(spanCtx, entry); err != nil {
		span.RecordError(err)
		return dto.AssessmentAnalyzeResponse{}, fmt.Errorf("record assessment history: %w", err)
	}

	s.notifier.Publish(spanCtx, notify.Event{UserID: userID, Module: string(history.ModuleAssessment)})
	s.activity.Record(spanCtx, userID, ActivityAssessmentCompleted, fmt.Sprintf("Completed reading assessment (%s)", input.GradeLevel))
	observability.Generations().WithLabelValues(string(history.ModuleAssessment)).Inc()

	return dto.AssessmentAnalyzeResponse{
		OverallScore:  report.OverallScore,
		Accuracy:      report.Accuracy,
		Fluency:       report.Fluency,
		Pronunciation: report.Pronunciation,
		Transcription: report.Transcription,
		Feedback:      report.Feedback,
		Suggestions:   report.Suggestions,
		Entry:         entry,
	}, nil
}

func (s *assessmentService) History(ctx context.Context, userID string) []history.Entry {
	return s.histories(userID).Module(history.ModuleAssessment).List(ctx)
}

func (s *assessmentService) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := s.histories(userID).Module(history.ModuleAssessment).Remove(ctx, entryID); err != nil {
		return fmt.Errorf("remove assessment entry: %w", err)
	}

	s.notifier.Publish(ctx, notify.Event{UserID: userID, Module: string(history.ModuleAssessment)})
	s.activity.RecordDeletion(ctx, userID, ActivityAssessmentCompleted, fmt.Sprintf("Deleted entry %s", entryID))
	observability.HistoryDeletions().WithLabelValues(string(history.ModuleAssessment)).Inc()

	return nil
}

// Browsers record through MediaRecorder as webm or ogg containers, which
// sniff as video/webm and application/ogg respectively.
func isAudioMIME(mime string) bool {
	if strings.HasPrefix(mime, "audio/") {
		return true
	}
	switch mime {
	case "video/webm", "application/ogg":
		return true
	}
	return false
}
