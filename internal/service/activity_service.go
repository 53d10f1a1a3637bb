package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

const (
	statsKey      = "sahayak_stats"
	activitiesKey = "sahayak_activities"
)

// ActivityType tags one kind of recorded action.
type ActivityType string

const (
	ActivityContentGenerated    ActivityType = "content_generated"
	ActivityWorksheetCreated    ActivityType = "worksheet_created"
	ActivityQuestionAnswered    ActivityType = "question_answered"
	ActivityVisualGenerated     ActivityType = "visual_generated"
	ActivityAssessmentCompleted ActivityType = "assessment_completed"
	ActivityLessonPlanned       ActivityType = "lesson_planned"
)

type activityConfig struct {
	color  string
	module history.Module
}

var activityConfigs = map[ActivityType]activityConfig{
	ActivityContentGenerated:    {color: "bg-blue-500", module: history.ModuleContent},
	ActivityWorksheetCreated:    {color: "bg-green-500", module: history.ModuleWorksheets},
	ActivityQuestionAnswered:    {color: "bg-purple-500", module: history.ModuleQuestions},
	ActivityVisualGenerated:     {color: "bg-orange-500", module: history.ModuleVisuals},
	ActivityAssessmentCompleted: {color: "bg-red-500", module: history.ModuleAssessment},
	ActivityLessonPlanned:       {color: "bg-indigo-500", module: history.ModuleLessons},
}

// ActivityService recomputes dashboard stats from the history stores and
// maintains the capped advisory activity log. Every operation is best
// effort: storage failures are logged and swallowed, never propagated to
// the module action that triggered them.
type ActivityService interface {
	Stats(ctx context.Context, userID string) dto.StatsSnapshot
	Record(ctx context.Context, userID string, activityType ActivityType, description string)
	RecordDeletion(ctx context.Context, userID string, activityType ActivityType, description string)
	Recent(ctx context.Context, userID string) []dto.ActivityLogEntry
	Clear(ctx context.Context, userID string) error
}

type activityService struct {
	kv        kvstore.Store
	histories history.Provider
	logCap    int
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewActivityService builds the aggregator. logCap bounds the activity log.
func NewActivityService(kv kvstore.Store, histories history.Provider, logCap int, logger zerolog.Logger) ActivityService {
	if logCap <= 0 {
		logCap = 20
	}
	return &activityService{
		kv:        kv,
		histories: histories,
		logCap:    logCap,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_service").Logger(),
		now:       time.Now,
	}
}

// Stats recomputes the snapshot from the stores' current lengths and writes
// it through to the cache key. The cache is write-only telemetry; consumers
// always go through this method, so the snapshot can never drift.
func (s *activityService) Stats(ctx context.Context, userID string) dto.StatsSnapshot {
	lengths := s.histories(userID).Lengths(ctx)

	snapshot := dto.StatsSnapshot{
		StoriesGenerated:     lengths[history.ModuleContent],
		WorksheetsCreated:    lengths[history.ModuleWorksheets],
		QuestionsAnswered:    lengths[history.ModuleQuestions],
		VisualsGenerated:     lengths[history.ModuleVisuals],
		AssessmentsCompleted: lengths[history.ModuleAssessment],
		LessonPlans:          lengths[history.ModuleLessons],
	}

	if payload, err := json.Marshal(snapshot); err == nil {
		if err := s.userKV(userID).Set(ctx, statsKey, string(payload)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to write stats cache")
		}
	}

	return snapshot
}

// Record refreshes the stats cache and unshifts a log entry. Called on every
// successful generation.
func (s *activityService) Record(ctx context.Context, userID string, activityType ActivityType, description string) {
	s.Stats(ctx, userID)

	config, ok := activityConfigs[activityType]
	if !ok {
		config = activityConfigs[ActivityContentGenerated]
	}

	entry := dto.ActivityLogEntry{
		Type:        string(activityType),
		Description: strings.TrimSpace(s.sanitizer.Sanitize(description)),
		Timestamp:   s.now().UTC(),
		Color:       config.color,
	}

	entries := append([]dto.ActivityLogEntry{entry}, s.Recent(ctx, userID)...)
	if len(entries) > s.logCap {
		entries = entries[:s.logCap]
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity log")
		return
	}
	if err := s.userKV(userID).Set(ctx, activitiesKey, string(payload)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write activity log")
	}
}

// RecordDeletion refreshes the stats cache only. The matching log entry, if
// any, stays in place.
func (s *activityService) RecordDeletion(ctx context.Context, userID string, activityType ActivityType, description string) {
	s.Stats(ctx, userID)
	s.logger.Debug().
		Str("type", string(activityType)).
		Str("description", description).
		Msg("stats recomputed after deletion")
}

// Recent returns the activity log, newest first. A missing or corrupt blob
// yields an empty log.
func (s *activityService) Recent(ctx context.Context, userID string) []dto.ActivityLogEntry {
	raw, ok, err := s.userKV(userID).Get(ctx, activitiesKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read activity log")
		return []dto.ActivityLogEntry{}
	}
	if !ok || raw == "" {
		return []dto.ActivityLogEntry{}
	}

	var entries []dto.ActivityLogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn().Err(err).Msg("corrupt activity log, treating as empty")
		return []dto.ActivityLogEntry{}
	}
	if entries == nil {
		entries = []dto.ActivityLogEntry{}
	}

	return entries
}

// Clear removes the stats cache and the activity log.
func (s *activityService) Clear(ctx context.Context, userID string) error {
	kv := s.userKV(userID)
	if err := kv.Delete(ctx, statsKey); err != nil {
		return err
	}
	return kv.Delete(ctx, activitiesKey)
}

func (s *activityService) userKV(userID string) kvstore.Store {
	return kvstore.Namespaced(s.kv, "user:"+userID)
}
