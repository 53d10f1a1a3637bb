package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

const languageKey = "sahayak_language"

// PreferenceService persists the UI language choice.
type PreferenceService interface {
	Language(ctx context.Context, userID string) string
	SetLanguage(ctx context.Context, userID, language string) error
}

type preferenceService struct {
	kv     kvstore.Store
	logger zerolog.Logger
}

// NewPreferenceService builds the preference service.
func NewPreferenceService(kv kvstore.Store, logger zerolog.Logger) PreferenceService {
	return &preferenceService{
		kv:     kv,
		logger: logger.With().Str("component", "preference_service").Logger(),
	}
}

// Language returns the stored choice, falling back to English.
func (s *preferenceService) Language(ctx context.Context, userID string) string {
	value, ok, err := kvstore.Namespaced(s.kv, "user:"+userID).Get(ctx, languageKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read language preference")
		return "en"
	}
	if !ok || value == "" {
		return "en"
	}
	return value
}

func (s *preferenceService) SetLanguage(ctx context.Context, userID, language string) error {
	return kvstore.Namespaced(s.kv, "user:"+userID).Set(ctx, languageKey, language)
}
