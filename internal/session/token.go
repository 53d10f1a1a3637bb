package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

const tokenKey = "authToken"

// TokenStorage keeps the backend bearer token in the kv store. Implements
// the backend client's TokenStore contract.
type TokenStorage struct {
	kv     kvstore.Store
	logger zerolog.Logger
}

// NewTokenStorage builds token storage over the shared kv store.
func NewTokenStorage(kv kvstore.Store, logger zerolog.Logger) *TokenStorage {
	return &TokenStorage{
		kv:     kv,
		logger: logger.With().Str("component", "token_storage").Logger(),
	}
}

// Token returns the stored bearer token, empty when absent or unreadable.
func (t *TokenStorage) Token(ctx context.Context) string {
	value, ok, err := t.kv.Get(ctx, tokenKey)
	if err != nil {
		t.logger.Warn().Err(err).Msg("failed to read auth token")
		return ""
	}
	if !ok {
		return ""
	}
	return value
}

// Set stores a new bearer token.
func (t *TokenStorage) Set(ctx context.Context, token string) error {
	return t.kv.Set(ctx, tokenKey, token)
}

// Clear drops the stored token. Called when the backend answers 401.
func (t *TokenStorage) Clear(ctx context.Context) {
	if err := t.kv.Delete(ctx, tokenKey); err != nil {
		t.logger.Warn().Err(err).Msg("failed to clear auth token")
	}
}
