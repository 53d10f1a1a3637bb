// Package history implements the per-module persisted lists of past
// generation results: newest-first, optionally capped, stored as one
// serialized blob per module.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

// Store is the durable record of past generation actions for one module.
type Store struct {
	kv     kvstore.Store
	key    string
	cap    int
	logger zerolog.Logger
}

// NewStore builds a history store over the given key. A cap of zero means
// the list is unbounded.
func NewStore(kv kvstore.Store, key string, cap int, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		key:    key,
		cap:    cap,
		logger: logger.With().Str("component", "history_store").Str("key", key).Logger(),
	}
}

// ForModule builds the store for one module using its canonical key and cap.
func ForModule(kv kvstore.Store, module Module, defaultCap int, logger zerolog.Logger) *Store {
	return NewStore(kv, module.StorageKey(), module.Cap(defaultCap), logger)
}

// List returns the persisted entries, newest first. A missing or corrupt
// blob yields an empty list; read failures are logged and treated as empty.
func (s *Store) List(ctx context.Context) []Entry {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read history blob")
		return []Entry{}
	}
	if !ok || raw == "" {
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn().Err(err).Msg("corrupt history blob, treating as empty")
		return []Entry{}
	}
	if entries == nil {
		entries = []Entry{}
	}

	return entries
}

// Len reports the current number of persisted entries.
func (s *Store) Len(ctx context.Context) int {
	return len(s.List(ctx))
}

// Append inserts the entry at the front, truncates to the cap and writes the
// full list back. Returns the list as persisted.
func (s *Store) Append(ctx context.Context, entry Entry) ([]Entry, error) {
	entries := append([]Entry{entry}, s.List(ctx)...)
	if s.cap > 0 && len(entries) > s.cap {
		entries = entries[:s.cap]
	}

	if err := s.write(ctx, entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// Remove filters out the entry with the matching id and writes back. A
// missing id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) ([]Entry, error) {
	entries := s.List(ctx)
	filtered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != id {
			filtered = append(filtered, entry)
		}
	}

	if len(filtered) == len(entries) {
		return entries, nil
	}

	if err := s.write(ctx, filtered); err != nil {
		return nil, err
	}

	return filtered, nil
}

func (s *Store) write(ctx context.Context, entries []Entry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history list: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(payload)); err != nil {
		return fmt.Errorf("persist history list: %w", err)
	}
	return nil
}
