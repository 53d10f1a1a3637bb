package history

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
)

func TestStoreAppendKeepsNewestFirstUnderCap(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := NewStore(kv, "sahayak_past_worksheets", 10, zerolog.Nop())

	for i := 1; i <= 12; i++ {
		entry := Entry{
			ID:        fmt.Sprintf("entry-%02d", i),
			Timestamp: time.Now().UTC(),
			Fields:    map[string]any{"topic": fmt.Sprintf("topic %d", i)},
		}
		_, err := store.Append(ctx, entry)
		require.NoError(t, err)
	}

	entries := store.List(ctx)
	require.Len(t, entries, 10)
	require.Equal(t, "entry-12", entries[0].ID)
	require.Equal(t, "entry-03", entries[9].ID)
}

func TestStoreUnboundedWhenCapIsZero(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kvstore.NewMemory(), "sahayak_past_content", 0, zerolog.Nop())

	for i := 0; i < 25; i++ {
		_, err := store.Append(ctx, NewEntry(map[string]any{"n": i}))
		require.NoError(t, err)
	}

	require.Equal(t, 25, store.Len(ctx))
}

func TestStoreListFailsClosed(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := NewStore(kv, "sahayak_past_questions", 10, zerolog.Nop())

	require.Empty(t, store.List(ctx))

	require.NoError(t, kv.Set(ctx, "sahayak_past_questions", "{not json"))
	require.Empty(t, store.List(ctx))

	require.NoError(t, kv.Set(ctx, "sahayak_past_questions", "null"))
	require.Empty(t, store.List(ctx))
}

func TestStoreRemoveMissingIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	store := NewStore(kv, "sahayak_past_visuals", 10, zerolog.Nop())

	kept := NewEntry(map[string]any{"prompt": "water cycle"})
	_, err := store.Append(ctx, kept)
	require.NoError(t, err)
	before, _, err := kv.Get(ctx, "sahayak_past_visuals")
	require.NoError(t, err)

	entries, err := store.Remove(ctx, "no-such-id")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	after, _, err := kv.Get(ctx, "sahayak_past_visuals")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestStoreRemoveFiltersByID(t *testing.T) {
	ctx := context.Background()
	store := NewStore(kvstore.NewMemory(), "sahayak_past_lesson_plans", 10, zerolog.Nop())

	first := NewEntry(map[string]any{"topic": "fractions"})
	second := NewEntry(map[string]any{"topic": "photosynthesis"})
	_, err := store.Append(ctx, first)
	require.NoError(t, err)
	_, err = store.Append(ctx, second)
	require.NoError(t, err)

	entries, err := store.Remove(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, second.ID, entries[0].ID)

	require.Equal(t, 1, store.Len(ctx))
}

func TestEntryJSONIsFlat(t *testing.T) {
	entry := Entry{
		ID:        "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Fields:    map[string]any{"topic": "water cycle", "language": "hi"},
	}

	payload, err := json.Marshal(entry)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(payload, &flat))
	require.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", flat["id"])
	require.Equal(t, "water cycle", flat["topic"])
	require.Equal(t, "hi", flat["language"])
	require.NotContains(t, flat, "Fields")

	var decoded Entry
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Equal(t, entry.ID, decoded.ID)
	require.True(t, entry.Timestamp.Equal(decoded.Timestamp))
	require.Equal(t, "water cycle", decoded.Fields["topic"])
	require.NotContains(t, decoded.Fields, "id")
}

func TestNewIDIsSortableByCreation(t *testing.T) {
	first := NewID()
	time.Sleep(2 * time.Millisecond)
	second := NewID()
	require.Less(t, first, second)
}

func TestModuleCaps(t *testing.T) {
	require.Equal(t, 0, ModuleContent.Cap(10))
	for _, module := range Modules()[1:] {
		require.Equal(t, 10, module.Cap(10))
	}
	require.True(t, ModuleLessons.Valid())
	require.False(t, Module("unknown").Valid())
}
