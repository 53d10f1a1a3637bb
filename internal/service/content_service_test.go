package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
	"github.com/sahayak-edu/sahayak-api/internal/notify"
	"github.com/sahayak-edu/sahayak-api/pkg/backend"
)

type staticTokens struct{}

func (staticTokens) Token(context.Context) string { return "jwt-value" }
func (staticTokens) Clear(context.Context)        {}

func newContentFixture(t *testing.T, handler http.HandlerFunc) (ContentService, history.Provider, ActivityService, notify.Notifier) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	kv := kvstore.NewMemory()
	histories := history.NewProvider(kv, 10, zerolog.Nop())
	activity := NewActivityService(kv, histories, 20, zerolog.Nop())
	notifier := notify.New(nil, nil, "sahayak", zerolog.Nop())
	client := backend.New(server.URL, time.Minute, staticTokens{}, zerolog.Nop())
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewContentService(client, histories, activity, notifier, validate, zerolog.Nop())
	return svc, histories, activity, notifier
}

func TestContentGeneratePersistsBeforeNotifying(t *testing.T) {
	ctx := context.Background()
	svc, histories, activity, notifier := newContentFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"A story about the water cycle"}`))
	})

	events, cleanup := notifier.Subscribe("teacher-1")
	defer cleanup()

	resp, err := svc.Generate(ctx, "teacher-1", dto.ContentGenerateRequest{
		Topic:       "water cycle",
		ContentType: "story",
		GradeLevel:  "3",
		Language:    "en",
		Length:      "short",
	})
	require.NoError(t, err)
	require.Equal(t, "A story about the water cycle", resp.Content)
	require.NotEmpty(t, resp.Entry.ID)

	entries := histories("teacher-1").Module(history.ModuleContent).List(ctx)
	require.Len(t, entries, 1)
	require.Equal(t, "water cycle", entries[0].Fields["topic"])
	require.Equal(t, "A story about the water cycle", entries[0].Fields["content"])

	select {
	case event := <-events:
		require.Equal(t, string(history.ModuleContent), event.Module)
		// The entry was already readable when the event went out.
		require.Len(t, histories("teacher-1").Module(history.ModuleContent).List(ctx), 1)
	case <-time.After(time.Second):
		t.Fatal("expected a data-changed event")
	}

	require.Equal(t, 1, activity.Stats(ctx, "teacher-1").StoriesGenerated)
	recent := activity.Recent(ctx, "teacher-1")
	require.Len(t, recent, 1)
	require.Equal(t, "Generated: water cycle", recent[0].Description)
}

func TestContentGenerateValidatesInput(t *testing.T) {
	svc, _, _, _ := newContentFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("backend must not be called for invalid input")
	})

	_, err := svc.Generate(context.Background(), "teacher-1", dto.ContentGenerateRequest{})
	require.Error(t, err)
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}

func TestContentGenerateBackendFailureLeavesHistoryEmpty(t *testing.T) {
	ctx := context.Background()
	svc, histories, activity, _ := newContentFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"Model overloaded"}`))
	})

	_, err := svc.Generate(ctx, "teacher-1", dto.ContentGenerateRequest{
		Topic:       "water cycle",
		ContentType: "story",
		GradeLevel:  "3",
		Language:    "en",
		Length:      "short",
	})
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)

	require.Empty(t, histories("teacher-1").Module(history.ModuleContent).List(ctx))
	require.Empty(t, activity.Recent(ctx, "teacher-1"))
}

func TestContentDeleteRecomputesStats(t *testing.T) {
	ctx := context.Background()
	svc, histories, activity, notifier := newContentFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"story"}`))
	})

	resp, err := svc.Generate(ctx, "teacher-1", dto.ContentGenerateRequest{
		Topic:       "water cycle",
		ContentType: "story",
		GradeLevel:  "3",
		Language:    "en",
		Length:      "short",
	})
	require.NoError(t, err)
	require.Equal(t, 1, activity.Stats(ctx, "teacher-1").StoriesGenerated)

	events, cleanup := notifier.Subscribe("teacher-1")
	defer cleanup()

	require.NoError(t, svc.Delete(ctx, "teacher-1", resp.Entry.ID))
	require.Empty(t, histories("teacher-1").Module(history.ModuleContent).List(ctx))
	require.Equal(t, 0, activity.Stats(ctx, "teacher-1").StoriesGenerated)
	// The deletion still shows in the activity log.
	require.Len(t, activity.Recent(ctx, "teacher-1"), 1)

	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("expected a data-changed event after deletion")
	}
}

func TestContentDeleteUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newContentFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":"story"}`))
	})

	require.NoError(t, svc.Delete(ctx, "teacher-1", "no-such-id"))
}
