package service

import (
	"context"
	"errors"
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

type stubMirror struct {
	url  string
	err  error
	name string
}

func (m *stubMirror) UploadRemote(_ context.Context, name, _ string) (string, error) {
	m.name = name
	return m.url, m.err
}

func newVisualFixture(t *testing.T, mirror VisualMirror) (VisualService, history.Provider) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/visuals/generate-image", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"imageUrl":"/static/diagram.png"}`))
	}))
	t.Cleanup(server.Close)

	kv := kvstore.NewMemory()
	histories := history.NewProvider(kv, 10, zerolog.Nop())
	activity := NewActivityService(kv, histories, 20, zerolog.Nop())
	notifier := notify.New(nil, nil, "sahayak", zerolog.Nop())
	client := backend.New(server.URL, time.Minute, staticTokens{}, zerolog.Nop())
	validate := validator.New(validator.WithRequiredStructEnabled())

	return NewVisualService(client, mirror, histories, activity, notifier, validate, zerolog.Nop()), histories
}

func TestVisualGenerateUsesMirroredURL(t *testing.T) {
	ctx := context.Background()
	mirror := &stubMirror{url: "https://cdn.example.com/visual-aid-water-cycle.png"}
	svc, histories := newVisualFixture(t, mirror)

	resp, err := svc.Generate(ctx, "teacher-1", dto.VisualGenerateRequest{Prompt: "Water Cycle"})
	require.NoError(t, err)
	require.Equal(t, mirror.url, resp.ImageURL)
	require.Equal(t, "visual-aid-water-cycle", mirror.name)

	entries := histories("teacher-1").Module(history.ModuleVisuals).List(ctx)
	require.Len(t, entries, 1)
	require.Equal(t, mirror.url, entries[0].Fields["imageUrl"])
}

func TestVisualGenerateFallsBackWhenMirrorFails(t *testing.T) {
	ctx := context.Background()
	svc, histories := newVisualFixture(t, &stubMirror{err: errors.New("upload quota exceeded")})

	resp, err := svc.Generate(ctx, "teacher-1", dto.VisualGenerateRequest{Prompt: "water cycle"})
	require.NoError(t, err)
	require.Contains(t, resp.ImageURL, "/static/diagram.png")

	entries := histories("teacher-1").Module(history.ModuleVisuals).List(ctx)
	require.Len(t, entries, 1)
}

func TestVisualGenerateWorksWithoutMirror(t *testing.T) {
	svc, _ := newVisualFixture(t, nil)

	resp, err := svc.Generate(context.Background(), "teacher-1", dto.VisualGenerateRequest{Prompt: "water cycle", Style: "diagram"})
	require.NoError(t, err)
	require.Contains(t, resp.ImageURL, "/static/diagram.png")
}

func TestVisualGenerateRejectsUnknownStyle(t *testing.T) {
	svc, _ := newVisualFixture(t, nil)

	_, err := svc.Generate(context.Background(), "teacher-1", dto.VisualGenerateRequest{Prompt: "water cycle", Style: "abstract"})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
}
