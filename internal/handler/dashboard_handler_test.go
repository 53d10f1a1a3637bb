package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak-api/internal/handler"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
	"github.com/sahayak-edu/sahayak-api/internal/notify"
	"github.com/sahayak-edu/sahayak-api/internal/service"
)

func newDashboardApp(t *testing.T) (*fiber.App, service.ActivityService, history.Provider) {
	t.Helper()

	kv := kvstore.NewMemory()
	histories := history.NewProvider(kv, 10, zerolog.Nop())
	activity := service.NewActivityService(kv, histories, 20, zerolog.Nop())
	notifier := notify.New(nil, nil, "sahayak", zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/dashboard", asUser("teacher-1"))
	handler.NewDashboardHandler(activity, notifier, zerolog.Nop()).Register(group)

	return app, activity, histories
}

func TestDashboardStatsReflectHistories(t *testing.T) {
	app, _, histories := newDashboardApp(t)

	ctx := context.Background()
	store := histories("teacher-1").Module(history.ModuleWorksheets)
	for i := 0; i < 2; i++ {
		_, err := store.Append(ctx, history.NewEntry(map[string]any{"subject": "maths"}))
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 2, data["worksheetsCreated"])
	require.EqualValues(t, 0, data["storiesGenerated"])
}

func TestDashboardActivitiesIncludeStatsAndLog(t *testing.T) {
	app, activity, _ := newDashboardApp(t)

	activity.Record(context.Background(), "teacher-1", service.ActivityQuestionAnswered, "Answered: why is the sky blue")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/activities", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "stats")

	activities, ok := data["activities"].([]any)
	require.True(t, ok)
	require.Len(t, activities, 1)
}

func TestDashboardClearEmptiesLog(t *testing.T) {
	app, activity, _ := newDashboardApp(t)

	ctx := context.Background()
	activity.Record(ctx, "teacher-1", service.ActivityLessonPlanned, "Generated: algebra plan")
	require.Len(t, activity.Recent(ctx, "teacher-1"), 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/dashboard/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Empty(t, activity.Recent(ctx, "teacher-1"))
}

func TestDashboardRejectsAnonymous(t *testing.T) {
	kv := kvstore.NewMemory()
	histories := history.NewProvider(kv, 10, zerolog.Nop())
	activity := service.NewActivityService(kv, histories, 20, zerolog.Nop())
	notifier := notify.New(nil, nil, "sahayak", zerolog.Nop())

	app := fiber.New()
	handler.NewDashboardHandler(activity, notifier, zerolog.Nop()).Register(app.Group("/api/v1/dashboard"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
