package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sahayak-edu/sahayak-api/internal/handler"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
	"github.com/sahayak-edu/sahayak-api/internal/session"
)

type sessionFixture struct {
	app    *fiber.App
	tokens *session.TokenStorage
	gate   *session.Gate
}

func newSessionApp(t *testing.T) sessionFixture {
	t.Helper()

	kv := kvstore.NewMemory()
	tokens := session.NewTokenStorage(kv, zerolog.Nop())
	broadcaster := &session.AuthBroadcaster{}
	gate := session.NewGate(broadcaster.Observe)
	t.Cleanup(gate.Close)

	validate := validator.New(validator.WithRequiredStructEnabled())

	app := fiber.New()
	group := app.Group("/api/v1/session")
	h := handler.NewSessionHandler(tokens, broadcaster, gate, validate, zerolog.Nop())
	h.Register(group, group.Group("", asUser("teacher-1")))

	return sessionFixture{app: app, tokens: tokens, gate: gate}
}

func TestSessionLoginStoresTokenAndFlipsGate(t *testing.T) {
	fixture := newSessionApp(t)
	require.Equal(t, session.StateUnknown, fixture.gate.State())

	body := `{"userId":"teacher-1","token":"jwt-value"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := fixture.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, session.StateAuthenticated, fixture.gate.State())
	require.Equal(t, "teacher-1", fixture.gate.UserID())
	require.Equal(t, "jwt-value", fixture.tokens.Token(context.Background()))
}

func TestSessionLoginValidatesBody(t *testing.T) {
	fixture := newSessionApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(`{"userId":"teacher-1"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := fixture.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, session.StateUnknown, fixture.gate.State())
}

func TestSessionLogoutClearsTokenAndGate(t *testing.T) {
	fixture := newSessionApp(t)

	body := `{"userId":"teacher-1","token":"jwt-value"}`
	login := httptest.NewRequest(http.MethodPost, "/api/v1/session/login", strings.NewReader(body))
	login.Header.Set("Content-Type", "application/json")
	_, err := fixture.app.Test(login)
	require.NoError(t, err)

	resp, err := fixture.app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/session/logout", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, session.StateUnauthenticated, fixture.gate.State())
	require.Empty(t, fixture.tokens.Token(context.Background()))
}

func TestSessionResolveRedirectsWhenSignedOut(t *testing.T) {
	fixture := newSessionApp(t)

	_, err := fixture.app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/session/logout", nil))
	require.NoError(t, err)

	resp, err := fixture.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/session/resolve?path=%2Fworksheets", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "redirect", data["action"])
	require.Equal(t, session.LoginPath, data["redirectTo"])
}

func TestSessionStateAndResolveAnswerWithoutToken(t *testing.T) {
	kv := kvstore.NewMemory()
	tokens := session.NewTokenStorage(kv, zerolog.Nop())
	broadcaster := &session.AuthBroadcaster{}
	gate := session.NewGate(broadcaster.Observe)
	t.Cleanup(gate.Close)
	broadcaster.SignOut()

	rejectAnonymous := func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusUnauthorized)
	}

	app := fiber.New()
	group := app.Group("/api/v1/session")
	h := handler.NewSessionHandler(tokens, broadcaster, gate, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
	h.Register(group, group.Group("", rejectAnonymous))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/session/state", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, string(session.StateUnauthenticated), data["state"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/session/resolve?path=%2Fvisuals", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope = decodeEnvelope(t, resp)
	data, ok = envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "redirect", data["action"])

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/session/logout", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionResolveReportsLoadingBeforeFirstCallback(t *testing.T) {
	fixture := newSessionApp(t)

	resp, err := fixture.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/session/resolve?path=%2F", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "loading", data["action"])
}
