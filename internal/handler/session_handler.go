package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/session"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// SessionHandler exposes the auth-gate surface: sign-in, sign-out, the
// current gate state and route resolution.
type SessionHandler struct {
	tokens      *session.TokenStorage
	broadcaster *session.AuthBroadcaster
	gate        *session.Gate
	validator   *validator.Validate
	logger      zerolog.Logger
}

func NewSessionHandler(tokens *session.TokenStorage, broadcaster *session.AuthBroadcaster, gate *session.Gate, validate *validator.Validate, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		tokens:      tokens,
		broadcaster: broadcaster,
		gate:        gate,
		validator:   validate,
		logger:      logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register binds the session routes. State and resolve stay public: the
// clients that need a redirect or loading answer are exactly the ones
// without a valid token.
func (h *SessionHandler) Register(public fiber.Router, protected fiber.Router) {
	public.Post("/login", h.login)
	public.Get("/state", h.state)
	public.Get("/resolve", h.resolve)
	protected.Post("/logout", h.logout)
}

func (h *SessionHandler) login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	}

	if err := h.tokens.Set(c.UserContext(), req.Token); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to persist auth token")
		return utils.SendError(c, fiber.StatusInternalServerError, session.AuthErrorMessage("auth/internal-error"))
	}

	h.broadcaster.SignIn(req.UserID)
	return utils.SendSuccess(c, "signed in", dto.SessionStateResponse{
		State:  string(h.gate.State()),
		UserID: h.gate.UserID(),
	})
}

func (h *SessionHandler) logout(c *fiber.Ctx) error {
	h.tokens.Clear(c.UserContext())
	h.broadcaster.SignOut()
	return utils.SendSuccess(c, "signed out", nil)
}

func (h *SessionHandler) state(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "session state", dto.SessionStateResponse{
		State:  string(h.gate.State()),
		UserID: h.gate.UserID(),
	})
}

// resolve answers what a navigation to ?path= should do given the current
// gate state. It answers from gate state alone, no token required.
func (h *SessionHandler) resolve(c *fiber.Ctx) error {
	path := c.Query("path", "/")
	decision := h.gate.Resolve(path)

	response := dto.RouteDecisionResponse{Path: path}
	switch decision {
	case session.DecisionAllow:
		response.Action = "allow"
	case session.DecisionRedirectLogin:
		response.Action = "redirect"
		response.RedirectTo = session.LoginPath
	default:
		response.Action = "loading"
	}

	return utils.SendSuccess(c, "route resolved", response)
}
