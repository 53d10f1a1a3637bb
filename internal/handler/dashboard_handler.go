package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/dto"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/notify"
	"github.com/sahayak-edu/sahayak-api/internal/observability"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/utils"
)

// DashboardHandler serves the aggregated stats, the recent-activity log and
// the refresh streams.
type DashboardHandler struct {
	activity  service.ActivityService
	notifier  notify.Notifier
	logger    zerolog.Logger
	keepAlive time.Duration
}

// NewDashboardHandler constructs a handler instance.
func NewDashboardHandler(activity service.ActivityService, notifier notify.Notifier, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		activity:  activity,
		notifier:  notifier,
		logger:    logger.With().Str("component", "dashboard_handler").Logger(),
		keepAlive: 30 * time.Second,
	}
}

// Register binds the dashboard routes.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/activities", h.activities)
	router.Delete("/", h.clear)
	router.Get("/stream", h.stream)
	router.Get("/live", websocket.New(h.live))
}

// stats always recomputes from the history stores; the cached snapshot is
// never served.
func (h *DashboardHandler) stats(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	snapshot := h.activity.Stats(c.UserContext(), userID)
	return utils.SendSuccess(c, "dashboard stats", snapshot)
}

func (h *DashboardHandler) activities(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	ctx := c.UserContext()
	response := dto.DashboardResponse{
		Stats:      h.activity.Stats(ctx, userID),
		Activities: h.activity.Recent(ctx, userID),
	}

	return utils.SendSuccess(c, "recent activities", response)
}

func (h *DashboardHandler) clear(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	if err := h.activity.Clear(c.UserContext(), userID); err != nil {
		return respondServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "dashboard data cleared", nil)
}

func (h *DashboardHandler) stream(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	events, cleanup := h.notifier.Subscribe(userID)
	observability.StreamClients().Inc()

	keepAlive := h.keepAlive

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			cleanup()
			cancel()
			observability.StreamClients().Dec()
		}()

		ticker := time.NewTicker(keepAlive / 2)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeRefreshEvent(w, event); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write refresh event")
					return
				}
			case <-ticker.C:
				if err := writeKeepAlive(w); err != nil {
					h.logger.Debug().Err(err).Msg("failed to write stream keepalive")
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})

	return nil
}

// live is the websocket flavour of the refresh stream. Each event tells the
// client to re-read stats and activities; the payload carries no data.
func (h *DashboardHandler) live(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	events, cleanup := h.notifier.Subscribe(userID)
	observability.StreamClients().Inc()
	defer func() {
		cleanup()
		observability.StreamClients().Dec()
		_ = conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writeRefreshEvent(w *bufio.Writer, event notify.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: data-changed\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}

func writeKeepAlive(w *bufio.Writer) error {
	if _, err := fmt.Fprintf(w, ": keep-alive %s\n\n", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return w.Flush()
}
