package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sahayak-edu/sahayak-api/internal/config"
	"github.com/sahayak-edu/sahayak-api/internal/database"
	"github.com/sahayak-edu/sahayak-api/internal/handler"
	"github.com/sahayak-edu/sahayak-api/internal/history"
	"github.com/sahayak-edu/sahayak-api/internal/kvstore"
	"github.com/sahayak-edu/sahayak-api/internal/middleware"
	"github.com/sahayak-edu/sahayak-api/internal/notify"
	"github.com/sahayak-edu/sahayak-api/internal/observability"
	"github.com/sahayak-edu/sahayak-api/internal/router"
	"github.com/sahayak-edu/sahayak-api/internal/service"
	"github.com/sahayak-edu/sahayak-api/internal/session"
	"github.com/sahayak-edu/sahayak-api/pkg/backend"
	cloud "github.com/sahayak-edu/sahayak-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	observability.RegisterMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, redisClient, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to open the key-value store: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	notifier := notify.New(redisClient, natsConn, cfg.EventChannelBase, logger)
	notifier.Start(ctx)

	tokens := session.NewTokenStorage(kv, logger)
	broadcaster := &session.AuthBroadcaster{}
	gate := session.NewGate(broadcaster.Observe)
	defer gate.Close()

	client := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout, tokens, logger,
		backend.WithUnauthorizedHook(broadcaster.SignOut))

	var mirror service.VisualMirror
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		mirror = uploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	histories := history.NewProvider(kv, cfg.HistoryCap, logger)
	activityService := service.NewActivityService(kv, histories, cfg.ActivityLogCap, logger)
	contentService := service.NewContentService(client, histories, activityService, notifier, validate, logger)
	knowledgeService := service.NewKnowledgeService(client, histories, activityService, notifier, validate, logger)
	lessonService := service.NewLessonService(client, histories, activityService, notifier, validate, logger)
	worksheetService := service.NewWorksheetService(client, histories, activityService, notifier, validate, logger)
	visualService := service.NewVisualService(client, mirror, histories, activityService, notifier, validate, logger)
	assessmentService := service.NewAssessmentService(client, histories, activityService, notifier, validate, logger)
	preferenceService := service.NewPreferenceService(kv, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ContentHandler:    handler.NewContentHandler(contentService, logger),
		WorksheetHandler:  handler.NewWorksheetHandler(worksheetService, logger),
		KnowledgeHandler:  handler.NewKnowledgeHandler(knowledgeService, logger),
		VisualHandler:     handler.NewVisualHandler(visualService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		LessonHandler:     handler.NewLessonHandler(lessonService, logger),
		DashboardHandler:  handler.NewDashboardHandler(activityService, notifier, logger),
		SessionHandler:    handler.NewSessionHandler(tokens, broadcaster, gate, validate, logger),
		PreferenceHandler: handler.NewPreferenceHandler(preferenceService, validate, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	// A valid token surviving a restart resumes the previous session.
	if userID := middleware.SubjectFromToken(tokens.Token(ctx), cfg.JWTSecret); userID != "" {
		broadcaster.SignIn(userID)
	} else {
		broadcaster.SignOut()
	}

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildStore picks the key-value backend: redis when configured, the
// embedded sqlite file otherwise.
func buildStore(cfg config.Config) (kvstore.Store, *redis.Client, error) {
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return kvstore.NewRedis(client), client, nil
	}

	db, err := database.ConnectSQLite(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}

	store, err := kvstore.NewSQLite(db)
	if err != nil {
		return nil, nil, err
	}

	return store, nil, nil
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
