package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the gateway service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	BackendBaseURL         string
	BackendTimeout         time.Duration
	RedisURL               string
	NATSURL                string
	StorePath              string
	EventChannelBase       string
	JWTSecret              string
	HistoryCap             int
	ActivityLogCap         int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SAHAYAK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Sahayak API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout", "120s")
	v.SetDefault("store.path", "sahayak.db")
	v.SetDefault("events.channel_base", "sahayak")
	v.SetDefault("history.cap", 10)
	v.SetDefault("activity.cap", 20)
	v.SetDefault("cloudinary.folder", "sahayak/visuals")

	timeoutString := v.GetString("backend.timeout")
	if timeoutString == "" {
		timeoutString = "120s"
	}

	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid backend timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		BackendBaseURL:         strings.TrimRight(v.GetString("backend.url"), "/"),
		BackendTimeout:         timeout,
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		StorePath:              v.GetString("store.path"),
		EventChannelBase:       v.GetString("events.channel_base"),
		JWTSecret:              v.GetString("jwt.secret"),
		HistoryCap:             v.GetInt("history.cap"),
		ActivityLogCap:         v.GetInt("activity.cap"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 10
	}

	if cfg.ActivityLogCap <= 0 {
		cfg.ActivityLogCap = 20
	}

	return cfg, nil
}
