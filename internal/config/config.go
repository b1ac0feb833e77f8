package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration for the pipeline binaries.
type Config struct {
	// Log level for zerolog
	LogLevel string

	// Object store
	Bucket       string
	StoreBackend string // "s3" or "local"
	LocalDBPath  string
	AWSRegion    string

	// Polled source
	Latitude     float64
	Longitude    float64
	DeviceID     string
	PollInterval time.Duration

	// Notifier credentials (required for the poll daemon)
	TelegramToken  string
	TelegramChatID string
	LocationLabel  string

	// Edge-triggered alerting instead of re-firing every tick
	AlertOnTransition bool

	// HTTP listeners
	ListenAddr  string
	MetricsAddr string
}

// Startup validation errors
var (
	ErrMissingToken  = errors.New("TELEGRAM_TOKEN is not set")
	ErrMissingChatID = errors.New("TELEGRAM_CHAT_ID is not set")
)

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() *Config {
	// Missing .env is fine outside local dev
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BUCKET_NAME", "harvest-guard-lviv-2025")
	v.SetDefault("STORE_BACKEND", "s3")
	v.SetDefault("LOCAL_DB_PATH", "harvest_guard.db")
	v.SetDefault("AWS_REGION", "eu-central-1")
	// Lviv coordinates
	v.SetDefault("LATITUDE", 49.83)
	v.SetDefault("LONGITUDE", 24.02)
	v.SetDefault("DEVICE_ID", "SENSOR-LVIV-01")
	v.SetDefault("POLL_INTERVAL", "60s")
	v.SetDefault("LOCATION_LABEL", "Lviv Field 1")
	v.SetDefault("ALERT_ON_TRANSITION", false)
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")

	return &Config{
		LogLevel:          v.GetString("LOG_LEVEL"),
		Bucket:            v.GetString("BUCKET_NAME"),
		StoreBackend:      v.GetString("STORE_BACKEND"),
		LocalDBPath:       v.GetString("LOCAL_DB_PATH"),
		AWSRegion:         v.GetString("AWS_REGION"),
		Latitude:          v.GetFloat64("LATITUDE"),
		Longitude:         v.GetFloat64("LONGITUDE"),
		DeviceID:          v.GetString("DEVICE_ID"),
		PollInterval:      v.GetDuration("POLL_INTERVAL"),
		TelegramToken:     v.GetString("TELEGRAM_TOKEN"),
		TelegramChatID:    v.GetString("TELEGRAM_CHAT_ID"),
		LocationLabel:     v.GetString("LOCATION_LABEL"),
		AlertOnTransition: v.GetBool("ALERT_ON_TRANSITION"),
		ListenAddr:        v.GetString("LISTEN_ADDR"),
		MetricsAddr:       v.GetString("METRICS_ADDR"),
	}
}

// ValidateNotifier checks the credentials the poll daemon cannot run without.
// Checked once before the loop starts; a failure here is fatal.
func (c *Config) ValidateNotifier() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	if c.TelegramChatID == "" {
		return ErrMissingChatID
	}
	return nil
}
