package config

import (
	"fmt"
	"os"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"

	"viber_notification_bot/pkg/viber"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	ViberAuthToken string
	ViberAPIURL    string
	BotName        string
	BotAvatarURL   string
	WebhookURL     string // Empty disables webhook registration at startup
	AdminViberID   string
	DatabaseURL    string
	LogLevel       string
	Environment    string
	CronSpecDigest string
	DigestText     string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.ViberAuthToken = os.Getenv("VIBER_AUTH_TOKEN")
	if cfg.ViberAuthToken == "" {
		return nil, fmt.Errorf("VIBER_AUTH_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.AdminViberID = os.Getenv("ADMIN_VIBER_ID")
	if cfg.AdminViberID == "" {
		return nil, fmt.Errorf("ADMIN_VIBER_ID is not set")
	}

	cfg.ViberAPIURL = os.Getenv("VIBER_API_URL")
	if cfg.ViberAPIURL == "" {
		cfg.ViberAPIURL = viber.DefaultBaseURL
	}

	cfg.BotName = os.Getenv("BOT_NAME")
	if cfg.BotName == "" {
		cfg.BotName = "NotificationBot"
	}

	cfg.BotAvatarURL = os.Getenv("BOT_AVATAR_URL") // Optional, may stay empty

	cfg.WebhookURL = os.Getenv("WEBHOOK_URL") // Optional; no registration when empty

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDigest = os.Getenv("CRON_SPEC_DIGEST")
	if cfg.CronSpecDigest == "" {
		cfg.CronSpecDigest = "0 9 * * *" // Default: 9:00 AM daily
	}

	cfg.DigestText = os.Getenv("DIGEST_TEXT")
	if cfg.DigestText == "" {
		cfg.DigestText = "Good morning! Here is your daily update."
	}

	return cfg, nil
}
