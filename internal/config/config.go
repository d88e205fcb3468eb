package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	Forward   ForwardConfig
	MongoDB   MongoDBConfig
	Retention RetentionConfig
	Digest    DigestConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WhatsAppConfig contains the Meta webhook credentials. An empty AppSecret
// disables signature enforcement.
type WhatsAppConfig struct {
	AppSecret   string
	VerifyToken string
}

// ForwardConfig points at the downstream consumer of parsed events. An empty
// URL disables forwarding.
type ForwardConfig struct {
	URL   string
	Token string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RetentionConfig controls how long stored events are kept.
type RetentionConfig struct {
	Days         int
	CronSchedule string
}

// DigestConfig holds the daily digest scheduler settings.
type DigestConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig contains configuration for the ops spreadsheet export. An
// empty SpreadsheetID disables the export.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	retentionDays, err := strconv.Atoi(getenvWithDefault("RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("RETENTION_DAYS must be an integer: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		WhatsApp: WhatsAppConfig{
			AppSecret:   os.Getenv("WHATSAPP_APP_SECRET"),
			VerifyToken: os.Getenv("META_VERIFY_TOKEN"),
		},
		Forward: ForwardConfig{
			URL:   os.Getenv("FORWARD_URL"),
			Token: os.Getenv("FORWARD_TOKEN"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "webhook_events"),
		},
		Retention: RetentionConfig{
			Days:         retentionDays,
			CronSchedule: getenvWithDefault("RETENTION_CRON_SCHEDULE", "0 3 * * *"),
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "10 0 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.WhatsApp.VerifyToken == "" {
		return errors.New("META_VERIFY_TOKEN must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must not be empty")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must not be empty")
	}

	if c.Retention.Days <= 0 {
		return errors.New("RETENTION_DAYS must be positive")
	}
	if c.Retention.CronSchedule == "" {
		return errors.New("RETENTION_CRON_SCHEDULE must be provided")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}
	if c.Digest.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Sheets.SpreadsheetID != "" && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when GOOGLE_SHEET_EXPORT_ID is set")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
