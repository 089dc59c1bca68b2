package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is built once at startup and passed by value into every component
// that needs it. Nothing reads configuration ambiently after load.
type Config struct {
	// Diary service
	DiaryURL    string `yaml:"DIARY_URL" validate:"required,url"`
	DiaryAPIKey string `yaml:"DIARY_API_KEY" validate:"required"`

	// Generic nutrition database provider (tier 3). Empty disables tier 3.
	USDAProviderID string `yaml:"USDA_PROVIDER_ID"`

	// Meal windows, HH:MM-HH:MM local time
	BreakfastWindow string `yaml:"BREAKFAST_WINDOW"`
	LunchWindow     string `yaml:"LUNCH_WINDOW"`
	DinnerWindow    string `yaml:"DINNER_WINDOW"`

	// Input device. Empty means auto-detect, falling back to stdin.
	ScannerDevice string `yaml:"SCANNER_DEVICE"`

	// Optional kitchen scale sensor endpoint. Empty disables weighing.
	ScaleURL string `yaml:"SCALE_URL" validate:"omitempty,url"`

	// Local status API
	StatusPort string `yaml:"STATUS_PORT"`

	// Optional scan journal database. Empty DB_HOST disables journaling.
	DBHost     string `yaml:"DB_HOST"`
	DBPort     string `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`

	// Optional operator alert mail
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`
	AlertEmail       string `yaml:"ALERT_EMAIL" validate:"omitempty,email"`
}

// LoadConfig reads config.yaml (when present), loads .env, and lets
// environment variables override file values. Defaults are applied last so
// a bare DIARY_URL + DIARY_API_KEY environment is a complete configuration.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	cfg.DiaryURL = strings.TrimRight(cfg.DiaryURL, "/")
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	envOverride(&cfg.DiaryURL, "DIARY_URL")
	envOverride(&cfg.DiaryAPIKey, "DIARY_API_KEY")
	envOverride(&cfg.USDAProviderID, "USDA_PROVIDER_ID")
	envOverride(&cfg.BreakfastWindow, "BREAKFAST_WINDOW")
	envOverride(&cfg.LunchWindow, "LUNCH_WINDOW")
	envOverride(&cfg.DinnerWindow, "DINNER_WINDOW")
	envOverride(&cfg.ScannerDevice, "SCANNER_DEVICE")
	envOverride(&cfg.ScaleURL, "SCALE_URL")
	envOverride(&cfg.StatusPort, "STATUS_PORT")
	envOverride(&cfg.DBHost, "DB_HOST")
	envOverride(&cfg.DBPort, "DB_PORT")
	envOverride(&cfg.DBUser, "DB_USER")
	envOverride(&cfg.DBPassword, "DB_PASSWORD")
	envOverride(&cfg.DBName, "DB_NAME")
	envOverride(&cfg.SMTPHost, "SMTP_HOST")
	envOverride(&cfg.SMTPPort, "SMTP_PORT")
	envOverride(&cfg.SMTPSenderName, "SMTP_SENDER_NAME")
	envOverride(&cfg.SMTPAuthEmail, "SMTP_AUTH_EMAIL")
	envOverride(&cfg.SMTPAuthPassword, "SMTP_AUTH_PASSWORD")
	envOverride(&cfg.AlertEmail, "ALERT_EMAIL")
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.BreakfastWindow == "" {
		cfg.BreakfastWindow = "05:00-10:00"
	}
	if cfg.LunchWindow == "" {
		cfg.LunchWindow = "11:00-13:00"
	}
	if cfg.DinnerWindow == "" {
		cfg.DinnerWindow = "14:00-16:00"
	}
	if cfg.StatusPort == "" {
		cfg.StatusPort = "8090"
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "5432"
	}
}

// JournalEnabled reports whether a scan journal database is configured.
func (c Config) JournalEnabled() bool { return c.DBHost != "" }

// AlertsEnabled reports whether operator alert mail is configured.
func (c Config) AlertsEnabled() bool {
	return c.SMTPHost != "" && c.AlertEmail != ""
}
