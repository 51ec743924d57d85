package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" default:"10485760"` // 10 MiB
	MaxRecords     int   `env:"MAX_RECORDS" default:"50000"`
	TopWords       int   `env:"TOP_WORDS" default:"20"`

	CacheTTL       time.Duration `env:"CACHE_TTL" default:"1h"`
	MemoryCacheTTL time.Duration `env:"MEMORY_CACHE_TTL" default:"30s"`

	AnalysisRetention      time.Duration `env:"ANALYSIS_RETENTION" default:"0s"`
	RetentionSweepInterval time.Duration `env:"RETENTION_SWEEP_INTERVAL" default:"10m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"20"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	// Checked in a fixed order so the first missing variable is reported deterministically.
	required := []struct{ name, value string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"REDIS_URL", cfg.RedisURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	if cfg.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.MaxRecords <= 0 {
		return errors.New("MAX_RECORDS must be positive")
	}
	if cfg.TopWords <= 0 {
		return errors.New("TOP_WORDS must be positive")
	}
	if cfg.AnalysisRetention < 0 {
		return errors.New("ANALYSIS_RETENTION must not be negative")
	}
	if cfg.AnalysisRetention > 0 && cfg.RetentionSweepInterval <= 0 {
		return errors.New("RETENTION_SWEEP_INTERVAL must be positive when ANALYSIS_RETENTION is set")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if cfg.IsProduction() {
		if mode := sslMode(cfg.DatabaseURL); mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
		}
	}

	return nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Query().Get("sslmode"))
}
