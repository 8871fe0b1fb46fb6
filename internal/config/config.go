package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	cardsense "github.com/cardsense/cardsense"
)

// Config for the cardsense command line client
type Config struct {
	Environment    string        `env:"ENVIRONMENT,default=dev"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	APIBaseURL     string        `env:"API_BASE_URL"`
	Platform       string        `env:"PLATFORM,default=web"`
	WebOrigin      string        `env:"WEB_ORIGIN,default=http://localhost:8081"`
	DeviceHost     string        `env:"DEVICE_HOST"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	RateLimit      float64       `env:"RATE_LIMIT,default=0"`
	RateBurst      int           `env:"RATE_BURST,default=1"`
	SessionFile    string        `env:"SESSION_FILE,default=~/.cardsense/session.yml"`
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// NewConfig reads the configuration from the environment.
// Variables in envFiles are loaded first without overriding ones already set; files that do not
// exist are skipped.
func NewConfig(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	cfg.SessionFile, err = expandHome(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("env file %s: %w", f, err)
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func validateConfig(cfg *Config) error {
	if !cardsense.ValidEnvironments[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return fmt.Errorf("invalid log level '%s'. Valid levels: debug, info, warn, error", cfg.LogLevel)
	}

	if !cardsense.ValidPlatforms[cfg.Platform] {
		return fmt.Errorf("invalid platform '%s'. Valid platforms: android, ios, device, web", cfg.Platform)
	}

	if cfg.APIBaseURL != "" {
		u, err := url.Parse(cfg.APIBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
		}
	}

	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", cfg.RequestTimeout)
	}

	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative, got %v", cfg.RateLimit)
	}
	if cfg.RateBurst < 1 {
		return fmt.Errorf("rate burst must be at least 1, got %d", cfg.RateBurst)
	}

	if cfg.SessionFile == "" {
		return fmt.Errorf("SESSION_FILE cannot be empty")
	}

	return nil
}
