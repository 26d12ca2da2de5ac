// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	Addr             string        `env:"HTTP_ADDR" env-default:":8080"`
	StoreBackend     string        `env:"STORE_BACKEND" env-default:"memory"`
	DBPath           string        `env:"DB_PATH" env-default:":memory:"`
	SessionSecret    string        `env:"SESSION_SECRET"`
	SessionTTL       time.Duration `env:"SESSION_TTL" env-default:"12h"`
	ReapInterval     time.Duration `env:"REAP_INTERVAL" env-default:"1m"`
	DefaultAvatarURL string        `env:"DEFAULT_AVATAR_URL" env-default:"https://i.pravatar.cc/48"`
	LogLevel         string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat        string        `env:"LOG_FORMAT" env-default:"text"`
	MetricsEnabled   bool          `env:"METRICS_ENABLED" env-default:"true"`
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and fills in a random session secret
// when none is configured.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("reap interval must be positive, got %s", c.ReapInterval)
	}
	if c.DefaultAvatarURL == "" {
		return fmt.Errorf("default avatar URL required")
	}

	if c.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		c.SessionSecret = secret
	}
	return nil
}

// Usage describes the environment variables Load reads.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
