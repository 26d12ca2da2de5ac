package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "STORE_BACKEND", "DB_PATH", "SESSION_SECRET", "SESSION_TTL",
		"REAP_INTERVAL", "DEFAULT_AVATAR_URL", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.StoreBackend != BackendMemory {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, BackendMemory)
	}
	if cfg.DBPath != ":memory:" {
		t.Errorf("DBPath = %q, want :memory:", cfg.DBPath)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("SessionTTL = %v, want 12h", cfg.SessionTTL)
	}
	if cfg.DefaultAvatarURL != "https://i.pravatar.cc/48" {
		t.Errorf("DefaultAvatarURL = %q", cfg.DefaultAvatarURL)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.StoreBackend != BackendSQLite {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled = true, want false")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreBackend:     BackendMemory,
			LogFormat:        "text",
			SessionTTL:       time.Hour,
			ReapInterval:     time.Minute,
			DefaultAvatarURL: "https://i.pravatar.cc/48",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.StoreBackend = "postgres" }, true},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, true},
		{"zero reap interval", func(c *Config) { c.ReapInterval = 0 }, true},
		{"empty avatar", func(c *Config) { c.DefaultAvatarURL = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_GeneratesSecret(t *testing.T) {
	a := &Config{StoreBackend: BackendMemory, LogFormat: "text", SessionTTL: time.Hour, ReapInterval: time.Minute, DefaultAvatarURL: "x"}
	b := *a
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if a.SessionSecret == "" || a.SessionSecret == b.SessionSecret {
		t.Errorf("expected distinct random secrets, got %q and %q", a.SessionSecret, b.SessionSecret)
	}

	c := &Config{StoreBackend: BackendMemory, LogFormat: "text", SessionTTL: time.Hour, ReapInterval: time.Minute, DefaultAvatarURL: "x", SessionSecret: "fixed"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.SessionSecret != "fixed" {
		t.Errorf("configured secret replaced with %q", c.SessionSecret)
	}
}
