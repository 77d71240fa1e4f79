package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Postgres.Host != "localhost" {
		t.Errorf("Postgres.Host = %q, want localhost", cfg.Postgres.Host)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if !cfg.Postgres.RunMigrationsOnStart {
		t.Error("Postgres.RunMigrationsOnStart = false, want true")
	}
	if cfg.Session.Backend != SessionBackendPostgres {
		t.Errorf("Session.Backend = %q, want postgres", cfg.Session.Backend)
	}
	if cfg.Session.TTL != 720*time.Hour {
		t.Errorf("Session.TTL = %v, want 720h", cfg.Session.TTL)
	}
	if cfg.Session.ReapInterval != time.Hour {
		t.Errorf("Session.ReapInterval = %v, want 1h", cfg.Session.ReapInterval)
	}
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "hunter22!")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("HTTP_ADDR", ":9090")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q, want db.internal", cfg.Postgres.Host)
	}
	if cfg.Postgres.Password != "hunter22!" {
		t.Errorf("Postgres.Password = %q, want hunter22!", cfg.Postgres.Password)
	}
	if cfg.Session.Backend != SessionBackendRedis {
		t.Errorf("Session.Backend = %q, want redis", cfg.Session.Backend)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("Session.TTL = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want :9090", cfg.HTTP.Addr)
	}
}

func TestAppConfig_InvalidSessionBackend(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "memcached")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatal("env.Parse succeeded, want error for invalid SESSION_BACKEND")
	}
}

func TestSessionConfig_SanitizeClampsValues(t *testing.T) {
	cfg := SessionConfig{TTL: -time.Hour, ReapInterval: 0}
	cfg.Sanitize()

	if cfg.TTL != 720*time.Hour {
		t.Errorf("TTL = %v, want 720h", cfg.TTL)
	}
	if cfg.ReapInterval != time.Hour {
		t.Errorf("ReapInterval = %v, want 1h", cfg.ReapInterval)
	}
	if cfg.Backend != SessionBackendPostgres {
		t.Errorf("Backend = %q, want postgres", cfg.Backend)
	}
}

func TestAppConfig_DetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("env.Parse failed: %v", err)
	}
	cfg.Sanitize()

	if !cfg.IsDev {
		t.Error("IsDev = false, want true when NODE_ENV=development")
	}
}
