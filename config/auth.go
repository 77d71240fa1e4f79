package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionBackend represents the storage backend for sessions.
type SessionBackend string

const (
	// SessionBackendPostgres stores sessions in the primary database.
	SessionBackendPostgres SessionBackend = "postgres"
	// SessionBackendRedis stores sessions in Redis with native TTL expiry.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "postgres", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: postgres, redis)", v)
	}
}

// SessionConfig groups all session-related configuration.
type SessionConfig struct {
	// Secret keys the HMAC signature on session cookies. When empty, an
	// ephemeral secret is generated at startup and every session dies with
	// the process.
	Secret string `env:"SESSION_SECRET"`

	// TTL is the fixed session lifetime stamped at issuance.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Backend selects where sessions are stored.
	Backend SessionBackend `env:"SESSION_BACKEND" envDefault:"postgres"`

	// ReapInterval is how often expired session rows are purged.
	// Ignored for the redis backend, which expires keys natively.
	ReapInterval time.Duration `env:"SESSION_REAP_INTERVAL" envDefault:"1h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL <= 0 {
		s.TTL = 720 * time.Hour
	}
	if s.ReapInterval <= 0 {
		s.ReapInterval = time.Hour
	}
	if s.Backend == "" {
		s.Backend = SessionBackendPostgres
	}
}
