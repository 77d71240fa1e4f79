package bootstrap

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dealerdesk/dealerdesk/config"
	"github.com/dealerdesk/dealerdesk/internal/adapters/passwd"
	redisadapter "github.com/dealerdesk/dealerdesk/internal/adapters/redis"
	"github.com/dealerdesk/dealerdesk/internal/data"
	httpx "github.com/dealerdesk/dealerdesk/internal/http"
	"github.com/dealerdesk/dealerdesk/internal/ports"
	"github.com/dealerdesk/dealerdesk/internal/service"
)

// AuthConfig contains configuration for building the auth stack.
type AuthConfig struct {
	Session     config.SessionConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents holds the wired auth stack.
type AuthComponents struct {
	Auth   *service.AuthService
	Staff  *service.StaffService
	Codec  *httpx.SessionCookieCodec
	Reaper ports.SessionReaper
}

// BuildAuthComponents wires the password codec, stores, and services for
// the configured session backend.
func BuildAuthComponents(cfg AuthConfig) AuthComponents {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	credentials := &data.UserRepo{DB: cfg.DB}
	sessions, reaper := buildSessionStore(cfg, logger)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Hasher:      passwd.NewScryptHasher(logger),
		Credentials: credentials,
		Sessions:    sessions,
		SessionTTL:  cfg.Session.TTL,
		Logger:      logger,
	})

	staff := service.NewStaffService(service.StaffServiceOptions{
		Credentials: credentials,
		Logger:      logger,
	})

	return AuthComponents{
		Auth:   auth,
		Staff:  staff,
		Codec:  httpx.NewSessionCookieCodec(sessionSecret(cfg.Session, logger)),
		Reaper: reaper,
	}
}

// buildSessionStore selects the session backend. Postgres is the default;
// redis expires keys natively so its reaper is a no-op.
//
//nolint:ireturn // the backend is selected at runtime from configuration.
func buildSessionStore(cfg AuthConfig, logger *slog.Logger) (ports.SessionStore, ports.SessionReaper) {
	if cfg.Session.Backend == config.SessionBackendRedis && cfg.RedisClient != nil {
		store := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, "session:")
		logger.Info("session store configured", "backend", "redis")
		return store, store
	}

	if cfg.Session.Backend == config.SessionBackendRedis {
		logger.Warn("redis session backend selected but redis client not configured; using postgres")
	}

	store := &data.SessionRepo{DB: cfg.DB}
	logger.Info("session store configured", "backend", "postgres")
	return store, store
}

// sessionSecret returns the configured cookie-signing secret, or generates
// an ephemeral one. An ephemeral secret means every session cookie dies
// with the process, so production deployments should always set one.
func sessionSecret(cfg config.SessionConfig, logger *slog.Logger) string {
	if cfg.Secret != "" {
		return cfg.Secret
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// Out of entropy at startup; a time-derived fallback would be
		// guessable, so fail loudly but keep the server bootable.
		logger.Error("failed to generate session secret", "error", err)
		return hex.EncodeToString([]byte(time.Now().String()))
	}

	logger.Warn("SESSION_SECRET not set; generated an ephemeral secret, sessions will not survive restarts")
	return hex.EncodeToString(buf)
}
