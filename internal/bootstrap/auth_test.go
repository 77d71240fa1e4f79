package bootstrap

import (
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/config"
	redisadapter "github.com/dealerdesk/dealerdesk/internal/adapters/redis"
	"github.com/dealerdesk/dealerdesk/internal/data"
)

func TestBuildAuthComponents_WiresServices(t *testing.T) {
	components := BuildAuthComponents(AuthConfig{
		Session: config.SessionConfig{Secret: "test-secret", Backend: config.SessionBackendPostgres},
		Logger:  slog.Default(),
	})

	require.NotNil(t, components.Auth)
	require.NotNil(t, components.Staff)
	require.NotNil(t, components.Codec)
	require.NotNil(t, components.Reaper)
}

func TestBuildSessionStore_PostgresDefault(t *testing.T) {
	store, reaper := buildSessionStore(AuthConfig{
		Session: config.SessionConfig{Backend: config.SessionBackendPostgres},
	}, slog.Default())

	assert.IsType(t, &data.SessionRepo{}, store)
	assert.IsType(t, &data.SessionRepo{}, reaper)
}

func TestBuildSessionStore_RedisBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	store, reaper := buildSessionStore(AuthConfig{
		Session:     config.SessionConfig{Backend: config.SessionBackendRedis},
		RedisClient: client,
	}, slog.Default())

	assert.IsType(t, &redisadapter.SessionStore{}, store)
	assert.IsType(t, &redisadapter.SessionStore{}, reaper)
}

func TestBuildSessionStore_RedisWithoutClientFallsBack(t *testing.T) {
	store, _ := buildSessionStore(AuthConfig{
		Session: config.SessionConfig{Backend: config.SessionBackendRedis},
	}, slog.Default())

	assert.IsType(t, &data.SessionRepo{}, store)
}

func TestSessionSecret_PrefersConfiguredValue(t *testing.T) {
	secret := sessionSecret(config.SessionConfig{Secret: "configured"}, slog.Default())
	assert.Equal(t, "configured", secret)
}

func TestSessionSecret_GeneratesWhenUnset(t *testing.T) {
	first := sessionSecret(config.SessionConfig{}, slog.Default())
	second := sessionSecret(config.SessionConfig{}, slog.Default())

	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}
