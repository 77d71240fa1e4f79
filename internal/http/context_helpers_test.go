package httpx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/dealerdesk/dealerdesk/internal/domain/auth"
)

func TestSessionContextRoundTrip(t *testing.T) {
	session := &domainauth.Session{
		ID:        "sess-1",
		UserID:    42,
		Role:      domainauth.RoleDealer,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	ctx := SetSessionInContext(context.Background(), session)

	got, ok := GetUserSessionFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, session, got)
	assert.Equal(t, session, GetSessionFromContext(ctx))
}

func TestSessionContext_Empty(t *testing.T) {
	got, ok := GetUserSessionFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Nil(t, GetSessionFromContext(context.Background()))
}

func TestSetSessionInContext_NilSessionIsNoop(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, SetSessionInContext(ctx, nil)) //nolint:staticcheck // comparing context identity on purpose.
}
