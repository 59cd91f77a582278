package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTRL_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	trl := NewMemoryTRL()

	revoked, err := trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, trl.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = trl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryTRL_ExpiryLapses(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	trl := NewMemoryTRL(WithClock(func() time.Time { return now }))

	require.NoError(t, trl.Revoke(ctx, "jti-2", time.Minute))

	revoked, err := trl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = trl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation should lapse with the token's own expiry")
}

func TestMemoryTRL_EmptyJTIIsNoop(t *testing.T) {
	ctx := context.Background()
	trl := NewMemoryTRL()
	require.NoError(t, trl.Revoke(ctx, "", time.Hour))
	revoked, err := trl.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}
