package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/riskprofile-backend/internal/config"
)

func newTestAuth(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, rdb), mr
}

func TestPasswordHashing(t *testing.T) {
	auth, _ := newTestAuth(t)

	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, auth.CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestGenerateAndValidateToken(t *testing.T) {
	auth, mr := newTestAuth(t)
	ctx := context.Background()

	token, err := auth.GenerateToken(ctx, 12, "a@b.io")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 12, claims.UserID)
	assert.Equal(t, "a@b.io", claims.Email)
	assert.Equal(t, "12", claims.Subject)

	pinned, err := mr.Get(config.CacheKey.LoginSessionKey(12))
	require.NoError(t, err)
	assert.Equal(t, claims.ID, pinned)
	assert.Equal(t, time.Hour, mr.TTL(config.CacheKey.LoginSessionKey(12)))

	assert.NoError(t, auth.ValidateLoginSession(ctx, 12, claims.ID))
}

func TestNewLoginSupersedesOld(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	first, err := auth.GenerateToken(ctx, 1, "x@y.io")
	require.NoError(t, err)
	second, err := auth.GenerateToken(ctx, 1, "x@y.io")
	require.NoError(t, err)

	c1, err := auth.ValidateToken(first)
	require.NoError(t, err)
	c2, err := auth.ValidateToken(second)
	require.NoError(t, err)

	assert.ErrorIs(t, auth.ValidateLoginSession(ctx, 1, c1.ID), ErrLoginSuperseded)
	assert.NoError(t, auth.ValidateLoginSession(ctx, 1, c2.ID))

	// Logging out the stale token must not sign out the newer one.
	require.NoError(t, auth.RevokeLoginSession(ctx, 1, c1.ID))
	assert.NoError(t, auth.ValidateLoginSession(ctx, 1, c2.ID))

	require.NoError(t, auth.RevokeLoginSession(ctx, 1, c2.ID))
	assert.ErrorIs(t, auth.ValidateLoginSession(ctx, 1, c2.ID), ErrNoActiveLogin)
	assert.NoError(t, auth.RevokeLoginSession(ctx, 1, c2.ID))
}

func TestValidateTokenRejects(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, auth.rdb)
	forged, err := other.GenerateToken(ctx, 1, "x@y.io")
	require.NoError(t, err)
	_, err = auth.ValidateToken(forged)
	assert.Error(t, err)

	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := auth.GenerateToken(ctx, 1, "x@y.io")
	require.NoError(t, err)
	auth.now = time.Now
	_, err = auth.ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
