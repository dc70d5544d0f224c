package database

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/riskprofile-backend/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr() + "/0"}

	rdb, err := NewRedisClient(context.Background(), cfg, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", mr.Get("k"))
}

func TestPingWithRetryGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("down")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pingWithRetry(ctx, zerolog.New(io.Discard), "test", func(context.Context) error {
		calls++
		return boom
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPingWithRetrySucceedsLater(t *testing.T) {
	calls := 0
	err := pingWithRetry(context.Background(), zerolog.New(io.Discard), "test", func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("starting")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}
