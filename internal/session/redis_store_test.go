package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/riskprofile-backend/internal/config"
	"github.com/stemsi/riskprofile-backend/internal/model"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := &model.AssessmentSession{
		UserID:       5,
		CurrentIndex: 2,
		Answers:      map[string]string{"1": "a", "2": "c"},
		StartedAt:    started,
		UpdatedAt:    started,
	}
	require.NoError(t, store.Put(ctx, in))

	out, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, store.Clear(ctx, 5))
	_, err = store.Get(ctx, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreKeysByUser(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &model.AssessmentSession{UserID: 1, Answers: map[string]string{}}))
	require.NoError(t, store.Put(ctx, &model.AssessmentSession{UserID: 2, CurrentIndex: 1, Answers: map[string]string{"1": "b"}}))

	assert.True(t, mr.Exists(config.CacheKey.AssessmentSessionKey(1)))
	assert.True(t, mr.Exists(config.CacheKey.AssessmentSessionKey(2)))

	one, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, one.CurrentIndex)
	assert.NotNil(t, one.Answers)
}

func TestRedisStoreTTL(t *testing.T) {
	store, mr := newTestStore(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &model.AssessmentSession{UserID: 3, Answers: map[string]string{}}))
	assert.Equal(t, 30*time.Minute, mr.TTL(config.CacheKey.AssessmentSessionKey(3)))

	mr.FastForward(31 * time.Minute)

	_, err := store.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newTestStore(t, 0)

	require.NoError(t, mr.Set(config.CacheKey.AssessmentSessionKey(9), "{not json"))

	_, err := store.Get(context.Background(), 9)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
