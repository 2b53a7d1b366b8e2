package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, ResetTokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisResetTokenStore(client)
}

func TestRedisResetTokenStore_SaveSetsTTL(t *testing.T) {
	mr, store := newRedisStore(t)
	ctx := context.Background()

	rec := ResetTokenRecord{Email: "jane@example.com", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Save(ctx, "hash-1", rec))

	assert.True(t, mr.Exists("reset_token:hash-1"))
	ttl := mr.TTL("reset_token:hash-1")
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	got, err := store.Get(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", got.Email)
}

func TestRedisResetTokenStore_ExpiresWithTTL(t *testing.T) {
	mr, store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "hash-1", ResetTokenRecord{Email: "a@b.com", ExpiresAt: time.Now().Add(time.Hour)}))
	mr.FastForward(time.Hour + time.Second)

	_, err := store.Get(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestRedisResetTokenStore_ConsumeIsSingleUse(t *testing.T) {
	_, store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "hash-1", ResetTokenRecord{Email: "a@b.com", ExpiresAt: time.Now().Add(time.Hour)}))

	rec, err := store.Consume(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", rec.Email)

	_, err = store.Consume(ctx, "hash-1")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestRedisResetTokenStore_SaveRejectsExpiredRecord(t *testing.T) {
	mr, store := newRedisStore(t)

	err := store.Save(context.Background(), "hash-1", ResetTokenRecord{Email: "a@b.com", ExpiresAt: time.Now().Add(-time.Second)})

	assert.ErrorIs(t, err, ErrResetTokenExpired)
	assert.False(t, mr.Exists("reset_token:hash-1"))
}

func TestRedisResetTokenStore_Delete(t *testing.T) {
	mr, store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "hash-1", ResetTokenRecord{Email: "a@b.com", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "hash-1"))
	assert.False(t, mr.Exists("reset_token:hash-1"))
}

func TestMemoryResetTokenStore(t *testing.T) {
	store := NewMemoryResetTokenStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, "live", ResetTokenRecord{Email: "a@b.com", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, "stale", ResetTokenRecord{Email: "a@b.com", ExpiresAt: now.Add(-time.Minute)}))

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)

	rec, err := store.Consume(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", rec.Email)

	_, err = store.Consume(ctx, "live")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}
