package auth

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mini
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	store, mini := newMiniredisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "refine-auth")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Set(ctx, "refine-auth", "1", time.Minute))
	val, err := store.Get(ctx, "refine-auth")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.Equal(t, time.Minute, mini.TTL("refine-auth"))

	mini.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "refine-auth")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Set(ctx, "refine-auth", "1", 0))
	require.NoError(t, store.Delete(ctx, "refine-auth"))
	assert.False(t, mini.Exists("refine-auth"))
}

func TestRedisSessionStore_Errors(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	store := NewRedisSessionStore(client)
	ctx := context.Background()
	boom := stderrors.New("connection refused")

	redisMock.ExpectGet("refine-auth").SetErr(boom)
	redisMock.ExpectSet("refine-auth", "1", time.Hour).SetErr(boom)
	redisMock.ExpectDel("refine-auth").SetErr(boom)

	_, err := store.Get(ctx, "refine-auth")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.Set(ctx, "refine-auth", "1", time.Hour), boom)
	assert.ErrorIs(t, store.Delete(ctx, "refine-auth"), boom)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "1", time.Second))
	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Set(ctx, "k", "1", 0))
	now = now.Add(24 * time.Hour)
	_, err = store.Get(ctx, "k")
	assert.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNewSessionStore(t *testing.T) {
	client, _ := redismock.NewClientMock()

	tests := []struct {
		name      string
		kind      string
		client    redis.Cmdable
		expectErr bool
		expected  interface{}
	}{
		{"redis", StoreRedis, client, false, &RedisSessionStore{}},
		{"redis without client", StoreRedis, nil, true, nil},
		{"memory", StoreMemory, nil, false, &MemorySessionStore{}},
		{"default", "", nil, false, &MemorySessionStore{}},
		{"unknown", "file", nil, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSessionStore(tt.kind, tt.client)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expected, store)
		})
	}
}
