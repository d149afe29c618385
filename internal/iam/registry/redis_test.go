package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedis(rdb, time.Hour), mini
}

func TestInsertAndValidate(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Insert(ctx, "user-1", "token-a"))

	ok, err := reg.Validate(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reg.Validate(ctx, "user-1", "token-b")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidate_MissingEntry(t *testing.T) {
	reg, _ := newTestRegistry(t)

	ok, err := reg.Validate(context.Background(), "nobody", "token-a")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInsert_Overwrites(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Insert(ctx, "user-1", "token-a"))
	require.NoError(t, reg.Insert(ctx, "user-1", "token-b"))

	ok, err := reg.Validate(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.False(t, ok, "old id must be invalid after overwrite")

	ok, err = reg.Validate(ctx, "user-1", "token-b")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestInvalidate(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Insert(ctx, "user-1", "token-a"))
	require.NoError(t, reg.Invalidate(ctx, "user-1"))

	ok, err := reg.Validate(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.False(t, ok)

	// Idempotent on missing keys
	require.NoError(t, reg.Invalidate(ctx, "user-1"))
}

func TestEntryExpires(t *testing.T) {
	reg, mini := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Insert(ctx, "user-1", "token-a"))
	mini.FastForward(2 * time.Hour)

	ok, err := reg.Validate(ctx, "user-1", "token-a")
	require.NoError(t, err)
	require.False(t, ok)
}
