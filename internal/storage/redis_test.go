package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedis_SetUsesPrefixAndNoTTL(t *testing.T) {
	store, mr := setupRedis(t)

	require.NoError(t, store.Set(context.Background(), KeyAuthToken, "tok"))

	got, err := mr.Get("storefront:auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
	assert.Zero(t, mr.TTL("storefront:auth_token"))
}

func TestRedis_GetMissing(t *testing.T) {
	store, _ := setupRedis(t)

	_, err := store.Get(context.Background(), KeyUserData)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_Delete(t *testing.T) {
	store, mr := setupRedis(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, KeyAuthToken, "tok"))
	require.NoError(t, store.Set(ctx, KeyUserData, "{}"))

	require.NoError(t, store.Delete(ctx, KeyAuthToken, KeyUserData))
	require.NoError(t, store.Delete(ctx))

	assert.False(t, mr.Exists("storefront:auth_token"))
	assert.False(t, mr.Exists("storefront:user_data"))
}

func TestRedis_ServerDown(t *testing.T) {
	store, mr := setupRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), KeyPincode)

	assert.ErrorContains(t, err, "redis get failed")
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := Open(context.Background(), Options{Backend: BackendRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), KeyPincode, "560001"))
	assert.True(t, mr.Exists("storefront:user_pincode"))
}
