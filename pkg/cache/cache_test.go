package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/appstore/pkg/cache"
)

type cachedApp struct {
	ID   int64             `json:"id"`
	Name map[string]string `json:"name"`
}

func backends(t *testing.T) map[string]cache.Cache {
	mem, err := cache.NewInMemory(0)
	require.NoError(t, err)

	s := miniredis.RunT(t)
	rc, err := cache.NewRedis(cache.RedisConfig{
		Client: redis.NewClient(&redis.Options{Addr: s.Addr()}),
	})
	require.NoError(t, err)

	return map[string]cache.Cache{
		"memory": mem,
		"redis":  rc,
	}
}

func TestCache_contract(t *testing.T) {
	ctx := context.Background()

	for name, c := range backends(t) {
		c := c
		t.Run(name, func(t *testing.T) {
			var out cachedApp
			err := c.GetAs(ctx, "app:1", &out)
			assert.ErrorIs(t, err, cache.ErrKeyNotExist)

			in := cachedApp{ID: 1, Name: map[string]string{"en": "Calculator", "th": "เครื่องคิดเลข"}}
			require.NoError(t, c.SetExp(ctx, "app:1", in, time.Minute))

			require.NoError(t, c.GetAs(ctx, "app:1", &out))
			assert.Equal(t, in, out)

			// negative expiry is stored without expiry
			require.NoError(t, c.SetExp(ctx, "app:2", in, -1))
			require.NoError(t, c.GetAs(ctx, "app:2", &out))

			require.NoError(t, c.Delete(ctx, "app:1"))
			err = c.GetAs(ctx, "app:1", &out)
			assert.ErrorIs(t, err, cache.ErrKeyNotExist)

			// deleting missing key is fine
			assert.NoError(t, c.Delete(ctx, "app:404"))
		})
	}
}

func TestCache_unmarshalableValue(t *testing.T) {
	for name, c := range backends(t) {
		c := c
		t.Run(name, func(t *testing.T) {
			err := c.SetExp(context.Background(), "bad", make(chan int), time.Minute)
			assert.Error(t, err)
		})
	}
}

func TestNewRedis(t *testing.T) {
	c, err := cache.NewRedis(cache.RedisConfig{})
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestRedis_expiryAndClosedClient(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})

	c, err := cache.NewRedis(cache.RedisConfig{Client: client})
	require.NoError(t, err)

	require.NoError(t, c.SetExp(ctx, "session:abc", "value", time.Second))
	assert.True(t, s.Exists("session:abc"))

	s.FastForward(2 * time.Second)

	var out string
	assert.ErrorIs(t, c.GetAs(ctx, "session:abc", &out), cache.ErrKeyNotExist)

	require.NoError(t, client.Close())
	err = c.GetAs(ctx, "session:abc", &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, cache.ErrKeyNotExist)
	assert.Error(t, c.SetExp(ctx, "session:abc", "value", time.Second))
	assert.Error(t, c.Delete(ctx, "session:abc"))
}
