package store

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisKV(rdb, "test:"), mr
}

func TestRedisKV_GetSetDelete(t *testing.T) {
	kv, mr := newRedisKV(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "k", []byte(`[1,2]`)))
	v, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))

	stored, err := mr.Get("test:k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, stored)

	require.NoError(t, kv.Delete(ctx, "k"))
	assert.False(t, mr.Exists("test:k"))
}

func TestRedisKV_UpdateSkipsUnchanged(t *testing.T) {
	kv, mr := newRedisKV(t)
	ctx := context.Background()

	err := kv.Update(ctx, "k", func(cur []byte, exists bool) ([]byte, bool, error) {
		assert.False(t, exists)
		return nil, false, nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:k"))
}

func TestRecords_OverRedisKeepsConcurrentMutations(t *testing.T) {
	kv, _ := newRedisKV(t)
	r := NewRecords(kv, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := Mutate(ctx, r, items, func(list []item) ([]item, bool, error) {
				list[1].Count++
				return list, true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Load(ctx, r, items)
	require.NoError(t, err)
	assert.Equal(t, 10, got[1].Count)
}
