package store

import (
	"context"
	"errors"

	"skillhive/internal/observability"

	"github.com/redis/go-redis/v9"
)

const defaultUpdateRetries = 16

// RedisKV stores each collection as one Redis string.
type RedisKV struct {
	rdb     *redis.Client
	prefix  string
	retries int
}

// NewRedisKV wraps rdb. prefix is prepended to every key and may be empty.
func NewRedisKV(rdb *redis.Client, prefix string) *RedisKV {
	return &RedisKV{rdb: rdb, prefix: prefix, retries: defaultUpdateRetries}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		observability.RedisErrors.WithLabelValues("store_get").Inc()
		return nil, false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("store_set").Inc()
		return err
	}
	return nil
}

// Update runs fn inside a WATCH/MULTI transaction and retries when another
// client wrote the key in between.
func (r *RedisKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := r.key(key)
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		exists := true
		if errors.Is(err, redis.Nil) {
			exists = false
		} else if err != nil {
			return err
		}

		next, changed, err := fn(cur, exists)
		if err != nil || !changed {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < r.retries; i++ {
		err := r.rdb.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	observability.RedisErrors.WithLabelValues("store_update_contention").Inc()
	return ErrContention
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.key(key)).Err(); err != nil {
		observability.RedisErrors.WithLabelValues("store_delete").Inc()
		return err
	}
	return nil
}
