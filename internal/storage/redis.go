package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores each namespace as one hash. Writes go through MULTI/EXEC.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "portal:storage:"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(ns string) string {
	return r.prefix + ns
}

func (r *Redis) Get(ctx context.Context, ns, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key(ns), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) SetMany(ctx context.Context, ns string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		args := make([]interface{}, 0, len(values)*2)
		for k, v := range values {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, r.key(ns), args...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", ns, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, ns string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.rdb.HDel(ctx, r.key(ns), keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", ns, err)
	}
	return nil
}
