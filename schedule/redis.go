package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions selects the Redis server used by RedisBackend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisBackend stores each blob under "namespace:key"
type RedisBackend struct {
	client *redis.Client
}

var _ Backend = &RedisBackend{}

// OpenRedis connects and pings the server
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	err := client.Ping(ctx).Err()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", opts.Addr, err)
	}

	return &RedisBackend{client: client}, nil
}

func redisKey(namespace, key string) string {
	return namespace + ":" + key
}

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return v, err
}

// Set implements Backend.
func (r *RedisBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	return r.client.Set(ctx, redisKey(namespace, key), value, 0).Err()
}

// Erase implements Backend.
func (r *RedisBackend) Erase(ctx context.Context, namespace string) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, redisKey(namespace, "*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close implements Backend.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
