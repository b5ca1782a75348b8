package cache

import (
	"context"
	"fmt"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "compdash:raw:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps snappy-compressed payloads in Redis without expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisStore{client: client}
}

// Ping checks connectivity to the server.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: redis get %q: %w", key, err)
	}
	data, err := snappy.Decode(nil, val)
	if err != nil {
		return nil, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return data, nil
}

// Put is a single SET, which Redis applies atomically.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, snappy.Encode(nil, data), 0).Err(); err != nil {
		return fmt.Errorf("cache: redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("cache: redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
