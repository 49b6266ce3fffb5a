package server

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStorage implements fiber.Storage so limiter counters are shared between instances.
type redisStorage struct {
	client *redis.Client
	prefix string
}

func newRedisStorage(client *redis.Client, prefix string) *redisStorage {
	return &redisStorage{client: client, prefix: prefix}
}

func (s *redisStorage) Get(key string) ([]byte, error) {
	val, err := s.client.Get(context.Background(), s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *redisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.client.Set(context.Background(), s.prefix+key, val, exp).Err()
}

func (s *redisStorage) Delete(key string) error {
	return s.client.Del(context.Background(), s.prefix+key).Err()
}

// Reset drops every key under the prefix.
func (s *redisStorage) Reset() error {
	ctx := context.Background()
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op; the client belongs to the caller.
func (s *redisStorage) Close() error { return nil }
