package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares failure counters between gateway instances.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisStore(addr string, window time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, window: window}, nil
}

func key(studentIDNumber string) string {
	return "login-failures:" + studentIDNumber
}

func (s *RedisStore) Fail(ctx context.Context, studentIDNumber string) (int, error) {
	k := key(studentIDNumber)
	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", k, err)
	}
	// Refresh the window on every failure so a burst of attempts stays
	// locked until the attacker goes quiet.
	if err := s.client.Expire(ctx, k, s.window).Err(); err != nil {
		return 0, fmt.Errorf("expire %s: %w", k, err)
	}
	return int(n), nil
}

func (s *RedisStore) Count(ctx context.Context, studentIDNumber string) (int, error) {
	n, err := s.client.Get(ctx, key(studentIDNumber)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key(studentIDNumber), err)
	}
	return n, nil
}

func (s *RedisStore) Reset(ctx context.Context, studentIDNumber string) error {
	if err := s.client.Del(ctx, key(studentIDNumber)).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key(studentIDNumber), err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
