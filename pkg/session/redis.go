package session

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// RedisOption configures the Redis store.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces the record as "{prefix}:ANAuthLogin".
// Useful when several installations share one Redis instance.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// RedisStore keeps the record in Redis. The key never expires.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed store.
// The client should be obtained from pkg/redis.Open.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the remembered kind.
func (s *RedisStore) Load(ctx context.Context) (provider.Kind, error) {
	v, err := s.client.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrStorage, err)
	}
	if v == "" {
		return "", ErrNotFound
	}
	return provider.Kind(v), nil
}

// Save remembers kind.
func (s *RedisStore) Save(ctx context.Context, kind provider.Kind) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(), kind.String(), 0).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Clear forgets the remembered kind.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *RedisStore) key() string {
	if s.prefix == "" {
		return Key
	}
	return s.prefix + ":" + Key
}

var _ Store = (*RedisStore)(nil)
