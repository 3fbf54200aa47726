package credstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the pair under two keys sharing a prefix. Unlike the
// dashboard cache it reports redis failures: losing a credential write
// silently would break the pair invariant.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps client. prefix namespaces the token and user keys.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) tokenKey() string { return s.prefix + KeyToken }
func (s *RedisStore) userKey() string  { return s.prefix + KeyUser }

// Read implements Store.
func (s *RedisStore) Read(ctx context.Context) (string, []byte, error) {
	vals, err := s.client.MGet(ctx, s.tokenKey(), s.userKey()).Result()
	if err != nil {
		return "", nil, fmt.Errorf("read credentials: %w", err)
	}
	token, _ := vals[0].(string)
	user, _ := vals[1].(string)
	if token == "" || user == "" {
		return "", nil, ErrNotFound
	}
	return token, []byte(user), nil
}

// Write implements Store.
func (s *RedisStore) Write(ctx context.Context, token string, user []byte) error {
	if err := validPair(token, user); err != nil {
		return err
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.MSet(ctx, s.tokenKey(), token, s.userKey(), string(user))
		return nil
	})
	if err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
