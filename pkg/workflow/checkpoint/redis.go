package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "workflow:checkpoint:"

// RedisStore persists checkpoints in Redis so sessions survive a
// process restart.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = &RedisStore{}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, st any) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("checkpoint marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("checkpoint write: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string, out any) error {
	data, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checkpoint read: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("checkpoint unmarshal: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("checkpoint delete: %w", err)
	}
	return nil
}
