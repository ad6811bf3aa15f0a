package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps checkpoints in-process. Snapshots are stored as
// JSON bytes so callers get the same copy semantics as the Redis
// store.
type MemoryStore struct {
	cache *cache.Cache
}

var _ Store = &MemoryStore{}

// NewMemoryStore creates a store whose entries expire after ttl of
// inactivity. ttl <= 0 means entries never expire.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, st any) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("checkpoint marshal: %w", err)
	}
	s.cache.Set(sessionID, data, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string, out any) error {
	x, found := s.cache.Get(sessionID)
	if !found {
		return ErrNotFound
	}
	if err := json.Unmarshal(x.([]byte), out); err != nil {
		return fmt.Errorf("checkpoint unmarshal: %w", err)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}
