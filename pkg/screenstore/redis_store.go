package screenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps the latest compressed screenshots in redis, addressed by
// content digest. Activity rows persist only the digest, so duplicate
// frames from an idle desktop cost one entry instead of one row each.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(digest string) string {
	return fmt.Sprintf("screen:%s", digest)
}

// Put stores a compressed frame under its digest. A nil client is a
// no-op so the monitor keeps working when redis is down.
func (s *Store) Put(ctx context.Context, digest string, jpeg []byte) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, key(digest), jpeg, s.ttl).Err()
}

// Get fetches a frame by digest. Returns (nil, nil) when the frame has
// expired or redis is unavailable.
func (s *Store) Get(ctx context.Context, digest string) ([]byte, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, key(digest)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
