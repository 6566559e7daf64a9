package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/ports"
)

const defaultOpTimeout = 2 * time.Second

// RedisStore is the durable, shared revocation store. Entries live in Redis
// with a server-side expiry equal to the credential's remaining lifetime, so
// revocations issued by one process are visible to every other process and
// survive restarts.
//
// Every operation runs under a timeout. A store that cannot answer maps to
// core.ErrStoreUnavailable so callers fail closed instead of treating a
// timed-out lookup as "not revoked".
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a Redis-backed store on an existing client. The
// client's lifecycle stays with the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  "taskhive:revoked:",
		timeout: defaultOpTimeout,
	}
}

var _ ports.RevocationStore = (*RedisStore)(nil)

// Revoke records the token as revoked for ttl. SET NX makes the write
// first-wins: a token already present keeps its original expiry and the call
// reports false.
func (s *RedisStore) Revoke(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.client.SetNX(ctx, s.prefix+token, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return created, nil
}

// IsRevoked reports whether the token is currently revoked.
func (s *RedisStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, s.prefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
