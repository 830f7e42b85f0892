package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openclave/sigil/core"
	"github.com/openclave/sigil/ports"
)

// consumeScript compares the stored challenge bytes against the caller's copy
// and deletes the key only on an exact match, in one atomic step. This closes
// the read-then-delete race: two concurrent verification attempts against the
// same challenge can never both win.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// RedisStore is a Redis implementation of the ChallengeStore interface.
// Redis enforces the TTL; entries vanish on expiry without eviction sweeps.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis challenge store
func NewRedisStore(client *redis.Client) ports.ChallengeStore {
	return &RedisStore{
		client: client,
		prefix: "sigil:challenge:",
	}
}

// Put stores the canonical challenge bytes under the address key, replacing
// any live challenge for that address.
func (s *RedisStore) Put(ctx context.Context, address string, challenge core.Challenge, ttl time.Duration) error {
	payload, err := challenge.CanonicalBytes()
	if err != nil {
		return fmt.Errorf("failed to encode challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+address, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	return nil
}

// ConsumeIfMatch atomically removes the stored challenge if it matches
// candidate byte for byte.
func (s *RedisStore) ConsumeIfMatch(ctx context.Context, address string, candidate core.Challenge) (bool, error) {
	payload, err := candidate.CanonicalBytes()
	if err != nil {
		return false, fmt.Errorf("failed to encode challenge: %w", err)
	}

	n, err := consumeScript.Run(ctx, s.client, []string{s.prefix + address}, string(payload)).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume challenge: %w", err)
	}

	return n == 1, nil
}
