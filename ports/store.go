package ports

import (
	"context"
	"time"

	"github.com/openclave/sigil/core"
)

// ChallengeStore keeps one live challenge per address with a TTL.
type ChallengeStore interface {
	// Put stores the challenge for address, replacing any existing entry.
	Put(ctx context.Context, address string, challenge core.Challenge, ttl time.Duration) error

	// ConsumeIfMatch atomically compares the stored challenge for address
	// against candidate and deletes it only on an exact match. It reports
	// whether the match succeeded; absent, expired and non-matching entries
	// all report false without mutating state. Two concurrent callers with
	// the same valid challenge must not both see true.
	ConsumeIfMatch(ctx context.Context, address string, candidate core.Challenge) (bool, error)
}
