package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProcessLock is a single-flight lock per proposal. Concurrent attempts to
// process the same proposal (queue redelivery, manual reprocess racing a
// batch run) collapse to one active run.
type ProcessLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProcessLock(rdb *redis.Client, ttl time.Duration) *ProcessLock {
	return &ProcessLock{rdb: rdb, ttl: ttl}
}

// Acquire returns true if the caller now owns the lock for this proposal.
// When redis is unavailable processing proceeds anyway; the status check on
// the row still rejects most double runs.
func (l *ProcessLock) Acquire(ctx context.Context, proposalID int) bool {
	ok, err := l.rdb.SetNX(ctx, lockKey(proposalID), 1, l.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release frees the lock after a run finishes, success or failure.
func (l *ProcessLock) Release(ctx context.Context, proposalID int) {
	l.rdb.Del(ctx, lockKey(proposalID))
}

func lockKey(proposalID int) string {
	return fmt.Sprintf("processing:proposal:%d", proposalID)
}
