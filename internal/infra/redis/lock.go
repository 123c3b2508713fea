// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"corpdata-commerce/internal/domain"
	"corpdata-commerce/internal/infra/metrics"
)

// Lock is a best-effort distributed lock over Redis. Each acquisition writes
// the holder's instance ID under the lock key with a TTL; expiry makes a
// crashed holder's lock reclaimable without intervention. Release is
// compare-and-delete on the instance ID, so a holder whose lease expired and
// was taken over cannot release the new holder's lock.
type Lock struct {
	cli        RedisClient
	instanceID string
	ttl        time.Duration
}

func NewLock(cli RedisClient, instanceID string, ttl time.Duration) *Lock {
	return &Lock{cli: cli, instanceID: instanceID, ttl: ttl}
}

// Acquire takes the lock for key. Returns domain.ErrConflict when another
// holder's unexpired lease is in place.
func (l *Lock) Acquire(ctx context.Context, key string) error {
	ok, err := l.cli.SetNX(ctx, key, l.instanceID, l.ttl)
	if err != nil {
		metrics.IncLockAcquisition(key, "error")
		return err
	}
	if !ok {
		metrics.IncLockAcquisition(key, "held")
		return domain.ErrConflict
	}
	metrics.IncLockAcquisition(key, "acquired")
	return nil
}

// Release frees the lock if this instance still holds it. Releasing a lock
// that expired or was never held is a no-op.
func (l *Lock) Release(ctx context.Context, key string) error {
	_, err := l.cli.CompareAndDel(ctx, key, l.instanceID)
	return err
}

// IsLocked reports whether any holder currently has the lock.
func (l *Lock) IsLocked(ctx context.Context, key string) (bool, error) {
	return l.cli.Exists(ctx, key)
}
