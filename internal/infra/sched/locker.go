package sched

import "context"

// Locker guards a job so only one instance in the fleet runs it at a time.
// Implemented by the Redis lock; acquisition fails with domain.ErrConflict
// when another instance holds the lease.
type Locker interface {
	Acquire(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}
