package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"corpdata-commerce/internal/domain"
)

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

// fakeRedis is an in-memory RedisClient with manual clock control.
type fakeRedis struct {
	data map[string]*fakeEntry
	now  time.Time
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]*fakeEntry{}, now: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeRedis) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fakeRedis) live(key string) *fakeEntry {
	e, ok := f.data[key]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !f.now.Before(e.expiresAt) {
		delete(f.data, key)
		return nil
	}
	return e
}

func (f *fakeRedis) Ping(ctx context.Context) error { return f.err }

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if f.err != nil {
		return f.err
	}
	e := &fakeEntry{value: toStr(value)}
	if expiration > 0 {
		e.expiresAt = f.now.Add(expiration)
	}
	f.data[key] = e
	return nil
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.live(key) != nil {
		return false, nil
	}
	return true, f.Set(ctx, key, value, expiration)
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	e := f.live(key)
	if e == nil {
		return "", errors.New("redis: nil")
	}
	return e.value, nil
}

func (f *fakeRedis) Exists(ctx context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.live(key) != nil, nil
}

func (f *fakeRedis) Incr(ctx context.Context, key string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	e := f.live(key)
	if e == nil {
		f.data[key] = &fakeEntry{value: "1"}
		return 1, nil
	}
	var n int64
	for _, ch := range e.value {
		n = n*10 + int64(ch-'0')
	}
	n++
	e.value = itoa(n)
	return n, nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if f.err != nil {
		return f.err
	}
	if e := f.live(key); e != nil {
		e.expiresAt = f.now.Add(expiration)
	}
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) CompareAndDel(ctx context.Context, key, expected string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	e := f.live(key)
	if e == nil || e.value != expected {
		return false, nil
	}
	delete(f.data, key)
	return true, nil
}

func (f *fakeRedis) Close() error { return nil }

func toStr(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestLockMutualExclusion(t *testing.T) {
	fake := newFakeRedis()
	a := NewLock(fake, "instance-a", 10*time.Minute)
	b := NewLock(fake, "instance-b", 10*time.Minute)
	ctx := context.Background()

	if err := a.Acquire(ctx, "jobs:payment_reconcile"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := b.Acquire(ctx, "jobs:payment_reconcile"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second acquire err = %v, want ErrConflict", err)
	}

	held, err := a.IsLocked(ctx, "jobs:payment_reconcile")
	if err != nil || !held {
		t.Errorf("IsLocked = %v, %v; want true", held, err)
	}
}

func TestLockExpiryReclaim(t *testing.T) {
	fake := newFakeRedis()
	a := NewLock(fake, "instance-a", 10*time.Minute)
	b := NewLock(fake, "instance-b", 10*time.Minute)
	ctx := context.Background()

	if err := a.Acquire(ctx, "jobs:outbox_dispatch"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	fake.advance(11 * time.Minute)

	// The lease lapsed; a different instance may take over.
	if err := b.Acquire(ctx, "jobs:outbox_dispatch"); err != nil {
		t.Errorf("reclaim after expiry: %v", err)
	}
}

func TestLockReleaseByHolderOnly(t *testing.T) {
	fake := newFakeRedis()
	a := NewLock(fake, "instance-a", 10*time.Minute)
	b := NewLock(fake, "instance-b", 10*time.Minute)
	ctx := context.Background()

	if err := a.Acquire(ctx, "jobs:accounting_sync"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// A non-holder release must not free the holder's lease.
	if err := b.Release(ctx, "jobs:accounting_sync"); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	held, _ := a.IsLocked(ctx, "jobs:accounting_sync")
	if !held {
		t.Fatal("non-holder release freed the lock")
	}

	if err := a.Release(ctx, "jobs:accounting_sync"); err != nil {
		t.Fatalf("holder release: %v", err)
	}
	held, _ = a.IsLocked(ctx, "jobs:accounting_sync")
	if held {
		t.Error("lock still held after holder release")
	}
}

func TestLockStaleReleaseAfterTakeover(t *testing.T) {
	fake := newFakeRedis()
	a := NewLock(fake, "instance-a", 10*time.Minute)
	b := NewLock(fake, "instance-b", 10*time.Minute)
	ctx := context.Background()

	if err := a.Acquire(ctx, "jobs:audience_resync"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	fake.advance(11 * time.Minute)
	if err := b.Acquire(ctx, "jobs:audience_resync"); err != nil {
		t.Fatalf("takeover: %v", err)
	}

	// The original holder's late release must not drop the new lease.
	if err := a.Release(ctx, "jobs:audience_resync"); err != nil {
		t.Fatalf("late release: %v", err)
	}
	held, _ := b.IsLocked(ctx, "jobs:audience_resync")
	if !held {
		t.Error("late release from a previous holder dropped the new lease")
	}
}

func TestLockAcquirePropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	l := NewLock(fake, "instance-a", time.Minute)
	if err := l.Acquire(context.Background(), "jobs:x"); err == nil || errors.Is(err, domain.ErrConflict) {
		t.Errorf("err = %v, want transport error", err)
	}
}
