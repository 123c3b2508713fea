// File: internal/usecase/sync_session.go
package usecase

import "time"

// SyncSession carries the per-run state of a batch sync job: which keys were
// already handled this run, and the outcome counters. It is created fresh for
// every invocation and passed explicitly, never held in package state, so
// concurrent or repeated runs (and tests) stay isolated.
type SyncSession struct {
	StartedAt time.Time
	Synced    int
	Failed    int

	seen map[string]struct{}
}

func NewSyncSession() *SyncSession {
	return &SyncSession{StartedAt: time.Now(), seen: make(map[string]struct{})}
}

// Seen reports whether key was already handled in this session.
func (s *SyncSession) Seen(key string) bool {
	_, ok := s.seen[key]
	return ok
}

// MarkSynced records a successful sync for key.
func (s *SyncSession) MarkSynced(key string) {
	s.seen[key] = struct{}{}
	s.Synced++
}

// MarkFailed records a failed sync for key; the key is still marked seen so
// the same run does not retry it.
func (s *SyncSession) MarkFailed(key string) {
	s.seen[key] = struct{}{}
	s.Failed++
}
