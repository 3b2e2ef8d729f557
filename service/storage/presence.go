package storage

import (
	"context"
	"sync"
	"time"
)

// Presence is a user's self-reported state. A user with no record is
// simply offline with no last-seen; lookups never fail on unknown ids.
type Presence struct {
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen"`
}

// PresenceStore keeps the per-user presence record. Records have no
// TTL: presence is explicit, not connection-derived, and lives as long
// as the user does.
type PresenceStore interface {
	Set(ctx context.Context, userID string, online bool) (Presence, error)
	Get(ctx context.Context, userID string) (Presence, error)
}

// MemPresence is the in-memory implementation, used by tests and
// single-node development runs.
type MemPresence struct {
	mu sync.RWMutex
	m  map[string]Presence
}

func NewMemPresence() *MemPresence {
	return &MemPresence{m: make(map[string]Presence)}
}

func (s *MemPresence) Set(ctx context.Context, userID string, online bool) (Presence, error) {
	now := time.Now()
	p := Presence{IsOnline: online, LastSeen: &now}
	s.mu.Lock()
	s.m[userID] = p
	s.mu.Unlock()
	return p, nil
}

func (s *MemPresence) Get(ctx context.Context, userID string) (Presence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.m[userID]; ok {
		return p, nil
	}
	return Presence{}, nil
}
