// internal/store/memory.go
//
// Session stores: where in-progress games live between HTTP requests.
// This file holds the Store interface and the in-memory implementation.
//
// Characteristics of the memory store:
//   - Keeps game.Snapshot values (copies, never live sessions) keyed by ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Entries expire ttl after their last Save, like the redis store's key TTL.
//     Expired entries are hidden from Get and swept out on a later Save.
//   - State is lost when the process restarts; use the redis store to survive that.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/addkelime/kelime-server/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired IDs.
var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a snapshot under snap.ID.
	Save(ctx context.Context, snap game.Snapshot) error

	// Get retrieves a snapshot by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (game.Snapshot, error)

	// Delete removes a snapshot. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu        sync.RWMutex
	games     map[string]entry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type entry struct {
	snap      game.Snapshot
	expiresAt time.Time
}

// NewMemoryStore constructs a new in-memory Store. Snapshots not saved again
// within ttl are dropped; ttl <= 0 keeps them until Delete.
func NewMemoryStore(ttl time.Duration) Store {
	return newMemory(ttl, time.Now)
}

func newMemory(ttl time.Duration, now func() time.Time) *memory {
	return &memory{games: make(map[string]entry), ttl: ttl, now: now, lastSweep: now()}
}

func (m *memory) Save(_ context.Context, snap game.Snapshot) error {
	snap.Guesses = append([]game.Guess(nil), snap.Guesses...)
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e := entry{snap: snap}
	if m.ttl > 0 {
		e.expiresAt = now.Add(m.ttl)
		if now.Sub(m.lastSweep) >= m.ttl {
			m.sweepLocked(now)
		}
	}
	m.games[snap.ID] = e
	return nil
}

func (m *memory) Get(_ context.Context, id string) (game.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	if !ok || e.expired(m.now()) {
		return game.Snapshot{}, ErrNotFound
	}
	snap := e.snap
	snap.Guesses = append([]game.Guess(nil), snap.Guesses...)
	return snap, nil
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

// sweepLocked drops expired entries. Callers hold mu.
func (m *memory) sweepLocked(now time.Time) {
	for id, e := range m.games {
		if e.expired(now) {
			delete(m.games, id)
		}
	}
	m.lastSweep = now
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
