package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addkelime/kelime-server/internal/game"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	snap := game.Snapshot{
		ID:         "g1",
		Mode:       5,
		TargetWord: "KALEM",
		Guesses:    []game.Guess{{Word: "ELMAS", Result: game.Evaluate("ELMAS", "KALEM")}},
	}
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	got.Guesses[0].Word = "CHANGED"
	again, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "ELMAS", again.Guesses[0].Word, "callers get copies")

	snap.CurrentGuess = "KA"
	require.NoError(t, s.Save(ctx, snap))
	got, err = s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "KA", got.CurrentGuess)

	require.NoError(t, s.Delete(ctx, "g1"))
	require.NoError(t, s.Delete(ctx, "g1"))
	_, err = s.Get(ctx, "g1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m := newMemory(time.Hour, func() time.Time { return now })

	require.NoError(t, m.Save(ctx, game.Snapshot{ID: "old", Mode: 5}))
	now = now.Add(45 * time.Minute)
	require.NoError(t, m.Save(ctx, game.Snapshot{ID: "fresh", Mode: 5}))

	now = now.Add(20 * time.Minute)
	_, err := m.Get(ctx, "old")
	require.ErrorIs(t, err, ErrNotFound, "an hour after its last save")
	_, err = m.Get(ctx, "fresh")
	require.NoError(t, err)

	// Saving again pushes the deadline out.
	require.NoError(t, m.Save(ctx, game.Snapshot{ID: "fresh", Mode: 5, CurrentGuess: "K"}))
	now = now.Add(50 * time.Minute)
	got, err := m.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "K", got.CurrentGuess)

	m.mu.RLock()
	_, kept := m.games["old"]
	m.mu.RUnlock()
	assert.False(t, kept, "expired entries are swept on save")
}
