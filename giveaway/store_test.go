package giveaway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeRecord(guildID, messageID string) *Record {
	return NewRecord(guildID, "c1", "host", messageID,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), testOptions())
}

func TestStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())

	rec := storeRecord("g1", "m1")
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MessageID)
	assert.Equal(t, StatusActive, got.Status)

	// The returned copy must not alias the stored record.
	got.Entries = append(got.Entries, "u1")
	again, err := store.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Empty(t, again.Entries)
}

func TestStoreCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())

	require.NoError(t, store.Create(ctx, storeRecord("g1", "m1")))
	err := store.Create(ctx, storeRecord("g1", "m1"))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestStoreGetNotFound(t *testing.T) {
	store := NewStore(newMemDocs())
	_, err := store.Get(context.Background(), "g1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())
	require.NoError(t, store.Create(ctx, storeRecord("g1", "m1")))

	updated, err := store.Update(ctx, "g1", "m1", func(r *Record) error {
		r.Entries = append(r.Entries, "u1")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, updated.Entries)

	got, err := store.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.Entries)
}

func TestStoreUpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())
	require.NoError(t, store.Create(ctx, storeRecord("g1", "m1")))

	boom := errors.New("boom")
	_, err := store.Update(ctx, "g1", "m1", func(r *Record) error {
		r.Entries = append(r.Entries, "u1")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Empty(t, got.Entries, "failed mutate must not persist")
}

func TestStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())
	require.NoError(t, store.Create(ctx, storeRecord("g1", "m1")))

	require.NoError(t, store.Delete(ctx, "g1", "m1"))
	require.NoError(t, store.Delete(ctx, "g1", "m1"))

	_, err := store.Get(ctx, "g1", "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreListActive(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())
	require.NoError(t, store.Create(ctx, storeRecord("g1", "m1")))
	require.NoError(t, store.Create(ctx, storeRecord("g1", "m2")))
	require.NoError(t, store.Create(ctx, storeRecord("g2", "m3")))

	_, err := store.Update(ctx, "g1", "m2", func(r *Record) error {
		r.Status = StatusCancelled
		return nil
	})
	require.NoError(t, err)

	active, err := store.ListActive(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "m1", active[0].MessageID)
}

func TestStoreGuildsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemDocs())
	require.NoError(t, store.Create(ctx, storeRecord("g1", "m1")))

	_, err := store.Get(ctx, "g2", "m1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreNormalizesOnLoad(t *testing.T) {
	ctx := context.Background()
	docs := newMemDocs()

	// Seed a legacy-shaped document directly.
	legacy := map[string]map[string]any{
		"m1": {
			"message_id": "m1",
			"guild_id":   "g1",
			"prize":      "Nitro",
			"winner_id":  "u1",
			"status":     "ended",
		},
	}
	require.NoError(t, docs.Set(ctx, "g1", NamespaceGiveaways, legacy))

	store := NewStore(docs)
	got, err := store.Get(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nitro"}, got.Prizes)
	assert.Equal(t, []string{"u1"}, got.WinnerIDs)
	assert.Equal(t, StatusEnded, got.Status)
}
