package giveaway

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawRecord(entries []string, winners []string, winnerCount int) *Record {
	return &Record{
		Entries:     entries,
		WinnerIDs:   winners,
		WinnerCount: winnerCount,
	}
}

func TestDrawInitial(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("draws winner count", func(t *testing.T) {
		rec := drawRecord([]string{"u1", "u2", "u3", "u4"}, nil, 2)
		winners := DrawInitial(rec, rng)
		require.Len(t, winners, 2)
		for _, w := range winners {
			assert.Contains(t, rec.Entries, w)
		}
		assert.NotEqual(t, winners[0], winners[1], "winners must be distinct")
	})

	t.Run("short entry set caps the draw", func(t *testing.T) {
		rec := drawRecord([]string{"u1", "u2"}, nil, 5)
		winners := DrawInitial(rec, rng)
		assert.ElementsMatch(t, []string{"u1", "u2"}, winners)
	})

	t.Run("empty entries yields empty draw", func(t *testing.T) {
		rec := drawRecord(nil, nil, 3)
		assert.Empty(t, DrawInitial(rec, rng))
	})

	t.Run("does not mutate the record", func(t *testing.T) {
		rec := drawRecord([]string{"u1", "u2", "u3"}, nil, 2)
		DrawInitial(rec, rng)
		assert.Equal(t, []string{"u1", "u2", "u3"}, rec.Entries)
	})
}

func TestDrawReplacementExcludesCurrentWinners(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rec := drawRecord([]string{"u1", "u2", "u3", "u4"}, []string{"u1"}, 1)

	// Every draw from this pool must avoid the standing winner.
	for i := 0; i < 50; i++ {
		winners := DrawReplacement(rec, rng)
		require.Len(t, winners, 1)
		assert.NotEqual(t, "u1", winners[0])
	}
}

func TestDrawReplacementOnlyExcludesCurrentSet(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// u1 won previously but was replaced by u2; u1 is back in the pool.
	rec := drawRecord([]string{"u1", "u2"}, []string{"u2"}, 1)
	winners := DrawReplacement(rec, rng)
	assert.Equal(t, []string{"u1"}, winners)
}

func TestDrawReplacementEmptyPool(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rec := drawRecord([]string{"u1", "u2"}, []string{"u1", "u2"}, 2)
	assert.Empty(t, DrawReplacement(rec, rng))
}

func TestSampleUniformish(t *testing.T) {
	// Not a statistical test, just a sanity check that every entrant can win.
	rng := rand.New(rand.NewSource(7))
	rec := drawRecord([]string{"a", "b", "c"}, nil, 1)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		seen[DrawInitial(rec, rng)[0]] = true
	}
	assert.Len(t, seen, 3)
}
