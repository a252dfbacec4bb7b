package giveaway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	drafts := NewDraftStore(newMemDocs())

	// Unknown users get an empty draft, not an error.
	d, err := drafts.Get(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Empty(t, d.Prizes)

	_, err = drafts.Update(ctx, "g1", "u1", func(d *Draft) {
		d.Session = "s1"
		d.Prizes = []string{"Nitro"}
		d.DurationSeconds = 3600
	})
	require.NoError(t, err)

	d, err = drafts.Get(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", d.Session)
	assert.Equal(t, []string{"Nitro"}, d.Prizes)

	// Drafts are per user.
	other, err := drafts.Get(ctx, "g1", "u2")
	require.NoError(t, err)
	assert.Empty(t, other.Prizes)
}

func TestDraftStoreClear(t *testing.T) {
	ctx := context.Background()
	drafts := NewDraftStore(newMemDocs())

	_, err := drafts.Update(ctx, "g1", "u1", func(d *Draft) {
		d.Prizes = []string{"Nitro"}
	})
	require.NoError(t, err)

	require.NoError(t, drafts.Clear(ctx, "g1", "u1"))
	require.NoError(t, drafts.Clear(ctx, "g1", "u1"), "clearing an absent draft is a no-op")

	d, err := drafts.Get(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.Empty(t, d.Prizes)
}

func TestDraftOptionsDefaults(t *testing.T) {
	d := &Draft{
		Prizes:          []string{"Nitro"},
		DurationSeconds: 3600,
		Description:     "  hello  ",
	}
	o := d.Options()
	assert.Equal(t, 1, o.WinnerCount, "unset winner count defaults to one")
	assert.Equal(t, "hello", o.Description)
	assert.NoError(t, o.Validate())
}
