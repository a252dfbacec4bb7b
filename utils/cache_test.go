package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentCacheRoundTrip(t *testing.T) {
	c := NewDocumentCache(time.Minute)
	defer c.Close()

	_, ok := c.Get("g1", "giveaways")
	assert.False(t, ok)

	c.Set("g1", "giveaways", []byte(`{"a":1}`))
	raw, ok := c.Get("g1", "giveaways")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), raw)

	// Namespaces under the same guild are distinct keys.
	_, ok = c.Get("g1", "giveaway_drafts")
	assert.False(t, ok)

	c.Delete("g1", "giveaways")
	_, ok = c.Get("g1", "giveaways")
	assert.False(t, ok)
}

func TestDocumentCacheExpiry(t *testing.T) {
	c := NewDocumentCache(20 * time.Millisecond)
	defer c.Close()

	c.Set("g1", "giveaways", []byte(`{}`))
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("g1", "giveaways")
	assert.False(t, ok)

	// The expired read evicts the entry rather than leaving it for the
	// cleanup ticker.
	assert.Equal(t, 0, c.Size())
}

func TestDocumentCacheCopiesBytes(t *testing.T) {
	c := NewDocumentCache(time.Minute)
	defer c.Close()

	raw := []byte(`{"a":1}`)
	c.Set("g1", "giveaways", raw)
	raw[0] = 'X'

	got, ok := c.Get("g1", "giveaways")
	require.True(t, ok)
	assert.Equal(t, byte('{'), got[0])

	got[1] = 'Y'
	again, _ := c.Get("g1", "giveaways")
	assert.Equal(t, byte('"'), again[1])
}
