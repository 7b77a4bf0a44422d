package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	_, ok := c.Get("Flyers!A2:H")
	assert.False(t, ok)

	rows := [][]string{{"1", "Spring Show"}, {"2", "Open Mic"}}
	require.NoError(t, c.Set("Flyers!A2:H", rows))

	got, ok := c.Get("Flyers!A2:H")
	require.True(t, ok)
	assert.Equal(t, rows, got)

	_, ok = c.Get("Organizations!A2:D")
	assert.False(t, ok, "ranges must not share entries")
}

func TestCacheExpiry(t *testing.T) {
	c, err := New(t.TempDir(), time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("Flyers!A2:H", [][]string{{"1"}}))

	now = now.Add(30 * time.Second)
	_, ok := c.Get("Flyers!A2:H")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("Flyers!A2:H")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Set("a", [][]string{{"1"}}))
	require.NoError(t, c.Set("b", [][]string{{"2"}}))

	require.NoError(t, c.Invalidate("a"))
	require.NoError(t, c.Invalidate("a"))
	_, ok := c.Get("a")
	assert.False(t, ok)

	_, ok = c.Get("b")
	assert.True(t, ok)
}
