package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyStable(t *testing.T) {
	assert.Equal(t, Key("analysis", "abc"), Key("analysis", "abc"))
	assert.NotEqual(t, Key("analysis", "abc"), Key("analysis", "abd"))
	assert.Len(t, Key("x"), 32)
}

func TestGetSet(t *testing.T) {
	c := New(10, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Len())
}

func TestTTLExpiry(t *testing.T) {
	c := New(10, time.Minute)
	c.SetTTL("k", "v", 10*time.Millisecond)

	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUEviction(t *testing.T) {
	c := New(3, time.Minute)
	c.Set("a", 1)
	time.Sleep(time.Millisecond)
	c.Set("b", 2)
	time.Sleep(time.Millisecond)
	c.Set("c", 3)
	time.Sleep(time.Millisecond)

	// Touch "a" so "b" becomes the LRU entry.
	_, ok := c.Get("a")
	require.True(t, ok)
	time.Sleep(time.Millisecond)

	c.Set("d", 4)
	assert.Equal(t, 3, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("d")
	assert.True(t, ok)
}

func TestCleanupExpired(t *testing.T) {
	c := New(10, time.Minute)
	for i := 0; i < 5; i++ {
		c.SetTTL(fmt.Sprintf("old-%d", i), i, 5*time.Millisecond)
	}
	c.Set("fresh", "v")

	time.Sleep(10 * time.Millisecond)
	removed := c.CleanupExpired()
	assert.Equal(t, 5, removed)
	assert.Equal(t, 1, c.Len())
}

func TestClear(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("k", "v")
	c.Clear()
	assert.Equal(t, 0, c.Len())
}
