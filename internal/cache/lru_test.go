package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestLRU_BasicGetPut(t *testing.T) {
	c := New[string, int](3, 0, nil)

	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_Eviction(t *testing.T) {
	c := New[string, int](2, 0, nil)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok, "a should have been evicted")
	assert.Equal(t, 2, c.Len())
}

func TestLRU_AccessPromotesEntry(t *testing.T) {
	c := New[string, int](2, 0, nil)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := New[string, int](2, 0, nil)

	c.Put("a", 1)
	c.Put("a", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Expiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := New[string, int](4, time.Minute, clk)

	c.Put("a", 1)
	clk.Advance(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry expires once ttl has elapsed")
	assert.Equal(t, 0, c.Len())
}

func TestLRU_PutRefreshesExpiry(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := New[string, int](4, time.Minute, clk)

	c.Put("a", 1)
	clk.Advance(50 * time.Second)
	c.Put("a", 2)
	clk.Advance(50 * time.Second)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRU_Delete(t *testing.T) {
	c := New[string, int](2, 0, nil)
	c.Put("a", 1)

	c.Delete("a")
	c.Delete("missing")

	_, ok := c.Get("a")
	assert.False(t, ok)
}
