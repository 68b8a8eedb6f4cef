package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRUInvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		c, err := NewLRU[string, int](size)
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrInvalidSize)
	}
}

func TestLRUGetPut(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Put("a", 1)
	c.Put("a", 2)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Size())
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	// touch a so b becomes the eviction candidate
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Evictions())
	assert.Equal(t, 2, c.Len())
}

func TestLRURemoveAndPurge(t *testing.T) {
	c, err := NewLRU[string, int](4)
	require.NoError(t, err)

	c.Put("a", 1)
	c.Put("b", 2)
	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"))
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(0), c.Evictions())
}

func TestLRUConcurrentAccess(t *testing.T) {
	c, err := NewLRU[string, int](16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%32)
				c.Put(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
