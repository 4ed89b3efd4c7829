package refcount

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLifecycle(t *testing.T) {
	var c Count
	require.False(t, c.TryRetain(), "zero count must not be retainable")

	c.Init()
	require.EqualValues(t, 1, c.Load())

	c.Retain()
	require.True(t, c.TryRetain())
	require.EqualValues(t, 3, c.Load())

	require.False(t, c.Release())
	require.False(t, c.Release())
	require.True(t, c.Release())
	require.EqualValues(t, 0, c.Load())

	require.False(t, c.TryRetain())
	require.Panics(t, func() { c.Retain() })
}

func TestCountOverRelease(t *testing.T) {
	var c Count
	c.Init()
	require.True(t, c.Release())
	require.Panics(t, func() { c.Release() })
}

func TestCountConcurrent(t *testing.T) {
	const workers, rounds = 16, 1000

	var c Count
	c.Init()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				assert.True(t, c.TryRetain())
				assert.False(t, c.Release())
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, c.Load())
	require.True(t, c.Release())
}

func TestCountSingleLastRelease(t *testing.T) {
	const holders = 64

	var c Count
	c.Init()
	for i := 1; i < holders; i++ {
		c.Retain()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		last int
	)
	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Release() {
				mu.Lock()
				last++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, last)
}
