package handle

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
)

func TestCellReleaseOnce(t *testing.T) {
	var calls []native.Handle
	c := New(42, func(raw native.Handle) error {
		calls = append(calls, raw)
		return nil
	})

	require.Equal(t, native.Handle(42), c.Raw())
	require.True(t, c.Live())

	require.NoError(t, c.Release())
	require.ErrorIs(t, c.Release(), ErrReleased)
	require.False(t, c.Live())
	require.Equal(t, []native.Handle{42}, calls)
	// Raw keeps returning the stale value; it never extends the lifetime.
	require.Equal(t, native.Handle(42), c.Raw())
}

func TestCellConcurrentRelease(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	c := New(7, func(native.Handle) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Release()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, calls)
}

func TestCellDestroyError(t *testing.T) {
	boom := errors.New("boom")
	c := New(1, func(native.Handle) error { return boom })
	require.ErrorIs(t, c.Release(), boom)
	require.False(t, c.Live())
}

func TestCellWithoutDestroy(t *testing.T) {
	c := New(9, nil)
	require.NoError(t, c.Release())

	n := New(native.NullHandle, func(native.Handle) error {
		t.Fatal("null handle must not be destroyed")
		return nil
	})
	require.NoError(t, n.Release())
}

func TestCreate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		raw    native.Handle
		res    native.Result
		wantOK bool
	}{
		{"success", 5, native.Success, true},
		{"native error", native.NullHandle, native.ErrorOutOfDeviceMemory, false},
		{"null handle", native.NullHandle, native.Success, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			destroyed := false
			c, res := Create(func() (native.Handle, native.Result) {
				return tc.raw, tc.res
			}, func(native.Handle) error {
				destroyed = true
				return nil
			})
			if !tc.wantOK {
				require.Nil(t, c)
				require.True(t, res.IsError())
				require.False(t, destroyed)
				return
			}
			require.NotNil(t, c)
			require.Equal(t, tc.raw, c.Raw())
			require.NoError(t, c.Release())
			require.True(t, destroyed)
		})
	}
}
