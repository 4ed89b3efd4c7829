package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vkgraph/src/render/native"
)

func TestContextGraph(t *testing.T) {
	drv, c := newContext(t)

	require.Nil(t, c.DebugMessenger())
	require.Equal(t, native.PhysicalDeviceTypeDiscreteGPU, c.PhysicalDevice().Properties().Type)
	require.Equal(t, c.Instance(), c.PhysicalDevice().Instance())
	require.Equal(t, c.PhysicalDevice(), c.Device().PhysicalDevice())
	require.Equal(t, c.Device(), c.Queue().Device())
	require.Equal(t, c.Device(), c.Allocator().Device())
	require.Equal(t, c.Device(), c.CommandPool().Device())
	require.Equal(t, c.Queue().Family(), c.CommandPool().Properties().QueueFamilyIndex)

	// Only the chosen physical device is still referenced.
	pds := 0
	for _, info := range LiveObjects() {
		if info.Kind == KindPhysicalDevice.String() && contains(info.Dependencies, c.Instance().ID().String()) {
			pds++
		}
	}
	require.Equal(t, 1, pds)
	require.NotEmpty(t, drv.Live())
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestContextCloseKeepsRetainedObjects(t *testing.T) {
	drv := newDriver(t)
	c, err := NewContext(drv, drv, DefaultContextOptions())
	require.NoError(t, err)

	var order []string
	c.SetOnCleanup(func() error { order = append(order, "first"); return nil })
	c.SetOnCleanup(func() error { order = append(order, "second"); return errCleanup })

	dev := c.Device().Retain()
	err = c.Close()
	require.ErrorIs(t, err, errCleanup)
	require.Equal(t, []string{"second", "first"}, order)
	require.NoError(t, c.Close())

	require.True(t, drv.IsLive(dev.Handle()))
	require.EqualValues(t, 1, dev.Refs())
	dev.Release()
	require.Empty(t, drv.Live())
}

var errCleanup = errors.New("cleanup failed")

func TestContextDebugMessenger(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(obs))
	defer SetLogger(nil)

	drv := newDriver(t)
	opts := DefaultContextOptions()
	opts.Debug = true
	opts.Messenger.Severity |= native.DebugSeverityInfo
	c, err := NewContext(drv, drv, opts)
	require.NoError(t, err)

	require.NotNil(t, c.DebugMessenger())
	require.Equal(t, c.DebugMessenger(), c.Device().DebugMessenger())
	require.Equal(t, 1, logs.FilterMessage("nativetest: messenger attached").Len())
	require.Equal(t, 1, logs.FilterMessage("context ready").Len())

	// The device keeps the messenger alive until it is gone itself.
	messenger := c.DebugMessenger().Handle()
	device := c.Device().Handle()
	require.NoError(t, c.Close())
	destroyed := drv.Destroyed()
	require.Less(t, indexOf(destroyed, device), indexOf(destroyed, messenger))
	require.Empty(t, drv.Live())
}

func indexOf(hs []native.Handle, h native.Handle) int {
	for i, v := range hs {
		if v == h {
			return i
		}
	}
	return -1
}

func TestContextFailureReleasesPartialGraph(t *testing.T) {
	for _, op := range []string{"CreateInstance", "EnumeratePhysicalDevices", "CreateDevice", "CreateAllocator", "CreateCommandPool"} {
		t.Run(op, func(t *testing.T) {
			drv := newDriver(t)
			before := len(LiveObjects())

			drv.Fail(op, native.ErrorInitializationFailed)
			c, err := NewContext(drv, drv, DefaultContextOptions())
			require.Nil(t, c)
			require.ErrorIs(t, err, native.ErrorInitializationFailed)

			require.Empty(t, drv.Live())
			require.Len(t, LiveObjects(), before)
		})
	}
}

func TestContextFailureWithMessengerReturnsError(t *testing.T) {
	for _, op := range []string{"CreateDebugMessenger", "CreateDevice", "CreateCommandPool"} {
		t.Run(op, func(t *testing.T) {
			drv := newDriver(t)
			opts := DefaultContextOptions()
			opts.Debug = true

			drv.Fail(op, native.ErrorOutOfHostMemory)
			var (
				c   *Context
				err error
			)
			require.NotPanics(t, func() { c, err = NewContext(drv, drv, opts) })
			require.Nil(t, c)
			require.ErrorIs(t, err, native.ErrorOutOfHostMemory)
			require.Empty(t, drv.Live())
		})
	}
}

func TestContextNoSuitableDevice(t *testing.T) {
	drv := newDriver(t)
	opts := DefaultContextOptions()
	opts.DeviceExtensions = []string{"VK_EXT_missing"}

	_, err := NewContext(drv, drv, opts)
	require.ErrorIs(t, err, ErrNoSuitableDevice)
	require.Empty(t, drv.Live())
}
