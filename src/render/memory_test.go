package render

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vkgraph/src/render/metrics"
	"vkgraph/src/render/native"
)

func TestBufferLifecycle(t *testing.T) {
	drv, c := newContext(t)
	alloc := c.Allocator()

	b, err := NewBuffer(alloc, DefaultBufferProperties(128), HostAllocationProperties())
	require.NoError(t, err)
	require.Equal(t, c.Device(), b.Device())
	require.EqualValues(t, 128, b.Size())

	mem := b.Memory()
	require.True(t, mem.HostVisible())
	require.EqualValues(t, 256, mem.Size())
	require.EqualValues(t, 1, mem.Refs())
	require.EqualValues(t, 2, alloc.Refs())

	view, err := NewBufferView(b, DefaultBufferViewProperties(native.FormatR32Sfloat))
	require.NoError(t, err)
	require.Equal(t, c.Device(), view.Device())

	buffer, memory := b.Handle(), mem.Handle()
	b.Release()
	require.True(t, drv.IsLive(buffer), "the view still holds the buffer")

	view.Release()
	destroyed := drv.Destroyed()
	require.Equal(t, []native.Handle{view.Handle(), buffer, memory}, destroyed[len(destroyed)-3:])
	require.EqualValues(t, 1, alloc.Refs())
}

func TestAllocationReadWrite(t *testing.T) {
	_, c := newContext(t)

	b, err := NewBuffer(c.Allocator(), DefaultBufferProperties(64), HostAllocationProperties())
	require.NoError(t, err)
	defer b.Release()

	require.NoError(t, b.Write(16, []byte("vkgraph")))
	got, err := b.Read(16, 7)
	require.NoError(t, err)
	require.Equal(t, []byte("vkgraph"), got)

	size := b.Memory().Size()
	for _, tc := range []struct {
		name   string
		offset uint64
		n      uint64
	}{
		{"past end", size - 2, 4},
		{"offset beyond", size + 1, 0},
		{"overflow", ^uint64(0), 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Read(tc.offset, tc.n)
			var se *AccessSizeError
			require.ErrorAs(t, err, &se)
			require.Equal(t, size, se.Size)

			err = b.Write(tc.offset, make([]byte, tc.n))
			if tc.n > 0 {
				require.ErrorAs(t, err, &se)
			}
		})
	}

	_, err = b.Read(size, 0)
	require.NoError(t, err)
}

func TestDeviceLocalMemoryCannotBeMapped(t *testing.T) {
	_, c := newContext(t)

	b, err := NewBuffer(c.Allocator(), DefaultBufferProperties(64), DefaultAllocationProperties())
	require.NoError(t, err)
	defer b.Release()

	require.False(t, b.Memory().HostVisible())
	require.ErrorIs(t, b.Write(0, []byte{1}), native.ErrorMemoryMapFailed)
}

func TestBufferFailurePaths(t *testing.T) {
	for _, tc := range []struct {
		op          string
		wantDestroy int
		check       func(t *testing.T, err error)
	}{
		{"CreateBuffer", 0, func(t *testing.T, err error) {
			var ce *CreationError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, KindBuffer, ce.Kind)
		}},
		{"Allocate", 1, func(t *testing.T, err error) {
			var ae *AllocationError
			require.ErrorAs(t, err, &ae)
			require.EqualValues(t, 256, ae.Size)
		}},
		{"BindBufferMemory", 1, func(t *testing.T, err error) {
			var ce *CreationError
			require.ErrorAs(t, err, &ce)
			require.ErrorIs(t, err, native.ErrorOutOfDeviceMemory)
		}},
	} {
		t.Run(tc.op, func(t *testing.T) {
			drv, c := newContext(t)
			alloc, dev := c.Allocator(), c.Device()
			before := len(LiveObjects())
			live := len(drv.Live())

			drv.Fail(tc.op, native.ErrorOutOfDeviceMemory)
			b, err := NewBuffer(alloc, DefaultBufferProperties(64), HostAllocationProperties())
			drv.Clear()
			require.Nil(t, b)
			tc.check(t, err)

			require.EqualValues(t, 1, alloc.Refs())
			require.EqualValues(t, 4, dev.Refs(), "held by the context, queue, allocator and command pool")
			require.Len(t, LiveObjects(), before)
			require.Len(t, drv.Live(), live)
			require.Equal(t, tc.wantDestroy, drv.Calls("DestroyBuffer"))
			if tc.op == "BindBufferMemory" {
				require.Equal(t, 1, drv.Calls("Free"))
			}
		})
	}
}

func TestBindFailureIsReported(t *testing.T) {
	drv, c := newContext(t)
	m := metrics.NewCollector("vkgraph")
	SetMetrics(m)
	defer SetMetrics(nil)
	obs, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(obs))
	defer SetLogger(nil)

	drv.Fail("BindBufferMemory", native.ErrorOutOfDeviceMemory)
	_, err := NewBuffer(c.Allocator(), DefaultBufferProperties(64), HostAllocationProperties())
	drv.Clear()
	require.ErrorIs(t, err, native.ErrorOutOfDeviceMemory)

	const want = `
# HELP vkgraph_objects_creation_failures_total Total number of failed creations by native result
# TYPE vkgraph_objects_creation_failures_total counter
vkgraph_objects_creation_failures_total{kind="Buffer",result="VK_ERROR_OUT_OF_DEVICE_MEMORY"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(want),
		"vkgraph_objects_creation_failures_total"))

	failed := logs.FilterMessage("create failed").All()
	require.Len(t, failed, 1)
	require.Equal(t, "Buffer", failed[0].ContextMap()["kind"])
}

func TestImageMemory(t *testing.T) {
	drv, c := newContext(t)

	img, err := NewImage(c.Allocator(), DefaultImageProperties(native.FormatR8G8B8A8Unorm, 64, 64), DefaultAllocationProperties())
	require.NoError(t, err)
	require.EqualValues(t, 4096, img.Memory().Size())
	require.NotZero(t, img.Memory().MemoryPropertyFlags()&native.MemoryPropertyDeviceLocal)

	view, err := NewImageView(img, ImageViewPropertiesFor(img.Properties()))
	require.NoError(t, err)
	require.Equal(t, native.ImageViewType2D, view.Properties().ViewType)
	require.Equal(t, native.ImageAspectColor, view.Properties().SubresourceRange.AspectMask)
	require.Equal(t, ImageAccess(img), view.Image())
	img.Release()
	view.Release()

	// Image memory only comes in the device local type, so host visible
	// memory cannot be found.
	before := eventCount(drv)
	_, err = NewImage(c.Allocator(), DefaultImageProperties(native.FormatR8G8B8A8Unorm, 8, 8), HostAllocationProperties())
	var ae *AllocationError
	require.ErrorAs(t, err, &ae)
	require.Greater(t, eventCount(drv), before)
	require.Equal(t, 2, drv.Calls("DestroyImage"))
}

func TestMemoryPool(t *testing.T) {
	drv, c := newContext(t)

	pool, err := NewMemoryPool(c.Allocator(), MemoryPoolProperties{MemoryTypeIndex: 1})
	require.NoError(t, err)
	require.Equal(t, c.Device(), pool.Device())

	b, err := NewPoolBuffer(pool, DefaultBufferProperties(32), AllocationProperties{})
	require.NoError(t, err)
	require.Equal(t, pool, b.Memory().Pool())
	require.True(t, b.Memory().HostVisible())

	a, err := pool.Allocate(native.MemoryRequirements{Size: 512, Alignment: 16, MemoryTypeBits: 0x2}, AllocationProperties{})
	require.NoError(t, err)
	require.EqualValues(t, 512, a.Size())

	// The pool outlives the caller's reference while allocations use it.
	raw := pool.Handle()
	pool.Release()
	require.True(t, drv.IsLive(raw))
	b.Release()
	require.True(t, drv.IsLive(raw))
	a.Release()
	require.False(t, drv.IsLive(raw))

	_, err = NewMemoryPool(c.Allocator(), MemoryPoolProperties{MemoryTypeIndex: 9})
	require.ErrorIs(t, err, native.ErrorFeatureNotPresent)
}

func TestAllocationPoolLineage(t *testing.T) {
	drv, c := newContext(t)

	other, err := NewAllocator(drv, c.Device(), AllocatorProperties{})
	require.NoError(t, err)
	defer other.Release()
	pool, err := NewMemoryPool(other, MemoryPoolProperties{MemoryTypeIndex: 0})
	require.NoError(t, err)
	defer pool.Release()

	n := eventCount(drv)
	_, err = NewAllocation(c.Allocator(), pool, native.MemoryRequirements{Size: 64, MemoryTypeBits: 0x1}, AllocationProperties{})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchLineage, me.Reason)
	require.Equal(t, n, eventCount(drv))
	require.EqualValues(t, 1, pool.Refs())

	_, err = NewPoolBuffer(nil, DefaultBufferProperties(1), AllocationProperties{})
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchNil, me.Reason)
}

func TestNilAllocatorService(t *testing.T) {
	_, c := newContext(t)
	_, err := NewAllocator(nil, c.Device(), AllocatorProperties{})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, "allocator service", me.Dependency)
}
