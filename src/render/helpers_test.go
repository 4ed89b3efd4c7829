package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
	"vkgraph/src/render/native/nativetest"
	"vkgraph/src/render/refcount"
)

// newDriver returns a fake driver that fails the test if it saw any
// ordering violation by the end of it.
func newDriver(t *testing.T) *nativetest.Driver {
	t.Helper()
	drv := nativetest.New()
	t.Cleanup(func() {
		require.Empty(t, drv.Violations())
	})
	return drv
}

// newContext builds a Context on a fresh fake and checks on cleanup that
// closing it leaves nothing alive.
func newContext(t *testing.T) (*nativetest.Driver, *Context) {
	t.Helper()
	drv := newDriver(t)
	c, err := NewContext(drv, drv, DefaultContextOptions())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, c.Close())
		require.Empty(t, drv.Live())
	})
	return drv, c
}

// newDevice builds the instance, physical device and device chain by hand.
// The caller owns the returned device; the other links are only held by it.
func newDevice(t *testing.T, drv native.Driver) *Device {
	t.Helper()
	inst, err := NewInstance(drv, DefaultInstanceProperties())
	require.NoError(t, err)
	pds, err := inst.EnumeratePhysicalDevices()
	require.NoError(t, err)
	inst.Release()
	for _, pd := range pds[1:] {
		pd.Release()
	}
	family, ok := pds[0].QueueFamily(native.QueueGraphics)
	require.True(t, ok)
	dev, err := NewDevice(pds[0], nil, DefaultDeviceProperties(family))
	require.NoError(t, err)
	pds[0].Release()
	return dev
}

// eventCount is shorthand for the length of the fake's call log.
func eventCount(drv *nativetest.Driver) int { return len(drv.Events()) }

// stub is a bare object of kind k that is never backed by a native handle.
func stub(k Kind) *core {
	c := &core{kind: k, refs: new(refcount.Count)}
	c.refs.Init()
	return c
}

// stubImage passes for an ImageAccess of any kind.
type stubImage struct{ *core }

func (stubImage) Device() *Device { return nil }

func (stubImage) Properties() ImageProperties { return ImageProperties{} }

func testSPIRV() []uint32 {
	return []uint32{spirvMagic, 0x00010000, 0, 1, 0}
}

func newShader(t *testing.T, device *Device) *ShaderModule {
	t.Helper()
	m, err := NewShaderModule(device, ShaderModuleProperties{Code: testSPIRV()})
	require.NoError(t, err)
	return m
}
