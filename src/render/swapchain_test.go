package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
	"vkgraph/src/render/native/nativetest"
)

func newSurface(t *testing.T, drv *nativetest.Driver, inst *Instance) *Surface {
	t.Helper()
	s, err := AdoptSurface(inst, drv.CreateSurface(inst.Handle()), SurfaceProperties{
		Extent:       native.Extent2D{Width: 800, Height: 600},
		Formats:      []native.Format{native.FormatB8G8R8A8Srgb},
		PresentModes: []native.PresentMode{native.PresentModeFifo},
	})
	require.NoError(t, err)
	return s
}

func TestSwapchainImagesAndRecreate(t *testing.T) {
	drv, c := newContext(t)
	surface := newSurface(t, drv, c.Instance())

	sc, err := NewSwapchain(c.Device(), surface, DefaultSwapchainProperties(native.Extent2D{Width: 800, Height: 600}))
	require.NoError(t, err)
	surface.Release()
	require.EqualValues(t, 1, surface.Refs())
	require.Equal(t, 2, sc.ImageCount())

	imgs, err := sc.Images()
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	var views []*ImageView
	for i, img := range imgs {
		require.EqualValues(t, i, img.Index())
		require.Equal(t, c.Device(), img.Device())
		require.EqualValues(t, 800, img.Properties().Extent.Width)
		v, err := NewImageView(img, ImageViewPropertiesFor(img.Properties()))
		require.NoError(t, err)
		views = append(views, v)
	}
	require.EqualValues(t, 3, sc.Refs())

	props := sc.Derive(func(p *SwapchainProperties) {
		p.Extent = native.Extent2D{Width: 1024, Height: 768}
	})
	next, err := sc.Recreate(props)
	require.NoError(t, err)
	require.EqualValues(t, 3, sc.Refs(), "the old swapchain is only used during the call")
	require.EqualValues(t, 2, surface.Refs())
	require.Equal(t, surface, next.Surface())
	require.EqualValues(t, 1024, next.Properties().Extent.Width)

	old := sc.Handle()
	sc.Release()
	require.True(t, drv.IsLive(old), "images still hold the old swapchain")
	for i := range imgs {
		views[i].Release()
		imgs[i].Release()
	}
	require.False(t, drv.IsLive(old))
	require.True(t, drv.IsLive(surface.Handle()))

	next.Release()
	require.False(t, drv.IsLive(surface.Handle()))
	destroyed := drv.Destroyed()
	require.Equal(t, []native.Handle{next.Handle(), surface.Handle()}, destroyed[len(destroyed)-2:])
}

func TestSwapchainSurfaceFromOtherInstance(t *testing.T) {
	drv, c := newContext(t)

	other, err := NewInstance(drv, DefaultInstanceProperties())
	require.NoError(t, err)
	defer other.Release()
	surface := newSurface(t, drv, other)
	defer surface.Release()

	n := eventCount(drv)
	_, err = NewSwapchain(c.Device(), surface, DefaultSwapchainProperties(native.Extent2D{Width: 1, Height: 1}))
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, "surface", me.Dependency)
	require.Equal(t, MismatchLineage, me.Reason)
	require.Equal(t, n, eventCount(drv))
}

func TestSwapchainImageQueryFails(t *testing.T) {
	drv, c := newContext(t)
	surface := newSurface(t, drv, c.Instance())
	defer surface.Release()

	drv.Fail("GetSwapchainImages", native.ErrorSurfaceLost)
	_, err := NewSwapchain(c.Device(), surface, DefaultSwapchainProperties(native.Extent2D{Width: 1, Height: 1}))
	drv.Clear()

	var ce *CreationError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindSwapchainImage, ce.Kind)
	require.Equal(t, 1, drv.Calls("DestroySwapchain"))
	require.EqualValues(t, 1, surface.Refs())
}

func TestAdoptNullSurface(t *testing.T) {
	_, c := newContext(t)
	refs := c.Instance().Refs()
	_, err := AdoptSurface(c.Instance(), native.NullHandle, SurfaceProperties{})
	require.ErrorIs(t, err, native.ErrorSurfaceLost)
	require.Equal(t, refs, c.Instance().Refs())
}
