package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// Swapchain presents images to a surface.
type Swapchain struct {
	object[SwapchainProperties]
	device  *Device
	surface *Surface
	// images are owned by the native swapchain; wrappers for them are made
	// on demand by Images so that they can hold the swapchain.
	images []native.Handle
}

type SwapchainProperties struct {
	MinImageCount      uint32
	Format             native.Format
	ColorSpace         native.ColorSpace
	Extent             native.Extent2D
	ArrayLayers        uint32
	Usage              native.ImageUsageFlags
	SharingMode        native.SharingMode
	QueueFamilyIndices []uint32
	PreTransform       native.SurfaceTransformFlags
	CompositeAlpha     native.CompositeAlphaFlags
	PresentMode        native.PresentMode
	Clipped            bool
}

// DefaultSwapchainProperties describes a double buffered sRGB swapchain of
// extent.
//
// Fifo presentation, exclusive sharing, one array layer, identity transform
// and color attachment usage are guaranteed to be supported. The format,
// color space and opaque composite alpha are common but not universal;
// check them against the surface.
func DefaultSwapchainProperties(extent native.Extent2D) SwapchainProperties {
	return SwapchainProperties{
		MinImageCount:  2,
		Format:         native.FormatB8G8R8A8Srgb,
		ColorSpace:     native.ColorSpaceSrgbNonlinear,
		Extent:         extent,
		ArrayLayers:    1,
		Usage:          native.ImageUsageColorAttachment,
		SharingMode:    native.SharingModeExclusive,
		PreTransform:   native.SurfaceTransformIdentity,
		CompositeAlpha: native.CompositeAlphaOpaque,
		PresentMode:    native.PresentModeFifo,
		Clipped:        true,
	}
}

func (p SwapchainProperties) Clone() SwapchainProperties {
	p.QueueFamilyIndices = slices.Clone(p.QueueFamilyIndices)
	return p
}

func (p SwapchainProperties) CreateInfo(surface, old native.Handle) native.SwapchainCreateInfo {
	return native.SwapchainCreateInfo{
		Surface:            surface,
		OldSwapchain:       old,
		MinImageCount:      p.MinImageCount,
		ImageFormat:        p.Format,
		ImageColorSpace:    p.ColorSpace,
		ImageExtent:        p.Extent,
		ImageArrayLayers:   p.ArrayLayers,
		ImageUsage:         p.Usage,
		ImageSharingMode:   p.SharingMode,
		QueueFamilyIndices: slices.Clone(p.QueueFamilyIndices),
		PreTransform:       p.PreTransform,
		CompositeAlpha:     p.CompositeAlpha,
		PresentMode:        p.PresentMode,
		Clipped:            p.Clipped,
	}
}

func SwapchainPropertiesFromCreateInfo(info *native.SwapchainCreateInfo) SwapchainProperties {
	return SwapchainProperties{
		MinImageCount:      info.MinImageCount,
		Format:             info.ImageFormat,
		ColorSpace:         info.ImageColorSpace,
		Extent:             info.ImageExtent,
		ArrayLayers:        info.ImageArrayLayers,
		Usage:              info.ImageUsage,
		SharingMode:        info.ImageSharingMode,
		QueueFamilyIndices: slices.Clone(info.QueueFamilyIndices),
		PreTransform:       info.PreTransform,
		CompositeAlpha:     info.CompositeAlpha,
		PresentMode:        info.PresentMode,
		Clipped:            info.Clipped,
	}
}

// NewSwapchain creates a swapchain for surface. The surface must come from
// the device's instance.
func NewSwapchain(device *Device, surface *Surface, props SwapchainProperties) (*Swapchain, error) {
	return newSwapchain(device, surface, nil, props)
}

// Recreate builds a replacement swapchain, typically after a resize, passing
// s as the old swapchain. s is only used during the call: the caller still
// holds its reference and releases it once nothing presents from it.
func (s *Swapchain) Recreate(props SwapchainProperties) (*Swapchain, error) {
	return newSwapchain(s.device, s.surface, s, props)
}

func newSwapchain(device *Device, surface *Surface, old *Swapchain, props SwapchainProperties) (*Swapchain, error) {
	held, err := acquire(KindSwapchain,
		func() error {
			if surface.Instance() != device.Instance() {
				return mismatch(KindSwapchain, "surface", MismatchLineage)
			}
			if old != nil && (old.device != device || old.surface != surface) {
				return mismatch(KindSwapchain, "old swapchain", MismatchLineage)
			}
			return nil
		},
		need("device", device),
		need("surface", surface),
		maybe("old swapchain", old),
	)
	if err != nil {
		return nil, err
	}
	if old != nil {
		defer old.Release()
		held = held[:2]
	}

	drv := device.drv
	oldRaw := native.NullHandle
	if old != nil {
		oldRaw = old.Handle()
	}
	info := props.CreateInfo(surface.Handle(), oldRaw)
	cell, err := createCell(KindSwapchain,
		func() (native.Handle, native.Result) { return drv.CreateSwapchain(device.Handle(), &info) },
		destroyed(func(raw native.Handle) { drv.DestroySwapchain(device.Handle(), raw) }),
	)
	if err != nil {
		releaseAll(held)
		return nil, err
	}
	images, res := drv.GetSwapchainImages(device.Handle(), cell.Raw())
	if IsError(res) {
		discard(KindSwapchain, cell)
		releaseAll(held)
		return nil, failed(KindSwapchainImage, res)
	}

	s := &Swapchain{device: device, surface: surface, images: images}
	s.init(KindSwapchain, drv, props, cell, held)
	return track(s), nil
}

func (s *Swapchain) Retain() *Swapchain { s.retain(); return s }

func (s *Swapchain) Device() *Device { return s.device }

func (s *Swapchain) Surface() *Surface { return s.surface }

// ImageCount returns the number of images the driver created.
func (s *Swapchain) ImageCount() int { return len(s.images) }

// Images returns a wrapper for every swapchain image. Each one holds a
// reference on s and must be released by the caller.
func (s *Swapchain) Images() ([]*SwapchainImage, error) {
	imgs := make([]*SwapchainImage, 0, len(s.images))
	for i, raw := range s.images {
		img, err := newSwapchainImage(s, uint32(i), raw)
		if err != nil {
			for _, im := range imgs {
				im.Release()
			}
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

// SwapchainImage is one presentable image. Its memory belongs to the
// swapchain, so it is never destroyed on its own.
type SwapchainImage struct {
	object[ImageProperties]
	swapchain *Swapchain
	index     uint32
}

var _ ImageAccess = (*SwapchainImage)(nil)

func newSwapchainImage(s *Swapchain, index uint32, raw native.Handle) (*SwapchainImage, error) {
	held, err := acquire(KindSwapchainImage, nil, need("swapchain", s))
	if err != nil {
		return nil, err
	}
	sp := s.props
	props := ImageProperties{
		ImageType:          native.ImageType2D,
		Format:             sp.Format,
		Extent:             native.Extent3D{Width: sp.Extent.Width, Height: sp.Extent.Height, Depth: 1},
		MipLevels:          1,
		ArrayLayers:        sp.ArrayLayers,
		Samples:            native.SampleCount1,
		Tiling:             native.ImageTilingOptimal,
		Usage:              sp.Usage,
		SharingMode:        sp.SharingMode,
		QueueFamilyIndices: sp.QueueFamilyIndices,
		InitialLayout:      native.ImageLayoutUndefined,
	}
	img := &SwapchainImage{swapchain: s, index: index}
	img.init(KindSwapchainImage, s.drv, props, adopt(KindSwapchainImage, raw, nil), held)
	return track(img), nil
}

func (i *SwapchainImage) Retain() *SwapchainImage { i.retain(); return i }

func (i *SwapchainImage) Swapchain() *Swapchain { return i.swapchain }

func (i *SwapchainImage) Device() *Device { return i.swapchain.device }

// Index is the position of the image in the swapchain.
func (i *SwapchainImage) Index() uint32 { return i.index }
