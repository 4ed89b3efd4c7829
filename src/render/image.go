package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// ImageAccess is anything an image view can be built on: an Image or a
// SwapchainImage.
type ImageAccess interface {
	Object
	Device() *Device
	Properties() ImageProperties
}

// Image is an image bound to its own allocation.
type Image struct {
	object[ImageProperties]
	device *Device
	memory *Allocation
}

var _ ImageAccess = (*Image)(nil)

type ImageProperties struct {
	Flags              native.ImageCreateFlags
	ImageType          native.ImageType
	Format             native.Format
	Extent             native.Extent3D
	MipLevels          uint32
	ArrayLayers        uint32
	Samples            native.SampleCountFlags
	Tiling             native.ImageTiling
	Usage              native.ImageUsageFlags
	SharingMode        native.SharingMode
	QueueFamilyIndices []uint32
	InitialLayout      native.ImageLayout
}

// DefaultImageProperties describes a single sampled 2D image.
//
// One mip level, one layer, one sample, optimal tiling, exclusive sharing
// and an undefined initial layout are always valid. Sampled plus transfer
// destination usage is a convenience default.
func DefaultImageProperties(format native.Format, width, height uint32) ImageProperties {
	return ImageProperties{
		ImageType:     native.ImageType2D,
		Format:        format,
		Extent:        native.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       native.SampleCount1,
		Tiling:        native.ImageTilingOptimal,
		Usage:         native.ImageUsageSampled | native.ImageUsageTransferDst,
		SharingMode:   native.SharingModeExclusive,
		InitialLayout: native.ImageLayoutUndefined,
	}
}

func (p ImageProperties) Clone() ImageProperties {
	p.QueueFamilyIndices = slices.Clone(p.QueueFamilyIndices)
	return p
}

func (p ImageProperties) CreateInfo() native.ImageCreateInfo {
	return native.ImageCreateInfo{
		Flags:              p.Flags,
		ImageType:          p.ImageType,
		Format:             p.Format,
		Extent:             p.Extent,
		MipLevels:          p.MipLevels,
		ArrayLayers:        p.ArrayLayers,
		Samples:            p.Samples,
		Tiling:             p.Tiling,
		Usage:              p.Usage,
		SharingMode:        p.SharingMode,
		QueueFamilyIndices: slices.Clone(p.QueueFamilyIndices),
		InitialLayout:      p.InitialLayout,
	}
}

func ImagePropertiesFromCreateInfo(info *native.ImageCreateInfo) ImageProperties {
	return ImageProperties{
		Flags:              info.Flags,
		ImageType:          info.ImageType,
		Format:             info.Format,
		Extent:             info.Extent,
		MipLevels:          info.MipLevels,
		ArrayLayers:        info.ArrayLayers,
		Samples:            info.Samples,
		Tiling:             info.Tiling,
		Usage:              info.Usage,
		SharingMode:        info.SharingMode,
		QueueFamilyIndices: slices.Clone(info.QueueFamilyIndices),
		InitialLayout:      info.InitialLayout,
	}
}

// Aspect returns the aspects the image's format has.
func (p ImageProperties) Aspect() native.ImageAspectFlags {
	switch p.Format {
	case native.FormatD16Unorm, native.FormatD32Sfloat:
		return native.ImageAspectDepth
	case native.FormatD24UnormS8Uint:
		return native.ImageAspectDepth | native.ImageAspectStencil
	default:
		return native.ImageAspectColor
	}
}

// FullRange returns a subresource range covering every mip level and layer.
func (p ImageProperties) FullRange() native.ImageSubresourceRange {
	return native.ImageSubresourceRange{
		AspectMask: p.Aspect(),
		LevelCount: p.MipLevels,
		LayerCount: p.ArrayLayers,
	}
}

// NewImage creates an image on the allocator's device and backs it with a
// fresh allocation.
func NewImage(allocator *Allocator, props ImageProperties, memory AllocationProperties) (*Image, error) {
	return newImage(memorySource{allocator: allocator}, props, memory)
}

// NewPoolImage is NewImage with memory taken from pool.
func NewPoolImage(pool *MemoryPool, props ImageProperties, memory AllocationProperties) (*Image, error) {
	if pool == nil {
		return nil, reject(KindImage, mismatch(KindImage, "pool", MismatchNil))
	}
	return newImage(fromPool(pool), props, memory)
}

func newImage(src memorySource, props ImageProperties, memory AllocationProperties) (*Image, error) {
	info := props.CreateInfo()
	var drv native.Driver
	if src.allocator != nil {
		drv = src.allocator.drv
	}
	cell, device, mem, deps, err := createBound(KindImage, src, memory, boundResource{
		create:       func(dev native.Handle) (native.Handle, native.Result) { return drv.CreateImage(dev, &info) },
		destroy:      func(dev, raw native.Handle) { drv.DestroyImage(dev, raw) },
		requirements: func(dev, raw native.Handle) native.MemoryRequirements { return drv.GetImageMemoryRequirements(dev, raw) },
		bind:         func(dev, raw, mem native.Handle, off uint64) native.Result { return drv.BindImageMemory(dev, raw, mem, off) },
	})
	if err != nil {
		return nil, err
	}
	img := &Image{device: device, memory: mem}
	img.init(KindImage, drv, props, cell, deps)
	return track(img), nil
}

func (i *Image) Retain() *Image { i.retain(); return i }

func (i *Image) Device() *Device { return i.device }

// Memory returns the allocation backing i.
func (i *Image) Memory() *Allocation { return i.memory }
