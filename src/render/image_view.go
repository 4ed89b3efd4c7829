package render

import (
	"vkgraph/src/render/native"
)

// ImageView is a view of an Image or a SwapchainImage.
type ImageView struct {
	object[ImageViewProperties]
	image ImageAccess
}

type ImageViewProperties struct {
	Flags            native.ImageViewCreateFlags
	ViewType         native.ImageViewType
	Format           native.Format
	Components       native.ComponentMapping
	SubresourceRange native.ImageSubresourceRange
}

// ImageViewPropertiesFor returns properties viewing every level and layer of
// an image with the given properties, with identity swizzle. These are
// always valid for the image.
func ImageViewPropertiesFor(img ImageProperties) ImageViewProperties {
	return ImageViewProperties{
		ViewType:         viewTypeFor(img),
		Format:           img.Format,
		SubresourceRange: img.FullRange(),
	}
}

func viewTypeFor(img ImageProperties) native.ImageViewType {
	layered := img.ArrayLayers > 1
	switch img.ImageType {
	case native.ImageType1D:
		if layered {
			return native.ImageViewType1DArray
		}
		return native.ImageViewType1D
	case native.ImageType3D:
		return native.ImageViewType3D
	default:
		if img.Flags&native.ImageCreateCubeCompatible != 0 && img.ArrayLayers == 6 {
			return native.ImageViewTypeCube
		}
		if layered {
			return native.ImageViewType2DArray
		}
		return native.ImageViewType2D
	}
}

func (p ImageViewProperties) Clone() ImageViewProperties { return p }

func (p ImageViewProperties) CreateInfo(image native.Handle) native.ImageViewCreateInfo {
	return native.ImageViewCreateInfo{
		Image:            image,
		Flags:            p.Flags,
		ViewType:         p.ViewType,
		Format:           p.Format,
		Components:       p.Components,
		SubresourceRange: p.SubresourceRange,
	}
}

func ImageViewPropertiesFromCreateInfo(info *native.ImageViewCreateInfo) ImageViewProperties {
	return ImageViewProperties{
		Flags:            info.Flags,
		ViewType:         info.ViewType,
		Format:           info.Format,
		Components:       info.Components,
		SubresourceRange: info.SubresourceRange,
	}
}

// NewImageView creates a view of image. The image must be an Image or a
// SwapchainImage.
func NewImageView(image ImageAccess, props ImageViewProperties) (*ImageView, error) {
	d := needKind("image", image, KindImage, KindSwapchainImage)
	if d.obj == nil {
		image = nil
	}
	v := &ImageView{image: image}
	err := build(&v.object, KindImageView, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo(image.Handle())
			return image.base().drv.CreateImageView(image.Device().Handle(), &info)
		},
		destroyed(func(raw native.Handle) { image.base().drv.DestroyImageView(image.Device().Handle(), raw) }),
		d,
	)
	if err != nil {
		return nil, err
	}
	return track(v), nil
}

func (v *ImageView) Retain() *ImageView { v.retain(); return v }

// Image returns the image the view was built on.
func (v *ImageView) Image() ImageAccess { return v.image }

func (v *ImageView) Device() *Device { return v.image.Device() }
