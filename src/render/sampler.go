package render

import (
	"vkgraph/src/render/native"
)

type Sampler struct {
	object[SamplerProperties]
	device *Device
}

type SamplerProperties struct {
	MagFilter               native.Filter
	MinFilter               native.Filter
	MipmapMode              native.SamplerMipmapMode
	AddressModeU            native.SamplerAddressMode
	AddressModeV            native.SamplerAddressMode
	AddressModeW            native.SamplerAddressMode
	MipLodBias              float32
	AnisotropyEnable        bool
	MaxAnisotropy           float32
	CompareEnable           bool
	CompareOp               native.CompareOp
	MinLod                  float32
	MaxLod                  float32
	BorderColor             native.BorderColor
	UnnormalizedCoordinates bool
}

// DefaultSamplerProperties returns a linear, repeating sampler over every
// mip level.
//
// Anisotropy and compare are off and the lod range is unclamped, which is
// valid on every device. Linear filtering and repeat addressing are
// convenience defaults.
func DefaultSamplerProperties() SamplerProperties {
	return SamplerProperties{
		MagFilter:     native.FilterLinear,
		MinFilter:     native.FilterLinear,
		MipmapMode:    native.SamplerMipmapModeLinear,
		AddressModeU:  native.SamplerAddressModeRepeat,
		AddressModeV:  native.SamplerAddressModeRepeat,
		AddressModeW:  native.SamplerAddressModeRepeat,
		MaxAnisotropy: 1,
		CompareOp:     native.CompareOpAlways,
		MaxLod:        native.LodClampNone,
		BorderColor:   native.BorderColorIntOpaqueBlack,
	}
}

func (p SamplerProperties) Clone() SamplerProperties { return p }

func (p SamplerProperties) CreateInfo() native.SamplerCreateInfo {
	return native.SamplerCreateInfo(p)
}

func SamplerPropertiesFromCreateInfo(info *native.SamplerCreateInfo) SamplerProperties {
	return SamplerProperties(*info)
}

func NewSampler(device *Device, props SamplerProperties) (*Sampler, error) {
	s := &Sampler{device: device}
	err := build(&s.object, KindSampler, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateSampler(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroySampler(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(s), nil
}

func (s *Sampler) Retain() *Sampler { s.retain(); return s }

func (s *Sampler) Device() *Device { return s.device }
