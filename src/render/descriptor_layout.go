package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// DescriptorSetLayout describes the bindings of a descriptor set. It holds
// its immutable samplers.
type DescriptorSetLayout struct {
	object[DescriptorSetLayoutProperties]
	device *Device
}

type DescriptorSetLayoutBinding struct {
	Binding    uint32
	Type       native.DescriptorType
	Count      uint32
	StageFlags native.ShaderStageFlags
	// ImmutableSamplers, when set, must have Count entries.
	ImmutableSamplers []*Sampler
}

type DescriptorSetLayoutProperties struct {
	Flags    native.DescriptorSetLayoutCreateFlags
	Bindings []DescriptorSetLayoutBinding
}

func (p DescriptorSetLayoutProperties) Clone() DescriptorSetLayoutProperties {
	bs := make([]DescriptorSetLayoutBinding, len(p.Bindings))
	for i, b := range p.Bindings {
		b.ImmutableSamplers = slices.Clone(b.ImmutableSamplers)
		bs[i] = b
	}
	p.Bindings = bs
	return p
}

func (p DescriptorSetLayoutProperties) CreateInfo() native.DescriptorSetLayoutCreateInfo {
	bs := make([]native.DescriptorSetLayoutBinding, len(p.Bindings))
	for i, b := range p.Bindings {
		var samplers []native.Handle
		for _, s := range b.ImmutableSamplers {
			samplers = append(samplers, s.Handle())
		}
		bs[i] = native.DescriptorSetLayoutBinding{
			Binding:           b.Binding,
			DescriptorType:    b.Type,
			DescriptorCount:   b.Count,
			StageFlags:        b.StageFlags,
			ImmutableSamplers: samplers,
		}
	}
	return native.DescriptorSetLayoutCreateInfo{Flags: p.Flags, Bindings: bs}
}

// DescriptorSetLayoutPropertiesFromCreateInfo converts info back. Immutable
// samplers cannot be recovered from raw handles and are left empty.
func DescriptorSetLayoutPropertiesFromCreateInfo(info *native.DescriptorSetLayoutCreateInfo) DescriptorSetLayoutProperties {
	bs := make([]DescriptorSetLayoutBinding, len(info.Bindings))
	for i, b := range info.Bindings {
		bs[i] = DescriptorSetLayoutBinding{
			Binding:    b.Binding,
			Type:       b.DescriptorType,
			Count:      b.DescriptorCount,
			StageFlags: b.StageFlags,
		}
	}
	return DescriptorSetLayoutProperties{Flags: info.Flags, Bindings: bs}
}

func (p DescriptorSetLayoutProperties) samplers() []*Sampler {
	var ss []*Sampler
	for _, b := range p.Bindings {
		ss = append(ss, b.ImmutableSamplers...)
	}
	return ss
}

func NewDescriptorSetLayout(device *Device, props DescriptorSetLayoutProperties) (*DescriptorSetLayout, error) {
	deps := []dep{need("device", device)}
	for _, s := range props.samplers() {
		deps = append(deps, need("immutable sampler", s))
	}
	l := &DescriptorSetLayout{device: device}
	err := build(&l.object, KindDescriptorSetLayout, props,
		func() error {
			for _, s := range props.samplers() {
				if err := sameDevice(KindDescriptorSetLayout, "immutable sampler", device, s.device); err != nil {
					return err
				}
			}
			return nil
		},
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateDescriptorSetLayout(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyDescriptorSetLayout(device.Handle(), raw) }),
		deps...,
	)
	if err != nil {
		return nil, err
	}
	return track(l), nil
}

func (l *DescriptorSetLayout) Retain() *DescriptorSetLayout { l.retain(); return l }

func (l *DescriptorSetLayout) Device() *Device { return l.device }
