package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// PipelineLayout holds the descriptor set layouts it was built from.
type PipelineLayout struct {
	object[PipelineLayoutProperties]
	device *Device
}

type PipelineLayoutProperties struct {
	Flags              native.PipelineLayoutCreateFlags
	SetLayouts         []*DescriptorSetLayout
	PushConstantRanges []native.PushConstantRange
}

func (p PipelineLayoutProperties) Clone() PipelineLayoutProperties {
	p.SetLayouts = slices.Clone(p.SetLayouts)
	p.PushConstantRanges = slices.Clone(p.PushConstantRanges)
	return p
}

func (p PipelineLayoutProperties) CreateInfo() native.PipelineLayoutCreateInfo {
	layouts := make([]native.Handle, len(p.SetLayouts))
	for i, l := range p.SetLayouts {
		layouts[i] = l.Handle()
	}
	return native.PipelineLayoutCreateInfo{
		Flags:              p.Flags,
		SetLayouts:         layouts,
		PushConstantRanges: slices.Clone(p.PushConstantRanges),
	}
}

// PipelineLayoutPropertiesFromCreateInfo converts info back. Set layouts
// cannot be recovered from raw handles and are left empty.
func PipelineLayoutPropertiesFromCreateInfo(info *native.PipelineLayoutCreateInfo) PipelineLayoutProperties {
	return PipelineLayoutProperties{
		Flags:              info.Flags,
		PushConstantRanges: slices.Clone(info.PushConstantRanges),
	}
}

func NewPipelineLayout(device *Device, props PipelineLayoutProperties) (*PipelineLayout, error) {
	deps := []dep{need("device", device)}
	for _, l := range props.SetLayouts {
		deps = append(deps, need("set layout", l))
	}
	l := &PipelineLayout{device: device}
	err := build(&l.object, KindPipelineLayout, props,
		func() error {
			for _, sl := range props.SetLayouts {
				if err := sameDevice(KindPipelineLayout, "set layout", device, sl.device); err != nil {
					return err
				}
			}
			return nil
		},
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreatePipelineLayout(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyPipelineLayout(device.Handle(), raw) }),
		deps...,
	)
	if err != nil {
		return nil, err
	}
	return track(l), nil
}

func (l *PipelineLayout) Retain() *PipelineLayout { l.retain(); return l }

func (l *PipelineLayout) Device() *Device { return l.device }

// SetLayouts returns the descriptor set layouts in set order.
func (l *PipelineLayout) SetLayouts() []*DescriptorSetLayout { return slices.Clone(l.props.SetLayouts) }
