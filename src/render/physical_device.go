package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// PhysicalDevice is a GPU reported by an instance. It is not created or
// destroyed; the wrapper only keeps the instance alive.
type PhysicalDevice struct {
	object[PhysicalDeviceProperties]
	instance *Instance
}

// PhysicalDeviceProperties is what the driver reports for a physical
// device.
type PhysicalDeviceProperties native.PhysicalDeviceProperties

func (p PhysicalDeviceProperties) Clone() PhysicalDeviceProperties {
	p.QueueFamilies = slices.Clone(p.QueueFamilies)
	p.MemoryTypes = slices.Clone(p.MemoryTypes)
	p.Extensions = slices.Clone(p.Extensions)
	return p
}

func newPhysicalDevice(instance *Instance, raw native.Handle) (*PhysicalDevice, error) {
	held, err := acquire(KindPhysicalDevice, nil, need("instance", instance))
	if err != nil {
		return nil, err
	}
	pd := &PhysicalDevice{instance: instance}
	props := PhysicalDeviceProperties(instance.drv.GetPhysicalDeviceProperties(raw))
	pd.init(KindPhysicalDevice, instance.drv, props, adopt(KindPhysicalDevice, raw, nil), held)
	return track(pd), nil
}

func (p *PhysicalDevice) Retain() *PhysicalDevice { p.retain(); return p }

func (p *PhysicalDevice) Instance() *Instance { return p.instance }

// QueueFamily returns the first queue family supporting all of flags.
func (p *PhysicalDevice) QueueFamily(flags native.QueueFlags) (uint32, bool) {
	for i, f := range p.props.QueueFamilies {
		if f.Flags&flags == flags && f.Count > 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

// MemoryType returns the first memory type allowed by typeBits that has
// every property in flags.
func (p *PhysicalDevice) MemoryType(typeBits uint32, flags native.MemoryPropertyFlags) (uint32, bool) {
	for i, t := range p.props.MemoryTypes {
		if typeBits&(1<<uint(i)) != 0 && t.PropertyFlags&flags == flags {
			return uint32(i), true
		}
	}
	return 0, false
}

// SupportsExtension reports whether the device lists name.
func (p *PhysicalDevice) SupportsExtension(name string) bool {
	return slices.Contains(p.props.Extensions, name)
}
