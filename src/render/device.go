package render

import (
	"fmt"
	"slices"
	"time"

	"vkgraph/src/render/native"
)

// Device is a logical device. Nearly every other object depends on one.
//
// Destroying a device first waits for it to go idle. A failed wait is
// logged and the device is destroyed anyway.
type Device struct {
	object[DeviceProperties]
	physicalDevice *PhysicalDevice
	messenger      *DebugMessenger
}

type DeviceQueueProperties struct {
	Family     uint32
	Priorities []float32
}

type DeviceProperties struct {
	Queues     []DeviceQueueProperties
	Extensions []string
	Layers     []string
	Features   native.PhysicalDeviceFeatures
}

// DefaultDeviceProperties requests one queue from family with priority 1.
// A single queue at full priority is always valid; the family itself is up
// to the caller.
func DefaultDeviceProperties(family uint32) DeviceProperties {
	return DeviceProperties{
		Queues: []DeviceQueueProperties{{Family: family, Priorities: []float32{1}}},
	}
}

func (p DeviceProperties) Clone() DeviceProperties {
	qs := make([]DeviceQueueProperties, len(p.Queues))
	for i, q := range p.Queues {
		qs[i] = DeviceQueueProperties{Family: q.Family, Priorities: slices.Clone(q.Priorities)}
	}
	p.Queues = qs
	p.Extensions = slices.Clone(p.Extensions)
	p.Layers = slices.Clone(p.Layers)
	return p
}

func (p DeviceProperties) CreateInfo() native.DeviceCreateInfo {
	qs := make([]native.DeviceQueueCreateInfo, len(p.Queues))
	for i, q := range p.Queues {
		qs[i] = native.DeviceQueueCreateInfo{QueueFamilyIndex: q.Family, QueuePriorities: slices.Clone(q.Priorities)}
	}
	return native.DeviceCreateInfo{
		QueueCreateInfos:  qs,
		EnabledExtensions: slices.Clone(p.Extensions),
		EnabledLayers:     slices.Clone(p.Layers),
		Features:          p.Features,
	}
}

func DevicePropertiesFromCreateInfo(info *native.DeviceCreateInfo) DeviceProperties {
	qs := make([]DeviceQueueProperties, len(info.QueueCreateInfos))
	for i, q := range info.QueueCreateInfos {
		qs[i] = DeviceQueueProperties{Family: q.QueueFamilyIndex, Priorities: slices.Clone(q.QueuePriorities)}
	}
	return DeviceProperties{
		Queues:     qs,
		Extensions: slices.Clone(info.EnabledExtensions),
		Layers:     slices.Clone(info.EnabledLayers),
		Features:   info.Features,
	}
}

// NewDevice creates a logical device. messenger is optional; when given it
// must belong to the same instance as physicalDevice.
func NewDevice(physicalDevice *PhysicalDevice, messenger *DebugMessenger, props DeviceProperties) (*Device, error) {
	d := &Device{physicalDevice: physicalDevice, messenger: messenger}
	err := build(&d.object, KindDevice, props,
		func() error {
			if messenger != nil && messenger.Instance() != physicalDevice.Instance() {
				return mismatch(KindDevice, "messenger", MismatchLineage)
			}
			return nil
		},
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return physicalDevice.drv.CreateDevice(physicalDevice.Handle(), &info)
		},
		func(raw native.Handle) error {
			drv := physicalDevice.drv
			res := drv.DeviceWaitIdle(raw)
			drv.DestroyDevice(raw)
			if IsError(res) {
				return fmt.Errorf("wait idle: %w", res)
			}
			return nil
		},
		need("physical device", physicalDevice),
		maybe("messenger", messenger),
	)
	if err != nil {
		return nil, err
	}
	return track(d), nil
}

func (d *Device) Retain() *Device { d.retain(); return d }

func (d *Device) PhysicalDevice() *PhysicalDevice { return d.physicalDevice }

// DebugMessenger returns the messenger the device was created with, or nil.
func (d *Device) DebugMessenger() *DebugMessenger { return d.messenger }

func (d *Device) Instance() *Instance { return d.physicalDevice.Instance() }

// Driver returns the driver the device was created on.
func (d *Device) Driver() native.Driver { return d.drv }

// WaitIdle blocks until the device has finished all submitted work.
func (d *Device) WaitIdle() error {
	return NewError(d.drv.DeviceWaitIdle(d.Handle()))
}

// Queue returns queue index of family. The pair must have been requested
// when the device was created.
func (d *Device) Queue(family, index uint32) (*Queue, error) {
	requested := false
	for _, q := range d.props.Queues {
		if q.Family == family && int(index) < len(q.Priorities) {
			requested = true
			break
		}
	}
	if !requested {
		return nil, fmt.Errorf("render: queue %d of family %d was not requested at device creation", index, family)
	}
	return newQueue(d, family, index)
}

// WaitForFences waits until all (or, with waitAll unset, any) of fences are
// signaled. It reports false if timeout expired first.
func (d *Device) WaitForFences(fences []*Fence, waitAll bool, timeout time.Duration) (bool, error) {
	raws := make([]native.Handle, len(fences))
	for i, f := range fences {
		if f == nil {
			return false, mismatch(KindFence, "fence", MismatchNil)
		}
		if f.Device() != d {
			return false, mismatch(KindFence, "fence", MismatchLineage)
		}
		raws[i] = f.Handle()
	}
	return waitResult(d.drv.WaitForFences(d.Handle(), raws, waitAll, timeoutNanos(timeout)))
}

func timeoutNanos(timeout time.Duration) uint64 {
	if timeout < 0 {
		return ^uint64(0)
	}
	return uint64(timeout.Nanoseconds())
}

func waitResult(res native.Result) (bool, error) {
	switch {
	case res == native.Success:
		return true, nil
	case res == native.Timeout:
		return false, nil
	default:
		return false, NewError(res)
	}
}
