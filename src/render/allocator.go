package render

import (
	"vkgraph/src/render/native"
)

// Allocator wraps the memory allocator service for one device. Pools and
// allocations hold it, so it is destroyed only after all of them.
type Allocator struct {
	object[AllocatorProperties]
	device *Device
	svc    native.Allocator
}

type AllocatorProperties struct {
	// PreferredLargeHeapBlockSize is the size of the blocks carved out of
	// large heaps. Zero lets the service pick.
	PreferredLargeHeapBlockSize uint64
}

func (p AllocatorProperties) Clone() AllocatorProperties { return p }

func (p AllocatorProperties) CreateInfo(device *Device) native.AllocatorCreateInfo {
	return native.AllocatorCreateInfo{
		Instance:                    device.Instance().Handle(),
		PhysicalDevice:              device.PhysicalDevice().Handle(),
		Device:                      device.Handle(),
		ApiVersion:                  device.Instance().props.ApiVersion,
		PreferredLargeHeapBlockSize: p.PreferredLargeHeapBlockSize,
	}
}

func AllocatorPropertiesFromCreateInfo(info *native.AllocatorCreateInfo) AllocatorProperties {
	return AllocatorProperties{PreferredLargeHeapBlockSize: info.PreferredLargeHeapBlockSize}
}

func NewAllocator(svc native.Allocator, device *Device, props AllocatorProperties) (*Allocator, error) {
	if svc == nil {
		return nil, reject(KindAllocator, mismatch(KindAllocator, "allocator service", MismatchNil))
	}
	a := &Allocator{device: device, svc: svc}
	err := build(&a.object, KindAllocator, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo(device)
			return svc.CreateAllocator(&info)
		},
		destroyed(svc.DestroyAllocator),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(a), nil
}

func (a *Allocator) Retain() *Allocator { a.retain(); return a }

func (a *Allocator) Device() *Device { return a.device }

// Service returns the allocator service behind a.
func (a *Allocator) Service() native.Allocator { return a.svc }

// Allocate allocates memory meeting req outside of any pool.
func (a *Allocator) Allocate(req native.MemoryRequirements, props AllocationProperties) (*Allocation, error) {
	return NewAllocation(a, nil, req, props)
}
