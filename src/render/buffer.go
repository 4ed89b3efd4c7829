package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// Buffer is a buffer bound to its own allocation.
type Buffer struct {
	object[BufferProperties]
	device *Device
	memory *Allocation
}

type BufferProperties struct {
	Flags              native.BufferCreateFlags
	Size               uint64
	Usage              native.BufferUsageFlags
	SharingMode        native.SharingMode
	QueueFamilyIndices []uint32
}

// DefaultBufferProperties returns an exclusive buffer of size bytes. The
// usage is a convenience default (storage plus both transfer directions)
// and should be narrowed by the caller.
func DefaultBufferProperties(size uint64) BufferProperties {
	return BufferProperties{
		Size:        size,
		Usage:       native.BufferUsageStorageBuffer | native.BufferUsageTransferSrc | native.BufferUsageTransferDst,
		SharingMode: native.SharingModeExclusive,
	}
}

func (p BufferProperties) Clone() BufferProperties {
	p.QueueFamilyIndices = slices.Clone(p.QueueFamilyIndices)
	return p
}

func (p BufferProperties) CreateInfo() native.BufferCreateInfo {
	return native.BufferCreateInfo{
		Flags:              p.Flags,
		Size:               p.Size,
		Usage:              p.Usage,
		SharingMode:        p.SharingMode,
		QueueFamilyIndices: slices.Clone(p.QueueFamilyIndices),
	}
}

func BufferPropertiesFromCreateInfo(info *native.BufferCreateInfo) BufferProperties {
	return BufferProperties{
		Flags:              info.Flags,
		Size:               info.Size,
		Usage:              info.Usage,
		SharingMode:        info.SharingMode,
		QueueFamilyIndices: slices.Clone(info.QueueFamilyIndices),
	}
}

// NewBuffer creates a buffer on the allocator's device and backs it with a
// fresh allocation.
func NewBuffer(allocator *Allocator, props BufferProperties, memory AllocationProperties) (*Buffer, error) {
	return newBuffer(memorySource{allocator: allocator}, props, memory)
}

// NewPoolBuffer is NewBuffer with memory taken from pool.
func NewPoolBuffer(pool *MemoryPool, props BufferProperties, memory AllocationProperties) (*Buffer, error) {
	if pool == nil {
		return nil, reject(KindBuffer, mismatch(KindBuffer, "pool", MismatchNil))
	}
	return newBuffer(fromPool(pool), props, memory)
}

func newBuffer(src memorySource, props BufferProperties, memory AllocationProperties) (*Buffer, error) {
	info := props.CreateInfo()
	var drv native.Driver
	if src.allocator != nil {
		drv = src.allocator.drv
	}
	cell, device, mem, deps, err := createBound(KindBuffer, src, memory, boundResource{
		create:       func(dev native.Handle) (native.Handle, native.Result) { return drv.CreateBuffer(dev, &info) },
		destroy:      func(dev, raw native.Handle) { drv.DestroyBuffer(dev, raw) },
		requirements: func(dev, raw native.Handle) native.MemoryRequirements { return drv.GetBufferMemoryRequirements(dev, raw) },
		bind:         func(dev, raw, mem native.Handle, off uint64) native.Result { return drv.BindBufferMemory(dev, raw, mem, off) },
	})
	if err != nil {
		return nil, err
	}
	b := &Buffer{device: device, memory: mem}
	b.init(KindBuffer, drv, props, cell, deps)
	return track(b), nil
}

func (b *Buffer) Retain() *Buffer { b.retain(); return b }

func (b *Buffer) Device() *Device { return b.device }

// Memory returns the allocation backing b.
func (b *Buffer) Memory() *Allocation { return b.memory }

func (b *Buffer) Size() uint64 { return b.props.Size }

// Write copies data into the buffer's memory at offset. The memory must be
// host visible.
func (b *Buffer) Write(offset uint64, data []byte) error { return b.memory.Write(offset, data) }

// Read copies n bytes at offset out of the buffer's memory.
func (b *Buffer) Read(offset, n uint64) ([]byte, error) { return b.memory.Read(offset, n) }
