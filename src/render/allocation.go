package render

import (
	"errors"
	"fmt"

	"vkgraph/src/render/native"
)

// Allocation is a block of device memory handed out by an Allocator,
// optionally from a MemoryPool. Buffers and images hold the allocation that
// backs them.
type Allocation struct {
	object[AllocationProperties]
	allocator *Allocator
	pool      *MemoryPool
	info      native.AllocationInfo
}

type AllocationProperties struct {
	Flags          native.AllocationCreateFlags
	Usage          native.MemoryUsage
	RequiredFlags  native.MemoryPropertyFlags
	PreferredFlags native.MemoryPropertyFlags
}

// DefaultAllocationProperties asks for device local memory. This is a
// convenience default; host access needs a CPU usage or HostVisible.
func DefaultAllocationProperties() AllocationProperties {
	return AllocationProperties{
		Usage:          native.MemoryUsageGPUOnly,
		PreferredFlags: native.MemoryPropertyDeviceLocal,
	}
}

// HostAllocationProperties asks for host visible, coherent memory suitable
// for uploads.
func HostAllocationProperties() AllocationProperties {
	return AllocationProperties{
		Usage:         native.MemoryUsageCPUToGPU,
		RequiredFlags: native.MemoryPropertyHostVisible | native.MemoryPropertyHostCoherent,
	}
}

func (p AllocationProperties) Clone() AllocationProperties { return p }

func (p AllocationProperties) CreateInfo(pool native.Handle) native.AllocationCreateInfo {
	return native.AllocationCreateInfo{
		Pool:           pool,
		Flags:          p.Flags,
		Usage:          p.Usage,
		RequiredFlags:  p.RequiredFlags,
		PreferredFlags: p.PreferredFlags,
	}
}

func AllocationPropertiesFromCreateInfo(info *native.AllocationCreateInfo) AllocationProperties {
	return AllocationProperties{
		Flags:          info.Flags,
		Usage:          info.Usage,
		RequiredFlags:  info.RequiredFlags,
		PreferredFlags: info.PreferredFlags,
	}
}

// NewAllocation allocates memory meeting req. pool is optional and must
// belong to allocator.
func NewAllocation(allocator *Allocator, pool *MemoryPool, req native.MemoryRequirements, props AllocationProperties) (*Allocation, error) {
	held, err := acquire(KindAllocation,
		func() error {
			if pool != nil && pool.allocator != allocator {
				return mismatch(KindAllocation, "pool", MismatchLineage)
			}
			return nil
		},
		need("allocator", allocator),
		maybe("pool", pool),
	)
	if err != nil {
		return nil, err
	}

	poolRaw := native.NullHandle
	if pool != nil {
		poolRaw = pool.Handle()
	}
	svc := allocator.svc
	info := props.CreateInfo(poolRaw)
	var ai native.AllocationInfo
	cell, err := createCell(KindAllocation,
		func() (native.Handle, native.Result) {
			h, i, res := svc.Allocate(allocator.Handle(), req, &info)
			ai = i
			return h, res
		},
		destroyed(func(raw native.Handle) { svc.Free(allocator.Handle(), raw) }),
	)
	if err != nil {
		releaseAll(held)
		var ce *CreationError
		if errors.As(err, &ce) {
			return nil, &AllocationError{Size: req.Size, Result: ce.Result}
		}
		return nil, err
	}

	a := &Allocation{allocator: allocator, pool: pool, info: ai}
	a.init(KindAllocation, allocator.drv, props, cell, held)
	return track(a), nil
}

func (a *Allocation) Retain() *Allocation { a.retain(); return a }

func (a *Allocation) Allocator() *Allocator { return a.allocator }

// Pool returns the pool a was allocated from, or nil.
func (a *Allocation) Pool() *MemoryPool { return a.pool }

func (a *Allocation) Device() *Device { return a.allocator.device }

// Info returns where the allocation lives.
func (a *Allocation) Info() native.AllocationInfo { return a.info }

func (a *Allocation) Size() uint64 { return a.info.Size }

func (a *Allocation) MemoryPropertyFlags() native.MemoryPropertyFlags { return a.info.PropertyFlags }

// HostVisible reports whether the allocation can be mapped.
func (a *Allocation) HostVisible() bool {
	return a.info.PropertyFlags&native.MemoryPropertyHostVisible != 0
}

// Write copies data into the allocation at offset, flushing when the memory
// is not host coherent.
func (a *Allocation) Write(offset uint64, data []byte) error {
	if err := a.bounds(offset, uint64(len(data))); err != nil {
		return err
	}
	return a.mapped(func(mem []byte) error {
		copy(mem[offset:], data)
		if a.info.PropertyFlags&native.MemoryPropertyHostCoherent == 0 {
			return NewError(a.allocator.svc.Flush(a.allocator.Handle(), a.Handle(), offset, uint64(len(data))))
		}
		return nil
	})
}

// Read copies n bytes starting at offset out of the allocation.
func (a *Allocation) Read(offset, n uint64) ([]byte, error) {
	if err := a.bounds(offset, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	err := a.mapped(func(mem []byte) error {
		copy(out, mem[offset:offset+n])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Allocation) bounds(offset, n uint64) error {
	if offset > a.info.Size || n > a.info.Size-offset {
		return &AccessSizeError{Offset: offset, Length: n, Size: a.info.Size}
	}
	return nil
}

func (a *Allocation) mapped(fn func(mem []byte) error) error {
	svc, alloc := a.allocator.svc, a.allocator.Handle()
	mem, res := svc.Map(alloc, a.Handle())
	if IsError(res) {
		return fmt.Errorf("render: map allocation: %w", res)
	}
	defer svc.Unmap(alloc, a.Handle())
	if uint64(len(mem)) < a.info.Size {
		return &AccessSizeError{Offset: 0, Length: a.info.Size, Size: uint64(len(mem))}
	}
	return fn(mem)
}
