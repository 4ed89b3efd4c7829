package render

import (
	"vkgraph/src/render/handle"
	"vkgraph/src/render/native"
)

// memorySource says where a buffer or image gets its memory from.
type memorySource struct {
	allocator *Allocator
	pool      *MemoryPool
}

func fromPool(pool *MemoryPool) memorySource {
	if pool == nil {
		return memorySource{}
	}
	return memorySource{allocator: pool.allocator, pool: pool}
}

type boundResource struct {
	create       func(device native.Handle) (native.Handle, native.Result)
	destroy      func(device, raw native.Handle)
	requirements func(device, raw native.Handle) native.MemoryRequirements
	bind         func(device, raw, memory native.Handle, offset uint64) native.Result
}

// createBound creates a resource of kind, allocates memory for it from src
// and binds the two. On success the returned deps hold one reference on the
// device and the only reference on the allocation. On failure nothing is
// left allocated and every reference count is back where it started.
func createBound(kind Kind, src memorySource, memory AllocationProperties, r boundResource) (*handle.Cell, *Device, *Allocation, []Object, error) {
	held, err := acquire(kind,
		func() error {
			if src.pool != nil && src.pool.allocator != src.allocator {
				return mismatch(kind, "pool", MismatchLineage)
			}
			return nil
		},
		need("allocator", src.allocator),
		maybe("pool", src.pool),
	)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	defer releaseAll(held)

	device := src.allocator.device
	device.retain()

	dev := device.Handle()
	cell, err := createCell(kind,
		func() (native.Handle, native.Result) { return r.create(dev) },
		destroyed(func(raw native.Handle) { r.destroy(dev, raw) }),
	)
	if err != nil {
		device.Release()
		return nil, nil, nil, nil, err
	}

	mem, err := NewAllocation(src.allocator, src.pool, r.requirements(dev, cell.Raw()), memory)
	if err != nil {
		discard(kind, cell)
		device.Release()
		return nil, nil, nil, nil, err
	}
	if res := r.bind(dev, cell.Raw(), mem.info.Memory, mem.info.Offset); IsError(res) {
		discard(kind, cell)
		mem.Release()
		device.Release()
		return nil, nil, nil, nil, failed(kind, res)
	}
	return cell, device, mem, []Object{device, mem}, nil
}
