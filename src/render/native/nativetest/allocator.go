package nativetest

import (
	"vkgraph/src/render/native"
)

func (d *Driver) CreateAllocator(info *native.AllocatorCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateAllocator", info.Device)
}

func (d *Driver) DestroyAllocator(allocator native.Handle) {
	d.destroy("DestroyAllocator", allocator)
}

func (d *Driver) CreatePool(allocator native.Handle, info *native.PoolCreateInfo) (native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(info.MemoryTypeIndex) >= len(d.props.MemoryTypes) {
		d.events = append(d.events, Event{Op: "CreatePool", Handle: native.NullHandle})
		return native.NullHandle, native.ErrorFeatureNotPresent
	}
	h, res := d.createLocked("CreatePool", allocator)
	if res == native.Success {
		d.live[h].memType = info.MemoryTypeIndex
	}
	return h, res
}

func (d *Driver) DestroyPool(allocator, pool native.Handle) {
	d.destroy("DestroyPool", pool)
}

func (d *Driver) Allocate(allocator native.Handle, req native.MemoryRequirements, info *native.AllocationCreateInfo) (native.Handle, native.AllocationInfo, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()

	typ, ok := uint32(0), false
	if info.Pool != native.NullHandle {
		if p, live := d.live[info.Pool]; live {
			typ, ok = p.memType, req.MemoryTypeBits&(1<<p.memType) != 0
		}
	} else {
		typ, ok = d.pickMemoryType(req.MemoryTypeBits, required(info))
	}
	if _, injected := d.fail["Allocate"]; !injected && !ok {
		d.events = append(d.events, Event{Op: "Allocate", Handle: native.NullHandle})
		return native.NullHandle, native.AllocationInfo{}, native.ErrorOutOfDeviceMemory
	}

	h, res := d.createLocked("Allocate", allocator, info.Pool)
	if res != native.Success {
		return h, native.AllocationInfo{}, res
	}
	r := d.live[h]
	r.memType = typ
	r.mem = make([]byte, req.Size)
	return h, native.AllocationInfo{
		Memory:        h,
		Size:          req.Size,
		MemoryType:    typ,
		PropertyFlags: d.props.MemoryTypes[typ].PropertyFlags,
	}, native.Success
}

func (d *Driver) Free(allocator, allocation native.Handle) {
	d.destroy("Free", allocation)
}

func (d *Driver) Map(allocator, allocation native.Handle) ([]byte, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "Map", Handle: allocation})
	if res, ok := d.fail["Map"]; ok {
		return nil, res
	}
	r, ok := d.live[allocation]
	if !ok || d.props.MemoryTypes[r.memType].PropertyFlags&native.MemoryPropertyHostVisible == 0 {
		return nil, native.ErrorMemoryMapFailed
	}
	r.mapped = true
	return r.mem, native.Success
}

func (d *Driver) Unmap(allocator, allocation native.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "Unmap", Handle: allocation})
	if r, ok := d.live[allocation]; ok {
		r.mapped = false
	}
}

func (d *Driver) Flush(allocator, allocation native.Handle, offset, size uint64) native.Result {
	return d.call("Flush", allocation)
}

// Mapped reports whether allocation is currently mapped.
func (d *Driver) Mapped(allocation native.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.live[allocation]
	return ok && r.mapped
}

func (d *Driver) pickMemoryType(bits uint32, flags native.MemoryPropertyFlags) (uint32, bool) {
	for i, t := range d.props.MemoryTypes {
		if bits&(1<<uint(i)) != 0 && t.PropertyFlags&flags == flags {
			return uint32(i), true
		}
	}
	return 0, false
}

func required(info *native.AllocationCreateInfo) native.MemoryPropertyFlags {
	flags := info.RequiredFlags
	switch info.Usage {
	case native.MemoryUsageCPUOnly, native.MemoryUsageCPUToGPU, native.MemoryUsageGPUToCPU:
		flags |= native.MemoryPropertyHostVisible
	}
	return flags
}
