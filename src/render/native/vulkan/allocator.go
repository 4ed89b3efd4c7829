package vulkan

import (
	"math"
	"math/bits"
	"sync"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vkgraph/src/render/native"
)

// allocator is the dedicated-allocation service for one device.
type allocator struct {
	device vk.Device
	types  []native.MemoryType
}

type pool struct {
	allocator *allocator
	typeIndex uint32
}

type allocation struct {
	device vk.Device
	memory vk.DeviceMemory
	size   uint64

	mu     sync.Mutex
	mapped []byte
}

func (d *Driver) CreateAllocator(info *native.AllocatorCreateInfo) (native.Handle, native.Result) {
	a := &allocator{
		device: d.device(info.Device),
		types:  memoryTypes(lookup[vk.PhysicalDevice](&d.objects, info.PhysicalDevice)),
	}
	if len(a.types) == 0 {
		return native.NullHandle, native.ErrorInitializationFailed
	}
	return d.objects.put(a), native.Success
}

func (d *Driver) DestroyAllocator(h native.Handle) {
	d.objects.drop(h)
}

func (d *Driver) CreatePool(h native.Handle, info *native.PoolCreateInfo) (native.Handle, native.Result) {
	a := lookup[*allocator](&d.objects, h)
	if a == nil || int(info.MemoryTypeIndex) >= len(a.types) {
		return native.NullHandle, native.ErrorFeatureNotPresent
	}
	return d.objects.put(&pool{allocator: a, typeIndex: info.MemoryTypeIndex}), native.Success
}

func (d *Driver) DestroyPool(allocator, h native.Handle) {
	d.objects.drop(h)
}

func (d *Driver) Allocate(h native.Handle, req native.MemoryRequirements, info *native.AllocationCreateInfo) (native.Handle, native.AllocationInfo, native.Result) {
	a := lookup[*allocator](&d.objects, h)
	if a == nil {
		return native.NullHandle, native.AllocationInfo{}, native.ErrorInitializationFailed
	}
	typ, ok := chooseMemoryType(a.types, req.MemoryTypeBits, info)
	if p := lookup[*pool](&d.objects, info.Pool); p != nil {
		typ, ok = p.typeIndex, req.MemoryTypeBits&(1<<p.typeIndex) != 0
	}
	if !ok {
		return native.NullHandle, native.AllocationInfo{}, native.ErrorFeatureNotPresent
	}

	ai := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(req.Size),
		MemoryTypeIndex: typ,
	}
	mem := &allocation{device: a.device, size: req.Size}
	if res := vk.AllocateMemory(a.device, &ai, nil, &mem.memory); res != vk.Success {
		return native.NullHandle, native.AllocationInfo{}, result(res)
	}
	handle := d.objects.put(mem)
	return handle, native.AllocationInfo{
		Memory:        handle,
		Size:          req.Size,
		MemoryType:    typ,
		PropertyFlags: a.types[typ].PropertyFlags,
	}, native.Success
}

func (d *Driver) Free(allocator, h native.Handle) {
	mem := take[*allocation](&d.objects, h)
	if mem == nil {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if mem.mapped != nil {
		vk.UnmapMemory(mem.device, mem.memory)
		mem.mapped = nil
	}
	vk.FreeMemory(mem.device, mem.memory, nil)
}

func (d *Driver) Map(allocator, h native.Handle) ([]byte, native.Result) {
	mem := lookup[*allocation](&d.objects, h)
	if mem == nil {
		return nil, native.ErrorMemoryMapFailed
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if mem.mapped != nil {
		return mem.mapped, native.Success
	}
	var p unsafe.Pointer
	if res := vk.MapMemory(mem.device, mem.memory, 0, vk.DeviceSize(mem.size), 0, &p); res != vk.Success {
		return nil, result(res)
	}
	mem.mapped = unsafe.Slice((*byte)(p), mem.size)
	return mem.mapped, native.Success
}

func (d *Driver) Unmap(allocator, h native.Handle) {
	mem := lookup[*allocation](&d.objects, h)
	if mem == nil {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if mem.mapped != nil {
		vk.UnmapMemory(mem.device, mem.memory)
		mem.mapped = nil
	}
}

func (d *Driver) Flush(allocator, h native.Handle, offset, size uint64) native.Result {
	mem := lookup[*allocation](&d.objects, h)
	if mem == nil {
		return native.ErrorMemoryMapFailed
	}
	r := vk.MappedMemoryRange{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: mem.memory,
		Offset: vk.DeviceSize(offset),
		Size:   vk.DeviceSize(size),
	}
	return result(vk.FlushMappedMemoryRanges(mem.device, 1, []vk.MappedMemoryRange{r}))
}

// usageFlags turns the coarse usage hint into required and preferred
// property flags.
func usageFlags(info *native.AllocationCreateInfo) (required, preferred, notPreferred native.MemoryPropertyFlags) {
	required, preferred = info.RequiredFlags, info.PreferredFlags
	switch info.Usage {
	case native.MemoryUsageGPUOnly:
		preferred |= native.MemoryPropertyDeviceLocal
	case native.MemoryUsageCPUOnly:
		required |= native.MemoryPropertyHostVisible | native.MemoryPropertyHostCoherent
		notPreferred |= native.MemoryPropertyDeviceLocal
	case native.MemoryUsageCPUToGPU:
		required |= native.MemoryPropertyHostVisible
		preferred |= native.MemoryPropertyDeviceLocal
	case native.MemoryUsageGPUToCPU:
		required |= native.MemoryPropertyHostVisible
		preferred |= native.MemoryPropertyHostCached
	case native.MemoryUsageGPULazilyAllocated:
		required |= native.MemoryPropertyLazilyAllocated
	}
	return required, preferred, notPreferred
}

// chooseMemoryType returns the allowed type with all required flags and the
// fewest missing preferred (or present unwanted) flags.
func chooseMemoryType(types []native.MemoryType, allowed uint32, info *native.AllocationCreateInfo) (uint32, bool) {
	required, preferred, notPreferred := usageFlags(info)
	best, bestCost := -1, math.MaxInt
	for i, t := range types {
		if allowed&(1<<uint(i)) == 0 || t.PropertyFlags&required != required {
			continue
		}
		cost := bits.OnesCount32(uint32(preferred&^t.PropertyFlags)) + bits.OnesCount32(uint32(notPreferred&t.PropertyFlags))
		if cost == 0 {
			return uint32(i), true
		}
		if cost < bestCost {
			best, bestCost = i, cost
		}
	}
	if best < 0 {
		return 0, false
	}
	return uint32(best), true
}
