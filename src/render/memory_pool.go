package render

import (
	"vkgraph/src/render/native"
)

// MemoryPool is a custom pool of one memory type inside an allocator.
type MemoryPool struct {
	object[MemoryPoolProperties]
	allocator *Allocator
}

type MemoryPoolProperties struct {
	MemoryTypeIndex uint32
	// BlockSize of zero lets the allocator pick.
	BlockSize     uint64
	MinBlockCount uint32
	// MaxBlockCount of zero means unlimited.
	MaxBlockCount uint32
}

func (p MemoryPoolProperties) Clone() MemoryPoolProperties { return p }

func (p MemoryPoolProperties) CreateInfo() native.PoolCreateInfo {
	return native.PoolCreateInfo{
		MemoryTypeIndex: p.MemoryTypeIndex,
		BlockSize:       p.BlockSize,
		MinBlockCount:   p.MinBlockCount,
		MaxBlockCount:   p.MaxBlockCount,
	}
}

func MemoryPoolPropertiesFromCreateInfo(info *native.PoolCreateInfo) MemoryPoolProperties {
	return MemoryPoolProperties{
		MemoryTypeIndex: info.MemoryTypeIndex,
		BlockSize:       info.BlockSize,
		MinBlockCount:   info.MinBlockCount,
		MaxBlockCount:   info.MaxBlockCount,
	}
}

func NewMemoryPool(allocator *Allocator, props MemoryPoolProperties) (*MemoryPool, error) {
	p := &MemoryPool{allocator: allocator}
	err := build(&p.object, KindMemoryPool, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return allocator.svc.CreatePool(allocator.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { allocator.svc.DestroyPool(allocator.Handle(), raw) }),
		need("allocator", allocator),
	)
	if err != nil {
		return nil, err
	}
	return track(p), nil
}

func (p *MemoryPool) Retain() *MemoryPool { p.retain(); return p }

func (p *MemoryPool) Allocator() *Allocator { return p.allocator }

func (p *MemoryPool) Device() *Device { return p.allocator.device }

// Allocate allocates memory meeting req from p.
func (p *MemoryPool) Allocate(req native.MemoryRequirements, props AllocationProperties) (*Allocation, error) {
	return NewAllocation(p.allocator, p, req, props)
}
