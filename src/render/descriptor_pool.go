package render

import (
	"slices"

	"vkgraph/src/render/native"
)

type DescriptorPool struct {
	object[DescriptorPoolProperties]
	device *Device
}

type DescriptorPoolProperties struct {
	Flags     native.DescriptorPoolCreateFlags
	MaxSets   uint32
	PoolSizes []native.DescriptorPoolSize
}

// DefaultDescriptorPoolProperties returns a pool for maxSets sets whose
// sets can be freed one by one. FreeDescriptorSet is required for
// DescriptorSet.Release to return sets to the pool; the sizes are up to the
// caller.
func DefaultDescriptorPoolProperties(maxSets uint32, sizes ...native.DescriptorPoolSize) DescriptorPoolProperties {
	return DescriptorPoolProperties{
		Flags:     native.DescriptorPoolCreateFreeDescriptorSet,
		MaxSets:   maxSets,
		PoolSizes: sizes,
	}
}

func (p DescriptorPoolProperties) Clone() DescriptorPoolProperties {
	p.PoolSizes = slices.Clone(p.PoolSizes)
	return p
}

func (p DescriptorPoolProperties) CreateInfo() native.DescriptorPoolCreateInfo {
	return native.DescriptorPoolCreateInfo{
		Flags:     p.Flags,
		MaxSets:   p.MaxSets,
		PoolSizes: slices.Clone(p.PoolSizes),
	}
}

func DescriptorPoolPropertiesFromCreateInfo(info *native.DescriptorPoolCreateInfo) DescriptorPoolProperties {
	return DescriptorPoolProperties{
		Flags:     info.Flags,
		MaxSets:   info.MaxSets,
		PoolSizes: slices.Clone(info.PoolSizes),
	}
}

func NewDescriptorPool(device *Device, props DescriptorPoolProperties) (*DescriptorPool, error) {
	p := &DescriptorPool{device: device}
	err := build(&p.object, KindDescriptorPool, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateDescriptorPool(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyDescriptorPool(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(p), nil
}

func (p *DescriptorPool) Retain() *DescriptorPool { p.retain(); return p }

func (p *DescriptorPool) Device() *Device { return p.device }

// AllocateDescriptorSets allocates one set per layout. Each set holds p and
// its layout.
func (p *DescriptorPool) AllocateDescriptorSets(layouts ...*DescriptorSetLayout) ([]*DescriptorSet, error) {
	deps := []dep{need("pool", p)}
	for _, l := range layouts {
		deps = append(deps, need("layout", l))
	}
	held, err := acquire(KindDescriptorSet,
		func() error {
			for _, l := range layouts {
				if err := sameDevice(KindDescriptorSet, "layout", p.device, l.device); err != nil {
					return err
				}
			}
			return nil
		},
		deps...,
	)
	if err != nil {
		return nil, err
	}
	defer releaseAll(held)

	raws := make([]native.Handle, len(layouts))
	for i, l := range layouts {
		raws[i] = l.Handle()
	}
	sets, res := p.drv.AllocateDescriptorSets(p.device.Handle(), p.Handle(), raws)
	if IsError(res) {
		return nil, failed(KindDescriptorSet, res)
	}

	out := make([]*DescriptorSet, len(sets))
	for i, raw := range sets {
		out[i] = newDescriptorSet(p, layouts[i], raw)
	}
	return out, nil
}

// DescriptorSet is a set allocated from a DescriptorPool.
//
// Sets from a pool without FreeDescriptorSet are not freed individually;
// they go back when the pool is destroyed, which cannot happen before the
// set is released.
type DescriptorSet struct {
	object[DescriptorSetProperties]
	pool   *DescriptorPool
	layout *DescriptorSetLayout
}

type DescriptorSetProperties struct{}

func (p DescriptorSetProperties) Clone() DescriptorSetProperties { return p }

// newDescriptorSet is called with pool and layout already retained by the
// allocating call.
func newDescriptorSet(pool *DescriptorPool, layout *DescriptorSetLayout, raw native.Handle) *DescriptorSet {
	pool.retain()
	layout.retain()
	var destroy func(native.Handle) error
	if pool.props.Flags&native.DescriptorPoolCreateFreeDescriptorSet != 0 {
		drv, dev := pool.drv, pool.device.Handle()
		destroy = func(raw native.Handle) error {
			return NewError(drv.FreeDescriptorSets(dev, pool.Handle(), []native.Handle{raw}))
		}
	}
	s := &DescriptorSet{pool: pool, layout: layout}
	s.init(KindDescriptorSet, pool.drv, DescriptorSetProperties{}, adopt(KindDescriptorSet, raw, destroy), []Object{pool, layout})
	return track(s)
}

func (s *DescriptorSet) Retain() *DescriptorSet { s.retain(); return s }

func (s *DescriptorSet) Pool() *DescriptorPool { return s.pool }

func (s *DescriptorSet) Layout() *DescriptorSetLayout { return s.layout }

func (s *DescriptorSet) Device() *Device { return s.pool.device }
