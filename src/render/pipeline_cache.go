package render

import (
	"slices"

	"vkgraph/src/render/native"
)

type PipelineCache struct {
	object[PipelineCacheProperties]
	device *Device
}

type PipelineCacheProperties struct {
	// InitialData is a blob from an earlier run. Empty starts a fresh cache.
	InitialData []byte
}

func (p PipelineCacheProperties) Clone() PipelineCacheProperties {
	p.InitialData = slices.Clone(p.InitialData)
	return p
}

func (p PipelineCacheProperties) CreateInfo() native.PipelineCacheCreateInfo {
	return native.PipelineCacheCreateInfo{InitialData: slices.Clone(p.InitialData)}
}

func PipelineCachePropertiesFromCreateInfo(info *native.PipelineCacheCreateInfo) PipelineCacheProperties {
	return PipelineCacheProperties{InitialData: slices.Clone(info.InitialData)}
}

func NewPipelineCache(device *Device, props PipelineCacheProperties) (*PipelineCache, error) {
	c := &PipelineCache{device: device}
	err := build(&c.object, KindPipelineCache, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreatePipelineCache(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyPipelineCache(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(c), nil
}

func (c *PipelineCache) Retain() *PipelineCache { c.retain(); return c }

func (c *PipelineCache) Device() *Device { return c.device }

// cacheHandle returns the raw handle of c, or the null handle when c is nil.
func cacheHandle(c *PipelineCache) native.Handle {
	if c == nil {
		return native.NullHandle
	}
	return c.Handle()
}
