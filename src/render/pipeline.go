package render

import (
	"vkgraph/src/render/handle"
	"vkgraph/src/render/native"
)

// ShaderStage selects the entry point of a shader module for one stage of a
// pipeline.
type ShaderStage struct {
	Stage      native.ShaderStageFlags
	Module     *ShaderModule
	EntryPoint string
}

func (s ShaderStage) createInfo() native.ShaderStageCreateInfo {
	entry := s.EntryPoint
	if entry == "" {
		entry = "main"
	}
	return native.ShaderStageCreateInfo{Stage: s.Stage, Module: s.Module.Handle(), EntryPoint: entry}
}

// ComputePipeline holds its layout, its shader module and its cache, if it
// was built with one.
type ComputePipeline struct {
	object[ComputePipelineProperties]
	layout *PipelineLayout
	cache  *PipelineCache
}

type ComputePipelineProperties struct {
	Flags native.PipelineCreateFlags
	Stage ShaderStage
}

func (p ComputePipelineProperties) Clone() ComputePipelineProperties { return p }

func (p ComputePipelineProperties) CreateInfo(layout native.Handle) native.ComputePipelineCreateInfo {
	return native.ComputePipelineCreateInfo{Flags: p.Flags, Stage: p.Stage.createInfo(), Layout: layout}
}

// ComputePipelinePropertiesFromCreateInfo converts info back. The shader
// module cannot be recovered from its raw handle and is left nil.
func ComputePipelinePropertiesFromCreateInfo(info *native.ComputePipelineCreateInfo) ComputePipelineProperties {
	return ComputePipelineProperties{
		Flags: info.Flags,
		Stage: ShaderStage{Stage: info.Stage.Stage, EntryPoint: info.Stage.EntryPoint},
	}
}

// NewComputePipeline creates a compute pipeline. cache may be nil.
func NewComputePipeline(layout *PipelineLayout, cache *PipelineCache, props ComputePipelineProperties) (*ComputePipeline, error) {
	p := &ComputePipeline{layout: layout, cache: cache}
	err := build(&p.object, KindComputePipeline, props,
		func() error {
			return pipelineLineage(KindComputePipeline, layout, cache, nil, []ShaderStage{props.Stage})
		},
		func() (native.Handle, native.Result) {
			info := props.CreateInfo(layout.Handle())
			return layout.drv.CreateComputePipeline(layout.device.Handle(), cacheHandle(cache), &info)
		},
		destroyPipeline(layout),
		need("layout", layout),
		need("shader module", props.Stage.Module),
		maybe("cache", cache),
	)
	if err != nil {
		return nil, err
	}
	return track(p), nil
}

func (p *ComputePipeline) Retain() *ComputePipeline { p.retain(); return p }

func (p *ComputePipeline) Layout() *PipelineLayout { return p.layout }

// Cache returns the pipeline cache, or nil.
func (p *ComputePipeline) Cache() *PipelineCache { return p.cache }

func (p *ComputePipeline) Device() *Device { return p.layout.device }

// pipelineLineage checks that everything a pipeline is built from lives on
// the layout's device. renderPass and cache may be nil.
func pipelineLineage(kind Kind, layout *PipelineLayout, cache *PipelineCache, renderPass *RenderPass, stages []ShaderStage) error {
	dev := layout.device
	if cache != nil && cache.device != dev {
		return mismatch(kind, "cache", MismatchLineage)
	}
	if renderPass != nil && renderPass.device != dev {
		return mismatch(kind, "render pass", MismatchLineage)
	}
	for _, s := range stages {
		if s.Module.device != dev {
			return mismatch(kind, "shader module", MismatchLineage)
		}
	}
	return nil
}

func destroyPipeline(layout *PipelineLayout) handle.DestroyFunc {
	return destroyed(func(raw native.Handle) { layout.drv.DestroyPipeline(layout.device.Handle(), raw) })
}
