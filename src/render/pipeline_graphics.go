package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// GraphicsPipeline holds its layout, its render pass, every shader module
// and its cache, if any. Viewport and scissor are always dynamic.
type GraphicsPipeline struct {
	object[GraphicsPipelineProperties]
	layout     *PipelineLayout
	renderPass *RenderPass
	cache      *PipelineCache
}

type GraphicsPipelineProperties struct {
	Flags            native.PipelineCreateFlags
	Stages           []ShaderStage
	VertexBindings   []native.VertexInputBinding
	VertexAttributes []native.VertexInputAttribute
	Topology         native.PrimitiveTopology
	PolygonMode      native.PolygonMode
	CullMode         native.CullModeFlags
	FrontFace        native.FrontFace
	LineWidth        float32
	Samples          native.SampleCountFlags
	ColorBlend       []native.ColorBlendAttachment
	DepthStencil     *native.DepthStencilState
	Subpass          uint32
}

// DefaultGraphicsPipelineProperties returns a filled triangle list pipeline
// with back face culling and one opaque color attachment, for the given
// vertex and fragment modules.
func DefaultGraphicsPipelineProperties(vertex, fragment *ShaderModule) GraphicsPipelineProperties {
	return GraphicsPipelineProperties{
		Stages: []ShaderStage{
			{Stage: native.ShaderStageVertex, Module: vertex, EntryPoint: "main"},
			{Stage: native.ShaderStageFragment, Module: fragment, EntryPoint: "main"},
		},
		Topology:    native.PrimitiveTopologyTriangleList,
		PolygonMode: native.PolygonModeFill,
		CullMode:    native.CullModeBack,
		FrontFace:   native.FrontFaceCounterClockwise,
		LineWidth:   1,
		Samples:     native.SampleCount1,
		ColorBlend: []native.ColorBlendAttachment{{
			WriteMask: native.ColorComponentRGBA,
		}},
	}
}

func (p GraphicsPipelineProperties) Clone() GraphicsPipelineProperties {
	p.Stages = slices.Clone(p.Stages)
	p.VertexBindings = slices.Clone(p.VertexBindings)
	p.VertexAttributes = slices.Clone(p.VertexAttributes)
	p.ColorBlend = slices.Clone(p.ColorBlend)
	if p.DepthStencil != nil {
		ds := *p.DepthStencil
		p.DepthStencil = &ds
	}
	return p
}

func (p GraphicsPipelineProperties) CreateInfo(layout, renderPass native.Handle) native.GraphicsPipelineCreateInfo {
	c := p.Clone()
	stages := make([]native.ShaderStageCreateInfo, len(c.Stages))
	for i, s := range c.Stages {
		stages[i] = s.createInfo()
	}
	return native.GraphicsPipelineCreateInfo{
		Flags:            c.Flags,
		Stages:           stages,
		VertexBindings:   c.VertexBindings,
		VertexAttributes: c.VertexAttributes,
		Topology:         c.Topology,
		PolygonMode:      c.PolygonMode,
		CullMode:         c.CullMode,
		FrontFace:        c.FrontFace,
		LineWidth:        c.LineWidth,
		Samples:          c.Samples,
		ColorBlend:       c.ColorBlend,
		DepthStencil:     c.DepthStencil,
		Layout:           layout,
		RenderPass:       renderPass,
		Subpass:          c.Subpass,
	}
}

// GraphicsPipelinePropertiesFromCreateInfo converts info back. Shader
// modules cannot be recovered from raw handles and are left nil.
func GraphicsPipelinePropertiesFromCreateInfo(info *native.GraphicsPipelineCreateInfo) GraphicsPipelineProperties {
	stages := make([]ShaderStage, len(info.Stages))
	for i, s := range info.Stages {
		stages[i] = ShaderStage{Stage: s.Stage, EntryPoint: s.EntryPoint}
	}
	return GraphicsPipelineProperties{
		Flags:            info.Flags,
		Stages:           stages,
		VertexBindings:   info.VertexBindings,
		VertexAttributes: info.VertexAttributes,
		Topology:         info.Topology,
		PolygonMode:      info.PolygonMode,
		CullMode:         info.CullMode,
		FrontFace:        info.FrontFace,
		LineWidth:        info.LineWidth,
		Samples:          info.Samples,
		ColorBlend:       info.ColorBlend,
		DepthStencil:     info.DepthStencil,
		Subpass:          info.Subpass,
	}.Clone()
}

// NewGraphicsPipeline creates a graphics pipeline for a subpass of
// renderPass. cache may be nil.
func NewGraphicsPipeline(layout *PipelineLayout, renderPass *RenderPass, cache *PipelineCache, props GraphicsPipelineProperties) (*GraphicsPipeline, error) {
	deps := []dep{need("layout", layout), need("render pass", renderPass)}
	for _, s := range props.Stages {
		deps = append(deps, need("shader module", s.Module))
	}
	deps = append(deps, maybe("cache", cache))

	p := &GraphicsPipeline{layout: layout, renderPass: renderPass, cache: cache}
	err := build(&p.object, KindGraphicsPipeline, props,
		func() error {
			if int(props.Subpass) >= len(renderPass.props.Subpasses) {
				return mismatch(KindGraphicsPipeline, "render pass", MismatchCount)
			}
			return pipelineLineage(KindGraphicsPipeline, layout, cache, renderPass, props.Stages)
		},
		func() (native.Handle, native.Result) {
			info := props.CreateInfo(layout.Handle(), renderPass.Handle())
			return layout.drv.CreateGraphicsPipeline(layout.device.Handle(), cacheHandle(cache), &info)
		},
		destroyPipeline(layout),
		deps...,
	)
	if err != nil {
		return nil, err
	}
	return track(p), nil
}

func (p *GraphicsPipeline) Retain() *GraphicsPipeline { p.retain(); return p }

func (p *GraphicsPipeline) Layout() *PipelineLayout { return p.layout }

func (p *GraphicsPipeline) RenderPass() *RenderPass { return p.renderPass }

// Cache returns the pipeline cache, or nil.
func (p *GraphicsPipeline) Cache() *PipelineCache { return p.cache }

func (p *GraphicsPipeline) Device() *Device { return p.layout.device }
