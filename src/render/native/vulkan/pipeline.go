package vulkan

import (
	"runtime"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vkgraph/src/render/native"
)

func (d *Driver) CreatePipelineLayout(device native.Handle, info *native.PipelineLayoutCreateInfo) (native.Handle, native.Result) {
	ranges := make([]vk.PushConstantRange, len(info.PushConstantRanges))
	for i, r := range info.PushConstantRanges {
		ranges[i] = vk.PushConstantRange{
			StageFlags: vk.ShaderStageFlags(r.StageFlags),
			Offset:     r.Offset,
			Size:       r.Size,
		}
	}
	ci := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		Flags:                  vk.PipelineLayoutCreateFlags(info.Flags),
		SetLayoutCount:         uint32(len(info.SetLayouts)),
		PSetLayouts:            lookupAll[vk.DescriptorSetLayout](&d.objects, info.SetLayouts),
		PushConstantRangeCount: uint32(len(ranges)),
		PPushConstantRanges:    ranges,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(d.device(device), &ci, nil, &layout); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(layout), native.Success
}

func (d *Driver) DestroyPipelineLayout(device, layout native.Handle) {
	vk.DestroyPipelineLayout(d.device(device), take[vk.PipelineLayout](&d.objects, layout), nil)
}

func (d *Driver) CreatePipelineCache(device native.Handle, info *native.PipelineCacheCreateInfo) (native.Handle, native.Result) {
	ci := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	var pin runtime.Pinner
	defer pin.Unpin()
	if len(info.InitialData) > 0 {
		pin.Pin(&info.InitialData[0])
		ci.InitialDataSize = uint(len(info.InitialData))
		ci.PInitialData = unsafe.Pointer(&info.InitialData[0])
	}
	var cache vk.PipelineCache
	if res := vk.CreatePipelineCache(d.device(device), &ci, nil, &cache); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(cache), native.Success
}

func (d *Driver) DestroyPipelineCache(device, cache native.Handle) {
	vk.DestroyPipelineCache(d.device(device), take[vk.PipelineCache](&d.objects, cache), nil)
}

func attachmentRefs(refs []native.AttachmentReference) []vk.AttachmentReference {
	out := make([]vk.AttachmentReference, len(refs))
	for i, r := range refs {
		out[i] = vk.AttachmentReference{Attachment: r.Attachment, Layout: vk.ImageLayout(r.Layout)}
	}
	return out
}

func (d *Driver) CreateRenderPass(device native.Handle, info *native.RenderPassCreateInfo) (native.Handle, native.Result) {
	attachments := make([]vk.AttachmentDescription, len(info.Attachments))
	for i, a := range info.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCountFlagBits(a.Samples),
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}
	subpasses := make([]vk.SubpassDescription, len(info.Subpasses))
	for i, s := range info.Subpasses {
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:       vk.PipelineBindPoint(s.BindPoint),
			InputAttachmentCount:    uint32(len(s.InputAttachments)),
			PInputAttachments:       attachmentRefs(s.InputAttachments),
			ColorAttachmentCount:    uint32(len(s.ColorAttachments)),
			PColorAttachments:       attachmentRefs(s.ColorAttachments),
			PreserveAttachmentCount: uint32(len(s.PreserveAttachments)),
			PPreserveAttachments:    s.PreserveAttachments,
		}
		if s.DepthAttachment != nil {
			subpasses[i].PDepthStencilAttachment = &vk.AttachmentReference{
				Attachment: s.DepthAttachment.Attachment,
				Layout:     vk.ImageLayout(s.DepthAttachment.Layout),
			}
		}
	}
	deps := make([]vk.SubpassDependency, len(info.Dependencies))
	for i, dep := range info.Dependencies {
		deps[i] = vk.SubpassDependency{
			SrcSubpass:    dep.SrcSubpass,
			DstSubpass:    dep.DstSubpass,
			SrcStageMask:  vk.PipelineStageFlags(dep.SrcStageMask),
			DstStageMask:  vk.PipelineStageFlags(dep.DstStageMask),
			SrcAccessMask: vk.AccessFlags(dep.SrcAccessMask),
			DstAccessMask: vk.AccessFlags(dep.DstAccessMask),
		}
	}
	ci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(deps)),
		PDependencies:   deps,
	}
	var pass vk.RenderPass
	if res := vk.CreateRenderPass(d.device(device), &ci, nil, &pass); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(pass), native.Success
}

func (d *Driver) DestroyRenderPass(device, renderPass native.Handle) {
	vk.DestroyRenderPass(d.device(device), take[vk.RenderPass](&d.objects, renderPass), nil)
}

func (d *Driver) CreateFramebuffer(device native.Handle, info *native.FramebufferCreateInfo) (native.Handle, native.Result) {
	ci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      lookup[vk.RenderPass](&d.objects, info.RenderPass),
		AttachmentCount: uint32(len(info.Attachments)),
		PAttachments:    lookupAll[vk.ImageView](&d.objects, info.Attachments),
		Width:           info.Width,
		Height:          info.Height,
		Layers:          info.Layers,
	}
	var fb vk.Framebuffer
	if res := vk.CreateFramebuffer(d.device(device), &ci, nil, &fb); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(fb), native.Success
}

func (d *Driver) DestroyFramebuffer(device, framebuffer native.Handle) {
	vk.DestroyFramebuffer(d.device(device), take[vk.Framebuffer](&d.objects, framebuffer), nil)
}

func (d *Driver) stage(s native.ShaderStageCreateInfo) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFlagBits(s.Stage),
		Module: lookup[vk.ShaderModule](&d.objects, s.Module),
		PName:  cstr(s.EntryPoint),
	}
}

func (d *Driver) CreateComputePipeline(device, cache native.Handle, info *native.ComputePipelineCreateInfo) (native.Handle, native.Result) {
	ci := vk.ComputePipelineCreateInfo{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Flags:  vk.PipelineCreateFlags(info.Flags),
		Stage:  d.stage(info.Stage),
		Layout: lookup[vk.PipelineLayout](&d.objects, info.Layout),
	}
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateComputePipelines(d.device(device), lookup[vk.PipelineCache](&d.objects, cache),
		1, []vk.ComputePipelineCreateInfo{ci}, nil, pipelines)
	if res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(pipelines[0]), native.Success
}

func (d *Driver) CreateGraphicsPipeline(device, cache native.Handle, info *native.GraphicsPipelineCreateInfo) (native.Handle, native.Result) {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(info.Stages))
	for i, s := range info.Stages {
		stages[i] = d.stage(s)
	}
	bindings := make([]vk.VertexInputBindingDescription, len(info.VertexBindings))
	for i, b := range info.VertexBindings {
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRate(b.InputRate),
		}
	}
	attrs := make([]vk.VertexInputAttributeDescription, len(info.VertexAttributes))
	for i, a := range info.VertexAttributes {
		attrs[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		}
	}
	blend := make([]vk.PipelineColorBlendAttachmentState, len(info.ColorBlend))
	for i, b := range info.ColorBlend {
		blend[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         boolean(b.BlendEnable),
			SrcColorBlendFactor: vk.BlendFactor(b.SrcColorFactor),
			DstColorBlendFactor: vk.BlendFactor(b.DstColorFactor),
			ColorBlendOp:        vk.BlendOp(b.ColorOp),
			SrcAlphaBlendFactor: vk.BlendFactor(b.SrcAlphaFactor),
			DstAlphaBlendFactor: vk.BlendFactor(b.DstAlphaFactor),
			AlphaBlendOp:        vk.BlendOp(b.AlphaOp),
			ColorWriteMask:      vk.ColorComponentFlags(b.WriteMask),
		}
	}

	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopology(info.Topology),
	}
	viewport := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	raster := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonMode(info.PolygonMode),
		CullMode:    vk.CullModeFlags(info.CullMode),
		FrontFace:   vk.FrontFace(info.FrontFace),
		LineWidth:   info.LineWidth,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCountFlagBits(info.Samples),
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(blend)),
		PAttachments:    blend,
	}
	dynamic := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: 2,
		PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}
	ci := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		Flags:               vk.PipelineCreateFlags(info.Flags),
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewport,
		PRasterizationState: &raster,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamic,
		Layout:              lookup[vk.PipelineLayout](&d.objects, info.Layout),
		RenderPass:          lookup[vk.RenderPass](&d.objects, info.RenderPass),
		Subpass:             info.Subpass,
	}
	if ds := info.DepthStencil; ds != nil {
		ci.PDepthStencilState = &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  boolean(ds.DepthTestEnable),
			DepthWriteEnable: boolean(ds.DepthWriteEnable),
			DepthCompareOp:   vk.CompareOp(ds.DepthCompareOp),
		}
	}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(d.device(device), lookup[vk.PipelineCache](&d.objects, cache),
		1, []vk.GraphicsPipelineCreateInfo{ci}, nil, pipelines)
	if res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(pipelines[0]), native.Success
}

func (d *Driver) DestroyPipeline(device, pipeline native.Handle) {
	vk.DestroyPipeline(d.device(device), take[vk.Pipeline](&d.objects, pipeline), nil)
}
