package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
)

func TestComputePipeline(t *testing.T) {
	drv, c := newContext(t)
	dev := c.Device()

	set := storageLayout(t, dev)
	layout, err := NewPipelineLayout(dev, PipelineLayoutProperties{
		SetLayouts:         []*DescriptorSetLayout{set},
		PushConstantRanges: []native.PushConstantRange{{StageFlags: native.ShaderStageCompute, Size: 16}},
	})
	require.NoError(t, err)
	set.Release()
	require.Equal(t, []*DescriptorSetLayout{set}, layout.SetLayouts())

	cache, err := NewPipelineCache(dev, PipelineCacheProperties{})
	require.NoError(t, err)
	shader := newShader(t, dev)

	p, err := NewComputePipeline(layout, cache, ComputePipelineProperties{
		Stage: ShaderStage{Stage: native.ShaderStageCompute, Module: shader},
	})
	require.NoError(t, err)
	require.Equal(t, cache, p.Cache())
	require.Equal(t, dev, p.Device())

	want := []native.Handle{p.Handle(), cache.Handle(), shader.Handle(), layout.Handle(), set.Handle()}
	layout.Release()
	cache.Release()
	shader.Release()
	start := len(drv.Destroyed())

	p.Release()
	require.Equal(t, want, drv.Destroyed()[start:])
}

func TestComputePipelineWithoutCache(t *testing.T) {
	_, c := newContext(t)
	dev := c.Device()

	layout, err := NewPipelineLayout(dev, PipelineLayoutProperties{})
	require.NoError(t, err)
	defer layout.Release()
	shader := newShader(t, dev)
	defer shader.Release()

	p, err := NewComputePipeline(layout, nil, ComputePipelineProperties{
		Stage: ShaderStage{Stage: native.ShaderStageCompute, Module: shader},
	})
	require.NoError(t, err)
	require.Nil(t, p.Cache())
	require.Equal(t, "main", p.Properties().Stage.createInfo().EntryPoint)
	p.Release()

	_, err = NewComputePipeline(layout, nil, ComputePipelineProperties{})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, "shader module", me.Dependency)
}

func TestGraphicsPipeline(t *testing.T) {
	drv, c := newContext(t)
	dev := c.Device()

	pass, err := NewRenderPass(dev, ColorPassProperties(native.FormatB8G8R8A8Srgb))
	require.NoError(t, err)
	layout, err := NewPipelineLayout(dev, PipelineLayoutProperties{})
	require.NoError(t, err)
	vert, frag := newShader(t, dev), newShader(t, dev)

	p, err := NewGraphicsPipeline(layout, pass, nil, DefaultGraphicsPipelineProperties(vert, frag))
	require.NoError(t, err)
	require.Equal(t, pass, p.RenderPass())
	require.EqualValues(t, 2, vert.Refs())

	bad := DefaultGraphicsPipelineProperties(vert, frag)
	bad.Subpass = 1
	n := eventCount(drv)
	_, err = NewGraphicsPipeline(layout, pass, nil, bad)
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchCount, me.Reason)
	require.Equal(t, n, eventCount(drv))

	for _, o := range []Object{pass, layout, vert, frag} {
		o.Release()
	}
	raws := []native.Handle{pass.Handle(), layout.Handle(), vert.Handle(), frag.Handle()}
	for _, raw := range raws {
		require.True(t, drv.IsLive(raw))
	}
	p.Release()
	for _, raw := range raws {
		require.False(t, drv.IsLive(raw))
	}
}

func TestFramebuffer(t *testing.T) {
	drv, c := newContext(t)
	dev := c.Device()

	pass, err := NewRenderPass(dev, ColorPassProperties(native.FormatR8G8B8A8Unorm))
	require.NoError(t, err)
	defer pass.Release()
	require.Equal(t, 1, pass.AttachmentCount())

	props := DefaultImageProperties(native.FormatR8G8B8A8Unorm, 32, 32)
	props.Usage = native.ImageUsageColorAttachment
	img, err := NewImage(c.Allocator(), props, DefaultAllocationProperties())
	require.NoError(t, err)
	view, err := NewImageView(img, ImageViewPropertiesFor(img.Properties()))
	require.NoError(t, err)
	img.Release()

	fb, err := NewFramebuffer(pass, FramebufferProperties{Attachments: []*ImageView{view}, Width: 32, Height: 32, Layers: 1})
	require.NoError(t, err)
	require.Equal(t, native.Extent2D{Width: 32, Height: 32}, fb.Extent())
	require.Equal(t, dev, fb.Device())

	n := eventCount(drv)
	_, err = NewFramebuffer(pass, FramebufferProperties{Attachments: []*ImageView{view, view}, Width: 32, Height: 32, Layers: 1})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchCount, me.Reason)
	require.Equal(t, n, eventCount(drv))

	raw := view.Handle()
	view.Release()
	require.True(t, drv.IsLive(raw))
	fb.Release()
	require.False(t, drv.IsLive(raw))
}

func TestRenderPassPropertiesClone(t *testing.T) {
	props := ColorPassProperties(native.FormatB8G8R8A8Srgb)
	depth := native.AttachmentReference{Attachment: 1, Layout: native.ImageLayoutDepthStencilAttachmentOptimal}
	props.Subpasses[0].DepthAttachment = &depth

	clone := props.Clone()
	clone.Subpasses[0].ColorAttachments[0].Attachment = 3
	clone.Subpasses[0].DepthAttachment.Attachment = 4

	require.EqualValues(t, 0, props.Subpasses[0].ColorAttachments[0].Attachment)
	require.EqualValues(t, 1, props.Subpasses[0].DepthAttachment.Attachment)

	info := props.CreateInfo()
	require.Equal(t, props, RenderPassPropertiesFromCreateInfo(&info))
}
