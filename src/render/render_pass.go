package render

import (
	"slices"

	"vkgraph/src/render/native"
)

type RenderPass struct {
	object[RenderPassProperties]
	device *Device
}

type RenderPassProperties struct {
	Attachments  []native.AttachmentDescription
	Subpasses    []native.SubpassDescription
	Dependencies []native.SubpassDependency
}

// ColorPassProperties describes a single subpass pass that clears one color
// attachment of format and leaves it ready for presentation.
func ColorPassProperties(format native.Format) RenderPassProperties {
	return RenderPassProperties{
		Attachments: []native.AttachmentDescription{{
			Format:         format,
			Samples:        native.SampleCount1,
			LoadOp:         native.AttachmentLoadOpClear,
			StoreOp:        native.AttachmentStoreOpStore,
			StencilLoadOp:  native.AttachmentLoadOpDontCare,
			StencilStoreOp: native.AttachmentStoreOpDontCare,
			InitialLayout:  native.ImageLayoutUndefined,
			FinalLayout:    native.ImageLayoutPresentSrc,
		}},
		Subpasses: []native.SubpassDescription{{
			BindPoint: native.PipelineBindPointGraphics,
			ColorAttachments: []native.AttachmentReference{{
				Attachment: 0,
				Layout:     native.ImageLayoutColorAttachmentOptimal,
			}},
		}},
		Dependencies: []native.SubpassDependency{{
			SrcSubpass:    native.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  native.PipelineStageColorAttachmentOutput,
			DstStageMask:  native.PipelineStageColorAttachmentOutput,
			DstAccessMask: native.AccessColorAttachmentRead | native.AccessColorAttachmentWrite,
		}},
	}
}

func (p RenderPassProperties) Clone() RenderPassProperties {
	p.Attachments = slices.Clone(p.Attachments)
	p.Subpasses = cloneSubpasses(p.Subpasses)
	p.Dependencies = slices.Clone(p.Dependencies)
	return p
}

func cloneSubpasses(in []native.SubpassDescription) []native.SubpassDescription {
	if in == nil {
		return nil
	}
	out := make([]native.SubpassDescription, len(in))
	for i, s := range in {
		s.InputAttachments = slices.Clone(s.InputAttachments)
		s.ColorAttachments = slices.Clone(s.ColorAttachments)
		s.PreserveAttachments = slices.Clone(s.PreserveAttachments)
		if s.DepthAttachment != nil {
			d := *s.DepthAttachment
			s.DepthAttachment = &d
		}
		out[i] = s
	}
	return out
}

func (p RenderPassProperties) CreateInfo() native.RenderPassCreateInfo {
	c := p.Clone()
	return native.RenderPassCreateInfo{
		Attachments:  c.Attachments,
		Subpasses:    c.Subpasses,
		Dependencies: c.Dependencies,
	}
}

func RenderPassPropertiesFromCreateInfo(info *native.RenderPassCreateInfo) RenderPassProperties {
	return RenderPassProperties{
		Attachments:  info.Attachments,
		Subpasses:    info.Subpasses,
		Dependencies: info.Dependencies,
	}.Clone()
}

func NewRenderPass(device *Device, props RenderPassProperties) (*RenderPass, error) {
	rp := &RenderPass{device: device}
	err := build(&rp.object, KindRenderPass, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateRenderPass(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyRenderPass(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(rp), nil
}

func (rp *RenderPass) Retain() *RenderPass { rp.retain(); return rp }

func (rp *RenderPass) Device() *Device { return rp.device }

// AttachmentCount is the number of attachments a framebuffer for this pass
// must provide.
func (rp *RenderPass) AttachmentCount() int { return len(rp.props.Attachments) }
