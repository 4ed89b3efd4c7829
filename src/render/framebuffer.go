package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// Framebuffer binds image views to the attachments of a render pass. It
// holds the pass and every view.
type Framebuffer struct {
	object[FramebufferProperties]
	renderPass *RenderPass
}

type FramebufferProperties struct {
	Attachments []*ImageView
	Width       uint32
	Height      uint32
	Layers      uint32
}

func (p FramebufferProperties) Clone() FramebufferProperties {
	p.Attachments = slices.Clone(p.Attachments)
	return p
}

func (p FramebufferProperties) CreateInfo(renderPass native.Handle) native.FramebufferCreateInfo {
	views := make([]native.Handle, len(p.Attachments))
	for i, v := range p.Attachments {
		views[i] = v.Handle()
	}
	return native.FramebufferCreateInfo{
		RenderPass:  renderPass,
		Attachments: views,
		Width:       p.Width,
		Height:      p.Height,
		Layers:      p.Layers,
	}
}

// FramebufferPropertiesFromCreateInfo converts info back. Attachments
// cannot be recovered from raw handles and are left empty.
func FramebufferPropertiesFromCreateInfo(info *native.FramebufferCreateInfo) FramebufferProperties {
	return FramebufferProperties{Width: info.Width, Height: info.Height, Layers: info.Layers}
}

// NewFramebuffer creates a framebuffer for renderPass. There must be one
// attachment per render pass attachment, all on the pass's device.
func NewFramebuffer(renderPass *RenderPass, props FramebufferProperties) (*Framebuffer, error) {
	deps := []dep{need("render pass", renderPass)}
	for _, v := range props.Attachments {
		deps = append(deps, need("attachment", v))
	}
	fb := &Framebuffer{renderPass: renderPass}
	err := build(&fb.object, KindFramebuffer, props,
		func() error {
			if len(props.Attachments) != renderPass.AttachmentCount() {
				return mismatch(KindFramebuffer, "attachment", MismatchCount)
			}
			for _, v := range props.Attachments {
				if err := sameDevice(KindFramebuffer, "attachment", renderPass.device, v.Device()); err != nil {
					return err
				}
			}
			return nil
		},
		func() (native.Handle, native.Result) {
			info := props.CreateInfo(renderPass.Handle())
			return renderPass.drv.CreateFramebuffer(renderPass.device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { renderPass.drv.DestroyFramebuffer(renderPass.device.Handle(), raw) }),
		deps...,
	)
	if err != nil {
		return nil, err
	}
	return track(fb), nil
}

func (fb *Framebuffer) Retain() *Framebuffer { fb.retain(); return fb }

func (fb *Framebuffer) RenderPass() *RenderPass { return fb.renderPass }

func (fb *Framebuffer) Device() *Device { return fb.renderPass.device }

func (fb *Framebuffer) Extent() native.Extent2D {
	return native.Extent2D{Width: fb.props.Width, Height: fb.props.Height}
}
