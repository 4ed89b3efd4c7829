package render

import (
	"vkgraph/src/render/native"
)

// Surface is a presentation target. Surfaces come from platform window
// code; this package only takes ownership of the handle.
type Surface struct {
	object[SurfaceProperties]
	instance *Instance
}

// SurfaceProperties records what the platform code reported when handing
// the surface over.
type SurfaceProperties struct {
	Extent       native.Extent2D
	Formats      []native.Format
	PresentModes []native.PresentMode
}

func (p SurfaceProperties) Clone() SurfaceProperties {
	p.Formats = append([]native.Format(nil), p.Formats...)
	p.PresentModes = append([]native.PresentMode(nil), p.PresentModes...)
	return p
}

// AdoptSurface takes ownership of raw, a surface created for instance by
// platform code. The surface is destroyed once the wrapper and everything
// built on it are released. A null raw handle is rejected.
func AdoptSurface(instance *Instance, raw native.Handle, props SurfaceProperties) (*Surface, error) {
	s := &Surface{instance: instance}
	err := build(&s.object, KindSurface, props, nil,
		func() (native.Handle, native.Result) {
			if raw == native.NullHandle {
				return native.NullHandle, native.ErrorSurfaceLost
			}
			return raw, native.Success
		},
		destroyed(func(raw native.Handle) { instance.drv.DestroySurface(instance.Handle(), raw) }),
		need("instance", instance),
	)
	if err != nil {
		return nil, err
	}
	return track(s), nil
}

func (s *Surface) Retain() *Surface { s.retain(); return s }

func (s *Surface) Instance() *Instance { return s.instance }
