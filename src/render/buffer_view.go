package render

import (
	"vkgraph/src/render/native"
)

// BufferView is a formatted view of a texel buffer.
type BufferView struct {
	object[BufferViewProperties]
	buffer *Buffer
}

type BufferViewProperties struct {
	Format native.Format
	Offset uint64
	Range  uint64
}

// DefaultBufferViewProperties views the whole buffer as format.
func DefaultBufferViewProperties(format native.Format) BufferViewProperties {
	return BufferViewProperties{Format: format, Range: native.WholeSize}
}

func (p BufferViewProperties) Clone() BufferViewProperties { return p }

func (p BufferViewProperties) CreateInfo(buffer native.Handle) native.BufferViewCreateInfo {
	return native.BufferViewCreateInfo{
		Buffer: buffer,
		Format: p.Format,
		Offset: p.Offset,
		Range:  p.Range,
	}
}

func BufferViewPropertiesFromCreateInfo(info *native.BufferViewCreateInfo) BufferViewProperties {
	return BufferViewProperties{Format: info.Format, Offset: info.Offset, Range: info.Range}
}

func NewBufferView(buffer *Buffer, props BufferViewProperties) (*BufferView, error) {
	v := &BufferView{buffer: buffer}
	err := build(&v.object, KindBufferView, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo(buffer.Handle())
			return buffer.drv.CreateBufferView(buffer.device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { buffer.drv.DestroyBufferView(buffer.device.Handle(), raw) }),
		need("buffer", buffer),
	)
	if err != nil {
		return nil, err
	}
	return track(v), nil
}

func (v *BufferView) Retain() *BufferView { v.retain(); return v }

func (v *BufferView) Buffer() *Buffer { return v.buffer }

func (v *BufferView) Device() *Device { return v.buffer.device }
