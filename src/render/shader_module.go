package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"vkgraph/src/render/native"
)

const spirvMagic = 0x07230203

var ErrInvalidSPIRV = errors.New("render: invalid SPIR-V")

type ShaderModule struct {
	object[ShaderModuleProperties]
	device *Device
}

type ShaderModuleProperties struct {
	Code []uint32
}

func (p ShaderModuleProperties) Clone() ShaderModuleProperties {
	p.Code = slices.Clone(p.Code)
	return p
}

func (p ShaderModuleProperties) CreateInfo() native.ShaderModuleCreateInfo {
	return native.ShaderModuleCreateInfo{Code: slices.Clone(p.Code)}
}

func ShaderModulePropertiesFromCreateInfo(info *native.ShaderModuleCreateInfo) ShaderModuleProperties {
	return ShaderModuleProperties{Code: slices.Clone(info.Code)}
}

// ShaderModulePropertiesFromSPIRV decodes a SPIR-V binary in either byte
// order.
func ShaderModulePropertiesFromSPIRV(b []byte) (ShaderModuleProperties, error) {
	if len(b) < 20 || len(b)%4 != 0 {
		return ShaderModuleProperties{}, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(b))
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch {
	case binary.LittleEndian.Uint32(b) == spirvMagic:
	case binary.BigEndian.Uint32(b) == spirvMagic:
		order = binary.BigEndian
	default:
		return ShaderModuleProperties{}, fmt.Errorf("%w: bad magic %#x", ErrInvalidSPIRV, binary.LittleEndian.Uint32(b))
	}
	code := make([]uint32, len(b)/4)
	for i := range code {
		code[i] = order.Uint32(b[i*4:])
	}
	return ShaderModuleProperties{Code: code}, nil
}

func NewShaderModule(device *Device, props ShaderModuleProperties) (*ShaderModule, error) {
	m := &ShaderModule{device: device}
	err := build(&m.object, KindShaderModule, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateShaderModule(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyShaderModule(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(m), nil
}

func (m *ShaderModule) Retain() *ShaderModule { m.retain(); return m }

func (m *ShaderModule) Device() *Device { return m.device }
