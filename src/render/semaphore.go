package render

import (
	"vkgraph/src/render/native"
)

type Semaphore struct {
	object[SemaphoreProperties]
	device *Device
}

type SemaphoreProperties struct {
	Flags native.SemaphoreCreateFlags
}

func (p SemaphoreProperties) Clone() SemaphoreProperties { return p }

func (p SemaphoreProperties) CreateInfo() native.SemaphoreCreateInfo {
	return native.SemaphoreCreateInfo(p)
}

func SemaphorePropertiesFromCreateInfo(info *native.SemaphoreCreateInfo) SemaphoreProperties {
	return SemaphoreProperties(*info)
}

func NewSemaphore(device *Device, props SemaphoreProperties) (*Semaphore, error) {
	s := &Semaphore{device: device}
	err := build(&s.object, KindSemaphore, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateSemaphore(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroySemaphore(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(s), nil
}

func (s *Semaphore) Retain() *Semaphore { s.retain(); return s }

func (s *Semaphore) Device() *Device { return s.device }
