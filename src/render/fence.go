package render

import (
	"time"

	"vkgraph/src/render/native"
)

type Fence struct {
	object[FenceProperties]
	device *Device
}

type FenceProperties struct {
	Flags native.FenceCreateFlags
}

func (p FenceProperties) Clone() FenceProperties { return p }

func (p FenceProperties) CreateInfo() native.FenceCreateInfo { return native.FenceCreateInfo(p) }

func FencePropertiesFromCreateInfo(info *native.FenceCreateInfo) FenceProperties {
	return FenceProperties(*info)
}

func NewFence(device *Device, props FenceProperties) (*Fence, error) {
	f := &Fence{device: device}
	err := build(&f.object, KindFence, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateFence(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyFence(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(f), nil
}

func (f *Fence) Retain() *Fence { f.retain(); return f }

func (f *Fence) Device() *Device { return f.device }

// Status reports whether the fence is signaled without blocking.
func (f *Fence) Status() (bool, error) {
	res := f.drv.GetFenceStatus(f.device.Handle(), f.Handle())
	if res == native.NotReady {
		return false, nil
	}
	return waitResult(res)
}

// Wait blocks until the fence is signaled or timeout expires, and reports
// which happened. A negative timeout waits forever.
func (f *Fence) Wait(timeout time.Duration) (bool, error) {
	return f.device.WaitForFences([]*Fence{f}, true, timeout)
}

func (f *Fence) Reset() error {
	return NewError(f.drv.ResetFences(f.device.Handle(), []native.Handle{f.Handle()}))
}
