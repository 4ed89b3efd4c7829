package render

import (
	"errors"

	"vkgraph/src/render/native"
)

type CommandPool struct {
	object[CommandPoolProperties]
	device *Device
}

type CommandPoolProperties struct {
	Flags            native.CommandPoolCreateFlags
	QueueFamilyIndex uint32
}

// DefaultCommandPoolProperties returns a pool for family whose buffers can
// be reset one by one.
func DefaultCommandPoolProperties(family uint32) CommandPoolProperties {
	return CommandPoolProperties{
		Flags:            native.CommandPoolCreateResetCommandBuffer,
		QueueFamilyIndex: family,
	}
}

func (p CommandPoolProperties) Clone() CommandPoolProperties { return p }

func (p CommandPoolProperties) CreateInfo() native.CommandPoolCreateInfo {
	return native.CommandPoolCreateInfo(p)
}

func CommandPoolPropertiesFromCreateInfo(info *native.CommandPoolCreateInfo) CommandPoolProperties {
	return CommandPoolProperties(*info)
}

func NewCommandPool(device *Device, props CommandPoolProperties) (*CommandPool, error) {
	p := &CommandPool{device: device}
	err := build(&p.object, KindCommandPool, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return device.drv.CreateCommandPool(device.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { device.drv.DestroyCommandPool(device.Handle(), raw) }),
		need("device", device),
	)
	if err != nil {
		return nil, err
	}
	return track(p), nil
}

func (p *CommandPool) Retain() *CommandPool { p.retain(); return p }

func (p *CommandPool) Device() *Device { return p.device }

// Reset returns every command buffer of the pool to the initial state. The
// buffers stay allocated.
func (p *CommandPool) Reset() error {
	return NewError(p.drv.ResetCommandPool(p.device.Handle(), p.Handle(), 0))
}

// AllocateCommandBuffers allocates n buffers of level. Each holds p and
// frees itself back to it on release.
func (p *CommandPool) AllocateCommandBuffers(level native.CommandBufferLevel, n int) ([]*CommandBuffer, error) {
	if n <= 0 {
		return nil, nil
	}
	held, err := acquire(KindCommandBuffer, nil, need("pool", p))
	if err != nil {
		return nil, err
	}
	defer releaseAll(held)

	raws, res := p.drv.AllocateCommandBuffers(p.device.Handle(), p.Handle(), level, uint32(n))
	if IsError(res) {
		return nil, failed(KindCommandBuffer, res)
	}
	out := make([]*CommandBuffer, len(raws))
	for i, raw := range raws {
		out[i] = newCommandBuffer(p, level, raw)
	}
	return out, nil
}

var errResetNotAllowed = errors.New("render: command pool was created without CommandPoolCreateResetCommandBuffer")

// CommandBuffer is a buffer allocated from a CommandPool.
type CommandBuffer struct {
	object[CommandBufferProperties]
	pool *CommandPool
}

type CommandBufferProperties struct {
	Level native.CommandBufferLevel
}

func (p CommandBufferProperties) Clone() CommandBufferProperties { return p }

func newCommandBuffer(pool *CommandPool, level native.CommandBufferLevel, raw native.Handle) *CommandBuffer {
	pool.retain()
	drv, dev := pool.drv, pool.device.Handle()
	cell := adopt(KindCommandBuffer, raw, destroyed(func(raw native.Handle) {
		drv.FreeCommandBuffers(dev, pool.Handle(), []native.Handle{raw})
	}))
	b := &CommandBuffer{pool: pool}
	b.init(KindCommandBuffer, pool.drv, CommandBufferProperties{Level: level}, cell, []Object{pool})
	return track(b)
}

func (b *CommandBuffer) Retain() *CommandBuffer { b.retain(); return b }

func (b *CommandBuffer) Pool() *CommandPool { return b.pool }

func (b *CommandBuffer) Device() *Device { return b.pool.device }

// Reset returns the buffer to the initial state. The pool must have been
// created with CommandPoolCreateResetCommandBuffer.
func (b *CommandBuffer) Reset() error {
	if b.pool.props.Flags&native.CommandPoolCreateResetCommandBuffer == 0 {
		return errResetNotAllowed
	}
	return NewError(b.drv.ResetCommandBuffer(b.Handle(), 0))
}
