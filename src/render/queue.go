package render

import (
	"vkgraph/src/render/native"
)

// Queue is retrieved from a device, never created. It keeps the device
// alive so that work can still be waited on.
type Queue struct {
	object[QueueProperties]
	device *Device
}

type QueueProperties struct {
	Family uint32
	Index  uint32
	Flags  native.QueueFlags
}

func (p QueueProperties) Clone() QueueProperties { return p }

func newQueue(device *Device, family, index uint32) (*Queue, error) {
	held, err := acquire(KindQueue, nil, need("device", device))
	if err != nil {
		return nil, err
	}
	props := QueueProperties{Family: family, Index: index}
	if fams := device.PhysicalDevice().props.QueueFamilies; int(family) < len(fams) {
		props.Flags = fams[family].Flags
	}
	raw := device.drv.GetDeviceQueue(device.Handle(), family, index)
	q := &Queue{device: device}
	q.init(KindQueue, device.drv, props, adopt(KindQueue, raw, nil), held)
	return track(q), nil
}

func (q *Queue) Retain() *Queue { q.retain(); return q }

func (q *Queue) Device() *Device { return q.device }

func (q *Queue) Family() uint32 { return q.props.Family }

func (q *Queue) WaitIdle() error {
	return NewError(q.drv.QueueWaitIdle(q.Handle()))
}
