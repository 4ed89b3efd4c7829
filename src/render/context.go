package render

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"vkgraph/src/render/native"
)

// Context is a ready to use root graph: an instance, an optional debug
// messenger, a physical device, a logical device with one queue, an
// allocator and a command pool for that queue's family.
//
// The context holds one reference on each of them. Callers that keep an
// object past Close must Retain it first.
type Context struct {
	instance       *Instance
	messenger      *DebugMessenger
	physicalDevice *PhysicalDevice
	device         *Device
	queue          *Queue
	allocator      *Allocator
	commandPool    *CommandPool

	mu        sync.Mutex
	onCleanup []func() error
	closed    bool
}

type ContextOptions struct {
	Instance InstanceProperties
	// Debug attaches a messenger built from Messenger to the device.
	Debug     bool
	Messenger DebugMessengerProperties
	// QueueFlags selects the queue family. The first family supporting all
	// of them is used.
	QueueFlags       native.QueueFlags
	DeviceExtensions []string
	Allocator        AllocatorProperties
	CommandPoolFlags native.CommandPoolCreateFlags
}

// DefaultContextOptions asks for a graphics and compute queue without
// validation output.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		Instance:         DefaultInstanceProperties(),
		Messenger:        DefaultDebugMessengerProperties(),
		QueueFlags:       native.QueueGraphics | native.QueueCompute,
		CommandPoolFlags: native.CommandPoolCreateResetCommandBuffer,
	}
}

// ErrNoSuitableDevice is returned by NewContext when no physical device has
// a queue family and the extensions the options ask for.
var ErrNoSuitableDevice = errors.New("render: no suitable physical device")

// NewContext builds the root graph on drv, with alloc as the memory
// allocation service. Anything built before a failure is released again.
func NewContext(drv native.Driver, alloc native.Allocator, opts ContextOptions) (*Context, error) {
	c := &Context{}
	if err := c.build(drv, alloc, opts); err != nil {
		c.release()
		return nil, err
	}
	return c, nil
}

func (c *Context) build(drv native.Driver, alloc native.Allocator, opts ContextOptions) error {
	var err error
	if c.instance, err = NewInstance(drv, opts.Instance); err != nil {
		return fmt.Errorf("instance: %w", err)
	}
	if opts.Debug {
		if c.messenger, err = NewDebugMessenger(c.instance, opts.Messenger); err != nil {
			return fmt.Errorf("debug messenger: %w", err)
		}
	}

	family, err := c.pickPhysicalDevice(opts)
	if err != nil {
		return err
	}

	props := DefaultDeviceProperties(family)
	props.Extensions = opts.DeviceExtensions
	if c.device, err = NewDevice(c.physicalDevice, c.messenger, props); err != nil {
		return fmt.Errorf("device: %w", err)
	}
	if c.queue, err = c.device.Queue(family, 0); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	if c.allocator, err = NewAllocator(alloc, c.device, opts.Allocator); err != nil {
		return fmt.Errorf("allocator: %w", err)
	}
	poolProps := CommandPoolProperties{Flags: opts.CommandPoolFlags, QueueFamilyIndex: family}
	if c.commandPool, err = NewCommandPool(c.device, poolProps); err != nil {
		return fmt.Errorf("command pool: %w", err)
	}

	Logger().Info("context ready",
		zap.String("device", c.physicalDevice.props.Name),
		zap.Stringer("type", c.physicalDevice.props.Type),
		zap.Uint32("queueFamily", family))
	return nil
}

// pickPhysicalDevice keeps the best device and releases the others. A
// discrete GPU wins over anything else that qualifies.
func (c *Context) pickPhysicalDevice(opts ContextOptions) (uint32, error) {
	pds, err := c.instance.EnumeratePhysicalDevices()
	if err != nil {
		return 0, fmt.Errorf("enumerate physical devices: %w", err)
	}
	best, family := -1, uint32(0)
	for i, pd := range pds {
		f, ok := pd.QueueFamily(opts.QueueFlags)
		if !ok || !supportsAll(pd, opts.DeviceExtensions) {
			continue
		}
		if best < 0 || (pd.props.Type == native.PhysicalDeviceTypeDiscreteGPU &&
			pds[best].props.Type != native.PhysicalDeviceTypeDiscreteGPU) {
			best, family = i, f
		}
	}
	for i, pd := range pds {
		if i != best {
			pd.Release()
		}
	}
	if best < 0 {
		return 0, ErrNoSuitableDevice
	}
	c.physicalDevice = pds[best]
	return family, nil
}

func supportsAll(pd *PhysicalDevice, extensions []string) bool {
	for _, e := range extensions {
		if !pd.SupportsExtension(e) {
			return false
		}
	}
	return true
}

func (c *Context) Instance() *Instance { return c.instance }

// DebugMessenger returns nil unless the context was built with Debug set.
func (c *Context) DebugMessenger() *DebugMessenger { return c.messenger }

func (c *Context) PhysicalDevice() *PhysicalDevice { return c.physicalDevice }

func (c *Context) Device() *Device { return c.device }

func (c *Context) Queue() *Queue { return c.queue }

func (c *Context) Allocator() *Allocator { return c.allocator }

func (c *Context) CommandPool() *CommandPool { return c.commandPool }

// SetOnCleanup registers fn to run at the start of Close, before any
// reference is dropped. Callbacks run in reverse registration order.
func (c *Context) SetOnCleanup(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCleanup = append(c.onCleanup, fn)
}

// Close runs the cleanup callbacks, waits for the device to go idle and
// drops the context's references, newest first. Objects still held
// elsewhere survive until their holders release them. Calling Close again
// does nothing.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	callbacks := c.onCleanup
	c.onCleanup = nil
	c.mu.Unlock()

	var errs []error
	for i := len(callbacks) - 1; i >= 0; i-- {
		if err := callbacks[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.device.WaitIdle(); err != nil {
		errs = append(errs, fmt.Errorf("wait idle: %w", err))
	}
	c.release()
	return errors.Join(errs...)
}

func (c *Context) release() {
	roots := []Object{
		link(c.commandPool),
		link(c.allocator),
		link(c.queue),
		link(c.device),
		link(c.physicalDevice),
		link(c.messenger),
		link(c.instance),
	}
	for _, o := range roots {
		if o != nil {
			o.Release()
		}
	}
}
