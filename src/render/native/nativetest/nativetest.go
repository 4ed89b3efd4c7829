// Package nativetest provides an in-memory native.Driver and
// native.Allocator that record every call.
//
// The fake behaves like a driver running under strict validation: each
// created handle remembers the handles it was created from, and destroying
// a handle while anything created from it is still alive is recorded as a
// violation. Tests assert on the event log, the live set and the violation
// list.
package nativetest

import (
	"fmt"
	"sort"
	"sync"

	"vkgraph/src/render/native"
)

// Event is one recorded native call.
type Event struct {
	Op     string
	Handle native.Handle
}

func (e Event) String() string { return fmt.Sprintf("%s(%d)", e.Op, e.Handle) }

type record struct {
	op      string
	parents []native.Handle
	// owned handles go away together with their first parent.
	owned bool

	mem      []byte
	mapped   bool
	memType  uint32
	signaled bool
	images   []native.Handle
}

type queueKey struct {
	device        native.Handle
	family, index uint32
}

// Driver is the recording fake. The zero value is not usable; call New.
type Driver struct {
	mu         sync.Mutex
	next       native.Handle
	live       map[native.Handle]*record
	events     []Event
	fail       map[string]native.Result
	violations []string

	physicalDevices map[native.Handle][]native.Handle
	queues          map[queueKey]native.Handle
	props           native.PhysicalDeviceProperties
	devicesPerInst  int
}

var (
	_ native.Driver    = (*Driver)(nil)
	_ native.Allocator = (*Driver)(nil)
)

// New returns an empty fake exposing two physical devices per instance.
func New() *Driver {
	return &Driver{
		live:            make(map[native.Handle]*record),
		fail:            make(map[string]native.Result),
		physicalDevices: make(map[native.Handle][]native.Handle),
		queues:          make(map[queueKey]native.Handle),
		devicesPerInst:  2,
		props: native.PhysicalDeviceProperties{
			Name:       "nativetest device",
			Type:       native.PhysicalDeviceTypeDiscreteGPU,
			VendorID:   0x1234,
			DeviceID:   0x5678,
			ApiVersion: native.ApiVersion13,
			QueueFamilies: []native.QueueFamilyProperties{
				{Flags: native.QueueGraphics | native.QueueCompute | native.QueueTransfer, Count: 4},
				{Flags: native.QueueTransfer, Count: 2},
			},
			MemoryTypes: []native.MemoryType{
				{PropertyFlags: native.MemoryPropertyDeviceLocal, HeapIndex: 0},
				{PropertyFlags: native.MemoryPropertyHostVisible | native.MemoryPropertyHostCoherent, HeapIndex: 1},
			},
			Extensions: []string{"VK_KHR_swapchain"},
		},
	}
}

// Fail makes every following call to op return res until Clear is called.
// op is the method name, e.g. "CreateBuffer" or "Allocate".
func (d *Driver) Fail(op string, res native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail[op] = res
}

// Clear removes every injected failure.
func (d *Driver) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = make(map[string]native.Result)
}

// Events returns a copy of the call log.
func (d *Driver) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// Ops returns the call log as "Op(handle)" strings.
func (d *Driver) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ops := make([]string, len(d.events))
	for i, e := range d.events {
		ops[i] = e.String()
	}
	return ops
}

// Calls returns how many times op was called.
func (d *Driver) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// Destroyed returns the handles passed to destroy or free calls, in order.
func (d *Driver) Destroyed() []native.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	var hs []native.Handle
	for _, e := range d.events {
		if isDestroy(e.Op) {
			hs = append(hs, e.Handle)
		}
	}
	return hs
}

// DestroyCount returns how many times h was destroyed or freed.
func (d *Driver) DestroyCount(h native.Handle) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Handle == h && isDestroy(e.Op) {
			n++
		}
	}
	return n
}

// Live returns the handles that were created and not destroyed yet,
// excluding handles owned by another object.
func (d *Driver) Live() []native.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	var hs []native.Handle
	for h, r := range d.live {
		if !r.owned {
			hs = append(hs, h)
		}
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

// IsLive reports whether h is alive.
func (d *Driver) IsLive(h native.Handle) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.live[h]
	return ok
}

// Violations returns every ordering error seen so far.
func (d *Driver) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// CreateSurface stands in for the platform surface glue: it produces a
// surface handle for instance that render.AdoptSurface can take over.
func (d *Driver) CreateSurface(instance native.Handle) native.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, _ := d.createLocked("CreateSurface", instance)
	return h
}

func isDestroy(op string) bool {
	for _, p := range []string{"Destroy", "Free"} {
		if len(op) >= len(p) && op[:len(p)] == p {
			return true
		}
	}
	return false
}

func (d *Driver) createLocked(op string, parents ...native.Handle) (native.Handle, native.Result) {
	if res, ok := d.fail[op]; ok {
		d.events = append(d.events, Event{Op: op, Handle: native.NullHandle})
		return native.NullHandle, res
	}
	for _, p := range parents {
		if p == native.NullHandle {
			continue
		}
		if _, ok := d.live[p]; !ok {
			d.violations = append(d.violations, fmt.Sprintf("%s: parent %d is not alive", op, p))
		}
	}
	d.next++
	h := d.next
	d.live[h] = &record{op: op, parents: compact(parents)}
	d.events = append(d.events, Event{Op: op, Handle: h})
	return h, native.Success
}

func (d *Driver) create(op string, parents ...native.Handle) (native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createLocked(op, parents...)
}

func (d *Driver) ownedLocked(op string, parent native.Handle) native.Handle {
	d.next++
	h := d.next
	d.live[h] = &record{op: op, parents: []native.Handle{parent}, owned: true}
	return h
}

func (d *Driver) destroyLocked(op string, h native.Handle) {
	d.events = append(d.events, Event{Op: op, Handle: h})
	if h == native.NullHandle {
		return
	}
	if _, ok := d.live[h]; !ok {
		d.violations = append(d.violations, fmt.Sprintf("%s: handle %d is not alive", op, h))
		return
	}
	for c, r := range d.live {
		if !r.hasParent(h) {
			continue
		}
		if !r.owned {
			d.violations = append(d.violations, fmt.Sprintf("%s(%d): child %s(%d) still alive", op, h, r.op, c))
			continue
		}
		for gc, gr := range d.live {
			if gr.hasParent(c) {
				d.violations = append(d.violations, fmt.Sprintf("%s(%d): %s(%d) still uses owned %s(%d)", op, h, gr.op, gc, r.op, c))
			}
		}
	}
	for c, r := range d.live {
		if r.owned && r.hasParent(h) {
			delete(d.live, c)
		}
	}
	delete(d.live, h)
}

func (d *Driver) destroy(op string, h native.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyLocked(op, h)
}

func (d *Driver) call(op string, h native.Handle) native.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: op, Handle: h})
	if res, ok := d.fail[op]; ok {
		return res
	}
	if _, ok := d.live[h]; !ok && h != native.NullHandle {
		d.violations = append(d.violations, fmt.Sprintf("%s: handle %d is not alive", op, h))
	}
	return native.Success
}

func (r *record) hasParent(h native.Handle) bool {
	for _, p := range r.parents {
		if p == h {
			return true
		}
	}
	return false
}

func compact(hs []native.Handle) []native.Handle {
	out := make([]native.Handle, 0, len(hs))
	for _, h := range hs {
		if h != native.NullHandle {
			out = append(out, h)
		}
	}
	return out
}
