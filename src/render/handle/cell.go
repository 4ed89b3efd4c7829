// Package handle implements the cell that exclusively owns one native
// handle and the operation that destroys it.
package handle

import (
	"errors"
	"sync/atomic"

	"vkgraph/src/render/native"
)

// ErrReleased is returned by Release on every call after the first.
var ErrReleased = errors.New("handle: already released")

// DestroyFunc destroys raw. It captures whatever parent handle or allocator
// the native destroy call needs. A returned error is reported but the handle
// is considered gone either way.
type DestroyFunc func(raw native.Handle) error

// Cell owns a single native handle. The destroy function runs at most once,
// and only when the cell was built from a live handle.
type Cell struct {
	raw      native.Handle
	destroy  DestroyFunc
	released atomic.Bool
}

// New wraps raw. A nil destroy is valid for handles that are owned by
// something else (queues, physical devices, swapchain images).
func New(raw native.Handle, destroy DestroyFunc) *Cell {
	return &Cell{raw: raw, destroy: destroy}
}

// Create runs the native create call and wraps its result. On failure no
// cell is returned and the native result is passed back untouched.
func Create(create func() (native.Handle, native.Result), destroy DestroyFunc) (*Cell, native.Result) {
	raw, res := create()
	if res.IsError() {
		return nil, res
	}
	if raw == native.NullHandle {
		return nil, native.ErrorUnknown
	}
	return New(raw, destroy), res
}

// Raw returns the native handle without transferring ownership. The value
// is only meaningful while the owner of the cell keeps it alive; nothing
// stops a caller from using it afterwards.
func (c *Cell) Raw() native.Handle { return c.raw }

// Live reports whether Release has not run yet.
func (c *Cell) Live() bool { return !c.released.Load() }

// Release destroys the handle. Only the first call has any effect.
func (c *Cell) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	if c.destroy == nil || c.raw == native.NullHandle {
		return nil
	}
	return c.destroy(c.raw)
}
