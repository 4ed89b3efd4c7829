// Package vulkan implements native.Driver and native.Allocator on top of
// github.com/vulkan-go/vulkan.
//
// Native objects are kept in a handle table so the render package only ever
// sees opaque native.Handle values. Memory allocation is dedicated: every
// Allocate call is one vkAllocateMemory.
package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/vulkan-go/vulkan"

	"vkgraph/src/render/native"
)

// Driver is the Vulkan backend. Create one with Open.
type Driver struct {
	objects table

	mu              sync.Mutex
	physicalDevices map[native.Handle][]native.Handle
	queues          map[queueKey]native.Handle
	swapchainImages map[native.Handle][]native.Handle
}

type queueKey struct {
	device        native.Handle
	family, index uint32
}

var (
	_ native.Driver    = (*Driver)(nil)
	_ native.Allocator = (*Driver)(nil)
)

// Open loads the Vulkan loader with its default proc address lookup.
func Open() (*Driver, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, fmt.Errorf("vulkan: load: %w", err)
	}
	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("vulkan: init: %w", err)
	}
	return newDriver(), nil
}

func newDriver() *Driver {
	return &Driver{
		objects:         newTable(),
		physicalDevices: make(map[native.Handle][]native.Handle),
		queues:          make(map[queueKey]native.Handle),
		swapchainImages: make(map[native.Handle][]native.Handle),
	}
}

// AdoptSurface registers a surface created by platform glue (for example
// glfw's CreateWindowSurface) so it can be passed to render.AdoptSurface.
func (d *Driver) AdoptSurface(surface vk.Surface) native.Handle {
	return d.objects.put(surface)
}

func result(res vk.Result) native.Result {
	return native.Result(res)
}

func boolean(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// cstr terminates s for the C side.
func cstr(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func cstrs(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = cstr(s)
	}
	return out
}

func makeVersion(v native.ApiVersion) uint32 {
	return vk.MakeVersion(int(v.Major), int(v.Minor), 0)
}

func parseVersion(v uint32) native.ApiVersion {
	return native.ApiVersion{Major: v >> 22, Minor: (v >> 12) & 0x3ff}
}
