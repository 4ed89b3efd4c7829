package vulkan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
)

func TestTable(t *testing.T) {
	tb := newTable()
	a := tb.put("first")
	b := tb.put(42)
	require.NotEqual(t, native.NullHandle, a)
	require.NotEqual(t, a, b)

	require.Equal(t, "first", lookup[string](&tb, a))
	require.Equal(t, 0, lookup[int](&tb, a), "wrong type yields the zero value")
	require.Equal(t, "", lookup[string](&tb, native.NullHandle))
	require.Equal(t, []int{42, 0}, lookupAll[int](&tb, []native.Handle{b, a}))

	require.Equal(t, 42, take[int](&tb, b))
	require.Equal(t, 0, lookup[int](&tb, b))
	tb.drop(a)
	require.Zero(t, tb.len())

	require.Greater(t, tb.put(nil), b, "handles are never reused")
}

func TestChooseMemoryType(t *testing.T) {
	types := []native.MemoryType{
		{PropertyFlags: native.MemoryPropertyDeviceLocal},
		{PropertyFlags: native.MemoryPropertyHostVisible | native.MemoryPropertyHostCoherent},
		{PropertyFlags: native.MemoryPropertyHostVisible | native.MemoryPropertyHostCoherent | native.MemoryPropertyHostCached},
		{PropertyFlags: native.MemoryPropertyDeviceLocal | native.MemoryPropertyHostVisible | native.MemoryPropertyHostCoherent},
	}
	tests := []struct {
		name    string
		allowed uint32
		info    native.AllocationCreateInfo
		want    uint32
		ok      bool
	}{
		{"gpu only", 0xf, native.AllocationCreateInfo{Usage: native.MemoryUsageGPUOnly}, 0, true},
		{"cpu only avoids device local", 0xf, native.AllocationCreateInfo{Usage: native.MemoryUsageCPUOnly}, 1, true},
		{"cpu to gpu prefers device local", 0xf, native.AllocationCreateInfo{Usage: native.MemoryUsageCPUToGPU}, 3, true},
		{"gpu to cpu prefers cached", 0xf, native.AllocationCreateInfo{Usage: native.MemoryUsageGPUToCPU}, 2, true},
		{"allowed bits", 0x2, native.AllocationCreateInfo{Usage: native.MemoryUsageGPUOnly}, 1, true},
		{"required flags", 0x1, native.AllocationCreateInfo{RequiredFlags: native.MemoryPropertyHostVisible}, 0, false},
		{"lazily allocated", 0xf, native.AllocationCreateInfo{Usage: native.MemoryUsageGPULazilyAllocated}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := chooseMemoryType(types, tt.allowed, &tt.info)
			require.Equal(t, tt.ok, ok)
			if ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestVersions(t *testing.T) {
	v := uint32(1)<<22 | uint32(3)<<12 | 250
	require.Equal(t, native.ApiVersion13, parseVersion(v))
	require.Equal(t, "main\x00", cstr("main"))
	require.Equal(t, "main\x00", cstr("main\x00"))
	require.Equal(t, "\x00", cstr(""))
	require.Equal(t, []string{"a\x00", "b\x00"}, cstrs([]string{"a", "b"}))
}
