package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
)

func storageLayout(t *testing.T, dev *Device) *DescriptorSetLayout {
	t.Helper()
	l, err := NewDescriptorSetLayout(dev, DescriptorSetLayoutProperties{
		Bindings: []DescriptorSetLayoutBinding{{
			Binding:    0,
			Type:       native.DescriptorTypeStorageBuffer,
			Count:      1,
			StageFlags: native.ShaderStageCompute,
		}},
	})
	require.NoError(t, err)
	return l
}

func TestDescriptorSets(t *testing.T) {
	drv, c := newContext(t)
	dev := c.Device()

	layout := storageLayout(t, dev)
	pool, err := NewDescriptorPool(dev, DefaultDescriptorPoolProperties(4,
		native.DescriptorPoolSize{Type: native.DescriptorTypeStorageBuffer, DescriptorCount: 4}))
	require.NoError(t, err)

	sets, err := pool.AllocateDescriptorSets(layout, layout)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	require.EqualValues(t, 3, pool.Refs())
	require.EqualValues(t, 3, layout.Refs())
	for _, s := range sets {
		require.Equal(t, pool, s.Pool())
		require.Equal(t, layout, s.Layout())
		require.Equal(t, dev, s.Device())
	}

	rawPool, rawLayout := pool.Handle(), layout.Handle()
	pool.Release()
	layout.Release()
	require.True(t, drv.IsLive(rawPool))

	sets[0].Release()
	require.Equal(t, 1, drv.Calls("FreeDescriptorSets"))
	sets[1].Release()
	require.Equal(t, 2, drv.Calls("FreeDescriptorSets"))
	require.False(t, drv.IsLive(rawPool))
	require.False(t, drv.IsLive(rawLayout))
}

func TestDescriptorSetsWithoutFree(t *testing.T) {
	drv, c := newContext(t)
	dev := c.Device()

	layout := storageLayout(t, dev)
	defer layout.Release()
	pool, err := NewDescriptorPool(dev, DescriptorPoolProperties{MaxSets: 1})
	require.NoError(t, err)

	sets, err := pool.AllocateDescriptorSets(layout)
	require.NoError(t, err)
	pool.Release()
	sets[0].Release()

	// The set goes back with its pool.
	require.Zero(t, drv.Calls("FreeDescriptorSets"))
	require.Equal(t, 1, drv.Calls("DestroyDescriptorPool"))
}

func TestAllocateDescriptorSetsFailure(t *testing.T) {
	drv, c := newContext(t)
	layout := storageLayout(t, c.Device())
	defer layout.Release()
	pool, err := NewDescriptorPool(c.Device(), DefaultDescriptorPoolProperties(1))
	require.NoError(t, err)
	defer pool.Release()

	drv.Fail("AllocateDescriptorSets", native.ErrorOutOfPoolMemory)
	sets, err := pool.AllocateDescriptorSets(layout)
	drv.Clear()
	require.Nil(t, sets)
	require.ErrorIs(t, err, native.ErrorOutOfPoolMemory)
	require.EqualValues(t, 1, pool.Refs())
	require.EqualValues(t, 1, layout.Refs())
}

func TestImmutableSamplers(t *testing.T) {
	drv, c := newContext(t)
	dev := c.Device()

	s, err := NewSampler(dev, DefaultSamplerProperties())
	require.NoError(t, err)
	layout, err := NewDescriptorSetLayout(dev, DescriptorSetLayoutProperties{
		Bindings: []DescriptorSetLayoutBinding{{
			Type:              native.DescriptorTypeSampler,
			Count:             1,
			StageFlags:        native.ShaderStageFragment,
			ImmutableSamplers: []*Sampler{s},
		}},
	})
	require.NoError(t, err)

	raw := s.Handle()
	s.Release()
	require.True(t, drv.IsLive(raw))
	layout.Release()
	require.False(t, drv.IsLive(raw))

	_, err = NewDescriptorSetLayout(dev, DescriptorSetLayoutProperties{
		Bindings: []DescriptorSetLayoutBinding{{Count: 1, ImmutableSamplers: []*Sampler{nil}}},
	})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchNil, me.Reason)
	require.Equal(t, "immutable sampler", me.Dependency)
}
