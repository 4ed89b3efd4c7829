package render

import (
	"bytes"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"vkgraph/src/render/native"
)

func TestDestroyOnceBeforeDependencies(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	inst := dev.Instance().Handle()

	s, err := NewSampler(dev, DefaultSamplerProperties())
	require.NoError(t, err)
	require.EqualValues(t, 2, dev.Refs())

	sampler := s.Handle()
	s.Release()
	require.Equal(t, 1, drv.DestroyCount(sampler))
	require.False(t, drv.IsLive(sampler))
	require.True(t, drv.IsLive(dev.Handle()))
	require.EqualValues(t, 1, dev.Refs())

	require.Panics(t, func() { s.Release() })
	require.Equal(t, 1, drv.DestroyCount(sampler))

	device := dev.Handle()
	dev.Release()
	require.Equal(t, []native.Handle{sampler, device, inst}, drv.Destroyed())
	require.Empty(t, drv.Live())
}

func TestReleaseChainOrder(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	inst := dev.Instance().Handle()

	dsl, err := NewDescriptorSetLayout(dev, DescriptorSetLayoutProperties{
		Bindings: []DescriptorSetLayoutBinding{{Binding: 0, Type: native.DescriptorTypeStorageBuffer, Count: 1, StageFlags: native.ShaderStageCompute}},
	})
	require.NoError(t, err)
	pl, err := NewPipelineLayout(dev, PipelineLayoutProperties{SetLayouts: []*DescriptorSetLayout{dsl}})
	require.NoError(t, err)

	want := []native.Handle{pl.Handle(), dsl.Handle(), dev.Handle(), inst}

	// Dropping the roots first must not destroy anything: the newest
	// object still holds them.
	dev.Release()
	dsl.Release()
	require.Empty(t, drv.Destroyed())

	pl.Release()
	require.Equal(t, want, drv.Destroyed())
}

func TestRootWithTwoChildren(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)

	c1, err := NewFence(dev, FenceProperties{})
	require.NoError(t, err)
	c2, err := NewSemaphore(dev, SemaphoreProperties{})
	require.NoError(t, err)
	require.EqualValues(t, 3, dev.Refs())

	raw := dev.Handle()
	dev.Release()
	require.EqualValues(t, 2, dev.Refs())
	require.True(t, drv.IsLive(raw))

	c1.Release()
	require.EqualValues(t, 1, dev.Refs())
	require.True(t, drv.IsLive(raw))

	c2.Release()
	require.EqualValues(t, 0, dev.Refs())
	require.False(t, drv.IsLive(raw))
	require.Equal(t, 1, drv.DestroyCount(raw))
}

func TestFailedCreateLeavesCountsUnchanged(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	defer dev.Release()

	before := len(LiveObjects())
	drv.Fail("CreateSampler", native.ErrorOutOfDeviceMemory)

	s, err := NewSampler(dev, DefaultSamplerProperties())
	require.Nil(t, s)

	var ce *CreationError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, KindSampler, ce.Kind)
	require.ErrorIs(t, err, native.ErrorOutOfDeviceMemory)

	require.EqualValues(t, 1, dev.Refs())
	require.Len(t, LiveObjects(), before)
	require.Zero(t, drv.Calls("DestroySampler"))
}

func TestReleasedDependencyIsRejected(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	dev.Release()

	n := eventCount(drv)
	_, err := NewFence(dev, FenceProperties{})

	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchReleased, me.Reason)
	require.Equal(t, "device", me.Dependency)
	require.Equal(t, n, eventCount(drv))
}

func TestNilDependencyIsRejected(t *testing.T) {
	_, err := NewFence(nil, FenceProperties{})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchNil, me.Reason)
	require.Equal(t, KindFence, me.Kind)

	_, err = NewInstance(nil, DefaultInstanceProperties())
	require.ErrorAs(t, err, &me)
	require.Equal(t, "driver", me.Dependency)
}

// Every kind passed where another kind is expected is refused before any
// reference is taken or any native call is made.
func TestKindMismatchAllPairs(t *testing.T) {
	for _, want := range Kinds() {
		for _, got := range Kinds() {
			if want == got {
				continue
			}
			obj := stub(got)
			for _, kind := range Kinds() {
				_, err := acquire(kind, func() error {
					t.Fatalf("lineage check ran for %s as %s", got, want)
					return nil
				}, needKind("dep", obj, want))

				var me *DependencyMismatchError
				require.ErrorAs(t, err, &me, "%s for %s", got, want)
				require.Equal(t, MismatchKind, me.Reason)
				require.Equal(t, kind, me.Kind)
				require.Equal(t, got, me.Got)
				require.Equal(t, []Kind{want}, me.Want)
			}
			require.EqualValues(t, 1, obj.Refs())
		}
	}
}

func TestImageViewRejectsNonImages(t *testing.T) {
	for _, k := range Kinds() {
		if k == KindImage || k == KindSwapchainImage {
			continue
		}
		t.Run(k.String(), func(t *testing.T) {
			img := stubImage{stub(k)}
			// The stub has no driver: reaching the create call would panic.
			v, err := NewImageView(img, ImageViewProperties{})
			require.Nil(t, v)

			var me *DependencyMismatchError
			require.ErrorAs(t, err, &me)
			require.Equal(t, MismatchKind, me.Reason)
			require.Equal(t, k, me.Got)
			require.EqualValues(t, 1, img.Refs())
		})
	}

	var typedNil *Image
	_, err := NewImageView(typedNil, ImageViewProperties{})
	var me *DependencyMismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, MismatchNil, me.Reason)
}

func TestLineageMismatch(t *testing.T) {
	drv := newDriver(t)
	devA := newDevice(t, drv)
	defer devA.Release()
	devB := newDevice(t, drv)
	defer devB.Release()

	samplerA, err := NewSampler(devA, DefaultSamplerProperties())
	require.NoError(t, err)
	defer samplerA.Release()
	layoutA, err := NewDescriptorSetLayout(devA, DescriptorSetLayoutProperties{})
	require.NoError(t, err)
	defer layoutA.Release()
	poolB, err := NewDescriptorPool(devB, DefaultDescriptorPoolProperties(1))
	require.NoError(t, err)
	defer poolB.Release()
	layoutB, err := NewPipelineLayout(devB, PipelineLayoutProperties{})
	require.NoError(t, err)
	defer layoutB.Release()
	shaderA := newShader(t, devA)
	defer shaderA.Release()
	passA, err := NewRenderPass(devA, ColorPassProperties(native.FormatB8G8R8A8Srgb))
	require.NoError(t, err)
	defer passA.Release()

	for _, tc := range []struct {
		name string
		dep  string
		fn   func() error
	}{
		{"immutable sampler", "immutable sampler", func() error {
			_, err := NewDescriptorSetLayout(devB, DescriptorSetLayoutProperties{
				Bindings: []DescriptorSetLayoutBinding{{Type: native.DescriptorTypeSampler, Count: 1, ImmutableSamplers: []*Sampler{samplerA}}},
			})
			return err
		}},
		{"set layout", "set layout", func() error {
			_, err := NewPipelineLayout(devB, PipelineLayoutProperties{SetLayouts: []*DescriptorSetLayout{layoutA}})
			return err
		}},
		{"descriptor set", "layout", func() error {
			_, err := poolB.AllocateDescriptorSets(layoutA)
			return err
		}},
		{"compute shader", "shader module", func() error {
			_, err := NewComputePipeline(layoutB, nil, ComputePipelineProperties{
				Stage: ShaderStage{Stage: native.ShaderStageCompute, Module: shaderA},
			})
			return err
		}},
		{"graphics render pass", "render pass", func() error {
			_, err := NewGraphicsPipeline(layoutB, passA, nil, GraphicsPipelineProperties{})
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			n := eventCount(drv)
			refs := []int64{devA.Refs(), devB.Refs(), samplerA.Refs(), layoutA.Refs(), shaderA.Refs(), passA.Refs()}

			err := tc.fn()
			var me *DependencyMismatchError
			require.ErrorAs(t, err, &me)
			require.Equal(t, MismatchLineage, me.Reason)
			require.Equal(t, tc.dep, me.Dependency)

			require.Equal(t, n, eventCount(drv))
			require.Equal(t, refs, []int64{devA.Refs(), devB.Refs(), samplerA.Refs(), layoutA.Refs(), shaderA.Refs(), passA.Refs()})
		})
	}
}

func TestDeriveOverridesOneField(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	defer dev.Release()

	s, err := NewSampler(dev, DefaultSamplerProperties())
	require.NoError(t, err)
	defer s.Release()

	derived := s.Derive(func(p *SamplerProperties) { p.MaxAnisotropy = 8 })
	want := DefaultSamplerProperties()
	want.MaxAnisotropy = 8
	require.Equal(t, want, derived)
	require.Equal(t, DefaultSamplerProperties(), s.Properties())

	sibling, err := NewSampler(dev, derived)
	require.NoError(t, err)
	defer sibling.Release()
	require.EqualValues(t, 8, sibling.Properties().MaxAnisotropy)
}

func TestPropertiesAreCopied(t *testing.T) {
	props := DefaultDeviceProperties(0)
	props.Extensions = []string{"VK_KHR_swapchain"}
	clone := props.Clone()
	clone.Queues[0].Priorities[0] = 0.5
	clone.Extensions[0] = "other"
	require.EqualValues(t, 1, props.Queues[0].Priorities[0])
	require.Equal(t, "VK_KHR_swapchain", props.Extensions[0])

	drv := newDriver(t)
	dev := newDevice(t, drv)
	defer dev.Release()

	// Mutating the caller's copy after creation does not reach the object.
	pool := DefaultDescriptorPoolProperties(4, native.DescriptorPoolSize{Type: native.DescriptorTypeStorageBuffer, DescriptorCount: 4})
	p, err := NewDescriptorPool(dev, pool)
	require.NoError(t, err)
	defer p.Release()
	pool.PoolSizes[0].DescriptorCount = 99
	require.EqualValues(t, 4, p.Properties().PoolSizes[0].DescriptorCount)

	got := p.Properties()
	got.PoolSizes[0].DescriptorCount = 7
	require.EqualValues(t, 4, p.Properties().PoolSizes[0].DescriptorCount)
}

func TestConcurrentSharedAncestor(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	device := dev.Handle()

	const workers, rounds = 16, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				d := dev.Retain()
				var obj Object
				var err error
				if (w+i)%2 == 0 {
					obj, err = NewFence(d, FenceProperties{})
				} else {
					obj, err = NewSemaphore(d, SemaphoreProperties{})
				}
				if !assert.NoError(t, err) {
					d.Release()
					return
				}
				d.Release()
				obj.Release()
			}
		}(w)
	}
	wg.Wait()

	require.EqualValues(t, 1, dev.Refs())
	require.Equal(t, workers*rounds, drv.Calls("DestroyFence")+drv.Calls("DestroySemaphore"))
	require.Zero(t, drv.DestroyCount(device))

	dev.Release()
	require.Equal(t, 1, drv.DestroyCount(device))
	require.Empty(t, drv.Live())
}

func TestConcurrentLastRelease(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)

	const holders = 64
	for i := 0; i < holders; i++ {
		dev.Retain()
	}
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i <= holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			dev.Release()
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, drv.DestroyCount(dev.Handle()))
	require.False(t, dev.TryRetain())
}

func TestRegistryAndDump(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	s, err := NewSampler(dev, DefaultSamplerProperties())
	require.NoError(t, err)

	byID := map[string]ObjectInfo{}
	for _, info := range LiveObjects() {
		byID[info.ID] = info
	}
	got, ok := byID[s.ID().String()]
	require.True(t, ok)
	require.Equal(t, "Sampler", got.Kind)
	require.Equal(t, s.Handle(), got.Handle)
	require.EqualValues(t, 1, got.Refs)
	require.Equal(t, []string{dev.ID().String()}, got.Dependencies)
	require.EqualValues(t, 2, byID[dev.ID().String()].Refs)

	var buf bytes.Buffer
	require.NoError(t, DumpGraph(&buf))
	var dump struct {
		Objects []ObjectInfo `yaml:"objects"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &dump))
	require.Contains(t, dump.Objects, got)

	s.Release()
	dev.Release()
	for _, info := range LiveObjects() {
		require.NotEqual(t, s.ID().String(), info.ID)
		require.NotEqual(t, dev.ID().String(), info.ID)
	}
}

func TestDestroyErrorStillReleasesDependencies(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	inst := dev.Instance().Handle()

	drv.Fail("DeviceWaitIdle", native.ErrorDeviceLost)
	dev.Release()
	require.False(t, drv.IsLive(dev.Handle()))
	require.False(t, drv.IsLive(inst))
}

func TestLeakedObjectIsReported(t *testing.T) {
	obs, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(obs))
	defer SetLogger(nil)

	drv := newDriver(t)
	dev := newDevice(t, drv)
	var leaked native.Handle
	func() {
		s, err := NewSampler(dev, DefaultSamplerProperties())
		require.NoError(t, err)
		leaked = s.Handle()
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		return logs.FilterMessage("leaked object").Len() > 0
	}, 5*time.Second, 10*time.Millisecond)
	entry := logs.FilterMessage("leaked object").All()[0]
	require.Equal(t, "Sampler", entry.ContextMap()["kind"])

	// The backstop only reports; the sampler and its device stay alive.
	require.True(t, drv.IsLive(leaked))
	dev.Release()
	require.True(t, drv.IsLive(dev.Handle()))
}
