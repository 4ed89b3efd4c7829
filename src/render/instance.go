package render

import (
	"slices"

	"vkgraph/src/render/native"
)

// Instance is the root of every object graph.
type Instance struct {
	object[InstanceProperties]
}

// InstanceProperties are the parameters an Instance is created with.
type InstanceProperties struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	// ApiVersion is the highest API version the application uses.
	ApiVersion native.ApiVersion
	Layers     []string
	Extensions []string
}

// DefaultInstanceProperties returns properties for a 1.2 instance with no
// layers or extensions.
//
// ApiVersion 1.2 and the empty layer and extension lists are safe on any
// conforming driver. The application and engine names are convenience
// values; override them.
func DefaultInstanceProperties() InstanceProperties {
	return InstanceProperties{
		ApplicationName: "vkgraph",
		EngineName:      "vkgraph",
		ApiVersion:      native.ApiVersion12,
	}
}

func (p InstanceProperties) Clone() InstanceProperties {
	p.Layers = slices.Clone(p.Layers)
	p.Extensions = slices.Clone(p.Extensions)
	return p
}

func (p InstanceProperties) CreateInfo() native.InstanceCreateInfo {
	return native.InstanceCreateInfo{
		ApplicationName:    p.ApplicationName,
		ApplicationVersion: p.ApplicationVersion,
		EngineName:         p.EngineName,
		EngineVersion:      p.EngineVersion,
		ApiVersion:         p.ApiVersion,
		EnabledLayers:      slices.Clone(p.Layers),
		EnabledExtensions:  slices.Clone(p.Extensions),
	}
}

func InstancePropertiesFromCreateInfo(info *native.InstanceCreateInfo) InstanceProperties {
	return InstanceProperties{
		ApplicationName:    info.ApplicationName,
		ApplicationVersion: info.ApplicationVersion,
		EngineName:         info.EngineName,
		EngineVersion:      info.EngineVersion,
		ApiVersion:         info.ApiVersion,
		Layers:             slices.Clone(info.EnabledLayers),
		Extensions:         slices.Clone(info.EnabledExtensions),
	}
}

// NewInstance creates an instance on drv.
func NewInstance(drv native.Driver, props InstanceProperties) (*Instance, error) {
	if drv == nil {
		return nil, reject(KindInstance, mismatch(KindInstance, "driver", MismatchNil))
	}
	info := props.CreateInfo()
	cell, err := createCell(KindInstance,
		func() (native.Handle, native.Result) { return drv.CreateInstance(&info) },
		destroyed(drv.DestroyInstance),
	)
	if err != nil {
		return nil, err
	}
	i := &Instance{}
	i.init(KindInstance, drv, props, cell, nil)
	return track(i), nil
}

func (i *Instance) Retain() *Instance { i.retain(); return i }

// Driver returns the driver every object of this graph is created on.
func (i *Instance) Driver() native.Driver { return i.drv }

// EnumeratePhysicalDevices returns one wrapper per physical device. Each
// holds a reference on i and must be released by the caller.
func (i *Instance) EnumeratePhysicalDevices() ([]*PhysicalDevice, error) {
	raws, res := i.drv.EnumeratePhysicalDevices(i.Handle())
	if IsError(res) {
		return nil, failed(KindPhysicalDevice, res)
	}
	pds := make([]*PhysicalDevice, 0, len(raws))
	for _, raw := range raws {
		pd, err := newPhysicalDevice(i, raw)
		if err != nil {
			for _, p := range pds {
				p.Release()
			}
			return nil, err
		}
		pds = append(pds, pd)
	}
	return pds, nil
}
