package vulkan

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"vkgraph/src/render/native"
)

func (d *Driver) CreateInstance(info *native.InstanceCreateInfo) (native.Handle, native.Result) {
	app := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cstr(info.ApplicationName),
		ApplicationVersion: info.ApplicationVersion,
		PEngineName:        cstr(info.EngineName),
		EngineVersion:      info.EngineVersion,
		ApiVersion:         makeVersion(info.ApiVersion),
	}
	layers, exts := cstrs(info.EnabledLayers), cstrs(info.EnabledExtensions)
	ci := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &app,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&ci, nil, &instance); res != vk.Success {
		return native.NullHandle, result(res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return native.NullHandle, native.ErrorInitializationFailed
	}
	return d.objects.put(instance), native.Success
}

func (d *Driver) DestroyInstance(instance native.Handle) {
	vk.DestroyInstance(take[vk.Instance](&d.objects, instance), nil)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, pd := range d.physicalDevices[instance] {
		d.objects.drop(pd)
	}
	delete(d.physicalDevices, instance)
}

type messenger struct {
	callback vk.DebugReportCallback
}

func (d *Driver) CreateDebugMessenger(instance native.Handle, info *native.DebugMessengerCreateInfo) (native.Handle, native.Result) {
	cb := info.Callback
	ci := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: reportFlags(info.Severity),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			if cb != nil {
				severity, typ := fromReportFlags(flags, layerPrefix)
				if info.Type&typ != 0 {
					cb(severity, typ, message)
				}
			}
			return vk.False
		},
	}
	var m messenger
	if res := vk.CreateDebugReportCallback(lookup[vk.Instance](&d.objects, instance), &ci, nil, &m.callback); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(m), native.Success
}

func (d *Driver) DestroyDebugMessenger(instance, h native.Handle) {
	m := take[messenger](&d.objects, h)
	vk.DestroyDebugReportCallback(lookup[vk.Instance](&d.objects, instance), m.callback, nil)
}

func reportFlags(s native.DebugSeverityFlags) vk.DebugReportFlags {
	var f vk.DebugReportFlagBits
	if s&native.DebugSeverityVerbose != 0 {
		f |= vk.DebugReportDebugBit
	}
	if s&native.DebugSeverityInfo != 0 {
		f |= vk.DebugReportInformationBit
	}
	if s&native.DebugSeverityWarning != 0 {
		f |= vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit
	}
	if s&native.DebugSeverityError != 0 {
		f |= vk.DebugReportErrorBit
	}
	return vk.DebugReportFlags(f)
}

func fromReportFlags(f vk.DebugReportFlags, layer string) (native.DebugSeverityFlags, native.DebugTypeFlags) {
	typ := native.DebugTypeGeneral
	if layer != "" {
		typ = native.DebugTypeValidation
	}
	switch {
	case f&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return native.DebugSeverityError, typ
	case f&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return native.DebugSeverityWarning, native.DebugTypePerformance
	case f&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		return native.DebugSeverityWarning, typ
	case f&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return native.DebugSeverityInfo, typ
	default:
		return native.DebugSeverityVerbose, typ
	}
}

// EnumeratePhysicalDevices returns the same handles for every call on one
// instance.
func (d *Driver) EnumeratePhysicalDevices(instance native.Handle) ([]native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pds, ok := d.physicalDevices[instance]; ok {
		return append([]native.Handle(nil), pds...), native.Success
	}

	inst := lookup[vk.Instance](&d.objects, instance)
	var count uint32
	if res := vk.EnumeratePhysicalDevices(inst, &count, nil); res != vk.Success {
		return nil, result(res)
	}
	devices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(inst, &count, devices); res != vk.Success {
		return nil, result(res)
	}
	pds := make([]native.Handle, 0, count)
	for _, pd := range devices[:count] {
		pds = append(pds, d.objects.put(pd))
	}
	d.physicalDevices[instance] = pds
	return append([]native.Handle(nil), pds...), native.Success
}

func (d *Driver) GetPhysicalDeviceProperties(physicalDevice native.Handle) native.PhysicalDeviceProperties {
	pd := lookup[vk.PhysicalDevice](&d.objects, physicalDevice)

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &props)
	props.Deref()
	out := native.PhysicalDeviceProperties{
		Name:       vk.ToString(props.DeviceName[:]),
		Type:       native.PhysicalDeviceType(props.DeviceType),
		VendorID:   props.VendorID,
		DeviceID:   props.DeviceID,
		ApiVersion: parseVersion(props.ApiVersion),
	}

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)
	for i := range families[:count] {
		families[i].Deref()
		out.QueueFamilies = append(out.QueueFamilies, native.QueueFamilyProperties{
			Flags: native.QueueFlags(families[i].QueueFlags),
			Count: families[i].QueueCount,
		})
	}

	out.MemoryTypes = memoryTypes(pd)

	count = 0
	if vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil) == vk.Success {
		exts := make([]vk.ExtensionProperties, count)
		if vk.EnumerateDeviceExtensionProperties(pd, "", &count, exts) == vk.Success {
			for i := range exts[:count] {
				exts[i].Deref()
				out.Extensions = append(out.Extensions, vk.ToString(exts[i].ExtensionName[:]))
			}
		}
	}
	return out
}

func memoryTypes(pd vk.PhysicalDevice) []native.MemoryType {
	var mp vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &mp)
	mp.Deref()
	out := make([]native.MemoryType, mp.MemoryTypeCount)
	for i := range out {
		t := mp.MemoryTypes[i]
		t.Deref()
		out[i] = native.MemoryType{
			PropertyFlags: native.MemoryPropertyFlags(t.PropertyFlags),
			HeapIndex:     t.HeapIndex,
		}
	}
	return out
}

func (d *Driver) CreateDevice(physicalDevice native.Handle, info *native.DeviceCreateInfo) (native.Handle, native.Result) {
	queues := make([]vk.DeviceQueueCreateInfo, len(info.QueueCreateInfos))
	for i, q := range info.QueueCreateInfos {
		queues[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.QueueFamilyIndex,
			QueueCount:       uint32(len(q.QueuePriorities)),
			PQueuePriorities: q.QueuePriorities,
		}
	}
	features := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: boolean(info.Features.SamplerAnisotropy),
		FillModeNonSolid:  boolean(info.Features.FillModeNonSolid),
		WideLines:         boolean(info.Features.WideLines),
		ShaderInt64:       boolean(info.Features.ShaderInt64),
	}
	layers, exts := cstrs(info.EnabledLayers), cstrs(info.EnabledExtensions)
	ci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queues)),
		PQueueCreateInfos:       queues,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}
	var device vk.Device
	if res := vk.CreateDevice(lookup[vk.PhysicalDevice](&d.objects, physicalDevice), &ci, nil, &device); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(device), native.Success
}

func (d *Driver) DeviceWaitIdle(device native.Handle) native.Result {
	return result(vk.DeviceWaitIdle(lookup[vk.Device](&d.objects, device)))
}

func (d *Driver) DestroyDevice(device native.Handle) {
	vk.DestroyDevice(take[vk.Device](&d.objects, device), nil)
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, q := range d.queues {
		if k.device == device {
			d.objects.drop(q)
			delete(d.queues, k)
		}
	}
}

func (d *Driver) GetDeviceQueue(device native.Handle, family, index uint32) native.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := queueKey{device: device, family: family, index: index}
	if q, ok := d.queues[k]; ok {
		return q
	}
	var queue vk.Queue
	vk.GetDeviceQueue(lookup[vk.Device](&d.objects, device), family, index, &queue)
	q := d.objects.put(queue)
	d.queues[k] = q
	return q
}

func (d *Driver) QueueWaitIdle(queue native.Handle) native.Result {
	return result(vk.QueueWaitIdle(lookup[vk.Queue](&d.objects, queue)))
}

func (d *Driver) DestroySurface(instance, surface native.Handle) {
	vk.DestroySurface(lookup[vk.Instance](&d.objects, instance), take[vk.Surface](&d.objects, surface), nil)
}

func (d *Driver) CreateSwapchain(device native.Handle, info *native.SwapchainCreateInfo) (native.Handle, native.Result) {
	ci := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         lookup[vk.Surface](&d.objects, info.Surface),
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.ImageFormat),
		ImageColorSpace: vk.ColorSpace(info.ImageColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.ImageExtent.Width,
			Height: info.ImageExtent.Height,
		},
		ImageArrayLayers:      info.ImageArrayLayers,
		ImageUsage:            vk.ImageUsageFlags(info.ImageUsage),
		ImageSharingMode:      vk.SharingMode(info.ImageSharingMode),
		QueueFamilyIndexCount: uint32(len(info.QueueFamilyIndices)),
		PQueueFamilyIndices:   info.QueueFamilyIndices,
		PreTransform:          vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:        vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:           vk.PresentMode(info.PresentMode),
		Clipped:               boolean(info.Clipped),
		OldSwapchain:          lookup[vk.Swapchain](&d.objects, info.OldSwapchain),
	}
	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(lookup[vk.Device](&d.objects, device), &ci, nil, &swapchain); res != vk.Success {
		return native.NullHandle, result(res)
	}
	return d.objects.put(swapchain), native.Success
}

func (d *Driver) GetSwapchainImages(device, swapchain native.Handle) ([]native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if imgs, ok := d.swapchainImages[swapchain]; ok {
		return append([]native.Handle(nil), imgs...), native.Success
	}

	dev, sc := lookup[vk.Device](&d.objects, device), lookup[vk.Swapchain](&d.objects, swapchain)
	var count uint32
	if res := vk.GetSwapchainImages(dev, sc, &count, nil); res != vk.Success {
		return nil, result(res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(dev, sc, &count, images); res != vk.Success {
		return nil, result(res)
	}
	imgs := make([]native.Handle, 0, count)
	for _, img := range images[:count] {
		imgs = append(imgs, d.objects.put(img))
	}
	d.swapchainImages[swapchain] = imgs
	return append([]native.Handle(nil), imgs...), native.Success
}

func (d *Driver) DestroySwapchain(device, swapchain native.Handle) {
	vk.DestroySwapchain(lookup[vk.Device](&d.objects, device), take[vk.Swapchain](&d.objects, swapchain), nil)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, img := range d.swapchainImages[swapchain] {
		d.objects.drop(img)
	}
	delete(d.swapchainImages, swapchain)
}
