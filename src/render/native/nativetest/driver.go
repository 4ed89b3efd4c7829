package nativetest

import (
	"fmt"

	"vkgraph/src/render/native"
)

func (d *Driver) CreateInstance(info *native.InstanceCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateInstance")
}

func (d *Driver) DestroyInstance(instance native.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyLocked("DestroyInstance", instance)
	delete(d.physicalDevices, instance)
}

func (d *Driver) CreateDebugMessenger(instance native.Handle, info *native.DebugMessengerCreateInfo) (native.Handle, native.Result) {
	h, res := d.create("CreateDebugMessenger", instance)
	if res == native.Success && info.Callback != nil {
		info.Callback(native.DebugSeverityInfo, native.DebugTypeGeneral, "nativetest: messenger attached")
	}
	return h, res
}

func (d *Driver) DestroyDebugMessenger(instance, messenger native.Handle) {
	d.destroy("DestroyDebugMessenger", messenger)
}

func (d *Driver) EnumeratePhysicalDevices(instance native.Handle) ([]native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "EnumeratePhysicalDevices", Handle: instance})
	if res, ok := d.fail["EnumeratePhysicalDevices"]; ok {
		return nil, res
	}
	if _, ok := d.live[instance]; !ok {
		return nil, native.ErrorInitializationFailed
	}
	pds, ok := d.physicalDevices[instance]
	if !ok {
		for i := 0; i < d.devicesPerInst; i++ {
			pds = append(pds, d.ownedLocked("PhysicalDevice", instance))
		}
		d.physicalDevices[instance] = pds
	}
	return append([]native.Handle(nil), pds...), native.Success
}

func (d *Driver) GetPhysicalDeviceProperties(physicalDevice native.Handle) native.PhysicalDeviceProperties {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.props
	p.QueueFamilies = append([]native.QueueFamilyProperties(nil), p.QueueFamilies...)
	p.MemoryTypes = append([]native.MemoryType(nil), p.MemoryTypes...)
	p.Extensions = append([]string(nil), p.Extensions...)
	return p
}

// MemoryTypes returns the memory types every fake physical device reports.
func (d *Driver) MemoryTypes() []native.MemoryType {
	return d.GetPhysicalDeviceProperties(native.NullHandle).MemoryTypes
}

func (d *Driver) CreateDevice(physicalDevice native.Handle, info *native.DeviceCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateDevice", physicalDevice)
}

func (d *Driver) DeviceWaitIdle(device native.Handle) native.Result {
	return d.call("DeviceWaitIdle", device)
}

func (d *Driver) DestroyDevice(device native.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyLocked("DestroyDevice", device)
	for k := range d.queues {
		if k.device == device {
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
	q := d.ownedLocked("Queue", device)
	d.queues[k] = q
	return q
}

func (d *Driver) QueueWaitIdle(queue native.Handle) native.Result {
	return d.call("QueueWaitIdle", queue)
}

func (d *Driver) DestroySurface(instance, surface native.Handle) {
	d.destroy("DestroySurface", surface)
}

func (d *Driver) CreateSwapchain(device native.Handle, info *native.SwapchainCreateInfo) (native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, res := d.createLocked("CreateSwapchain", device, info.Surface)
	if res != native.Success {
		return h, res
	}
	n := info.MinImageCount
	if n < 2 {
		n = 2
	}
	r := d.live[h]
	for i := uint32(0); i < n; i++ {
		r.images = append(r.images, d.ownedLocked("SwapchainImage", h))
	}
	return h, res
}

func (d *Driver) GetSwapchainImages(device, swapchain native.Handle) ([]native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "GetSwapchainImages", Handle: swapchain})
	if res, ok := d.fail["GetSwapchainImages"]; ok {
		return nil, res
	}
	r, ok := d.live[swapchain]
	if !ok {
		return nil, native.ErrorSurfaceLost
	}
	return append([]native.Handle(nil), r.images...), native.Success
}

func (d *Driver) DestroySwapchain(device, swapchain native.Handle) {
	d.destroy("DestroySwapchain", swapchain)
}

func (d *Driver) CreateBuffer(device native.Handle, info *native.BufferCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateBuffer", device)
}

func (d *Driver) GetBufferMemoryRequirements(device, buffer native.Handle) native.MemoryRequirements {
	return native.MemoryRequirements{Size: 256, Alignment: 64, MemoryTypeBits: 0x3}
}

func (d *Driver) BindBufferMemory(device, buffer, memory native.Handle, offset uint64) native.Result {
	return d.bind("BindBufferMemory", buffer, memory)
}

func (d *Driver) DestroyBuffer(device, buffer native.Handle) {
	d.destroy("DestroyBuffer", buffer)
}

func (d *Driver) CreateBufferView(device native.Handle, info *native.BufferViewCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateBufferView", device, info.Buffer)
}

func (d *Driver) DestroyBufferView(device, view native.Handle) {
	d.destroy("DestroyBufferView", view)
}

func (d *Driver) CreateImage(device native.Handle, info *native.ImageCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateImage", device)
}

func (d *Driver) GetImageMemoryRequirements(device, image native.Handle) native.MemoryRequirements {
	return native.MemoryRequirements{Size: 4096, Alignment: 256, MemoryTypeBits: 0x1}
}

func (d *Driver) BindImageMemory(device, image, memory native.Handle, offset uint64) native.Result {
	return d.bind("BindImageMemory", image, memory)
}

func (d *Driver) DestroyImage(device, image native.Handle) {
	d.destroy("DestroyImage", image)
}

func (d *Driver) CreateImageView(device native.Handle, info *native.ImageViewCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateImageView", device, info.Image)
}

func (d *Driver) DestroyImageView(device, view native.Handle) {
	d.destroy("DestroyImageView", view)
}

func (d *Driver) CreateSampler(device native.Handle, info *native.SamplerCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateSampler", device)
}

func (d *Driver) DestroySampler(device, sampler native.Handle) {
	d.destroy("DestroySampler", sampler)
}

func (d *Driver) CreateShaderModule(device native.Handle, info *native.ShaderModuleCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateShaderModule", device)
}

func (d *Driver) DestroyShaderModule(device, module native.Handle) {
	d.destroy("DestroyShaderModule", module)
}

func (d *Driver) CreateDescriptorSetLayout(device native.Handle, info *native.DescriptorSetLayoutCreateInfo) (native.Handle, native.Result) {
	parents := []native.Handle{device}
	for _, b := range info.Bindings {
		parents = append(parents, b.ImmutableSamplers...)
	}
	return d.create("CreateDescriptorSetLayout", parents...)
}

func (d *Driver) DestroyDescriptorSetLayout(device, layout native.Handle) {
	d.destroy("DestroyDescriptorSetLayout", layout)
}

func (d *Driver) CreateDescriptorPool(device native.Handle, info *native.DescriptorPoolCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateDescriptorPool", device)
}

func (d *Driver) DestroyDescriptorPool(device, pool native.Handle) {
	d.destroy("DestroyDescriptorPool", pool)
}

func (d *Driver) AllocateDescriptorSets(device, pool native.Handle, layouts []native.Handle) ([]native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res, ok := d.fail["AllocateDescriptorSets"]; ok {
		d.events = append(d.events, Event{Op: "AllocateDescriptorSets", Handle: native.NullHandle})
		return nil, res
	}
	if _, ok := d.live[pool]; !ok {
		d.violations = append(d.violations, fmt.Sprintf("AllocateDescriptorSets: pool %d is not alive", pool))
	}
	// Sets belong to their pool: destroying the pool frees them.
	sets := make([]native.Handle, 0, len(layouts))
	for range layouts {
		h := d.ownedLocked("DescriptorSet", pool)
		d.events = append(d.events, Event{Op: "AllocateDescriptorSets", Handle: h})
		sets = append(sets, h)
	}
	return sets, native.Success
}

func (d *Driver) FreeDescriptorSets(device, pool native.Handle, sets []native.Handle) native.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range sets {
		d.destroyLocked("FreeDescriptorSets", s)
	}
	return native.Success
}

func (d *Driver) CreatePipelineLayout(device native.Handle, info *native.PipelineLayoutCreateInfo) (native.Handle, native.Result) {
	return d.create("CreatePipelineLayout", append([]native.Handle{device}, info.SetLayouts...)...)
}

func (d *Driver) DestroyPipelineLayout(device, layout native.Handle) {
	d.destroy("DestroyPipelineLayout", layout)
}

func (d *Driver) CreatePipelineCache(device native.Handle, info *native.PipelineCacheCreateInfo) (native.Handle, native.Result) {
	return d.create("CreatePipelineCache", device)
}

func (d *Driver) DestroyPipelineCache(device, cache native.Handle) {
	d.destroy("DestroyPipelineCache", cache)
}

func (d *Driver) CreateRenderPass(device native.Handle, info *native.RenderPassCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateRenderPass", device)
}

func (d *Driver) DestroyRenderPass(device, renderPass native.Handle) {
	d.destroy("DestroyRenderPass", renderPass)
}

func (d *Driver) CreateFramebuffer(device native.Handle, info *native.FramebufferCreateInfo) (native.Handle, native.Result) {
	parents := append([]native.Handle{device, info.RenderPass}, info.Attachments...)
	return d.create("CreateFramebuffer", parents...)
}

func (d *Driver) DestroyFramebuffer(device, framebuffer native.Handle) {
	d.destroy("DestroyFramebuffer", framebuffer)
}

func (d *Driver) CreateComputePipeline(device, cache native.Handle, info *native.ComputePipelineCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateComputePipeline", device, cache, info.Layout, info.Stage.Module)
}

func (d *Driver) CreateGraphicsPipeline(device, cache native.Handle, info *native.GraphicsPipelineCreateInfo) (native.Handle, native.Result) {
	parents := []native.Handle{device, cache, info.Layout, info.RenderPass}
	for _, s := range info.Stages {
		parents = append(parents, s.Module)
	}
	return d.create("CreateGraphicsPipeline", parents...)
}

func (d *Driver) DestroyPipeline(device, pipeline native.Handle) {
	d.destroy("DestroyPipeline", pipeline)
}

func (d *Driver) CreateCommandPool(device native.Handle, info *native.CommandPoolCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateCommandPool", device)
}

func (d *Driver) ResetCommandPool(device, pool native.Handle, flags native.CommandPoolResetFlags) native.Result {
	return d.call("ResetCommandPool", pool)
}

func (d *Driver) DestroyCommandPool(device, pool native.Handle) {
	d.destroy("DestroyCommandPool", pool)
}

func (d *Driver) AllocateCommandBuffers(device, pool native.Handle, level native.CommandBufferLevel, count uint32) ([]native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res, ok := d.fail["AllocateCommandBuffers"]; ok {
		d.events = append(d.events, Event{Op: "AllocateCommandBuffers", Handle: native.NullHandle})
		return nil, res
	}
	bufs := make([]native.Handle, 0, count)
	for i := uint32(0); i < count; i++ {
		h, _ := d.createLocked("AllocateCommandBuffers", pool)
		bufs = append(bufs, h)
	}
	return bufs, native.Success
}

func (d *Driver) ResetCommandBuffer(commandBuffer native.Handle, flags native.CommandBufferResetFlags) native.Result {
	return d.call("ResetCommandBuffer", commandBuffer)
}

func (d *Driver) FreeCommandBuffers(device, pool native.Handle, buffers []native.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range buffers {
		d.destroyLocked("FreeCommandBuffers", b)
	}
}

func (d *Driver) CreateFence(device native.Handle, info *native.FenceCreateInfo) (native.Handle, native.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, res := d.createLocked("CreateFence", device)
	if res == native.Success {
		d.live[h].signaled = info.Flags&native.FenceCreateSignaled != 0
	}
	return h, res
}

func (d *Driver) ResetFences(device native.Handle, fences []native.Handle) native.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "ResetFences", Handle: first(fences)})
	if res, ok := d.fail["ResetFences"]; ok {
		return res
	}
	for _, f := range fences {
		if r, ok := d.live[f]; ok {
			r.signaled = false
		}
	}
	return native.Success
}

// WaitForFences with a zero timeout only polls. Any other timeout completes
// the outstanding work, so the fences end up signaled.
func (d *Driver) WaitForFences(device native.Handle, fences []native.Handle, waitAll bool, timeout uint64) native.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "WaitForFences", Handle: first(fences)})
	if res, ok := d.fail["WaitForFences"]; ok {
		return res
	}
	signaled := 0
	for _, f := range fences {
		if r, ok := d.live[f]; ok && r.signaled {
			signaled++
		}
	}
	if signaled == len(fences) || (!waitAll && signaled > 0) {
		return native.Success
	}
	if timeout == 0 {
		return native.Timeout
	}
	for _, f := range fences {
		if r, ok := d.live[f]; ok {
			r.signaled = true
		}
	}
	return native.Success
}

func (d *Driver) GetFenceStatus(device, fence native.Handle) native.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "GetFenceStatus", Handle: fence})
	r, ok := d.live[fence]
	if !ok {
		return native.ErrorDeviceLost
	}
	if r.signaled {
		return native.Success
	}
	return native.NotReady
}

func (d *Driver) DestroyFence(device, fence native.Handle) {
	d.destroy("DestroyFence", fence)
}

func (d *Driver) CreateSemaphore(device native.Handle, info *native.SemaphoreCreateInfo) (native.Handle, native.Result) {
	return d.create("CreateSemaphore", device)
}

func (d *Driver) DestroySemaphore(device, semaphore native.Handle) {
	d.destroy("DestroySemaphore", semaphore)
}

// bind makes memory a parent of resource, so freeing the memory while the
// resource is alive shows up as a violation.
func (d *Driver) bind(op string, resource, memory native.Handle) native.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: op, Handle: resource})
	if res, ok := d.fail[op]; ok {
		return res
	}
	r, ok := d.live[resource]
	if !ok {
		return native.ErrorUnknown
	}
	if _, ok := d.live[memory]; !ok {
		return native.ErrorOutOfDeviceMemory
	}
	r.parents = append(r.parents, memory)
	return native.Success
}

func first(hs []native.Handle) native.Handle {
	if len(hs) == 0 {
		return native.NullHandle
	}
	return hs[0]
}
