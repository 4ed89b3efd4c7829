package native

// Driver is the native graphics API surface. Create calls return NullHandle
// together with an error Result on failure and never leave anything behind
// in that case. Destroy calls are infallible from the caller's point of view.
//
// Parent handles come first in every signature, the way the Vulkan entry
// points take the device or instance first.
type Driver interface {
	CreateInstance(info *InstanceCreateInfo) (Handle, Result)
	DestroyInstance(instance Handle)

	CreateDebugMessenger(instance Handle, info *DebugMessengerCreateInfo) (Handle, Result)
	DestroyDebugMessenger(instance, messenger Handle)

	EnumeratePhysicalDevices(instance Handle) ([]Handle, Result)
	GetPhysicalDeviceProperties(physicalDevice Handle) PhysicalDeviceProperties

	CreateDevice(physicalDevice Handle, info *DeviceCreateInfo) (Handle, Result)
	DeviceWaitIdle(device Handle) Result
	DestroyDevice(device Handle)
	GetDeviceQueue(device Handle, family, index uint32) Handle
	QueueWaitIdle(queue Handle) Result

	DestroySurface(instance, surface Handle)

	CreateSwapchain(device Handle, info *SwapchainCreateInfo) (Handle, Result)
	GetSwapchainImages(device, swapchain Handle) ([]Handle, Result)
	DestroySwapchain(device, swapchain Handle)

	CreateBuffer(device Handle, info *BufferCreateInfo) (Handle, Result)
	GetBufferMemoryRequirements(device, buffer Handle) MemoryRequirements
	BindBufferMemory(device, buffer, memory Handle, offset uint64) Result
	DestroyBuffer(device, buffer Handle)

	CreateBufferView(device Handle, info *BufferViewCreateInfo) (Handle, Result)
	DestroyBufferView(device, view Handle)

	CreateImage(device Handle, info *ImageCreateInfo) (Handle, Result)
	GetImageMemoryRequirements(device, image Handle) MemoryRequirements
	BindImageMemory(device, image, memory Handle, offset uint64) Result
	DestroyImage(device, image Handle)

	CreateImageView(device Handle, info *ImageViewCreateInfo) (Handle, Result)
	DestroyImageView(device, view Handle)

	CreateSampler(device Handle, info *SamplerCreateInfo) (Handle, Result)
	DestroySampler(device, sampler Handle)

	CreateShaderModule(device Handle, info *ShaderModuleCreateInfo) (Handle, Result)
	DestroyShaderModule(device, module Handle)

	CreateDescriptorSetLayout(device Handle, info *DescriptorSetLayoutCreateInfo) (Handle, Result)
	DestroyDescriptorSetLayout(device, layout Handle)

	CreateDescriptorPool(device Handle, info *DescriptorPoolCreateInfo) (Handle, Result)
	DestroyDescriptorPool(device, pool Handle)
	AllocateDescriptorSets(device, pool Handle, layouts []Handle) ([]Handle, Result)
	FreeDescriptorSets(device, pool Handle, sets []Handle) Result

	CreatePipelineLayout(device Handle, info *PipelineLayoutCreateInfo) (Handle, Result)
	DestroyPipelineLayout(device, layout Handle)

	CreatePipelineCache(device Handle, info *PipelineCacheCreateInfo) (Handle, Result)
	DestroyPipelineCache(device, cache Handle)

	CreateRenderPass(device Handle, info *RenderPassCreateInfo) (Handle, Result)
	DestroyRenderPass(device, renderPass Handle)

	CreateFramebuffer(device Handle, info *FramebufferCreateInfo) (Handle, Result)
	DestroyFramebuffer(device, framebuffer Handle)

	CreateComputePipeline(device, cache Handle, info *ComputePipelineCreateInfo) (Handle, Result)
	CreateGraphicsPipeline(device, cache Handle, info *GraphicsPipelineCreateInfo) (Handle, Result)
	DestroyPipeline(device, pipeline Handle)

	CreateCommandPool(device Handle, info *CommandPoolCreateInfo) (Handle, Result)
	ResetCommandPool(device, pool Handle, flags CommandPoolResetFlags) Result
	DestroyCommandPool(device, pool Handle)
	AllocateCommandBuffers(device, pool Handle, level CommandBufferLevel, count uint32) ([]Handle, Result)
	ResetCommandBuffer(commandBuffer Handle, flags CommandBufferResetFlags) Result
	FreeCommandBuffers(device, pool Handle, buffers []Handle)

	CreateFence(device Handle, info *FenceCreateInfo) (Handle, Result)
	ResetFences(device Handle, fences []Handle) Result
	WaitForFences(device Handle, fences []Handle, waitAll bool, timeout uint64) Result
	GetFenceStatus(device, fence Handle) Result
	DestroyFence(device, fence Handle)

	CreateSemaphore(device Handle, info *SemaphoreCreateInfo) (Handle, Result)
	DestroySemaphore(device, semaphore Handle)
}

// Allocator is the external memory allocator service. An allocator must be
// destroyed only after every pool and allocation it produced has been
// released.
type Allocator interface {
	CreateAllocator(info *AllocatorCreateInfo) (Handle, Result)
	DestroyAllocator(allocator Handle)

	CreatePool(allocator Handle, info *PoolCreateInfo) (Handle, Result)
	DestroyPool(allocator, pool Handle)

	Allocate(allocator Handle, req MemoryRequirements, info *AllocationCreateInfo) (Handle, AllocationInfo, Result)
	Free(allocator, allocation Handle)

	// Map returns the host-visible bytes of an allocation. The slice is valid
	// until the matching Unmap.
	Map(allocator, allocation Handle) ([]byte, Result)
	Unmap(allocator, allocation Handle)
	Flush(allocator, allocation Handle, offset, size uint64) Result
}
