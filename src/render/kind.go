package render

// Kind identifies the native resource type behind a wrapper.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInstance
	KindDebugMessenger
	KindPhysicalDevice
	KindDevice
	KindQueue
	KindSurface
	KindSwapchain
	KindSwapchainImage
	KindAllocator
	KindMemoryPool
	KindAllocation
	KindBuffer
	KindBufferView
	KindImage
	KindImageView
	KindSampler
	KindShaderModule
	KindDescriptorSetLayout
	KindDescriptorPool
	KindDescriptorSet
	KindPipelineLayout
	KindPipelineCache
	KindRenderPass
	KindFramebuffer
	KindComputePipeline
	KindGraphicsPipeline
	KindCommandPool
	KindCommandBuffer
	KindFence
	KindSemaphore

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:             "Unknown",
	KindInstance:            "Instance",
	KindDebugMessenger:      "DebugMessenger",
	KindPhysicalDevice:      "PhysicalDevice",
	KindDevice:              "Device",
	KindQueue:               "Queue",
	KindSurface:             "Surface",
	KindSwapchain:           "Swapchain",
	KindSwapchainImage:      "SwapchainImage",
	KindAllocator:           "Allocator",
	KindMemoryPool:          "MemoryPool",
	KindAllocation:          "Allocation",
	KindBuffer:              "Buffer",
	KindBufferView:          "BufferView",
	KindImage:               "Image",
	KindImageView:           "ImageView",
	KindSampler:             "Sampler",
	KindShaderModule:        "ShaderModule",
	KindDescriptorSetLayout: "DescriptorSetLayout",
	KindDescriptorPool:      "DescriptorPool",
	KindDescriptorSet:       "DescriptorSet",
	KindPipelineLayout:      "PipelineLayout",
	KindPipelineCache:       "PipelineCache",
	KindRenderPass:          "RenderPass",
	KindFramebuffer:         "Framebuffer",
	KindComputePipeline:     "ComputePipeline",
	KindGraphicsPipeline:    "GraphicsPipeline",
	KindCommandPool:         "CommandPool",
	KindCommandBuffer:       "CommandBuffer",
	KindFence:               "Fence",
	KindSemaphore:           "Semaphore",
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// Kinds returns every concrete kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, 0, kindCount-1)
	for k := KindInstance; k < kindCount; k++ {
		ks = append(ks, k)
	}
	return ks
}
