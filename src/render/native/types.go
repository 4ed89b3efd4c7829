package native

// Enumerations and flag types. Values match their Vulkan counterparts so
// that backends can convert them with a plain type conversion.

type Format uint32

const (
	FormatUndefined          Format = 0
	FormatR8Unorm            Format = 9
	FormatR8G8B8A8Unorm      Format = 37
	FormatR8G8B8A8Srgb       Format = 43
	FormatB8G8R8A8Unorm      Format = 44
	FormatB8G8R8A8Srgb       Format = 50
	FormatR32Sfloat          Format = 100
	FormatR32G32B32A32Sfloat Format = 109
	FormatD16Unorm           Format = 124
	FormatD32Sfloat          Format = 126
	FormatD24UnormS8Uint     Format = 129
)

type SharingMode uint32

const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

type BufferCreateFlags uint32

type BufferUsageFlags uint32

const (
	BufferUsageTransferSrc        BufferUsageFlags = 0x001
	BufferUsageTransferDst        BufferUsageFlags = 0x002
	BufferUsageUniformTexelBuffer BufferUsageFlags = 0x004
	BufferUsageStorageTexelBuffer BufferUsageFlags = 0x008
	BufferUsageUniformBuffer      BufferUsageFlags = 0x010
	BufferUsageStorageBuffer      BufferUsageFlags = 0x020
	BufferUsageIndexBuffer        BufferUsageFlags = 0x040
	BufferUsageVertexBuffer       BufferUsageFlags = 0x080
	BufferUsageIndirectBuffer     BufferUsageFlags = 0x100
)

type ImageCreateFlags uint32

const (
	ImageCreateMutableFormat     ImageCreateFlags = 0x08
	ImageCreateCubeCompatible    ImageCreateFlags = 0x10
	ImageCreate2DArrayCompatible ImageCreateFlags = 0x20
)

type ImageType uint32

const (
	ImageType1D ImageType = 0
	ImageType2D ImageType = 1
	ImageType3D ImageType = 2
)

type ImageViewType uint32

const (
	ImageViewType1D        ImageViewType = 0
	ImageViewType2D        ImageViewType = 1
	ImageViewType3D        ImageViewType = 2
	ImageViewTypeCube      ImageViewType = 3
	ImageViewType1DArray   ImageViewType = 4
	ImageViewType2DArray   ImageViewType = 5
	ImageViewTypeCubeArray ImageViewType = 6
)

type ImageViewCreateFlags uint32

type ImageUsageFlags uint32

const (
	ImageUsageTransferSrc            ImageUsageFlags = 0x01
	ImageUsageTransferDst            ImageUsageFlags = 0x02
	ImageUsageSampled                ImageUsageFlags = 0x04
	ImageUsageStorage                ImageUsageFlags = 0x08
	ImageUsageColorAttachment        ImageUsageFlags = 0x10
	ImageUsageDepthStencilAttachment ImageUsageFlags = 0x20
	ImageUsageTransientAttachment    ImageUsageFlags = 0x40
	ImageUsageInputAttachment        ImageUsageFlags = 0x80
)

type ImageTiling uint32

const (
	ImageTilingOptimal ImageTiling = 0
	ImageTilingLinear  ImageTiling = 1
)

type ImageLayout uint32

const (
	ImageLayoutUndefined                     ImageLayout = 0
	ImageLayoutGeneral                       ImageLayout = 1
	ImageLayoutColorAttachmentOptimal        ImageLayout = 2
	ImageLayoutDepthStencilAttachmentOptimal ImageLayout = 3
	ImageLayoutShaderReadOnlyOptimal         ImageLayout = 5
	ImageLayoutTransferSrcOptimal            ImageLayout = 6
	ImageLayoutTransferDstOptimal            ImageLayout = 7
	ImageLayoutPresentSrc                    ImageLayout = 1000001002
)

type SampleCountFlags uint32

const (
	SampleCount1  SampleCountFlags = 0x01
	SampleCount2  SampleCountFlags = 0x02
	SampleCount4  SampleCountFlags = 0x04
	SampleCount8  SampleCountFlags = 0x08
	SampleCount16 SampleCountFlags = 0x10
)

type ImageAspectFlags uint32

const (
	ImageAspectColor   ImageAspectFlags = 0x1
	ImageAspectDepth   ImageAspectFlags = 0x2
	ImageAspectStencil ImageAspectFlags = 0x4
)

type ComponentSwizzle uint32

const (
	ComponentSwizzleIdentity ComponentSwizzle = 0
	ComponentSwizzleZero     ComponentSwizzle = 1
	ComponentSwizzleOne      ComponentSwizzle = 2
	ComponentSwizzleR        ComponentSwizzle = 3
	ComponentSwizzleG        ComponentSwizzle = 4
	ComponentSwizzleB        ComponentSwizzle = 5
	ComponentSwizzleA        ComponentSwizzle = 6
)

type ComponentMapping struct {
	R, G, B, A ComponentSwizzle
}

type ImageSubresourceRange struct {
	AspectMask     ImageAspectFlags
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

type Extent2D struct {
	Width, Height uint32
}

type Extent3D struct {
	Width, Height, Depth uint32
}

type Filter uint32

const (
	FilterNearest Filter = 0
	FilterLinear  Filter = 1
)

type SamplerMipmapMode uint32

const (
	SamplerMipmapModeNearest SamplerMipmapMode = 0
	SamplerMipmapModeLinear  SamplerMipmapMode = 1
)

type SamplerAddressMode uint32

const (
	SamplerAddressModeRepeat         SamplerAddressMode = 0
	SamplerAddressModeMirroredRepeat SamplerAddressMode = 1
	SamplerAddressModeClampToEdge    SamplerAddressMode = 2
	SamplerAddressModeClampToBorder  SamplerAddressMode = 3
)

type CompareOp uint32

const (
	CompareOpNever          CompareOp = 0
	CompareOpLess           CompareOp = 1
	CompareOpEqual          CompareOp = 2
	CompareOpLessOrEqual    CompareOp = 3
	CompareOpGreater        CompareOp = 4
	CompareOpNotEqual       CompareOp = 5
	CompareOpGreaterOrEqual CompareOp = 6
	CompareOpAlways         CompareOp = 7
)

type BorderColor uint32

const (
	BorderColorFloatTransparentBlack BorderColor = 0
	BorderColorIntTransparentBlack   BorderColor = 1
	BorderColorFloatOpaqueBlack      BorderColor = 2
	BorderColorIntOpaqueBlack        BorderColor = 3
	BorderColorFloatOpaqueWhite      BorderColor = 4
	BorderColorIntOpaqueWhite        BorderColor = 5
)

// LodClampNone disables clamping of the maximum level of detail.
const LodClampNone float32 = 1000.0

type DescriptorType uint32

const (
	DescriptorTypeSampler              DescriptorType = 0
	DescriptorTypeCombinedImageSampler DescriptorType = 1
	DescriptorTypeSampledImage         DescriptorType = 2
	DescriptorTypeStorageImage         DescriptorType = 3
	DescriptorTypeUniformTexelBuffer   DescriptorType = 4
	DescriptorTypeStorageTexelBuffer   DescriptorType = 5
	DescriptorTypeUniformBuffer        DescriptorType = 6
	DescriptorTypeStorageBuffer        DescriptorType = 7
	DescriptorTypeUniformBufferDynamic DescriptorType = 8
	DescriptorTypeStorageBufferDynamic DescriptorType = 9
	DescriptorTypeInputAttachment      DescriptorType = 10
)

type ShaderStageFlags uint32

const (
	ShaderStageVertex      ShaderStageFlags = 0x01
	ShaderStageFragment    ShaderStageFlags = 0x10
	ShaderStageCompute     ShaderStageFlags = 0x20
	ShaderStageAllGraphics ShaderStageFlags = 0x1f
	ShaderStageAll         ShaderStageFlags = 0x7fffffff
)

type DescriptorSetLayoutCreateFlags uint32

type DescriptorPoolCreateFlags uint32

const DescriptorPoolCreateFreeDescriptorSet DescriptorPoolCreateFlags = 0x1

type PipelineLayoutCreateFlags uint32

type PipelineCreateFlags uint32

type CommandPoolCreateFlags uint32

const (
	CommandPoolCreateTransient          CommandPoolCreateFlags = 0x1
	CommandPoolCreateResetCommandBuffer CommandPoolCreateFlags = 0x2
)

type CommandPoolResetFlags uint32

type CommandBufferResetFlags uint32

type CommandBufferLevel uint32

const (
	CommandBufferLevelPrimary   CommandBufferLevel = 0
	CommandBufferLevelSecondary CommandBufferLevel = 1
)

type FenceCreateFlags uint32

const FenceCreateSignaled FenceCreateFlags = 0x1

type SemaphoreCreateFlags uint32

type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal     MemoryPropertyFlags = 0x01
	MemoryPropertyHostVisible     MemoryPropertyFlags = 0x02
	MemoryPropertyHostCoherent    MemoryPropertyFlags = 0x04
	MemoryPropertyHostCached      MemoryPropertyFlags = 0x08
	MemoryPropertyLazilyAllocated MemoryPropertyFlags = 0x10
)

type PresentMode uint32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

type ColorSpace uint32

const ColorSpaceSrgbNonlinear ColorSpace = 0

type CompositeAlphaFlags uint32

const (
	CompositeAlphaOpaque         CompositeAlphaFlags = 0x1
	CompositeAlphaPreMultiplied  CompositeAlphaFlags = 0x2
	CompositeAlphaPostMultiplied CompositeAlphaFlags = 0x4
	CompositeAlphaInherit        CompositeAlphaFlags = 0x8
)

type SurfaceTransformFlags uint32

const SurfaceTransformIdentity SurfaceTransformFlags = 0x1

type PrimitiveTopology uint32

const (
	PrimitiveTopologyPointList     PrimitiveTopology = 0
	PrimitiveTopologyLineList      PrimitiveTopology = 1
	PrimitiveTopologyLineStrip     PrimitiveTopology = 2
	PrimitiveTopologyTriangleList  PrimitiveTopology = 3
	PrimitiveTopologyTriangleStrip PrimitiveTopology = 4
)

type PolygonMode uint32

const (
	PolygonModeFill  PolygonMode = 0
	PolygonModeLine  PolygonMode = 1
	PolygonModePoint PolygonMode = 2
)

type CullModeFlags uint32

const (
	CullModeNone  CullModeFlags = 0
	CullModeFront CullModeFlags = 1
	CullModeBack  CullModeFlags = 2
)

type FrontFace uint32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

type VertexInputRate uint32

const (
	VertexInputRateVertex   VertexInputRate = 0
	VertexInputRateInstance VertexInputRate = 1
)

type ColorComponentFlags uint32

const ColorComponentRGBA ColorComponentFlags = 0xf

type BlendFactor uint32

const (
	BlendFactorZero             BlendFactor = 0
	BlendFactorOne              BlendFactor = 1
	BlendFactorSrcAlpha         BlendFactor = 6
	BlendFactorOneMinusSrcAlpha BlendFactor = 7
)

type BlendOp uint32

const BlendOpAdd BlendOp = 0

type AttachmentLoadOp uint32

const (
	AttachmentLoadOpLoad     AttachmentLoadOp = 0
	AttachmentLoadOpClear    AttachmentLoadOp = 1
	AttachmentLoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp uint32

const (
	AttachmentStoreOpStore    AttachmentStoreOp = 0
	AttachmentStoreOpDontCare AttachmentStoreOp = 1
)

type PipelineBindPoint uint32

const (
	PipelineBindPointGraphics PipelineBindPoint = 0
	PipelineBindPointCompute  PipelineBindPoint = 1
)

type PipelineStageFlags uint32

const (
	PipelineStageTopOfPipe             PipelineStageFlags = 0x00000001
	PipelineStageColorAttachmentOutput PipelineStageFlags = 0x00000400
	PipelineStageComputeShader         PipelineStageFlags = 0x00000800
	PipelineStageBottomOfPipe          PipelineStageFlags = 0x00002000
)

type AccessFlags uint32

const (
	AccessColorAttachmentRead  AccessFlags = 0x00000080
	AccessColorAttachmentWrite AccessFlags = 0x00000100
)

// SubpassExternal refers to commands outside of the render pass.
const SubpassExternal = ^uint32(0)

type DebugSeverityFlags uint32

const (
	DebugSeverityVerbose DebugSeverityFlags = 0x0001
	DebugSeverityInfo    DebugSeverityFlags = 0x0010
	DebugSeverityWarning DebugSeverityFlags = 0x0100
	DebugSeverityError   DebugSeverityFlags = 0x1000
)

type DebugTypeFlags uint32

const (
	DebugTypeGeneral     DebugTypeFlags = 0x1
	DebugTypeValidation  DebugTypeFlags = 0x2
	DebugTypePerformance DebugTypeFlags = 0x4
)

type PhysicalDeviceType uint32

const (
	PhysicalDeviceTypeOther         PhysicalDeviceType = 0
	PhysicalDeviceTypeIntegratedGPU PhysicalDeviceType = 1
	PhysicalDeviceTypeDiscreteGPU   PhysicalDeviceType = 2
	PhysicalDeviceTypeVirtualGPU    PhysicalDeviceType = 3
	PhysicalDeviceTypeCPU           PhysicalDeviceType = 4
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case PhysicalDeviceTypeIntegratedGPU:
		return "integrated"
	case PhysicalDeviceTypeDiscreteGPU:
		return "discrete"
	case PhysicalDeviceTypeVirtualGPU:
		return "virtual"
	case PhysicalDeviceTypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 0x1
	QueueCompute  QueueFlags = 0x2
	QueueTransfer QueueFlags = 0x4
)

// MemoryUsage is the allocator's coarse placement hint.
type MemoryUsage uint32

const (
	MemoryUsageUnknown MemoryUsage = iota
	MemoryUsageGPUOnly
	MemoryUsageCPUOnly
	MemoryUsageCPUToGPU
	MemoryUsageGPUToCPU
	MemoryUsageGPULazilyAllocated
)

type AllocationCreateFlags uint32

const (
	AllocationCreateDedicatedMemory AllocationCreateFlags = 0x1
	AllocationCreateMapped          AllocationCreateFlags = 0x4
)
