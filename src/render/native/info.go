package native

// Create-info structs. Handle fields name the native objects a create call
// refers to; they are filled in by the render package from its wrappers and
// are never part of a stored configuration snapshot.

type ApiVersion struct {
	Major, Minor uint32
}

var (
	ApiVersion10 = ApiVersion{1, 0}
	ApiVersion11 = ApiVersion{1, 1}
	ApiVersion12 = ApiVersion{1, 2}
	ApiVersion13 = ApiVersion{1, 3}
)

// Less reports whether v is an older version than o.
func (v ApiVersion) Less(o ApiVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	ApiVersion         ApiVersion
	EnabledLayers      []string
	EnabledExtensions  []string
}

type DebugMessengerCreateInfo struct {
	Severity DebugSeverityFlags
	Type     DebugTypeFlags
	// Callback receives every message matching Severity and Type. It may be
	// called from any thread the driver chooses.
	Callback func(severity DebugSeverityFlags, typ DebugTypeFlags, message string)
}

type QueueFamilyProperties struct {
	Flags QueueFlags
	Count uint32
}

type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

type PhysicalDeviceProperties struct {
	Name          string
	Type          PhysicalDeviceType
	VendorID      uint32
	DeviceID      uint32
	ApiVersion    ApiVersion
	QueueFamilies []QueueFamilyProperties
	MemoryTypes   []MemoryType
	Extensions    []string
}

type PhysicalDeviceFeatures struct {
	SamplerAnisotropy bool
	FillModeNonSolid  bool
	WideLines         bool
	ShaderInt64       bool
}

type DeviceQueueCreateInfo struct {
	QueueFamilyIndex uint32
	QueuePriorities  []float32
}

type DeviceCreateInfo struct {
	QueueCreateInfos  []DeviceQueueCreateInfo
	EnabledExtensions []string
	EnabledLayers     []string
	Features          PhysicalDeviceFeatures
}

type SwapchainCreateInfo struct {
	Surface            Handle
	OldSwapchain       Handle
	MinImageCount      uint32
	ImageFormat        Format
	ImageColorSpace    ColorSpace
	ImageExtent        Extent2D
	ImageArrayLayers   uint32
	ImageUsage         ImageUsageFlags
	ImageSharingMode   SharingMode
	QueueFamilyIndices []uint32
	PreTransform       SurfaceTransformFlags
	CompositeAlpha     CompositeAlphaFlags
	PresentMode        PresentMode
	Clipped            bool
}

type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

type BufferCreateInfo struct {
	Flags              BufferCreateFlags
	Size               uint64
	Usage              BufferUsageFlags
	SharingMode        SharingMode
	QueueFamilyIndices []uint32
}

type BufferViewCreateInfo struct {
	Buffer Handle
	Format Format
	Offset uint64
	Range  uint64
}

// WholeSize selects the remainder of a buffer from an offset.
const WholeSize = ^uint64(0)

type ImageCreateInfo struct {
	Flags              ImageCreateFlags
	ImageType          ImageType
	Format             Format
	Extent             Extent3D
	MipLevels          uint32
	ArrayLayers        uint32
	Samples            SampleCountFlags
	Tiling             ImageTiling
	Usage              ImageUsageFlags
	SharingMode        SharingMode
	QueueFamilyIndices []uint32
	InitialLayout      ImageLayout
}

type ImageViewCreateInfo struct {
	Image            Handle
	Flags            ImageViewCreateFlags
	ViewType         ImageViewType
	Format           Format
	Components       ComponentMapping
	SubresourceRange ImageSubresourceRange
}

type SamplerCreateInfo struct {
	MagFilter               Filter
	MinFilter               Filter
	MipmapMode              SamplerMipmapMode
	AddressModeU            SamplerAddressMode
	AddressModeV            SamplerAddressMode
	AddressModeW            SamplerAddressMode
	MipLodBias              float32
	AnisotropyEnable        bool
	MaxAnisotropy           float32
	CompareEnable           bool
	CompareOp               CompareOp
	MinLod                  float32
	MaxLod                  float32
	BorderColor             BorderColor
	UnnormalizedCoordinates bool
}

type ShaderModuleCreateInfo struct {
	Code []uint32
}

type DescriptorSetLayoutBinding struct {
	Binding           uint32
	DescriptorType    DescriptorType
	DescriptorCount   uint32
	StageFlags        ShaderStageFlags
	ImmutableSamplers []Handle
}

type DescriptorSetLayoutCreateInfo struct {
	Flags    DescriptorSetLayoutCreateFlags
	Bindings []DescriptorSetLayoutBinding
}

type DescriptorPoolSize struct {
	Type            DescriptorType
	DescriptorCount uint32
}

type DescriptorPoolCreateInfo struct {
	Flags     DescriptorPoolCreateFlags
	MaxSets   uint32
	PoolSizes []DescriptorPoolSize
}

type PushConstantRange struct {
	StageFlags ShaderStageFlags
	Offset     uint32
	Size       uint32
}

type PipelineLayoutCreateInfo struct {
	Flags              PipelineLayoutCreateFlags
	SetLayouts         []Handle
	PushConstantRanges []PushConstantRange
}

type PipelineCacheCreateInfo struct {
	InitialData []byte
}

type AttachmentDescription struct {
	Format         Format
	Samples        SampleCountFlags
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

type AttachmentReference struct {
	Attachment uint32
	Layout     ImageLayout
}

type SubpassDescription struct {
	BindPoint           PipelineBindPoint
	InputAttachments    []AttachmentReference
	ColorAttachments    []AttachmentReference
	DepthAttachment     *AttachmentReference
	PreserveAttachments []uint32
}

type SubpassDependency struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  PipelineStageFlags
	DstStageMask  PipelineStageFlags
	SrcAccessMask AccessFlags
	DstAccessMask AccessFlags
}

type RenderPassCreateInfo struct {
	Attachments  []AttachmentDescription
	Subpasses    []SubpassDescription
	Dependencies []SubpassDependency
}

type FramebufferCreateInfo struct {
	RenderPass  Handle
	Attachments []Handle
	Width       uint32
	Height      uint32
	Layers      uint32
}

type ShaderStageCreateInfo struct {
	Stage      ShaderStageFlags
	Module     Handle
	EntryPoint string
}

type ComputePipelineCreateInfo struct {
	Flags  PipelineCreateFlags
	Stage  ShaderStageCreateInfo
	Layout Handle
}

type VertexInputBinding struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexInputAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

type ColorBlendAttachment struct {
	BlendEnable    bool
	SrcColorFactor BlendFactor
	DstColorFactor BlendFactor
	ColorOp        BlendOp
	SrcAlphaFactor BlendFactor
	DstAlphaFactor BlendFactor
	AlphaOp        BlendOp
	WriteMask      ColorComponentFlags
}

type DepthStencilState struct {
	DepthTestEnable  bool
	DepthWriteEnable bool
	DepthCompareOp   CompareOp
}

// GraphicsPipelineCreateInfo always uses dynamic viewport and scissor state.
type GraphicsPipelineCreateInfo struct {
	Flags            PipelineCreateFlags
	Stages           []ShaderStageCreateInfo
	VertexBindings   []VertexInputBinding
	VertexAttributes []VertexInputAttribute
	Topology         PrimitiveTopology
	PolygonMode      PolygonMode
	CullMode         CullModeFlags
	FrontFace        FrontFace
	LineWidth        float32
	Samples          SampleCountFlags
	ColorBlend       []ColorBlendAttachment
	DepthStencil     *DepthStencilState
	Layout           Handle
	RenderPass       Handle
	Subpass          uint32
}

type CommandPoolCreateInfo struct {
	Flags            CommandPoolCreateFlags
	QueueFamilyIndex uint32
}

type FenceCreateInfo struct {
	Flags FenceCreateFlags
}

type SemaphoreCreateInfo struct {
	Flags SemaphoreCreateFlags
}

// Allocator service.

type AllocatorCreateInfo struct {
	Instance                    Handle
	PhysicalDevice              Handle
	Device                      Handle
	ApiVersion                  ApiVersion
	PreferredLargeHeapBlockSize uint64
}

type PoolCreateInfo struct {
	MemoryTypeIndex uint32
	BlockSize       uint64
	MinBlockCount   uint32
	MaxBlockCount   uint32
}

type AllocationCreateInfo struct {
	Pool           Handle
	Flags          AllocationCreateFlags
	Usage          MemoryUsage
	RequiredFlags  MemoryPropertyFlags
	PreferredFlags MemoryPropertyFlags
}

type AllocationInfo struct {
	Memory        Handle
	Offset        uint64
	Size          uint64
	MemoryType    uint32
	PropertyFlags MemoryPropertyFlags
}
