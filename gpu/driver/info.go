// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

// Extent2D is a size in pixels.
type Extent2D struct {
	Width, Height uint32
}

// Rect2D is a rectangle in framebuffer coordinates.
type Rect2D struct {
	X, Y   int32
	Extent Extent2D
}

// Viewport is the transform from normalized device coordinates
// to framebuffer coordinates.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// PhysicalDeviceProperties describes a physical device.
type PhysicalDeviceProperties struct {
	Name       string
	Type       DeviceType
	APIVersion uint32

	// sample counts supported by both color and depth framebuffer attachments
	FramebufferSamples SampleCount
}

// DeviceFeatures is the subset of device features the renderer cares about.
type DeviceFeatures struct {
	SamplerAnisotropy bool
	SampleRateShading bool
	IndependentBlend  bool
}

// Satisfies returns whether every feature enabled in req is enabled in f.
func (f DeviceFeatures) Satisfies(req DeviceFeatures) bool {
	return (!req.SamplerAnisotropy || f.SamplerAnisotropy) &&
		(!req.SampleRateShading || f.SampleRateShading) &&
		(!req.IndependentBlend || f.IndependentBlend)
}

// QueueFamilyProperties describes a queue family of a physical device.
type QueueFamilyProperties struct {
	Flags QueueFlags
	Count uint32
}

// FormatProperties are the features of a format for each tiling.
type FormatProperties struct {
	LinearTiling  FormatFeatureFlags
	OptimalTiling FormatFeatureFlags
}

// MemoryType is one memory type of a physical device.
type MemoryType struct {
	Properties MemoryPropertyFlags
	HeapIndex  uint32
}

// MemoryProperties lists the memory types of a physical device.
type MemoryProperties struct {
	Types []MemoryType
}

// MemoryRequirements are the memory requirements of a resource.
type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

// SurfaceCapabilities are the capabilities of a surface for a device.
type SurfaceCapabilities struct {
	MinImageCount uint32

	// 0 means there is no limit
	MaxImageCount uint32

	// [UndefinedExtent] in both dimensions when the swapchain decides
	CurrentExtent Extent2D

	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	MaxImageArrayLayers     uint32
	SupportedCompositeAlpha CompositeAlphaFlags
	CurrentTransform        SurfaceTransformFlags
}

// SurfaceFormat is a format and color space pair supported by a surface.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// InstanceCreateInfo configures an [Instance].
type InstanceCreateInfo struct {
	AppName    string
	Extensions []string
	Layers     []string

	// Debug, when non-nil, receives validation messages.
	Debug func(flags DebugReportFlags, msg string)
}

// QueueCreateInfo requests queues from one family.
type QueueCreateInfo struct {
	Family     uint32
	Priorities []float32
}

// DeviceCreateInfo configures a logical [Device].
type DeviceCreateInfo struct {
	PhysicalDevice PhysicalDevice
	Queues         []QueueCreateInfo
	Extensions     []string
	Features       DeviceFeatures
}

// ImageCreateInfo configures a 2D [Image].
type ImageCreateInfo struct {
	Extent      Extent2D
	MipLevels   uint32
	ArrayLayers uint32
	Format      Format
	Tiling      ImageTiling
	Usage       ImageUsageFlags
	Samples     SampleCount
}

// ImageViewCreateInfo configures an [ImageView].
type ImageViewCreateInfo struct {
	Image      Image
	Format     Format
	Aspect     ImageAspectFlags
	BaseMip    uint32
	MipLevels  uint32
	BaseLayer  uint32
	LayerCount uint32
}

// AttachmentDescription describes one attachment of a render pass.
type AttachmentDescription struct {
	Format         Format
	Samples        SampleCount
	LoadOp         LoadOp
	StoreOp        StoreOp
	StencilLoadOp  LoadOp
	StencilStoreOp StoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

// AttachmentReference refers to an attachment by index.
type AttachmentReference struct {
	Attachment uint32
	Layout     ImageLayout
}

// SubpassDescription describes the single graphics subpass of a render pass.
type SubpassDescription struct {
	ColorAttachments       []AttachmentReference
	ResolveAttachments     []AttachmentReference
	DepthStencilAttachment *AttachmentReference
}

// SubpassDependency orders work between subpasses.
type SubpassDependency struct {
	SrcSubpass, DstSubpass uint32
	SrcStage, DstStage     PipelineStageFlags
	SrcAccess, DstAccess   AccessFlags
	Flags                  DependencyFlags
}

// RenderPassCreateInfo configures a [RenderPass].
type RenderPassCreateInfo struct {
	Attachments  []AttachmentDescription
	Subpasses    []SubpassDescription
	Dependencies []SubpassDependency
}

// FramebufferCreateInfo configures a [Framebuffer].
type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
	Layers      uint32
}

// SwapchainCreateInfo configures a [Swapchain].
type SwapchainCreateInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        Format
	ColorSpace    ColorSpace
	Extent        Extent2D
	Usage         ImageUsageFlags

	// more than one family means concurrent sharing
	QueueFamilies []uint32

	PreTransform   SurfaceTransformFlags
	CompositeAlpha CompositeAlphaFlags
	PresentMode    PresentMode
	Clipped        bool
	OldSwapchain   Swapchain
}

// ImageMemoryBarrier is a layout transition and memory dependency on an image.
type ImageMemoryBarrier struct {
	SrcAccess  AccessFlags
	DstAccess  AccessFlags
	OldLayout  ImageLayout
	NewLayout  ImageLayout
	Image      Image
	Aspect     ImageAspectFlags
	BaseMip    uint32
	MipLevels  uint32
	BaseLayer  uint32
	LayerCount uint32
}

// SubmitInfo is one batch of a queue submission.
type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitStages       []PipelineStageFlags
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

// PresentInfo presents one swapchain image.
type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchain      Swapchain
	ImageIndex     uint32
}

// ClearValue is the clear value of one attachment.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32

	// selects Depth and Stencil over Color
	IsDepth bool
}

// RenderPassBeginInfo starts a render pass instance.
type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Area        Rect2D
	ClearValues []ClearValue
}

// PipelineLayoutCreateInfo configures a [PipelineLayout].
type PipelineLayoutCreateInfo struct {
	PushConstantSize   uint32
	PushConstantStages ShaderStageFlags
}

// ShaderStage is one programmable stage of a pipeline.
type ShaderStage struct {
	Stage  ShaderStageFlags
	Module ShaderModule
	Entry  string
}

// VertexBinding describes one vertex buffer binding.
type VertexBinding struct {
	Binding uint32
	Stride  uint32
}

// VertexAttribute describes one vertex attribute.
type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

// GraphicsPipelineCreateInfo configures a graphics [Pipeline]
// with dynamic viewport and scissor state.
type GraphicsPipelineCreateInfo struct {
	Stages           []ShaderStage
	VertexBindings   []VertexBinding
	VertexAttributes []VertexAttribute
	Topology         Topology
	PolygonMode      PolygonMode
	CullMode         CullMode
	FrontFace        FrontFace
	LineWidth        float32
	Samples          SampleCount
	SampleShading    bool
	MinSampleShading float32
	DepthTest        bool
	DepthWrite       bool
	DepthCompare     CompareOp
	BlendEnable      bool
	ColorAttachments uint32
	Layout           PipelineLayout
	RenderPass       RenderPass
	Subpass          uint32
}
