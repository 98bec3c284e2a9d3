// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import "strconv"

// The numeric values of the enums and flags below match their
// Vulkan counterparts so that backends can convert by value.

// Format is a texel format.
type Format int32

const (
	FormatUndefined          Format = 0
	FormatR8G8B8A8Unorm      Format = 37
	FormatR8G8B8A8SRGB       Format = 43
	FormatB8G8R8A8Unorm      Format = 44
	FormatB8G8R8A8SRGB       Format = 50
	FormatR16G16B16A16SFloat Format = 97
	FormatR32G32SFloat       Format = 103
	FormatR32G32B32SFloat    Format = 106
	FormatD16Unorm           Format = 124
	FormatD32SFloat          Format = 126
	FormatS8Uint             Format = 127
	FormatD16UnormS8Uint     Format = 128
	FormatD24UnormS8Uint     Format = 129
	FormatD32SFloatS8Uint    Format = 130
)

// IsDepth returns whether the format has a depth component.
func (f Format) IsDepth() bool {
	switch f {
	case FormatD16Unorm, FormatD32SFloat, FormatD16UnormS8Uint, FormatD24UnormS8Uint, FormatD32SFloatS8Uint:
		return true
	}
	return false
}

// HasStencil returns whether the format has a stencil component.
func (f Format) HasStencil() bool {
	switch f {
	case FormatS8Uint, FormatD16UnormS8Uint, FormatD24UnormS8Uint, FormatD32SFloatS8Uint:
		return true
	}
	return false
}

// IsSRGB returns whether the format stores color in the sRGB transfer function.
func (f Format) IsSRGB() bool {
	return f == FormatR8G8B8A8SRGB || f == FormatB8G8R8A8SRGB
}

func (f Format) String() string {
	switch f {
	case FormatUndefined:
		return "Undefined"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8Unorm"
	case FormatR8G8B8A8SRGB:
		return "R8G8B8A8SRGB"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8Unorm"
	case FormatB8G8R8A8SRGB:
		return "B8G8R8A8SRGB"
	case FormatR16G16B16A16SFloat:
		return "R16G16B16A16SFloat"
	case FormatD16Unorm:
		return "D16Unorm"
	case FormatD32SFloat:
		return "D32SFloat"
	case FormatD24UnormS8Uint:
		return "D24UnormS8Uint"
	case FormatD32SFloatS8Uint:
		return "D32SFloatS8Uint"
	}
	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// ColorSpace is the color space of a presentable surface.
type ColorSpace int32

const (
	ColorSpaceSRGBNonlinear ColorSpace = 0
)

// PresentMode is the presentation mode of a swapchain.
type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFIFO        PresentMode = 2
	PresentModeFIFORelaxed PresentMode = 3
)

func (pm PresentMode) String() string {
	switch pm {
	case PresentModeImmediate:
		return "Immediate"
	case PresentModeMailbox:
		return "Mailbox"
	case PresentModeFIFO:
		return "FIFO"
	case PresentModeFIFORelaxed:
		return "FIFORelaxed"
	}
	return "PresentMode(" + strconv.Itoa(int(pm)) + ")"
}

// ImageLayout is the memory layout of an image subresource.
type ImageLayout int32

const (
	LayoutUndefined                     ImageLayout = 0
	LayoutGeneral                       ImageLayout = 1
	LayoutColorAttachmentOptimal        ImageLayout = 2
	LayoutDepthStencilAttachmentOptimal ImageLayout = 3
	LayoutDepthStencilReadOnlyOptimal   ImageLayout = 4
	LayoutShaderReadOnlyOptimal         ImageLayout = 5
	LayoutTransferSrcOptimal            ImageLayout = 6
	LayoutTransferDstOptimal            ImageLayout = 7
	LayoutPreinitialized                ImageLayout = 8
	LayoutPresentSrc                    ImageLayout = 1000001002
)

// Layouts is the list of all named layouts.
var Layouts = []ImageLayout{
	LayoutUndefined, LayoutGeneral, LayoutColorAttachmentOptimal,
	LayoutDepthStencilAttachmentOptimal, LayoutDepthStencilReadOnlyOptimal,
	LayoutShaderReadOnlyOptimal, LayoutTransferSrcOptimal, LayoutTransferDstOptimal,
	LayoutPreinitialized, LayoutPresentSrc,
}

func (l ImageLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "Undefined"
	case LayoutGeneral:
		return "General"
	case LayoutColorAttachmentOptimal:
		return "ColorAttachmentOptimal"
	case LayoutDepthStencilAttachmentOptimal:
		return "DepthStencilAttachmentOptimal"
	case LayoutDepthStencilReadOnlyOptimal:
		return "DepthStencilReadOnlyOptimal"
	case LayoutShaderReadOnlyOptimal:
		return "ShaderReadOnlyOptimal"
	case LayoutTransferSrcOptimal:
		return "TransferSrcOptimal"
	case LayoutTransferDstOptimal:
		return "TransferDstOptimal"
	case LayoutPreinitialized:
		return "Preinitialized"
	case LayoutPresentSrc:
		return "PresentSrc"
	}
	return "ImageLayout(" + strconv.Itoa(int(l)) + ")"
}

// AccessFlags are memory access types for barriers and dependencies.
type AccessFlags uint32

const (
	AccessIndirectCommandRead         AccessFlags = 0x1
	AccessIndexRead                   AccessFlags = 0x2
	AccessVertexAttributeRead         AccessFlags = 0x4
	AccessUniformRead                 AccessFlags = 0x8
	AccessInputAttachmentRead         AccessFlags = 0x10
	AccessShaderRead                  AccessFlags = 0x20
	AccessShaderWrite                 AccessFlags = 0x40
	AccessColorAttachmentRead         AccessFlags = 0x80
	AccessColorAttachmentWrite        AccessFlags = 0x100
	AccessDepthStencilAttachmentRead  AccessFlags = 0x200
	AccessDepthStencilAttachmentWrite AccessFlags = 0x400
	AccessTransferRead                AccessFlags = 0x800
	AccessTransferWrite               AccessFlags = 0x1000
	AccessHostRead                    AccessFlags = 0x2000
	AccessHostWrite                   AccessFlags = 0x4000
	AccessMemoryRead                  AccessFlags = 0x8000
	AccessMemoryWrite                 AccessFlags = 0x10000
)

// PipelineStageFlags are pipeline stages for barriers and dependencies.
type PipelineStageFlags uint32

const (
	StageTopOfPipe             PipelineStageFlags = 0x1
	StageDrawIndirect          PipelineStageFlags = 0x2
	StageVertexInput           PipelineStageFlags = 0x4
	StageVertexShader          PipelineStageFlags = 0x8
	StageFragmentShader        PipelineStageFlags = 0x80
	StageEarlyFragmentTests    PipelineStageFlags = 0x100
	StageLateFragmentTests     PipelineStageFlags = 0x200
	StageColorAttachmentOutput PipelineStageFlags = 0x400
	StageComputeShader         PipelineStageFlags = 0x800
	StageTransfer              PipelineStageFlags = 0x1000
	StageBottomOfPipe          PipelineStageFlags = 0x2000
	StageHost                  PipelineStageFlags = 0x4000
	StageAllGraphics           PipelineStageFlags = 0x8000
	StageAllCommands           PipelineStageFlags = 0x10000
)

// ImageAspectFlags select the aspects of an image.
type ImageAspectFlags uint32

const (
	AspectColor   ImageAspectFlags = 0x1
	AspectDepth   ImageAspectFlags = 0x2
	AspectStencil ImageAspectFlags = 0x4
)

// ImageUsageFlags are the intended usages of an image.
type ImageUsageFlags uint32

const (
	UsageTransferSrc            ImageUsageFlags = 0x1
	UsageTransferDst            ImageUsageFlags = 0x2
	UsageSampled                ImageUsageFlags = 0x4
	UsageStorage                ImageUsageFlags = 0x8
	UsageColorAttachment        ImageUsageFlags = 0x10
	UsageDepthStencilAttachment ImageUsageFlags = 0x20
	UsageTransientAttachment    ImageUsageFlags = 0x40
)

// ImageTiling is the texel arrangement of an image.
type ImageTiling int32

const (
	TilingOptimal ImageTiling = 0
	TilingLinear  ImageTiling = 1
)

// SampleCount is a number of samples per texel. Its values are
// single bits, so a set of counts can be stored in one value.
type SampleCount uint32

const (
	Samples1  SampleCount = 0x1
	Samples2  SampleCount = 0x2
	Samples4  SampleCount = 0x4
	Samples8  SampleCount = 0x8
	Samples16 SampleCount = 0x10
	Samples32 SampleCount = 0x20
	Samples64 SampleCount = 0x40
)

// LoadOp is the operation applied to an attachment at the start of a render pass.
type LoadOp int32

const (
	LoadOpLoad     LoadOp = 0
	LoadOpClear    LoadOp = 1
	LoadOpDontCare LoadOp = 2
)

func (op LoadOp) String() string {
	switch op {
	case LoadOpLoad:
		return "Load"
	case LoadOpClear:
		return "Clear"
	case LoadOpDontCare:
		return "DontCare"
	}
	return "LoadOp(" + strconv.Itoa(int(op)) + ")"
}

// StoreOp is the operation applied to an attachment at the end of a render pass.
type StoreOp int32

const (
	StoreOpStore    StoreOp = 0
	StoreOpDontCare StoreOp = 1
)

// QueueFlags are the capabilities of a queue family.
type QueueFlags uint32

const (
	QueueGraphics QueueFlags = 0x1
	QueueCompute  QueueFlags = 0x2
	QueueTransfer QueueFlags = 0x4
)

// MemoryPropertyFlags are properties of a memory type.
type MemoryPropertyFlags uint32

const (
	MemoryDeviceLocal  MemoryPropertyFlags = 0x1
	MemoryHostVisible  MemoryPropertyFlags = 0x2
	MemoryHostCoherent MemoryPropertyFlags = 0x4
)

// FormatFeatureFlags are the features a format supports for a tiling.
type FormatFeatureFlags uint32

const (
	FeatureSampledImage           FormatFeatureFlags = 0x1
	FeatureColorAttachment        FormatFeatureFlags = 0x80
	FeatureDepthStencilAttachment FormatFeatureFlags = 0x200
)

// DeviceType is the kind of a physical device.
type DeviceType int32

const (
	DeviceTypeOther         DeviceType = 0
	DeviceTypeIntegratedGPU DeviceType = 1
	DeviceTypeDiscreteGPU   DeviceType = 2
	DeviceTypeVirtualGPU    DeviceType = 3
	DeviceTypeCPU           DeviceType = 4
)

func (dt DeviceType) String() string {
	switch dt {
	case DeviceTypeIntegratedGPU:
		return "IntegratedGPU"
	case DeviceTypeDiscreteGPU:
		return "DiscreteGPU"
	case DeviceTypeVirtualGPU:
		return "VirtualGPU"
	case DeviceTypeCPU:
		return "CPU"
	}
	return "Other"
}

// CompositeAlphaFlags are the alpha compositing modes of a surface.
type CompositeAlphaFlags uint32

const (
	CompositeAlphaOpaque         CompositeAlphaFlags = 0x1
	CompositeAlphaPreMultiplied  CompositeAlphaFlags = 0x2
	CompositeAlphaPostMultiplied CompositeAlphaFlags = 0x4
	CompositeAlphaInherit        CompositeAlphaFlags = 0x8
)

// SurfaceTransformFlags are the presentation transforms of a surface.
type SurfaceTransformFlags uint32

const (
	SurfaceTransformIdentity SurfaceTransformFlags = 0x1
)

// DependencyFlags qualify subpass dependencies.
type DependencyFlags uint32

const (
	DependencyByRegion DependencyFlags = 0x1
)

// FrontFace is the winding order of front-facing triangles.
type FrontFace int32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

// CullMode selects which triangles are discarded.
type CullMode uint32

const (
	CullNone  CullMode = 0
	CullFront CullMode = 1
	CullBack  CullMode = 2
)

// PolygonMode is the rasterization mode of polygons.
type PolygonMode int32

const (
	PolygonFill  PolygonMode = 0
	PolygonLine  PolygonMode = 1
	PolygonPoint PolygonMode = 2
)

// Topology is the primitive topology of a pipeline.
type Topology int32

const (
	TopologyPointList     Topology = 0
	TopologyLineList      Topology = 1
	TopologyLineStrip     Topology = 2
	TopologyTriangleList  Topology = 3
	TopologyTriangleStrip Topology = 4
)

// CompareOp is a depth comparison.
type CompareOp int32

const (
	CompareNever       CompareOp = 0
	CompareLess        CompareOp = 1
	CompareEqual       CompareOp = 2
	CompareLessOrEqual CompareOp = 3
	CompareAlways      CompareOp = 7
)

// ShaderStageFlags are shader stages.
type ShaderStageFlags uint32

const (
	ShaderVertex   ShaderStageFlags = 0x1
	ShaderFragment ShaderStageFlags = 0x10
	ShaderCompute  ShaderStageFlags = 0x20
)

// DebugReportFlags are the severities of a validation message.
type DebugReportFlags uint32

const (
	DebugInformation        DebugReportFlags = 0x1
	DebugWarning            DebugReportFlags = 0x2
	DebugPerformanceWarning DebugReportFlags = 0x4
	DebugError              DebugReportFlags = 0x8
	DebugDebug              DebugReportFlags = 0x10
)
