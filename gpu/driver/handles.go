// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

// Handles are opaque values identifying objects owned by a [Driver].
// The zero value of every handle type is the null handle.
type (
	Instance       uint64
	PhysicalDevice uint64
	Device         uint64
	Queue          uint64
	CommandPool    uint64
	CommandBuffer  uint64
	Fence          uint64
	Semaphore      uint64
	DeviceMemory   uint64
	Image          uint64
	ImageView      uint64
	RenderPass     uint64
	Framebuffer    uint64
	Surface        uint64
	Swapchain      uint64
	ShaderModule   uint64
	PipelineLayout uint64
	Pipeline       uint64
)

const (
	// NoTimeout is the timeout value that waits forever.
	NoTimeout = ^uint64(0)

	// SubpassExternal refers to commands outside of a render pass
	// in a [SubpassDependency].
	SubpassExternal = ^uint32(0)

	// QueueFamilyIgnored means no queue family ownership transfer.
	QueueFamilyIgnored = ^uint32(0)

	// UndefinedExtent is the surface extent value meaning that the
	// extent is determined by the swapchain.
	UndefinedExtent = ^uint32(0)
)

// Well known extension names.
const (
	SwapchainExtension   = "VK_KHR_swapchain"
	SurfaceExtension     = "VK_KHR_surface"
	DebugReportExtension = "VK_EXT_debug_report"
	PortabilitySubset    = "VK_KHR_portability_subset"
	ValidationLayer      = "VK_LAYER_KHRONOS_validation"
)
