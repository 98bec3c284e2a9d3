// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver defines the explicit GPU API that the gpu package
// renders through. It is shaped after Vulkan: objects are referred to
// by opaque handles, synchronization is explicit through fences and
// semaphores, and images carry layouts that must be transitioned.
//
// A Driver is not safe for concurrent use unless an implementation
// says otherwise; command pools in particular must only be used from
// the goroutine driving the renderer.
package driver

// Driver is the interface implemented by GPU backends.
// Destroy methods ignore null handles.
type Driver interface {
	// Name returns the name of the backend.
	Name() string

	// Instance

	CreateInstance(info *InstanceCreateInfo) (Instance, error)
	DestroyInstance(inst Instance)

	// Physical devices

	EnumeratePhysicalDevices(inst Instance) ([]PhysicalDevice, error)
	PhysicalDeviceProperties(pd PhysicalDevice) PhysicalDeviceProperties
	PhysicalDeviceFeatures(pd PhysicalDevice) DeviceFeatures
	QueueFamilyProperties(pd PhysicalDevice) []QueueFamilyProperties
	DeviceExtensions(pd PhysicalDevice) ([]string, error)
	FormatProperties(pd PhysicalDevice, format Format) FormatProperties
	MemoryProperties(pd PhysicalDevice) MemoryProperties

	// Surfaces

	SurfaceSupport(pd PhysicalDevice, family uint32, surface Surface) (bool, error)
	SurfaceCapabilities(pd PhysicalDevice, surface Surface) (SurfaceCapabilities, error)
	SurfaceFormats(pd PhysicalDevice, surface Surface) ([]SurfaceFormat, error)
	SurfacePresentModes(pd PhysicalDevice, surface Surface) ([]PresentMode, error)
	DestroySurface(inst Instance, surface Surface)

	// Logical devices

	CreateDevice(info *DeviceCreateInfo) (Device, error)
	DestroyDevice(dev Device)
	DeviceQueue(dev Device, family, index uint32) Queue
	DeviceWaitIdle(dev Device) error

	// Commands

	CreateCommandPool(dev Device, family uint32) (CommandPool, error)
	DestroyCommandPool(dev Device, pool CommandPool)
	AllocateCommandBuffers(dev Device, pool CommandPool, n int) ([]CommandBuffer, error)
	FreeCommandBuffers(dev Device, pool CommandPool, cbs []CommandBuffer)
	BeginCommandBuffer(cb CommandBuffer, oneTime bool) error
	EndCommandBuffer(cb CommandBuffer) error
	ResetCommandBuffer(cb CommandBuffer) error
	CmdPipelineBarrier(cb CommandBuffer, src, dst PipelineStageFlags, barriers []ImageMemoryBarrier)
	CmdBeginRenderPass(cb CommandBuffer, info *RenderPassBeginInfo)
	CmdEndRenderPass(cb CommandBuffer)
	CmdSetViewport(cb CommandBuffer, vp Viewport)
	CmdSetScissor(cb CommandBuffer, rect Rect2D)
	CmdBindPipeline(cb CommandBuffer, pl Pipeline)
	CmdDraw(cb CommandBuffer, vertices, instances, firstVertex, firstInstance uint32)

	// Synchronization

	CreateFence(dev Device, signaled bool) (Fence, error)
	DestroyFence(dev Device, f Fence)
	WaitForFences(dev Device, fences []Fence, timeout uint64) error
	ResetFences(dev Device, fences []Fence) error
	FenceStatus(dev Device, f Fence) (bool, error)
	CreateSemaphore(dev Device) (Semaphore, error)
	DestroySemaphore(dev Device, s Semaphore)
	QueueSubmit(q Queue, submits []SubmitInfo, fence Fence) error
	QueueWaitIdle(q Queue) error

	// Memory and images

	CreateImage(dev Device, info *ImageCreateInfo) (Image, error)
	DestroyImage(dev Device, img Image)
	ImageMemoryRequirements(dev Device, img Image) MemoryRequirements
	AllocateMemory(dev Device, size uint64, memoryType uint32) (DeviceMemory, error)
	FreeMemory(dev Device, mem DeviceMemory)
	BindImageMemory(dev Device, img Image, mem DeviceMemory, offset uint64) error
	CreateImageView(dev Device, info *ImageViewCreateInfo) (ImageView, error)
	DestroyImageView(dev Device, view ImageView)

	// Render passes and framebuffers

	CreateRenderPass(dev Device, info *RenderPassCreateInfo) (RenderPass, error)
	DestroyRenderPass(dev Device, rp RenderPass)
	CreateFramebuffer(dev Device, info *FramebufferCreateInfo) (Framebuffer, error)
	DestroyFramebuffer(dev Device, fb Framebuffer)

	// Swapchains

	CreateSwapchain(dev Device, info *SwapchainCreateInfo) (Swapchain, error)
	DestroySwapchain(dev Device, sc Swapchain)
	SwapchainImages(dev Device, sc Swapchain) ([]Image, error)

	// AcquireNextImage returns the index of the next presentable image.
	// The index is valid for [Success] and [Suboptimal].
	AcquireNextImage(dev Device, sc Swapchain, timeout uint64, sem Semaphore, fence Fence) (uint32, Result)

	// QueuePresent queues an image for presentation.
	QueuePresent(q Queue, info *PresentInfo) Result

	// Pipelines

	CreateShaderModule(dev Device, code []byte) (ShaderModule, error)
	DestroyShaderModule(dev Device, sm ShaderModule)
	CreatePipelineLayout(dev Device, info *PipelineLayoutCreateInfo) (PipelineLayout, error)
	DestroyPipelineLayout(dev Device, pl PipelineLayout)
	CreateGraphicsPipeline(dev Device, info *GraphicsPipelineCreateInfo) (Pipeline, error)
	DestroyPipeline(dev Device, pl Pipeline)
}
