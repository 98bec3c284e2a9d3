// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package drivertest provides an in-memory [driver.Driver] for tests.
// It simulates fences with a simple model: submitted work stays in
// flight until a fence wait, queue wait or device wait completes it.
package drivertest

import (
	"fmt"
	"slices"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// PhysicalDevice configures one simulated physical device.
type PhysicalDevice struct {
	Properties driver.PhysicalDeviceProperties
	Features   driver.DeviceFeatures
	Families   []driver.QueueFamilyProperties

	// families that can present to the surface
	PresentFamilies []uint32

	Extensions []string

	// format features for optimal tiling; formats not present
	// support no features
	Formats map[driver.Format]driver.FormatFeatureFlags
}

// GoodDevice returns a physical device with a single family
// supporting everything, and the given name.
func GoodDevice(name string) *PhysicalDevice {
	return &PhysicalDevice{
		Properties: driver.PhysicalDeviceProperties{
			Name:               name,
			Type:               driver.DeviceTypeDiscreteGPU,
			FramebufferSamples: driver.Samples1 | driver.Samples2 | driver.Samples4 | driver.Samples8,
		},
		Features: driver.DeviceFeatures{SamplerAnisotropy: true, SampleRateShading: true, IndependentBlend: true},
		Families: []driver.QueueFamilyProperties{
			{Flags: driver.QueueGraphics | driver.QueueCompute | driver.QueueTransfer, Count: 1},
		},
		PresentFamilies: []uint32{0},
		Extensions:      []string{driver.SwapchainExtension},
		Formats: map[driver.Format]driver.FormatFeatureFlags{
			driver.FormatD32SFloat:      driver.FeatureDepthStencilAttachment,
			driver.FormatD24UnormS8Uint: driver.FeatureDepthStencilAttachment,
			driver.FormatB8G8R8A8SRGB:   driver.FeatureColorAttachment | driver.FeatureSampledImage,
			driver.FormatR8G8B8A8SRGB:   driver.FeatureColorAttachment | driver.FeatureSampledImage,
			driver.FormatR8G8B8A8Unorm:  driver.FeatureColorAttachment | driver.FeatureSampledImage,
			driver.FormatB8G8R8A8Unorm:  driver.FeatureColorAttachment | driver.FeatureSampledImage,
		},
	}
}

// Barrier is a recorded pipeline barrier.
type Barrier struct {
	Src, Dst driver.PipelineStageFlags
	driver.ImageMemoryBarrier
}

type fence struct {
	signaled bool
	pending  bool
}

type swapchain struct {
	info   driver.SwapchainCreateInfo
	images []driver.Image
	next   uint32
}

// Driver is an in-memory [driver.Driver]. Configure the exported
// fields before use; counters and records can be inspected afterwards.
type Driver struct {
	Devices []*PhysicalDevice

	SurfaceCaps  driver.SurfaceCapabilities
	Formats      []driver.SurfaceFormat
	PresentModes []driver.PresentMode

	// results returned by successive AcquireNextImage and QueuePresent
	// calls; [driver.Success] once exhausted
	AcquireResults []driver.Result
	PresentResults []driver.Result

	// errors returned by successive QueueSubmit and BeginCommandBuffer
	// calls; a nil entry succeeds, and calls succeed once exhausted
	SubmitErrors []error
	BeginErrors  []error

	// FailCreate makes the named Create call fail, e.g. "RenderPass".
	FailCreate map[string]error

	// Created and Destroyed count objects by kind, e.g. "Swapchain".
	Created   map[string]int
	Destroyed map[string]int

	// MaxInFlight is the largest number of fences in flight at once.
	MaxInFlight int

	// Violations lists misuse detected by the driver, such as
	// destroying objects while work is in flight.
	Violations []string

	Barriers       []Barrier
	BeginInfos     []driver.RenderPassBeginInfo
	RenderPasses   map[driver.RenderPass]driver.RenderPassCreateInfo
	Framebuffers   map[driver.Framebuffer]driver.FramebufferCreateInfo
	Pipelines      map[driver.Pipeline]driver.GraphicsPipelineCreateInfo
	Images         map[driver.Image]driver.ImageCreateInfo
	DeviceInfos    []driver.DeviceCreateInfo
	SwapchainInfos []driver.SwapchainCreateInfo
	Submits        int
	Presents       int
	DebugCallback  func(flags driver.DebugReportFlags, msg string)

	handle     uint64
	fences     map[driver.Fence]*fence
	swapchains map[driver.Swapchain]*swapchain
	recording  map[driver.CommandBuffer]bool
	signaled   map[driver.Semaphore]bool
	pdevs      map[driver.PhysicalDevice]*PhysicalDevice
}

// New returns a new [Driver] with the given physical devices and a
// surface reporting an 800x600 current extent.
func New(devs ...*PhysicalDevice) *Driver {
	return &Driver{
		Devices: devs,
		SurfaceCaps: driver.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           driver.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          driver.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          driver.Extent2D{Width: 4096, Height: 4096},
			MaxImageArrayLayers:     1,
			SupportedCompositeAlpha: driver.CompositeAlphaOpaque,
			CurrentTransform:        driver.SurfaceTransformIdentity,
		},
		Formats: []driver.SurfaceFormat{
			{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSRGBNonlinear},
			{Format: driver.FormatB8G8R8A8SRGB, ColorSpace: driver.ColorSpaceSRGBNonlinear},
		},
		PresentModes: []driver.PresentMode{driver.PresentModeFIFO, driver.PresentModeMailbox},
		FailCreate:   map[string]error{},
		Created:      map[string]int{},
		Destroyed:    map[string]int{},
		RenderPasses: map[driver.RenderPass]driver.RenderPassCreateInfo{},
		Framebuffers: map[driver.Framebuffer]driver.FramebufferCreateInfo{},
		Pipelines:    map[driver.Pipeline]driver.GraphicsPipelineCreateInfo{},
		Images:       map[driver.Image]driver.ImageCreateInfo{},
		fences:       map[driver.Fence]*fence{},
		swapchains:   map[driver.Swapchain]*swapchain{},
		recording:    map[driver.CommandBuffer]bool{},
		signaled:     map[driver.Semaphore]bool{},
		pdevs:        map[driver.PhysicalDevice]*PhysicalDevice{},
	}
}

// Surface is the surface handle to pass to code under test.
const Surface driver.Surface = 0x5f

func (d *Driver) next() uint64 {
	d.handle++
	return d.handle
}

func (d *Driver) create(kind string) error {
	if err := d.FailCreate[kind]; err != nil {
		return err
	}
	d.Created[kind]++
	return nil
}

func (d *Driver) destroy(kind string, h uint64) {
	if h == 0 {
		return
	}
	d.Destroyed[kind]++
	switch kind {
	case "Fence", "CommandBuffer", "ShaderModule":
		return
	}
	if n := d.InFlight(); n > 0 {
		d.violate("destroyed %s %d with %d submissions in flight", kind, h, n)
	}
}

func (d *Driver) violate(format string, args ...any) {
	d.Violations = append(d.Violations, fmt.Sprintf(format, args...))
}

// Live returns the number of objects of the given kind that were
// created and not yet destroyed.
func (d *Driver) Live(kind string) int {
	return d.Created[kind] - d.Destroyed[kind]
}

// InFlight returns the number of fences with submitted work that has
// not been waited on.
func (d *Driver) InFlight() int {
	n := 0
	for _, f := range d.fences {
		if f.pending {
			n++
		}
	}
	return n
}

// complete simulates the GPU finishing the work guarded by f.
func (d *Driver) complete(f *fence) {
	if f.pending {
		f.pending = false
		f.signaled = true
	}
}

func (d *Driver) completeAll() {
	for _, f := range d.fences {
		d.complete(f)
	}
}

func (d *Driver) Name() string { return "test" }

func (d *Driver) CreateInstance(info *driver.InstanceCreateInfo) (driver.Instance, error) {
	if err := d.create("Instance"); err != nil {
		return 0, err
	}
	d.DebugCallback = info.Debug
	return driver.Instance(d.next()), nil
}

func (d *Driver) DestroyInstance(inst driver.Instance) { d.destroy("Instance", uint64(inst)) }

func (d *Driver) EnumeratePhysicalDevices(inst driver.Instance) ([]driver.PhysicalDevice, error) {
	pds := make([]driver.PhysicalDevice, len(d.Devices))
	for i, dev := range d.Devices {
		pd := driver.PhysicalDevice(i + 1)
		d.pdevs[pd] = dev
		pds[i] = pd
	}
	return pds, nil
}

func (d *Driver) pdev(pd driver.PhysicalDevice) *PhysicalDevice {
	dev, ok := d.pdevs[pd]
	if !ok {
		panic(fmt.Sprintf("drivertest: unknown physical device %d", pd))
	}
	return dev
}

func (d *Driver) PhysicalDeviceProperties(pd driver.PhysicalDevice) driver.PhysicalDeviceProperties {
	return d.pdev(pd).Properties
}

func (d *Driver) PhysicalDeviceFeatures(pd driver.PhysicalDevice) driver.DeviceFeatures {
	return d.pdev(pd).Features
}

func (d *Driver) QueueFamilyProperties(pd driver.PhysicalDevice) []driver.QueueFamilyProperties {
	return d.pdev(pd).Families
}

func (d *Driver) DeviceExtensions(pd driver.PhysicalDevice) ([]string, error) {
	return d.pdev(pd).Extensions, nil
}

func (d *Driver) FormatProperties(pd driver.PhysicalDevice, format driver.Format) driver.FormatProperties {
	return driver.FormatProperties{OptimalTiling: d.pdev(pd).Formats[format]}
}

func (d *Driver) MemoryProperties(pd driver.PhysicalDevice) driver.MemoryProperties {
	return driver.MemoryProperties{Types: []driver.MemoryType{
		{Properties: driver.MemoryHostVisible | driver.MemoryHostCoherent},
		{Properties: driver.MemoryDeviceLocal},
	}}
}

func (d *Driver) SurfaceSupport(pd driver.PhysicalDevice, family uint32, surface driver.Surface) (bool, error) {
	return slices.Contains(d.pdev(pd).PresentFamilies, family), nil
}

func (d *Driver) SurfaceCapabilities(pd driver.PhysicalDevice, surface driver.Surface) (driver.SurfaceCapabilities, error) {
	return d.SurfaceCaps, nil
}

func (d *Driver) SurfaceFormats(pd driver.PhysicalDevice, surface driver.Surface) ([]driver.SurfaceFormat, error) {
	return d.Formats, nil
}

func (d *Driver) SurfacePresentModes(pd driver.PhysicalDevice, surface driver.Surface) ([]driver.PresentMode, error) {
	return d.PresentModes, nil
}

func (d *Driver) DestroySurface(inst driver.Instance, surface driver.Surface) {
	d.destroy("Surface", uint64(surface))
}

func (d *Driver) CreateDevice(info *driver.DeviceCreateInfo) (driver.Device, error) {
	if err := d.create("Device"); err != nil {
		return 0, err
	}
	d.DeviceInfos = append(d.DeviceInfos, *info)
	return driver.Device(d.next()), nil
}

func (d *Driver) DestroyDevice(dev driver.Device) { d.destroy("Device", uint64(dev)) }

func (d *Driver) DeviceQueue(dev driver.Device, family, index uint32) driver.Queue {
	return driver.Queue(0x100 + family)
}

func (d *Driver) DeviceWaitIdle(dev driver.Device) error {
	d.completeAll()
	return nil
}

func (d *Driver) CreateCommandPool(dev driver.Device, family uint32) (driver.CommandPool, error) {
	if err := d.create("CommandPool"); err != nil {
		return 0, err
	}
	return driver.CommandPool(d.next()), nil
}

func (d *Driver) DestroyCommandPool(dev driver.Device, pool driver.CommandPool) {
	d.destroy("CommandPool", uint64(pool))
}

func (d *Driver) AllocateCommandBuffers(dev driver.Device, pool driver.CommandPool, n int) ([]driver.CommandBuffer, error) {
	cbs := make([]driver.CommandBuffer, n)
	for i := range cbs {
		if err := d.create("CommandBuffer"); err != nil {
			return nil, err
		}
		cbs[i] = driver.CommandBuffer(d.next())
	}
	return cbs, nil
}

func (d *Driver) FreeCommandBuffers(dev driver.Device, pool driver.CommandPool, cbs []driver.CommandBuffer) {
	for _, cb := range cbs {
		d.destroy("CommandBuffer", uint64(cb))
		delete(d.recording, cb)
	}
}

func (d *Driver) BeginCommandBuffer(cb driver.CommandBuffer, oneTime bool) error {
	if err := pop(&d.BeginErrors); err != nil {
		return err
	}
	if d.recording[cb] {
		d.violate("command buffer %d begun while recording", cb)
	}
	d.recording[cb] = true
	return nil
}

func (d *Driver) EndCommandBuffer(cb driver.CommandBuffer) error {
	if !d.recording[cb] {
		d.violate("command buffer %d ended while not recording", cb)
	}
	d.recording[cb] = false
	return nil
}

func (d *Driver) ResetCommandBuffer(cb driver.CommandBuffer) error {
	d.recording[cb] = false
	return nil
}

func (d *Driver) CmdPipelineBarrier(cb driver.CommandBuffer, src, dst driver.PipelineStageFlags, barriers []driver.ImageMemoryBarrier) {
	for _, b := range barriers {
		d.Barriers = append(d.Barriers, Barrier{Src: src, Dst: dst, ImageMemoryBarrier: b})
	}
}

func (d *Driver) CmdBeginRenderPass(cb driver.CommandBuffer, info *driver.RenderPassBeginInfo) {
	if !d.recording[cb] {
		d.violate("render pass begun on command buffer %d that is not recording", cb)
	}
	d.BeginInfos = append(d.BeginInfos, *info)
}

func (d *Driver) CmdEndRenderPass(cb driver.CommandBuffer)                    {}
func (d *Driver) CmdSetViewport(cb driver.CommandBuffer, vp driver.Viewport)  {}
func (d *Driver) CmdSetScissor(cb driver.CommandBuffer, rect driver.Rect2D)   {}
func (d *Driver) CmdBindPipeline(cb driver.CommandBuffer, pl driver.Pipeline) {}
func (d *Driver) CmdDraw(cb driver.CommandBuffer, vertices, instances, firstVertex, firstInstance uint32) {
}

func (d *Driver) CreateFence(dev driver.Device, signaled bool) (driver.Fence, error) {
	if err := d.create("Fence"); err != nil {
		return 0, err
	}
	f := driver.Fence(d.next())
	d.fences[f] = &fence{signaled: signaled}
	return f, nil
}

func (d *Driver) DestroyFence(dev driver.Device, f driver.Fence) {
	if fs, ok := d.fences[f]; ok && fs.pending {
		d.violate("destroyed fence %d while pending", f)
	}
	d.destroy("Fence", uint64(f))
	delete(d.fences, f)
}

func (d *Driver) WaitForFences(dev driver.Device, fences []driver.Fence, timeout uint64) error {
	for _, f := range fences {
		fs, ok := d.fences[f]
		if !ok {
			return errors.New("drivertest: unknown fence")
		}
		d.complete(fs)
		if !fs.signaled {
			return driver.Timeout.Err()
		}
	}
	return nil
}

func (d *Driver) ResetFences(dev driver.Device, fences []driver.Fence) error {
	for _, f := range fences {
		fs, ok := d.fences[f]
		if !ok {
			return errors.New("drivertest: unknown fence")
		}
		if fs.pending {
			d.violate("reset fence %d while pending", f)
		}
		fs.signaled = false
	}
	return nil
}

// FenceStatus reports a fence as signaled only once its work was waited on.
func (d *Driver) FenceStatus(dev driver.Device, f driver.Fence) (bool, error) {
	fs, ok := d.fences[f]
	if !ok {
		return false, errors.New("drivertest: unknown fence")
	}
	return fs.signaled, nil
}

func (d *Driver) CreateSemaphore(dev driver.Device) (driver.Semaphore, error) {
	if err := d.create("Semaphore"); err != nil {
		return 0, err
	}
	return driver.Semaphore(d.next()), nil
}

func (d *Driver) DestroySemaphore(dev driver.Device, s driver.Semaphore) {
	delete(d.signaled, s)
	d.destroy("Semaphore", uint64(s))
}

// pop removes and returns the first scripted error of errs.
func pop(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

// Signaled reports whether s is signaled with no submission waiting on it.
func (d *Driver) Signaled(s driver.Semaphore) bool {
	return d.signaled[s]
}

func (d *Driver) QueueSubmit(q driver.Queue, submits []driver.SubmitInfo, f driver.Fence) error {
	if err := pop(&d.SubmitErrors); err != nil {
		return err
	}
	for _, s := range submits {
		for _, cb := range s.CommandBuffers {
			if d.recording[cb] {
				d.violate("submitted command buffer %d while recording", cb)
			}
		}
	}
	for _, s := range submits {
		for _, sem := range s.WaitSemaphores {
			d.signaled[sem] = false
		}
		for _, sem := range s.SignalSemaphores {
			d.signaled[sem] = true
		}
	}
	d.Submits++
	if f == 0 {
		return nil
	}
	fs, ok := d.fences[f]
	if !ok {
		return errors.New("drivertest: unknown fence")
	}
	if fs.signaled || fs.pending {
		d.violate("submitted with fence %d that was not reset", f)
	}
	fs.signaled = false
	fs.pending = true
	d.MaxInFlight = max(d.MaxInFlight, d.InFlight())
	return nil
}

func (d *Driver) QueueWaitIdle(q driver.Queue) error {
	d.completeAll()
	return nil
}

func (d *Driver) CreateImage(dev driver.Device, info *driver.ImageCreateInfo) (driver.Image, error) {
	if err := d.create("Image"); err != nil {
		return 0, err
	}
	img := driver.Image(d.next())
	d.Images[img] = *info
	return img, nil
}

func (d *Driver) DestroyImage(dev driver.Device, img driver.Image) {
	d.destroy("Image", uint64(img))
	delete(d.Images, img)
}

func (d *Driver) ImageMemoryRequirements(dev driver.Device, img driver.Image) driver.MemoryRequirements {
	info := d.Images[img]
	return driver.MemoryRequirements{
		Size:           uint64(info.Extent.Width) * uint64(info.Extent.Height) * 4,
		Alignment:      256,
		MemoryTypeBits: 0b11,
	}
}

func (d *Driver) AllocateMemory(dev driver.Device, size uint64, memoryType uint32) (driver.DeviceMemory, error) {
	if err := d.create("Memory"); err != nil {
		return 0, err
	}
	return driver.DeviceMemory(d.next()), nil
}

func (d *Driver) FreeMemory(dev driver.Device, mem driver.DeviceMemory) {
	d.destroy("Memory", uint64(mem))
}

func (d *Driver) BindImageMemory(dev driver.Device, img driver.Image, mem driver.DeviceMemory, offset uint64) error {
	return nil
}

func (d *Driver) CreateImageView(dev driver.Device, info *driver.ImageViewCreateInfo) (driver.ImageView, error) {
	if err := d.create("ImageView"); err != nil {
		return 0, err
	}
	return driver.ImageView(d.next()), nil
}

func (d *Driver) DestroyImageView(dev driver.Device, view driver.ImageView) {
	d.destroy("ImageView", uint64(view))
}

func (d *Driver) CreateRenderPass(dev driver.Device, info *driver.RenderPassCreateInfo) (driver.RenderPass, error) {
	if err := d.create("RenderPass"); err != nil {
		return 0, err
	}
	rp := driver.RenderPass(d.next())
	d.RenderPasses[rp] = *info
	return rp, nil
}

func (d *Driver) DestroyRenderPass(dev driver.Device, rp driver.RenderPass) {
	d.destroy("RenderPass", uint64(rp))
	delete(d.RenderPasses, rp)
}

func (d *Driver) CreateFramebuffer(dev driver.Device, info *driver.FramebufferCreateInfo) (driver.Framebuffer, error) {
	if err := d.create("Framebuffer"); err != nil {
		return 0, err
	}
	fb := driver.Framebuffer(d.next())
	d.Framebuffers[fb] = *info
	return fb, nil
}

func (d *Driver) DestroyFramebuffer(dev driver.Device, fb driver.Framebuffer) {
	d.destroy("Framebuffer", uint64(fb))
	delete(d.Framebuffers, fb)
}

func (d *Driver) CreateSwapchain(dev driver.Device, info *driver.SwapchainCreateInfo) (driver.Swapchain, error) {
	if err := d.create("Swapchain"); err != nil {
		return 0, err
	}
	d.SwapchainInfos = append(d.SwapchainInfos, *info)
	sc := driver.Swapchain(d.next())
	st := &swapchain{info: *info, next: info.MinImageCount - 1}
	for range info.MinImageCount {
		st.images = append(st.images, driver.Image(d.next()))
	}
	d.swapchains[sc] = st
	return sc, nil
}

func (d *Driver) DestroySwapchain(dev driver.Device, sc driver.Swapchain) {
	d.destroy("Swapchain", uint64(sc))
	delete(d.swapchains, sc)
}

func (d *Driver) SwapchainImages(dev driver.Device, sc driver.Swapchain) ([]driver.Image, error) {
	st, ok := d.swapchains[sc]
	if !ok {
		return nil, errors.New("drivertest: unknown swapchain")
	}
	return st.images, nil
}

// AcquireNextImage hands out the images of the swapchain in order.
func (d *Driver) AcquireNextImage(dev driver.Device, sc driver.Swapchain, timeout uint64, sem driver.Semaphore, f driver.Fence) (uint32, driver.Result) {
	res := driver.Success
	if len(d.AcquireResults) > 0 {
		res = d.AcquireResults[0]
		d.AcquireResults = d.AcquireResults[1:]
	}
	st, ok := d.swapchains[sc]
	if !ok {
		return 0, driver.ErrorSurfaceLost
	}
	if res != driver.Success && res != driver.Suboptimal {
		return 0, res
	}
	if sem != 0 {
		if d.signaled[sem] {
			d.violate("acquired with semaphore %d that is still signaled", sem)
		}
		d.signaled[sem] = true
	}
	st.next = (st.next + 1) % uint32(len(st.images))
	return st.next, res
}

func (d *Driver) QueuePresent(q driver.Queue, info *driver.PresentInfo) driver.Result {
	d.Presents++
	for _, sem := range info.WaitSemaphores {
		d.signaled[sem] = false
	}
	if _, ok := d.swapchains[info.Swapchain]; !ok {
		d.violate("presented to unknown swapchain %d", info.Swapchain)
	}
	if len(d.PresentResults) > 0 {
		res := d.PresentResults[0]
		d.PresentResults = d.PresentResults[1:]
		return res
	}
	return driver.Success
}

func (d *Driver) CreateShaderModule(dev driver.Device, code []byte) (driver.ShaderModule, error) {
	if err := d.create("ShaderModule"); err != nil {
		return 0, err
	}
	return driver.ShaderModule(d.next()), nil
}

func (d *Driver) DestroyShaderModule(dev driver.Device, sm driver.ShaderModule) {
	d.destroy("ShaderModule", uint64(sm))
}

func (d *Driver) CreatePipelineLayout(dev driver.Device, info *driver.PipelineLayoutCreateInfo) (driver.PipelineLayout, error) {
	if err := d.create("PipelineLayout"); err != nil {
		return 0, err
	}
	return driver.PipelineLayout(d.next()), nil
}

func (d *Driver) DestroyPipelineLayout(dev driver.Device, pl driver.PipelineLayout) {
	d.destroy("PipelineLayout", uint64(pl))
}

func (d *Driver) CreateGraphicsPipeline(dev driver.Device, info *driver.GraphicsPipelineCreateInfo) (driver.Pipeline, error) {
	if err := d.create("Pipeline"); err != nil {
		return 0, err
	}
	pl := driver.Pipeline(d.next())
	d.Pipelines[pl] = *info
	return pl, nil
}

func (d *Driver) DestroyPipeline(dev driver.Device, pl driver.Pipeline) {
	d.destroy("Pipeline", uint64(pl))
	delete(d.Pipelines, pl)
}

var _ driver.Driver = (*Driver)(nil)
