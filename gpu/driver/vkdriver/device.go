// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/gpu/driver"
)

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func (d *Driver) CreateDevice(info *driver.DeviceCreateInfo) (driver.Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(info.Queues))
	for i, q := range info.Queues {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		}
	}
	exts := safeStrings(info.Extensions)
	var device vk.Device
	ret := vk.CreateDevice(get[vk.PhysicalDevice](d, uint64(info.PhysicalDevice)), &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: bool32(info.Features.SamplerAnisotropy),
			SampleRateShading: bool32(info.Features.SampleRateShading),
			IndependentBlend:  bool32(info.Features.IndependentBlend),
		}},
	}, nil, &device)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.Device(d.put(device)), nil
}

func (d *Driver) DestroyDevice(h driver.Device) {
	dev := get[vk.Device](d, uint64(h))
	if !d.drop(uint64(h)) {
		return
	}
	for k, q := range d.queues {
		if k.dev == h {
			d.drop(q)
			delete(d.queues, k)
		}
	}
	vk.DestroyDevice(dev, nil)
}

func (d *Driver) DeviceQueue(h driver.Device, family, index uint32) driver.Queue {
	k := queueKey{h, family, index}
	if q, ok := d.queues[k]; ok {
		return driver.Queue(q)
	}
	var queue vk.Queue
	vk.GetDeviceQueue(get[vk.Device](d, uint64(h)), family, index, &queue)
	q := d.put(queue)
	d.queues[k] = q
	return driver.Queue(q)
}

func (d *Driver) DeviceWaitIdle(h driver.Device) error {
	return check(vk.DeviceWaitIdle(get[vk.Device](d, uint64(h))))
}

func (d *Driver) CreateCommandPool(h driver.Device, family uint32) (driver.CommandPool, error) {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(get[vk.Device](d, uint64(h)), &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}, nil, &pool)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.CommandPool(d.put(pool)), nil
}

func (d *Driver) DestroyCommandPool(h driver.Device, ph driver.CommandPool) {
	pool := get[vk.CommandPool](d, uint64(ph))
	if d.drop(uint64(ph)) {
		vk.DestroyCommandPool(get[vk.Device](d, uint64(h)), pool, nil)
	}
}

func (d *Driver) AllocateCommandBuffers(h driver.Device, ph driver.CommandPool, n int) ([]driver.CommandBuffer, error) {
	bufs := make([]vk.CommandBuffer, n)
	ret := vk.AllocateCommandBuffers(get[vk.Device](d, uint64(h)), &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        get[vk.CommandPool](d, uint64(ph)),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}, bufs)
	if err := check(ret); err != nil {
		return nil, err
	}
	cbs := make([]driver.CommandBuffer, n)
	for i, cb := range bufs {
		cbs[i] = driver.CommandBuffer(d.put(cb))
	}
	return cbs, nil
}

func (d *Driver) FreeCommandBuffers(h driver.Device, ph driver.CommandPool, cbs []driver.CommandBuffer) {
	bufs := getAll[vk.CommandBuffer](d, cbs)
	for _, cb := range cbs {
		d.drop(uint64(cb))
	}
	if len(bufs) > 0 {
		vk.FreeCommandBuffers(get[vk.Device](d, uint64(h)), get[vk.CommandPool](d, uint64(ph)), uint32(len(bufs)), bufs)
	}
}

func (d *Driver) BeginCommandBuffer(h driver.CommandBuffer, oneTime bool) error {
	info := &vk.CommandBufferBeginInfo{SType: vk.StructureTypeCommandBufferBeginInfo}
	if oneTime {
		info.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	return check(vk.BeginCommandBuffer(get[vk.CommandBuffer](d, uint64(h)), info))
}

func (d *Driver) EndCommandBuffer(h driver.CommandBuffer) error {
	return check(vk.EndCommandBuffer(get[vk.CommandBuffer](d, uint64(h))))
}

func (d *Driver) ResetCommandBuffer(h driver.CommandBuffer) error {
	return check(vk.ResetCommandBuffer(get[vk.CommandBuffer](d, uint64(h)), 0))
}

func (d *Driver) CmdPipelineBarrier(h driver.CommandBuffer, src, dst driver.PipelineStageFlags, barriers []driver.ImageMemoryBarrier) {
	bs := make([]vk.ImageMemoryBarrier, len(barriers))
	for i, b := range barriers {
		bs[i] = vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(b.SrcAccess),
			DstAccessMask:       vk.AccessFlags(b.DstAccess),
			OldLayout:           vk.ImageLayout(b.OldLayout),
			NewLayout:           vk.ImageLayout(b.NewLayout),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               get[vk.Image](d, uint64(b.Image)),
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(b.Aspect),
				BaseMipLevel:   b.BaseMip,
				LevelCount:     b.MipLevels,
				BaseArrayLayer: b.BaseLayer,
				LayerCount:     b.LayerCount,
			},
		}
	}
	vk.CmdPipelineBarrier(get[vk.CommandBuffer](d, uint64(h)),
		vk.PipelineStageFlags(src), vk.PipelineStageFlags(dst), 0,
		0, nil, 0, nil, uint32(len(bs)), bs)
}

func rect(r driver.Rect2D) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: r.X, Y: r.Y},
		Extent: vk.Extent2D{Width: r.Extent.Width, Height: r.Extent.Height},
	}
}

func (d *Driver) CmdBeginRenderPass(h driver.CommandBuffer, info *driver.RenderPassBeginInfo) {
	clears := make([]vk.ClearValue, len(info.ClearValues))
	for i, cv := range info.ClearValues {
		if cv.IsDepth {
			clears[i].SetDepthStencil(cv.Depth, cv.Stencil)
		} else {
			clears[i].SetColor(cv.Color[:])
		}
	}
	vk.CmdBeginRenderPass(get[vk.CommandBuffer](d, uint64(h)), &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      get[vk.RenderPass](d, uint64(info.RenderPass)),
		Framebuffer:     get[vk.Framebuffer](d, uint64(info.Framebuffer)),
		RenderArea:      rect(info.Area),
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)
}

func (d *Driver) CmdEndRenderPass(h driver.CommandBuffer) {
	vk.CmdEndRenderPass(get[vk.CommandBuffer](d, uint64(h)))
}

func (d *Driver) CmdSetViewport(h driver.CommandBuffer, vp driver.Viewport) {
	vk.CmdSetViewport(get[vk.CommandBuffer](d, uint64(h)), 0, 1, []vk.Viewport{{
		X:        vp.X,
		Y:        vp.Y,
		Width:    vp.Width,
		Height:   vp.Height,
		MinDepth: vp.MinDepth,
		MaxDepth: vp.MaxDepth,
	}})
}

func (d *Driver) CmdSetScissor(h driver.CommandBuffer, r driver.Rect2D) {
	vk.CmdSetScissor(get[vk.CommandBuffer](d, uint64(h)), 0, 1, []vk.Rect2D{rect(r)})
}

func (d *Driver) CmdBindPipeline(h driver.CommandBuffer, pl driver.Pipeline) {
	vk.CmdBindPipeline(get[vk.CommandBuffer](d, uint64(h)), vk.PipelineBindPointGraphics, get[vk.Pipeline](d, uint64(pl)))
}

func (d *Driver) CmdDraw(h driver.CommandBuffer, vertices, instances, firstVertex, firstInstance uint32) {
	vk.CmdDraw(get[vk.CommandBuffer](d, uint64(h)), vertices, instances, firstVertex, firstInstance)
}

func (d *Driver) CreateFence(h driver.Device, signaled bool) (driver.Fence, error) {
	info := &vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := check(vk.CreateFence(get[vk.Device](d, uint64(h)), info, nil, &fence)); err != nil {
		return 0, err
	}
	return driver.Fence(d.put(fence)), nil
}

func (d *Driver) DestroyFence(h driver.Device, fh driver.Fence) {
	fence := get[vk.Fence](d, uint64(fh))
	if d.drop(uint64(fh)) {
		vk.DestroyFence(get[vk.Device](d, uint64(h)), fence, nil)
	}
}

func (d *Driver) WaitForFences(h driver.Device, fences []driver.Fence, timeout uint64) error {
	fs := getAll[vk.Fence](d, fences)
	return check(vk.WaitForFences(get[vk.Device](d, uint64(h)), uint32(len(fs)), fs, vk.True, timeout))
}

func (d *Driver) ResetFences(h driver.Device, fences []driver.Fence) error {
	fs := getAll[vk.Fence](d, fences)
	return check(vk.ResetFences(get[vk.Device](d, uint64(h)), uint32(len(fs)), fs))
}

func (d *Driver) FenceStatus(h driver.Device, fh driver.Fence) (bool, error) {
	ret := result(vk.GetFenceStatus(get[vk.Device](d, uint64(h)), get[vk.Fence](d, uint64(fh))))
	switch ret {
	case driver.Success:
		return true, nil
	case driver.NotReady:
		return false, nil
	}
	return false, ret.Err()
}

func (d *Driver) CreateSemaphore(h driver.Device) (driver.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(get[vk.Device](d, uint64(h)), &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.Semaphore(d.put(sem)), nil
}

func (d *Driver) DestroySemaphore(h driver.Device, sh driver.Semaphore) {
	sem := get[vk.Semaphore](d, uint64(sh))
	if d.drop(uint64(sh)) {
		vk.DestroySemaphore(get[vk.Device](d, uint64(h)), sem, nil)
	}
}

func (d *Driver) QueueSubmit(qh driver.Queue, submits []driver.SubmitInfo, fh driver.Fence) error {
	infos := make([]vk.SubmitInfo, len(submits))
	for i, s := range submits {
		stages := make([]vk.PipelineStageFlags, len(s.WaitStages))
		for j, st := range s.WaitStages {
			stages[j] = vk.PipelineStageFlags(st)
		}
		infos[i] = vk.SubmitInfo{
			SType:                vk.StructureTypeSubmitInfo,
			WaitSemaphoreCount:   uint32(len(s.WaitSemaphores)),
			PWaitSemaphores:      getAll[vk.Semaphore](d, s.WaitSemaphores),
			PWaitDstStageMask:    stages,
			CommandBufferCount:   uint32(len(s.CommandBuffers)),
			PCommandBuffers:      getAll[vk.CommandBuffer](d, s.CommandBuffers),
			SignalSemaphoreCount: uint32(len(s.SignalSemaphores)),
			PSignalSemaphores:    getAll[vk.Semaphore](d, s.SignalSemaphores),
		}
	}
	return check(vk.QueueSubmit(get[vk.Queue](d, uint64(qh)), uint32(len(infos)), infos, get[vk.Fence](d, uint64(fh))))
}

func (d *Driver) QueueWaitIdle(qh driver.Queue) error {
	return check(vk.QueueWaitIdle(get[vk.Queue](d, uint64(qh))))
}
