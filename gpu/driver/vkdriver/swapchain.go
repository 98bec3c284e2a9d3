// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/gpu/driver"
)

func (d *Driver) CreateSwapchain(h driver.Device, info *driver.SwapchainCreateInfo) (driver.Swapchain, error) {
	sci := &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         get[vk.Surface](d, uint64(info.Surface)),
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.Format),
		ImageColorSpace: vk.ColorSpace(info.ColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
		},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(info.Usage),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          bool32(info.Clipped),
		OldSwapchain:     get[vk.Swapchain](d, uint64(info.OldSwapchain)),
	}
	if len(info.QueueFamilies) > 1 {
		sci.ImageSharingMode = vk.SharingModeConcurrent
		sci.QueueFamilyIndexCount = uint32(len(info.QueueFamilies))
		sci.PQueueFamilyIndices = info.QueueFamilies
	}
	var sc vk.Swapchain
	if err := check(vk.CreateSwapchain(get[vk.Device](d, uint64(h)), sci, nil, &sc)); err != nil {
		return 0, err
	}
	return driver.Swapchain(d.put(sc)), nil
}

func (d *Driver) DestroySwapchain(h driver.Device, sh driver.Swapchain) {
	sc := get[vk.Swapchain](d, uint64(sh))
	if !d.drop(uint64(sh)) {
		return
	}
	for _, img := range d.swapImages[sh] {
		d.drop(uint64(img))
	}
	delete(d.swapImages, sh)
	vk.DestroySwapchain(get[vk.Device](d, uint64(h)), sc, nil)
}

// SwapchainImages returns the images owned by the swapchain. They are
// registered once and released with the swapchain.
func (d *Driver) SwapchainImages(h driver.Device, sh driver.Swapchain) ([]driver.Image, error) {
	if imgs, ok := d.swapImages[sh]; ok {
		return imgs, nil
	}
	dev := get[vk.Device](d, uint64(h))
	sc := get[vk.Swapchain](d, uint64(sh))
	var count uint32
	if err := check(vk.GetSwapchainImages(dev, sc, &count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.Image, count)
	if err := check(vk.GetSwapchainImages(dev, sc, &count, list)); err != nil {
		return nil, err
	}
	imgs := make([]driver.Image, count)
	for i, img := range list {
		imgs[i] = driver.Image(d.put(img))
	}
	d.swapImages[sh] = imgs
	return imgs, nil
}

func (d *Driver) AcquireNextImage(h driver.Device, sh driver.Swapchain, timeout uint64, sem driver.Semaphore, fence driver.Fence) (uint32, driver.Result) {
	var idx uint32
	ret := vk.AcquireNextImage(get[vk.Device](d, uint64(h)), get[vk.Swapchain](d, uint64(sh)), timeout,
		get[vk.Semaphore](d, uint64(sem)), get[vk.Fence](d, uint64(fence)), &idx)
	return idx, result(ret)
}

func (d *Driver) QueuePresent(qh driver.Queue, info *driver.PresentInfo) driver.Result {
	sems := getAll[vk.Semaphore](d, info.WaitSemaphores)
	ret := vk.QueuePresent(get[vk.Queue](d, uint64(qh)), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(sems)),
		PWaitSemaphores:    sems,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{get[vk.Swapchain](d, uint64(info.Swapchain))},
		PImageIndices:      []uint32{info.ImageIndex},
	})
	return result(ret)
}
