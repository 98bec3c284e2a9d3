// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/gpu/driver"
)

func (d *Driver) EnumeratePhysicalDevices(ih driver.Instance) ([]driver.PhysicalDevice, error) {
	inst := get[vk.Instance](d, uint64(ih))
	var count uint32
	if err := check(vk.EnumeratePhysicalDevices(inst, &count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.PhysicalDevice, count)
	if err := check(vk.EnumeratePhysicalDevices(inst, &count, list)); err != nil {
		return nil, err
	}
	pds := make([]driver.PhysicalDevice, count)
	for i, pd := range list {
		h, ok := d.physical[pd]
		if !ok {
			h = d.put(pd)
			d.physical[pd] = h
		}
		pds[i] = driver.PhysicalDevice(h)
	}
	return pds, nil
}

func (d *Driver) PhysicalDeviceProperties(h driver.PhysicalDevice) driver.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(get[vk.PhysicalDevice](d, uint64(h)), &props)
	props.Deref()
	props.Limits.Deref()
	counts := props.Limits.FramebufferColorSampleCounts & props.Limits.FramebufferDepthSampleCounts
	return driver.PhysicalDeviceProperties{
		Name:               vk.ToString(props.DeviceName[:]),
		Type:               driver.DeviceType(props.DeviceType),
		APIVersion:         props.ApiVersion,
		FramebufferSamples: driver.SampleCount(counts),
	}
}

func (d *Driver) PhysicalDeviceFeatures(h driver.PhysicalDevice) driver.DeviceFeatures {
	var f vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(get[vk.PhysicalDevice](d, uint64(h)), &f)
	f.Deref()
	return driver.DeviceFeatures{
		SamplerAnisotropy: f.SamplerAnisotropy == vk.True,
		SampleRateShading: f.SampleRateShading == vk.True,
		IndependentBlend:  f.IndependentBlend == vk.True,
	}
}

func (d *Driver) QueueFamilyProperties(h driver.PhysicalDevice) []driver.QueueFamilyProperties {
	pd := get[vk.PhysicalDevice](d, uint64(h))
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	list := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, list)
	fams := make([]driver.QueueFamilyProperties, count)
	for i := range list {
		list[i].Deref()
		fams[i] = driver.QueueFamilyProperties{
			Flags: driver.QueueFlags(list[i].QueueFlags),
			Count: list[i].QueueCount,
		}
	}
	return fams
}

func (d *Driver) DeviceExtensions(h driver.PhysicalDevice) ([]string, error) {
	pd := get[vk.PhysicalDevice](d, uint64(h))
	var count uint32
	if err := check(vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	if err := check(vk.EnumerateDeviceExtensionProperties(pd, "", &count, list)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

func (d *Driver) FormatProperties(h driver.PhysicalDevice, format driver.Format) driver.FormatProperties {
	var props vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(get[vk.PhysicalDevice](d, uint64(h)), vk.Format(format), &props)
	props.Deref()
	return driver.FormatProperties{
		LinearTiling:  driver.FormatFeatureFlags(props.LinearTilingFeatures),
		OptimalTiling: driver.FormatFeatureFlags(props.OptimalTilingFeatures),
	}
}

func (d *Driver) MemoryProperties(h driver.PhysicalDevice) driver.MemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(get[vk.PhysicalDevice](d, uint64(h)), &props)
	props.Deref()
	mp := driver.MemoryProperties{Types: make([]driver.MemoryType, props.MemoryTypeCount)}
	for i := range mp.Types {
		mt := props.MemoryTypes[i]
		mt.Deref()
		mp.Types[i] = driver.MemoryType{
			Properties: driver.MemoryPropertyFlags(mt.PropertyFlags),
			HeapIndex:  mt.HeapIndex,
		}
	}
	return mp
}

func (d *Driver) SurfaceSupport(h driver.PhysicalDevice, family uint32, sh driver.Surface) (bool, error) {
	var supported vk.Bool32
	ret := vk.GetPhysicalDeviceSurfaceSupport(get[vk.PhysicalDevice](d, uint64(h)), family, get[vk.Surface](d, uint64(sh)), &supported)
	if err := check(ret); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

func extent(e vk.Extent2D) driver.Extent2D {
	e.Deref()
	return driver.Extent2D{Width: e.Width, Height: e.Height}
}

func (d *Driver) SurfaceCapabilities(h driver.PhysicalDevice, sh driver.Surface) (driver.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(get[vk.PhysicalDevice](d, uint64(h)), get[vk.Surface](d, uint64(sh)), &caps)
	if err := check(ret); err != nil {
		return driver.SurfaceCapabilities{}, err
	}
	caps.Deref()
	return driver.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           extent(caps.CurrentExtent),
		MinImageExtent:          extent(caps.MinImageExtent),
		MaxImageExtent:          extent(caps.MaxImageExtent),
		MaxImageArrayLayers:     caps.MaxImageArrayLayers,
		SupportedCompositeAlpha: driver.CompositeAlphaFlags(caps.SupportedCompositeAlpha),
		CurrentTransform:        driver.SurfaceTransformFlags(caps.CurrentTransform),
	}, nil
}

func (d *Driver) SurfaceFormats(h driver.PhysicalDevice, sh driver.Surface) ([]driver.SurfaceFormat, error) {
	pd := get[vk.PhysicalDevice](d, uint64(h))
	s := get[vk.Surface](d, uint64(sh))
	var count uint32
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.SurfaceFormat, count)
	if err := check(vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, list)); err != nil {
		return nil, err
	}
	formats := make([]driver.SurfaceFormat, count)
	for i := range list {
		list[i].Deref()
		formats[i] = driver.SurfaceFormat{
			Format:     driver.Format(list[i].Format),
			ColorSpace: driver.ColorSpace(list[i].ColorSpace),
		}
	}
	return formats, nil
}

func (d *Driver) SurfacePresentModes(h driver.PhysicalDevice, sh driver.Surface) ([]driver.PresentMode, error) {
	pd := get[vk.PhysicalDevice](d, uint64(h))
	s := get[vk.Surface](d, uint64(sh))
	var count uint32
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.PresentMode, count)
	if err := check(vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, list)); err != nil {
		return nil, err
	}
	modes := make([]driver.PresentMode, count)
	for i, m := range list {
		modes[i] = driver.PresentMode(m)
	}
	return modes, nil
}
