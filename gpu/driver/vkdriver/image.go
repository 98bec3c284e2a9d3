// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/gpu/driver"
)

func (d *Driver) CreateImage(h driver.Device, info *driver.ImageCreateInfo) (driver.Image, error) {
	var img vk.Image
	ret := vk.CreateImage(get[vk.Device](d, uint64(h)), &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
			Depth:  1,
		},
		MipLevels:     info.MipLevels,
		ArrayLayers:   info.ArrayLayers,
		Samples:       vk.SampleCountFlagBits(info.Samples),
		Tiling:        vk.ImageTiling(info.Tiling),
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.Image(d.put(img)), nil
}

func (d *Driver) DestroyImage(h driver.Device, ih driver.Image) {
	img := get[vk.Image](d, uint64(ih))
	if d.drop(uint64(ih)) {
		vk.DestroyImage(get[vk.Device](d, uint64(h)), img, nil)
	}
}

func (d *Driver) ImageMemoryRequirements(h driver.Device, ih driver.Image) driver.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(get[vk.Device](d, uint64(h)), get[vk.Image](d, uint64(ih)), &req)
	req.Deref()
	return driver.MemoryRequirements{
		Size:           uint64(req.Size),
		Alignment:      uint64(req.Alignment),
		MemoryTypeBits: req.MemoryTypeBits,
	}
}

func (d *Driver) AllocateMemory(h driver.Device, size uint64, memoryType uint32) (driver.DeviceMemory, error) {
	var mem vk.DeviceMemory
	ret := vk.AllocateMemory(get[vk.Device](d, uint64(h)), &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: memoryType,
	}, nil, &mem)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.DeviceMemory(d.put(mem)), nil
}

func (d *Driver) FreeMemory(h driver.Device, mh driver.DeviceMemory) {
	mem := get[vk.DeviceMemory](d, uint64(mh))
	if d.drop(uint64(mh)) {
		vk.FreeMemory(get[vk.Device](d, uint64(h)), mem, nil)
	}
}

func (d *Driver) BindImageMemory(h driver.Device, ih driver.Image, mh driver.DeviceMemory, offset uint64) error {
	return check(vk.BindImageMemory(get[vk.Device](d, uint64(h)), get[vk.Image](d, uint64(ih)),
		get[vk.DeviceMemory](d, uint64(mh)), vk.DeviceSize(offset)))
}

func (d *Driver) CreateImageView(h driver.Device, info *driver.ImageViewCreateInfo) (driver.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(get[vk.Device](d, uint64(h)), &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    get[vk.Image](d, uint64(info.Image)),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(info.Aspect),
			BaseMipLevel:   info.BaseMip,
			LevelCount:     info.MipLevels,
			BaseArrayLayer: info.BaseLayer,
			LayerCount:     info.LayerCount,
		},
	}, nil, &view)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.ImageView(d.put(view)), nil
}

func (d *Driver) DestroyImageView(h driver.Device, vh driver.ImageView) {
	view := get[vk.ImageView](d, uint64(vh))
	if d.drop(uint64(vh)) {
		vk.DestroyImageView(get[vk.Device](d, uint64(h)), view, nil)
	}
}

func attachmentRefs(refs []driver.AttachmentReference) []vk.AttachmentReference {
	if len(refs) == 0 {
		return nil
	}
	out := make([]vk.AttachmentReference, len(refs))
	for i, r := range refs {
		out[i] = vk.AttachmentReference{Attachment: r.Attachment, Layout: vk.ImageLayout(r.Layout)}
	}
	return out
}

func (d *Driver) CreateRenderPass(h driver.Device, info *driver.RenderPassCreateInfo) (driver.RenderPass, error) {
	atts := make([]vk.AttachmentDescription, len(info.Attachments))
	for i, a := range info.Attachments {
		atts[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCountFlagBits(a.Samples),
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}
	subs := make([]vk.SubpassDescription, len(info.Subpasses))
	for i, s := range info.Subpasses {
		subs[i] = vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(s.ColorAttachments)),
			PColorAttachments:    attachmentRefs(s.ColorAttachments),
			PResolveAttachments:  attachmentRefs(s.ResolveAttachments),
		}
		if s.DepthStencilAttachment != nil {
			subs[i].PDepthStencilAttachment = &vk.AttachmentReference{
				Attachment: s.DepthStencilAttachment.Attachment,
				Layout:     vk.ImageLayout(s.DepthStencilAttachment.Layout),
			}
		}
	}
	deps := make([]vk.SubpassDependency, len(info.Dependencies))
	for i, dep := range info.Dependencies {
		deps[i] = vk.SubpassDependency{
			SrcSubpass:      dep.SrcSubpass,
			DstSubpass:      dep.DstSubpass,
			SrcStageMask:    vk.PipelineStageFlags(dep.SrcStage),
			DstStageMask:    vk.PipelineStageFlags(dep.DstStage),
			SrcAccessMask:   vk.AccessFlags(dep.SrcAccess),
			DstAccessMask:   vk.AccessFlags(dep.DstAccess),
			DependencyFlags: vk.DependencyFlags(dep.Flags),
		}
	}
	var rp vk.RenderPass
	ret := vk.CreateRenderPass(get[vk.Device](d, uint64(h)), &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(atts)),
		PAttachments:    atts,
		SubpassCount:    uint32(len(subs)),
		PSubpasses:      subs,
		DependencyCount: uint32(len(deps)),
		PDependencies:   deps,
	}, nil, &rp)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.RenderPass(d.put(rp)), nil
}

func (d *Driver) DestroyRenderPass(h driver.Device, rh driver.RenderPass) {
	rp := get[vk.RenderPass](d, uint64(rh))
	if d.drop(uint64(rh)) {
		vk.DestroyRenderPass(get[vk.Device](d, uint64(h)), rp, nil)
	}
}

func (d *Driver) CreateFramebuffer(h driver.Device, info *driver.FramebufferCreateInfo) (driver.Framebuffer, error) {
	views := getAll[vk.ImageView](d, info.Attachments)
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(get[vk.Device](d, uint64(h)), &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      get[vk.RenderPass](d, uint64(info.RenderPass)),
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           info.Extent.Width,
		Height:          info.Extent.Height,
		Layers:          info.Layers,
	}, nil, &fb)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.Framebuffer(d.put(fb)), nil
}

func (d *Driver) DestroyFramebuffer(h driver.Device, fh driver.Framebuffer) {
	fb := get[vk.Framebuffer](d, uint64(fh))
	if d.drop(uint64(fh)) {
		vk.DestroyFramebuffer(get[vk.Device](d, uint64(h)), fb, nil)
	}
}
