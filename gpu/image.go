// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"

	"github.com/hogletgames/genesis/gpu/driver"
)

// ImageFormat describes the shape of an image.
type ImageFormat struct {

	// size in pixels
	Size image.Point

	// texel format
	Format driver.Format

	// number of samples per texel
	Samples driver.SampleCount

	// number of mip levels; 0 means 1
	MipLevels uint32

	// number of array layers; 0 means 1
	Layers uint32
}

// Extent returns the size as a [driver.Extent2D].
func (im *ImageFormat) Extent() driver.Extent2D {
	return driver.Extent2D{Width: uint32(im.Size.X), Height: uint32(im.Size.Y)}
}

func (im *ImageFormat) mips() uint32 {
	return max(im.MipLevels, 1)
}

func (im *ImageFormat) layers() uint32 {
	return max(im.Layers, 1)
}

// ImageResource is a GPU image with its memory and a view covering
// all of it. Images created by [NewImage] own their image and memory;
// wrapped images, such as swapchain images, own only the view.
// An ImageResource is owned by exactly one render target or texture,
// and must only be released once the device has no work using it.
type ImageResource struct {
	ImageFormat

	// device the image lives on
	Device *Device

	// image handle
	Image driver.Image

	// backing memory; null for wrapped images
	Memory driver.DeviceMemory

	// view of all mips and layers
	View driver.ImageView

	// usages the image was created with
	Usage driver.ImageUsageFlags

	// layout after the last transition recorded through this object.
	// It is informational only: render passes change layouts too.
	Layout driver.ImageLayout

	// whether Image and Memory are owned
	owned bool
}

// NewImage creates a device local image with optimal tiling, binds
// memory to it and creates its view. Any failure releases what was
// created and wraps [ErrAllocationFailed].
func NewImage(dev *Device, format ImageFormat, usage driver.ImageUsageFlags) (*ImageResource, error) {
	if format.Samples == 0 {
		format.Samples = driver.Samples1
	}
	im := &ImageResource{ImageFormat: format, Device: dev, Usage: usage, owned: true}
	if err := im.create(); err != nil {
		im.Release()
		return nil, err
	}
	return im, nil
}

func (im *ImageResource) create() error {
	drv := im.Device.Driver
	dev := im.Device.Handle
	var err error
	im.Image, err = drv.CreateImage(dev, &driver.ImageCreateInfo{
		Extent:      im.Extent(),
		MipLevels:   im.mips(),
		ArrayLayers: im.layers(),
		Format:      im.Format,
		Tiling:      driver.TilingOptimal,
		Usage:       im.Usage,
		Samples:     im.Samples,
	})
	if err != nil {
		return fmt.Errorf("%w: image %v %v: %w", ErrAllocationFailed, im.Size, im.Format, err)
	}
	req := drv.ImageMemoryRequirements(dev, im.Image)
	mt, err := im.Device.FindMemoryType(req.MemoryTypeBits, driver.MemoryDeviceLocal)
	if err != nil {
		return err
	}
	im.Memory, err = drv.AllocateMemory(dev, req.Size, mt)
	if err != nil {
		return fmt.Errorf("%w: %d bytes of image memory: %w", ErrAllocationFailed, req.Size, err)
	}
	if err := drv.BindImageMemory(dev, im.Image, im.Memory, 0); err != nil {
		return fmt.Errorf("%w: binding image memory: %w", ErrAllocationFailed, err)
	}
	return im.createView()
}

func (im *ImageResource) createView() error {
	var err error
	im.View, err = im.Device.Driver.CreateImageView(im.Device.Handle, &driver.ImageViewCreateInfo{
		Image:      im.Image,
		Format:     im.Format,
		Aspect:     im.Aspect(),
		MipLevels:  im.mips(),
		LayerCount: im.layers(),
	})
	if err != nil {
		return fmt.Errorf("%w: image view: %w", ErrAllocationFailed, err)
	}
	return nil
}

// WrapImage returns an [ImageResource] for an image owned elsewhere,
// creating only its view.
func WrapImage(dev *Device, img driver.Image, format ImageFormat) (*ImageResource, error) {
	if format.Samples == 0 {
		format.Samples = driver.Samples1
	}
	im := &ImageResource{ImageFormat: format, Device: dev, Image: img}
	if err := im.createView(); err != nil {
		return nil, err
	}
	return im, nil
}

// Aspect returns the aspects of the image, from its format.
func (im *ImageResource) Aspect() driver.ImageAspectFlags {
	return AspectMask(im.Format)
}

// CmdTransition records a transition of the whole image from its
// tracked layout to layout. An illegal transition panics.
func (im *ImageResource) CmdTransition(cb driver.CommandBuffer, layout driver.ImageLayout) {
	CmdTransitionImage(im.Device.Driver, cb, im.Image, im.Format, im.mips(), im.layers(), im.Layout, layout)
	im.Layout = layout
}

// Transition transitions the image to layout with a one time command
// buffer and waits for it to complete. An illegal transition panics.
func (im *ImageResource) Transition(layout driver.ImageLayout) error {
	if _, err := PlanTransition(im.Layout, layout); err != nil {
		panic(err)
	}
	cb, err := im.Device.BeginSingleTimeCommands()
	if err != nil {
		return err
	}
	im.CmdTransition(cb, layout)
	return im.Device.EndSingleTimeCommands(cb)
}

// Release destroys the view and, if owned, the image and its memory.
func (im *ImageResource) Release() {
	drv := im.Device.Driver
	dev := im.Device.Handle
	if im.View != 0 {
		drv.DestroyImageView(dev, im.View)
		im.View = 0
	}
	if !im.owned {
		im.Image = 0
		return
	}
	if im.Image != 0 {
		drv.DestroyImage(dev, im.Image)
		im.Image = 0
	}
	if im.Memory != 0 {
		drv.FreeMemory(dev, im.Memory)
		im.Memory = 0
	}
}
