// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// SwapchainStates are the states of a [Swapchain].
type SwapchainStates int32

const (
	SwapchainUninitialized SwapchainStates = iota
	SwapchainReady

	// the chain no longer matches the surface and must be recreated
	// before the next frame
	SwapchainOutOfDate

	// recreation is in progress; no frame may begin
	SwapchainRecreating
)

func (ss SwapchainStates) String() string {
	switch ss {
	case SwapchainUninitialized:
		return "Uninitialized"
	case SwapchainReady:
		return "Ready"
	case SwapchainOutOfDate:
		return "OutOfDate"
	case SwapchainRecreating:
		return "Recreating"
	}
	return fmt.Sprintf("SwapchainStates(%d)", int32(ss))
}

// ChooseSurfaceFormat prefers 8 bit BGRA in sRGB with the sRGB
// nonlinear color space, and otherwise takes the first format.
func ChooseSurfaceFormat(formats []driver.SurfaceFormat) driver.SurfaceFormat {
	for _, f := range formats {
		if f.Format == driver.FormatB8G8R8A8SRGB && f.ColorSpace == driver.ColorSpaceSRGBNonlinear {
			return f
		}
	}
	return formats[0]
}

// ChoosePresentMode returns mailbox if preferred and available, and
// otherwise FIFO, which is always supported and never tears.
func ChoosePresentMode(modes []driver.PresentMode, preferMailbox bool) driver.PresentMode {
	if preferMailbox {
		for _, m := range modes {
			if m == driver.PresentModeMailbox {
				return m
			}
		}
	}
	return driver.PresentModeFIFO
}

// ChooseImageCount requests one image more than the minimum, limited
// by the maximum when there is one (a maximum of 0 means no limit).
func ChooseImageCount(caps *driver.SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

// ChooseExtent returns the current extent of the surface if it is
// defined, and otherwise the window size clamped to the allowed extents.
func ChooseExtent(caps *driver.SurfaceCapabilities, window image.Point) driver.Extent2D {
	if caps.CurrentExtent.Width != driver.UndefinedExtent {
		return caps.CurrentExtent
	}
	clamp := func(v int, lo, hi uint32) uint32 {
		return min(max(uint32(max(v, 0)), lo), hi)
	}
	return driver.Extent2D{
		Width:  clamp(window.X, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(window.Y, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

func chooseCompositeAlpha(supported driver.CompositeAlphaFlags) driver.CompositeAlphaFlags {
	for _, ca := range []driver.CompositeAlphaFlags{
		driver.CompositeAlphaOpaque,
		driver.CompositeAlphaPreMultiplied,
		driver.CompositeAlphaPostMultiplied,
		driver.CompositeAlphaInherit,
	} {
		if supported&ca != 0 {
			return ca
		}
	}
	return driver.CompositeAlphaOpaque
}

// Swapchain is the chain of presentable images of a surface.
// It is recreated in place: the object stays valid across
// recreations, while its handle and images change.
type Swapchain struct {

	// device the chain is created on
	Device *Device

	// surface the chain presents to; not owned
	Surface driver.Surface

	// chain handle
	Handle driver.Swapchain

	// current state
	State SwapchainStates

	// chosen surface format
	Format driver.SurfaceFormat

	// chosen present mode
	PresentMode driver.PresentMode

	// size of the images
	Extent image.Point

	// image count requested at creation
	MinImageCount uint32

	// presentable images, wrapped with views
	Images []*ImageResource

	// index of the image acquired for the current frame
	ImageIndex uint32

	// prefer mailbox presentation when available
	PreferMailbox bool
}

// NewSwapchain creates a swapchain for surface, sized from the
// surface capabilities or the given window size.
func NewSwapchain(dev *Device, surface driver.Surface, window image.Point, preferMailbox bool) (*Swapchain, error) {
	sc := &Swapchain{Device: dev, Surface: surface, PreferMailbox: preferMailbox}
	if err := sc.create(window); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Swapchain) create(window image.Point) error {
	drv := sc.Device.Driver
	pd := sc.Device.Physical
	caps, err := drv.SurfaceCapabilities(pd, sc.Surface)
	if err != nil {
		return fmt.Errorf("gpu: querying surface capabilities: %w", err)
	}
	formats, err := drv.SurfaceFormats(pd, sc.Surface)
	if err != nil {
		return fmt.Errorf("gpu: querying surface formats: %w", err)
	}
	if len(formats) == 0 {
		return fmt.Errorf("%w: surface has no formats", ErrNoFormat)
	}
	modes, err := drv.SurfacePresentModes(pd, sc.Surface)
	if err != nil {
		return fmt.Errorf("gpu: querying present modes: %w", err)
	}

	sc.Format = ChooseSurfaceFormat(formats)
	sc.PresentMode = ChoosePresentMode(modes, sc.PreferMailbox)
	sc.MinImageCount = ChooseImageCount(&caps)
	ext := ChooseExtent(&caps, window)

	info := &driver.SwapchainCreateInfo{
		Surface:        sc.Surface,
		MinImageCount:  sc.MinImageCount,
		Format:         sc.Format.Format,
		ColorSpace:     sc.Format.ColorSpace,
		Extent:         ext,
		Usage:          driver.UsageColorAttachment,
		PreTransform:   caps.CurrentTransform,
		CompositeAlpha: chooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:    sc.PresentMode,
		Clipped:        true,
	}
	if fams := sc.Device.Families; fams.Graphics != fams.Present {
		info.QueueFamilies = []uint32{uint32(fams.Graphics), uint32(fams.Present)}
	}
	sc.Handle, err = drv.CreateSwapchain(sc.Device.Handle, info)
	if err != nil {
		return fmt.Errorf("%w: swapchain: %w", ErrAllocationFailed, err)
	}
	sc.Extent = image.Point{int(ext.Width), int(ext.Height)}

	imgs, err := drv.SwapchainImages(sc.Device.Handle, sc.Handle)
	if err != nil {
		sc.release()
		return fmt.Errorf("gpu: getting swapchain images: %w", err)
	}
	sc.Images = make([]*ImageResource, 0, len(imgs))
	for _, img := range imgs {
		im, err := WrapImage(sc.Device, img, ImageFormat{Size: sc.Extent, Format: sc.Format.Format})
		if err != nil {
			sc.release()
			return err
		}
		sc.Images = append(sc.Images, im)
	}
	sc.State = SwapchainReady
	slog.Info("gpu: swapchain created", "size", sc.Extent, "format", sc.Format.Format,
		"present", sc.PresentMode, "images", len(sc.Images))
	return nil
}

// AcquireNextImage waits for the current frame slot of fs to be free,
// then acquires the next image, signaling the slot's ImageAvailable
// semaphore, and waits for the previous user of that image.
// An out of date chain returns [ErrSwapchainOutOfDate] and marks the
// chain [SwapchainOutOfDate]. A suboptimal chain returns the index
// together with [ErrSwapchainSuboptimal]; the image may still be used.
func (sc *Swapchain) AcquireNextImage(fs *FrameSynchronizer) (uint32, error) {
	if err := fs.Wait(); err != nil {
		return 0, err
	}
	idx, res := sc.Device.Driver.AcquireNextImage(sc.Device.Handle, sc.Handle, driver.NoTimeout, fs.Slot().ImageAvailable, 0)
	var status error
	switch res {
	case driver.Success:
	case driver.Suboptimal:
		status = ErrSwapchainSuboptimal
	case driver.ErrorOutOfDate:
		sc.State = SwapchainOutOfDate
		return 0, ErrSwapchainOutOfDate
	default:
		return 0, fmt.Errorf("gpu: acquiring swapchain image: %w", res.Err())
	}
	if err := fs.WaitImage(idx); err != nil {
		return 0, err
	}
	sc.ImageIndex = idx
	return idx, status
}

// Present presents the current image on q once the RenderFinished
// semaphore of the current slot of fs signals, and advances fs to the
// next slot whatever the result. An out of date or suboptimal chain
// is marked [SwapchainOutOfDate] and reported with the matching error.
func (sc *Swapchain) Present(fs *FrameSynchronizer, q driver.Queue) error {
	res := sc.Device.Driver.QueuePresent(q, &driver.PresentInfo{
		WaitSemaphores: []driver.Semaphore{fs.Slot().RenderFinished},
		Swapchain:      sc.Handle,
		ImageIndex:     sc.ImageIndex,
	})
	fs.Advance()
	switch res {
	case driver.Success:
		return nil
	case driver.Suboptimal:
		sc.State = SwapchainOutOfDate
		return ErrSwapchainSuboptimal
	case driver.ErrorOutOfDate:
		sc.State = SwapchainOutOfDate
		return ErrSwapchainOutOfDate
	}
	return fmt.Errorf("gpu: presenting: %w", res.Err())
}

// SubmitAndPresent submits the current slot's command buffer on the
// graphics queue and presents on the present queue. If the submission
// fails, the acquired image is given up: the chain is marked
// [SwapchainOutOfDate], fs moves to the next slot and the error is
// returned.
func (sc *Swapchain) SubmitAndPresent(fs *FrameSynchronizer) error {
	if err := fs.Submit(sc.Device.GraphicsQueue); err != nil {
		errors.Log(fs.Abandon(sc.Device.GraphicsQueue))
		sc.State = SwapchainOutOfDate
		fs.Advance()
		return err
	}
	return sc.Present(fs, sc.Device.PresentQueue)
}

// Recreate waits for the device to go idle, destroys the image views
// and the chain, and creates a new chain for the window size.
func (sc *Swapchain) Recreate(window image.Point) error {
	sc.State = SwapchainRecreating
	if err := sc.Device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: waiting for idle before swapchain recreation: %w", err)
	}
	sc.release()
	if err := sc.create(window); err != nil {
		sc.State = SwapchainOutOfDate
		return err
	}
	return nil
}

func (sc *Swapchain) release() {
	for _, im := range sc.Images {
		im.Release()
	}
	sc.Images = nil
	if sc.Handle != 0 {
		sc.Device.Driver.DestroySwapchain(sc.Device.Handle, sc.Handle)
		sc.Handle = 0
	}
	sc.State = SwapchainUninitialized
}

// Release waits for the device to go idle and destroys the chain.
// The surface is left to its owner.
func (sc *Swapchain) Release() {
	errors.Log(sc.Device.WaitIdle())
	sc.release()
}
