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

// WindowTarget is a [RenderTarget] presenting to a window surface
// through a [Swapchain]. It renders with a single sample. The
// swapchain and everything sized from it are recreated in place when
// the surface goes out of date or the window is resized; the target
// itself stays valid throughout.
type WindowTarget struct {

	// graphics context, for the device and the instance owning the surface
	Context *GraphicsContext

	// logical device
	Device *Device

	// window surface; owned and destroyed on release
	Surface driver.Surface

	// platform window, for its framebuffer size
	Window Window

	// presentable images
	Swapchain *Swapchain

	// frame slot ring, with presentation semaphores
	Frames *FrameSynchronizer

	// render pass of every clear mode
	Passes *RenderPassCache

	// depth attachment shared by all framebuffers
	Depth *ImageResource

	// one framebuffer per swapchain image
	Framebuffers []driver.Framebuffer

	// number of swapchain recreations so far
	Recreations int

	// a resize was reported and recreation is pending
	resized bool

	// window size the swapchain was last created for; the extent may
	// differ when the surface dictates it
	requested image.Point

	// a frame is being recorded
	recording bool
}

// NewWindowTarget creates a window target for surface, which it takes
// ownership of. The device is created for the surface if the context
// does not have one yet. Any error is fatal for the target.
func NewWindowTarget(gc *GraphicsContext, surface driver.Surface, win Window) (*WindowTarget, error) {
	if gc.Device == nil {
		if _, err := gc.InitDevice(surface); err != nil {
			gc.Driver.DestroySurface(gc.Instance, surface)
			return nil, err
		}
	}
	cfg := gc.Config
	if cfg.Samples > 1 {
		slog.Warn("gpu: window targets render single sampled; use an offscreen target for multisampling", "samples", cfg.Samples)
	}
	wt := &WindowTarget{Context: gc, Device: gc.Device, Surface: surface, Window: win}
	if err := wt.init(cfg); err != nil {
		wt.Release()
		return nil, err
	}
	return wt, nil
}

func (wt *WindowTarget) init(cfg *Config) error {
	var err error
	wt.requested = wt.Window.FramebufferSize()
	wt.Swapchain, err = NewSwapchain(wt.Device, wt.Surface, wt.requested, cfg.PreferMailbox)
	if err != nil {
		return err
	}
	set, err := wt.attachmentSet(cfg.DepthSampled)
	if err != nil {
		return err
	}
	wt.Passes, err = NewRenderPassCache(wt.Device, set)
	if err != nil {
		return err
	}
	if err := wt.createAttachments(); err != nil {
		return err
	}
	wt.Frames, err = NewFrameSynchronizer(wt.Device, cfg.frames(), true)
	if err != nil {
		return err
	}
	wt.Frames.ResetImages(len(wt.Swapchain.Images))
	return nil
}

func (wt *WindowTarget) attachmentSet(depthSampled bool) (AttachmentSet, error) {
	depth, err := wt.Device.FindDepthFormat()
	if err != nil {
		return AttachmentSet{}, err
	}
	return AttachmentSet{
		ColorFormat:  wt.Swapchain.Format.Format,
		DepthFormat:  depth,
		Samples:      driver.Samples1,
		FinalLayout:  driver.LayoutPresentSrc,
		DepthSampled: depthSampled,
	}, nil
}

// createAttachments creates the depth image and the framebuffers
// for the current swapchain images.
func (wt *WindowTarget) createAttachments() error {
	sc := wt.Swapchain
	set := &wt.Passes.Set
	usage := driver.UsageDepthStencilAttachment
	if set.DepthSampled {
		usage |= driver.UsageSampled
	}
	var err error
	wt.Depth, err = NewImage(wt.Device, ImageFormat{Size: sc.Extent, Format: set.DepthFormat}, usage)
	if err != nil {
		return err
	}
	if err := wt.Depth.Transition(driver.LayoutDepthStencilAttachmentOptimal); err != nil {
		return err
	}
	rp := wt.Passes.Get(ClearAll)
	for _, im := range sc.Images {
		fb, err := wt.Device.Driver.CreateFramebuffer(wt.Device.Handle, &driver.FramebufferCreateInfo{
			RenderPass:  rp,
			Attachments: []driver.ImageView{im.View, wt.Depth.View},
			Extent:      im.Extent(),
			Layers:      1,
		})
		if err != nil {
			return fmt.Errorf("%w: framebuffer: %w", ErrAllocationFailed, err)
		}
		wt.Framebuffers = append(wt.Framebuffers, fb)
	}
	return nil
}

func (wt *WindowTarget) releaseAttachments() {
	for _, fb := range wt.Framebuffers {
		wt.Device.Driver.DestroyFramebuffer(wt.Device.Handle, fb)
	}
	wt.Framebuffers = nil
	if wt.Depth != nil {
		wt.Depth.Release()
		wt.Depth = nil
	}
}

// recreate rebuilds the swapchain and its attachments for the given
// window size. A zero size (minimized window) leaves the recreation
// pending and returns nil.
func (wt *WindowTarget) recreate(size image.Point) error {
	if size.X <= 0 || size.Y <= 0 {
		wt.resized = true
		slog.Debug("gpu: window minimized, deferring swapchain recreation")
		return nil
	}
	errors.Log(wt.Device.WaitIdle())
	wt.releaseAttachments()
	if err := wt.Swapchain.Recreate(size); err != nil {
		return err
	}
	set, err := wt.attachmentSet(wt.Passes.Set.DepthSampled)
	if err != nil {
		wt.Swapchain.State = SwapchainOutOfDate
		return err
	}
	if _, err := wt.Passes.Rebuild(set); err != nil {
		wt.Swapchain.State = SwapchainOutOfDate
		return err
	}
	if err := wt.createAttachments(); err != nil {
		wt.Swapchain.State = SwapchainOutOfDate
		return err
	}
	wt.Frames.ResetImages(len(wt.Swapchain.Images))
	wt.requested = size
	wt.resized = false
	wt.Recreations++
	slog.Info("gpu: swapchain recreated", "size", wt.Swapchain.Extent, "count", wt.Recreations)
	return nil
}

func (wt *WindowTarget) needsRecreate() bool {
	return wt.resized || wt.Swapchain.State != SwapchainReady
}

// OnSurfaceEvent records that the surface changed. Recreation is
// deferred to the start or end of the next frame, so a burst of
// resize events causes a single recreation.
func (wt *WindowTarget) OnSurfaceEvent(ev SurfaceEvent) {
	slog.Debug("gpu: surface event", "size", ev.Size)
	wt.resized = true
}

func (wt *WindowTarget) BeginFrame() bool {
	if wt.recording {
		panic(errors.New("gpu: BeginFrame called while a frame is being recorded"))
	}
	if wt.needsRecreate() {
		if errors.Log(wt.recreate(wt.Window.FramebufferSize())) != nil || wt.needsRecreate() {
			return false
		}
	}
	_, err := wt.Swapchain.AcquireNextImage(wt.Frames)
	switch {
	case err == nil:
	case errors.Is(err, ErrSwapchainSuboptimal):
		wt.resized = true
	case errors.Is(err, ErrSwapchainOutOfDate):
		slog.Debug("gpu: swapchain out of date on acquire")
		errors.Log(wt.recreate(wt.Window.FramebufferSize()))
		return false
	default:
		errors.Log(err)
		return false
	}
	if _, err := wt.Frames.Begin(); err != nil {
		errors.Log(err)
		wt.abandon()
		return false
	}
	wt.recording = true
	return true
}

// abandon gives up the acquired image of a frame that is not
// submitted, and schedules a recreation to get the image back.
func (wt *WindowTarget) abandon() {
	errors.Log(wt.Frames.Abandon(wt.Device.GraphicsQueue))
	wt.Swapchain.State = SwapchainOutOfDate
}

// EndFrame submits and presents the frame. An out of date or
// suboptimal swapchain only schedules a recreation; other errors
// are returned.
func (wt *WindowTarget) EndFrame() error {
	if !wt.recording {
		panic(ErrNotRecording)
	}
	wt.recording = false
	if err := wt.Frames.End(); err != nil {
		wt.abandon()
		return err
	}
	err := wt.Swapchain.SubmitAndPresent(wt.Frames)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSwapchainOutOfDate), errors.Is(err, ErrSwapchainSuboptimal):
		wt.resized = true
		return nil
	}
	return err
}

func (wt *WindowTarget) SwapBuffers() {
	if wt.needsRecreate() {
		errors.Log(wt.recreate(wt.Window.FramebufferSize()))
	}
}

// Resize recreates the swapchain for size, unless it was last created
// for that size and nothing else is pending.
func (wt *WindowTarget) Resize(size image.Point) error {
	if size == wt.requested && !wt.needsRecreate() {
		return nil
	}
	return wt.recreate(size)
}

func (wt *WindowTarget) RenderPass(mode ClearMode) driver.RenderPass {
	return wt.Passes.Get(mode)
}

func (wt *WindowTarget) RenderPassGeneration() int {
	return wt.Passes.Generation
}

func (wt *WindowTarget) AttachmentSet() AttachmentSet {
	return wt.Passes.Set
}

func (wt *WindowTarget) CreatePipeline(cfg *PipelineConfig) (*Pipeline, error) {
	return NewPipeline(wt.Device, wt.Passes.Get(ClearAll), wt.FrontFace(), driver.Samples1, cfg)
}

func (wt *WindowTarget) CurrentFramebuffer() driver.Framebuffer {
	return wt.Framebuffers[wt.Swapchain.ImageIndex]
}

func (wt *WindowTarget) CommandBuffer() driver.CommandBuffer {
	return wt.Frames.Slot().Cmd
}

func (wt *WindowTarget) Extent() image.Point {
	return wt.Swapchain.Extent
}

// Viewport returns a viewport flipped vertically, so that
// y points up as in normalized device coordinates.
func (wt *WindowTarget) Viewport() driver.Viewport {
	sz := wt.Extent()
	return driver.Viewport{
		Y:        float32(sz.Y),
		Width:    float32(sz.X),
		Height:   -float32(sz.Y),
		MaxDepth: 1,
	}
}

// FrontFace is counter clockwise for window targets.
func (wt *WindowTarget) FrontFace() driver.FrontFace {
	return driver.FrontFaceCounterClockwise
}

// Release releases everything the target owns, including its surface.
func (wt *WindowTarget) Release() {
	dev := wt.Device
	if dev == nil {
		return
	}
	errors.Log(dev.WaitIdle())
	wt.releaseAttachments()
	if wt.Passes != nil {
		wt.Passes.Release()
		wt.Passes = nil
	}
	if wt.Frames != nil {
		wt.Frames.Release()
		wt.Frames = nil
	}
	if wt.Swapchain != nil {
		wt.Swapchain.Release()
		wt.Swapchain = nil
	}
	if wt.Surface != 0 {
		wt.Context.Driver.DestroySurface(wt.Context.Instance, wt.Surface)
		wt.Surface = 0
	}
	wt.Device = nil
}
