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

// OffscreenTarget is a [RenderTarget] rendering into its own images,
// independent of any surface, for render to texture and editor
// viewports. It may be multisampled, in which case the color image
// is resolved into a single sampled image at the end of the pass.
// Frames are synchronized with fences only.
type OffscreenTarget struct {

	// logical device
	Device *Device

	// size of the images
	Size image.Point

	// color attachment; multisampled if Samples > 1
	Color *ImageResource

	// single sampled resolve target when multisampled, else nil
	Resolve *ImageResource

	// depth attachment
	Depth *ImageResource

	// framebuffer over Color, Depth and Resolve
	Framebuffer driver.Framebuffer

	// render pass of every clear mode
	Passes *RenderPassCache

	// frame slot ring, fences only
	Frames *FrameSynchronizer

	// a frame is being recorded
	recording bool

	// slot of the last submitted frame, or -1
	last int
}

// NewOffscreenTarget creates an offscreen target of the given size and
// color format. The sample count comes from [Config.Samples], limited
// to what the device supports.
func NewOffscreenTarget(dev *Device, size image.Point, format driver.Format, cfg *Config) (*OffscreenTarget, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	ot := &OffscreenTarget{Device: dev, Size: size, last: -1}
	if err := ot.init(format, cfg); err != nil {
		ot.Release()
		return nil, err
	}
	return ot, nil
}

func (ot *OffscreenTarget) init(format driver.Format, cfg *Config) error {
	depth, err := ot.Device.FindDepthFormat()
	if err != nil {
		return err
	}
	set := AttachmentSet{
		ColorFormat:  format,
		DepthFormat:  depth,
		Samples:      cfg.SampleCount(ot.Device.Properties.FramebufferSamples),
		FinalLayout:  driver.LayoutShaderReadOnlyOptimal,
		DepthSampled: cfg.DepthSampled,
	}
	ot.Passes, err = NewRenderPassCache(ot.Device, set)
	if err != nil {
		return err
	}
	if ot.Size.X > 0 && ot.Size.Y > 0 {
		if err := ot.createAttachments(); err != nil {
			return err
		}
	}
	ot.Frames, err = NewFrameSynchronizer(ot.Device, cfg.frames(), false)
	return err
}

func (ot *OffscreenTarget) createAttachments() error {
	set := &ot.Passes.Set
	var err error
	output := driver.UsageColorAttachment | driver.UsageSampled | driver.UsageTransferSrc
	colorUsage := output
	if set.Multisample() {
		colorUsage = driver.UsageColorAttachment | driver.UsageTransientAttachment
	}
	ot.Color, err = NewImage(ot.Device, ImageFormat{Size: ot.Size, Format: set.ColorFormat, Samples: set.Samples}, colorUsage)
	if err != nil {
		return err
	}
	depthUsage := driver.UsageDepthStencilAttachment
	if set.DepthSampled {
		depthUsage |= driver.UsageSampled
	}
	ot.Depth, err = NewImage(ot.Device, ImageFormat{Size: ot.Size, Format: set.DepthFormat, Samples: set.Samples}, depthUsage)
	if err != nil {
		return err
	}
	if err := ot.Depth.Transition(driver.LayoutDepthStencilAttachmentOptimal); err != nil {
		return err
	}
	views := []driver.ImageView{ot.Color.View, ot.Depth.View}
	if set.Multisample() {
		ot.Resolve, err = NewImage(ot.Device, ImageFormat{Size: ot.Size, Format: set.ColorFormat}, output)
		if err != nil {
			return err
		}
		views = append(views, ot.Resolve.View)
	}
	ot.Framebuffer, err = ot.Device.Driver.CreateFramebuffer(ot.Device.Handle, &driver.FramebufferCreateInfo{
		RenderPass:  ot.Passes.Get(ClearAll),
		Attachments: views,
		Extent:      driver.Extent2D{Width: uint32(ot.Size.X), Height: uint32(ot.Size.Y)},
		Layers:      1,
	})
	if err != nil {
		return fmt.Errorf("%w: framebuffer: %w", ErrAllocationFailed, err)
	}
	return nil
}

func (ot *OffscreenTarget) releaseAttachments() {
	if ot.Framebuffer != 0 {
		ot.Device.Driver.DestroyFramebuffer(ot.Device.Handle, ot.Framebuffer)
		ot.Framebuffer = 0
	}
	for _, im := range []**ImageResource{&ot.Color, &ot.Depth, &ot.Resolve} {
		if *im != nil {
			(*im).Release()
			*im = nil
		}
	}
}

// ColorImage returns the single sampled color image that holds the
// rendered frame after [OffscreenTarget.SwapBuffers].
func (ot *OffscreenTarget) ColorImage() *ImageResource {
	if ot.Resolve != nil {
		return ot.Resolve
	}
	return ot.Color
}

// BeginFrame waits for the slot fence and begins recording. It
// returns false while the target has no attachments.
func (ot *OffscreenTarget) BeginFrame() bool {
	if ot.recording {
		panic(errors.New("gpu: BeginFrame called while a frame is being recorded"))
	}
	if ot.Framebuffer == 0 {
		return false
	}
	if err := ot.Frames.Wait(); err != nil {
		errors.Log(err)
		return false
	}
	if _, err := ot.Frames.Begin(); err != nil {
		errors.Log(err)
		return false
	}
	ot.recording = true
	return true
}

// EndFrame ends recording, submits the frame signaling the slot fence
// and moves to the next slot.
func (ot *OffscreenTarget) EndFrame() error {
	if !ot.recording {
		panic(ErrNotRecording)
	}
	ot.recording = false
	if err := ot.Frames.End(); err != nil {
		return err
	}
	err := ot.Frames.Submit(ot.Device.GraphicsQueue)
	if err == nil {
		ot.last = ot.Frames.Current
	}
	ot.Frames.Advance()
	return err
}

// SwapBuffers blocks until the last submitted frame is complete, after
// which [OffscreenTarget.ColorImage] may be read.
func (ot *OffscreenTarget) SwapBuffers() {
	if ot.last < 0 {
		return
	}
	fence := ot.Frames.Slots[ot.last].InFlight
	if errors.Log(ot.Device.Driver.WaitForFences(ot.Device.Handle, []driver.Fence{fence}, driver.NoTimeout)) != nil {
		return
	}
	if img := ot.ColorImage(); img != nil {
		img.Layout = ot.Passes.Set.FinalLayout
	}
	ot.last = -1
}

// Resize recreates the images and framebuffer at size. The render
// passes are kept, since the attachment formats do not change. If the
// attachments cannot be created, the target is left empty with a zero
// size and the error is returned.
func (ot *OffscreenTarget) Resize(size image.Point) error {
	if size == ot.Size {
		return nil
	}
	if err := ot.Device.WaitIdle(); err != nil {
		return fmt.Errorf("gpu: waiting for idle before offscreen resize: %w", err)
	}
	ot.releaseAttachments()
	ot.Size = size
	ot.last = -1
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}
	if err := ot.createAttachments(); err != nil {
		ot.releaseAttachments()
		ot.Size = image.Point{}
		return err
	}
	slog.Debug("gpu: offscreen target resized", "size", size)
	return nil
}

func (ot *OffscreenTarget) RenderPass(mode ClearMode) driver.RenderPass {
	return ot.Passes.Get(mode)
}

func (ot *OffscreenTarget) RenderPassGeneration() int {
	return ot.Passes.Generation
}

func (ot *OffscreenTarget) AttachmentSet() AttachmentSet {
	return ot.Passes.Set
}

func (ot *OffscreenTarget) CreatePipeline(cfg *PipelineConfig) (*Pipeline, error) {
	return NewPipeline(ot.Device, ot.Passes.Get(ClearAll), ot.FrontFace(), ot.Passes.Set.Samples, cfg)
}

func (ot *OffscreenTarget) CurrentFramebuffer() driver.Framebuffer {
	return ot.Framebuffer
}

func (ot *OffscreenTarget) CommandBuffer() driver.CommandBuffer {
	return ot.Frames.Slot().Cmd
}

func (ot *OffscreenTarget) Extent() image.Point {
	return ot.Size
}

// Viewport returns an unflipped viewport: row 0 of the image is the
// top when it is sampled as a texture.
func (ot *OffscreenTarget) Viewport() driver.Viewport {
	return driver.Viewport{Width: float32(ot.Size.X), Height: float32(ot.Size.Y), MaxDepth: 1}
}

// FrontFace is clockwise for offscreen targets, whose viewport is
// not flipped.
func (ot *OffscreenTarget) FrontFace() driver.FrontFace {
	return driver.FrontFaceClockwise
}

// Release waits for the device to go idle and releases the target.
func (ot *OffscreenTarget) Release() {
	if ot.Device == nil {
		return
	}
	errors.Log(ot.Device.WaitIdle())
	ot.releaseAttachments()
	if ot.Passes != nil {
		ot.Passes.Release()
		ot.Passes = nil
	}
	if ot.Frames != nil {
		ot.Frames.Release()
		ot.Frames = nil
	}
	ot.Device = nil
}
