// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"image/color"
	"log/slog"
	"slices"

	"github.com/chewxy/math32"
	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// FrameStats counts what happened to the frames of a [FrameRenderer].
type FrameStats struct {

	// frames begun successfully
	Frames int

	// frames skipped because the target was not ready
	Skipped int

	// frames begun but lost at submission
	Lost int

	// swapchain recreations of a window target
	Recreations int
}

// FrameRenderer drives the frame cycle of one [RenderTarget]:
// BeginFrame, recording by the caller, EndFrame and SwapBuffers.
// It begins the render pass of the requested [ClearMode], sets the
// viewport and scissor, and keeps the pipelines it created valid
// when the target rebuilds its render passes.
type FrameRenderer struct {

	// target rendered to
	Target RenderTarget

	// logical device
	Device *Device

	// color the color attachment is cleared to, in sRGB
	ClearColor color.RGBA

	// value the depth attachment is cleared to
	ClearDepth float32

	// pipelines created through the renderer, rebuilt with the render passes
	Pipelines []*Pipeline

	// frame statistics
	stats FrameStats

	// first error that lost a frame
	err error

	// render pass generation the pipelines were built for
	generation int

	// a frame has been begun and not ended
	inFrame bool
}

// NewFrameRenderer returns a renderer for target, with the clear
// color of cfg.
func NewFrameRenderer(dev *Device, target RenderTarget, cfg *Config) *FrameRenderer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &FrameRenderer{
		Target:     target,
		Device:     dev,
		ClearColor: cfg.ClearColor,
		ClearDepth: 1,
		generation: target.RenderPassGeneration(),
	}
}

// NewWindowRenderer creates a [WindowTarget] for surface and a
// renderer for it.
func NewWindowRenderer(gc *GraphicsContext, surface driver.Surface, win Window) (*FrameRenderer, error) {
	wt, err := NewWindowTarget(gc, surface, win)
	if err != nil {
		return nil, err
	}
	return NewFrameRenderer(gc.Device, wt, gc.Config), nil
}

// NewOffscreenRenderer creates an [OffscreenTarget] and a renderer for it.
func NewOffscreenRenderer(gc *GraphicsContext, size image.Point, format driver.Format) (*FrameRenderer, error) {
	if gc.Device == nil {
		if _, err := gc.InitDevice(0); err != nil {
			return nil, err
		}
	}
	ot, err := NewOffscreenTarget(gc.Device, size, format, gc.Config)
	if err != nil {
		return nil, err
	}
	return NewFrameRenderer(gc.Device, ot, gc.Config), nil
}

// BeginFrame begins a frame whose render pass clears the attachments
// selected by mode. It returns false if the frame must be skipped;
// the caller then records nothing and does not call EndFrame.
func (fr *FrameRenderer) BeginFrame(mode ClearMode) bool {
	if !fr.Target.BeginFrame() {
		fr.stats.Skipped++
		slog.Debug("gpu: frame skipped", "skipped", fr.stats.Skipped)
		return false
	}
	fr.inFrame = true
	fr.stats.Frames++
	fr.rebuildPipelines()
	cb := fr.Target.CommandBuffer()
	sz := fr.Target.Extent()
	area := driver.Rect2D{Extent: driver.Extent2D{Width: uint32(sz.X), Height: uint32(sz.Y)}}
	drv := fr.Device.Driver
	drv.CmdBeginRenderPass(cb, &driver.RenderPassBeginInfo{
		RenderPass:  fr.Target.RenderPass(mode),
		Framebuffer: fr.Target.CurrentFramebuffer(),
		Area:        area,
		ClearValues: fr.clearValues(),
	})
	drv.CmdSetViewport(cb, fr.Target.Viewport())
	drv.CmdSetScissor(cb, area)
	return true
}

// EndFrame ends the render pass and submits the frame. An error means
// that the frame was lost, typically because the device was lost or ran
// out of memory; callers should stop rendering. Later frames may still
// be begun, and [FrameRenderer.Err] keeps the first such error.
func (fr *FrameRenderer) EndFrame() error {
	if !fr.inFrame {
		panic(ErrNotRecording)
	}
	fr.inFrame = false
	fr.Device.Driver.CmdEndRenderPass(fr.Target.CommandBuffer())
	err := fr.Target.EndFrame()
	if err != nil {
		fr.stats.Lost++
		if fr.err == nil {
			fr.err = err
		}
		slog.Error("gpu: frame lost", "err", err)
	}
	return err
}

// Err returns the first error that lost a frame, or nil.
func (fr *FrameRenderer) Err() error {
	return fr.err
}

// SwapBuffers completes the frame cycle; see [RenderTarget.SwapBuffers].
func (fr *FrameRenderer) SwapBuffers() {
	fr.Target.SwapBuffers()
	fr.rebuildPipelines()
}

// Resize resizes the target. It must not be called within a frame.
func (fr *FrameRenderer) Resize(size image.Point) error {
	err := fr.Target.Resize(size)
	fr.rebuildPipelines()
	return err
}

// OnSurfaceEvent forwards a surface event to a window target.
// Offscreen targets have no surface and ignore it.
func (fr *FrameRenderer) OnSurfaceEvent(ev SurfaceEvent) {
	if wt, ok := fr.Target.(*WindowTarget); ok {
		wt.OnSurfaceEvent(ev)
	}
}

// CreatePipeline creates a pipeline for the target. The renderer
// keeps it valid across render pass rebuilds and releases it with
// the renderer.
func (fr *FrameRenderer) CreatePipeline(cfg *PipelineConfig) (*Pipeline, error) {
	pl, err := fr.Target.CreatePipeline(cfg)
	if err != nil {
		return nil, err
	}
	fr.Pipelines = append(fr.Pipelines, pl)
	return pl, nil
}

// ReleasePipeline releases a pipeline created by [FrameRenderer.CreatePipeline].
func (fr *FrameRenderer) ReleasePipeline(pl *Pipeline) {
	i := slices.Index(fr.Pipelines, pl)
	if i < 0 {
		return
	}
	errors.Log(fr.Device.WaitIdle())
	pl.Release()
	fr.Pipelines = slices.Delete(fr.Pipelines, i, i+1)
}

// CommandBuffer returns the command buffer of the current frame.
func (fr *FrameRenderer) CommandBuffer() driver.CommandBuffer {
	return fr.Target.CommandBuffer()
}

// SetClearColor sets the color of subsequent frames.
func (fr *FrameRenderer) SetClearColor(c color.RGBA) {
	fr.ClearColor = c
}

// Stats returns the frame statistics so far.
func (fr *FrameRenderer) Stats() FrameStats {
	st := fr.stats
	if wt, ok := fr.Target.(*WindowTarget); ok {
		st.Recreations = wt.Recreations
	}
	return st
}

// Release releases the pipelines and the target.
func (fr *FrameRenderer) Release() {
	if fr.Target == nil {
		return
	}
	errors.Log(fr.Device.WaitIdle())
	for _, pl := range fr.Pipelines {
		pl.Release()
	}
	fr.Pipelines = nil
	fr.Target.Release()
	fr.Target = nil
}

// rebuildPipelines recreates the pipelines if the target rebuilt its
// render passes since they were created.
func (fr *FrameRenderer) rebuildPipelines() {
	gen := fr.Target.RenderPassGeneration()
	if gen == fr.generation {
		return
	}
	fr.generation = gen
	if len(fr.Pipelines) == 0 {
		return
	}
	if !fr.inFrame {
		errors.Log(fr.Device.WaitIdle())
	}
	rp := fr.Target.RenderPass(ClearAll)
	for _, pl := range fr.Pipelines {
		errors.Log(pl.Rebuild(rp))
	}
	slog.Debug("gpu: pipelines rebuilt", "count", len(fr.Pipelines), "generation", gen)
}

// clearValues returns the clear values in attachment order:
// color, depth, and the resolve target when multisampled.
func (fr *FrameRenderer) clearValues() []driver.ClearValue {
	set := fr.Target.AttachmentSet()
	col := driver.ClearValue{Color: ClearColorValue(fr.ClearColor, set.ColorFormat.IsSRGB())}
	vals := []driver.ClearValue{col, {Depth: fr.ClearDepth, IsDepth: true}}
	if set.Multisample() {
		vals = append(vals, col)
	}
	return vals
}

// ClearColorValue returns c as normalized floats. For an sRGB
// attachment the color channels are converted to linear, since the
// attachment encodes linear values back to sRGB on write.
func ClearColorValue(c color.RGBA, srgb bool) [4]float32 {
	v := [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
	if srgb {
		for i := range 3 {
			v[i] = SRGBToLinear(v[i])
		}
	}
	return v
}

// SRGBToLinear converts an sRGB encoded component in [0, 1] to linear.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}
