// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"

	"github.com/hogletgames/genesis/gpu/driver"
)

// RenderTarget is something a [FrameRenderer] renders frames into:
// either a [WindowTarget] presenting to a surface, or an
// [OffscreenTarget] rendering into its own images. Frame slot
// synchronization and render pass caching are shared helpers that
// each target composes.
type RenderTarget interface {

	// BeginFrame waits for the next frame slot and begins recording.
	// It returns false when the frame must be skipped, for example
	// while the target is being recreated or the window is minimized.
	BeginFrame() bool

	// EndFrame ends recording and submits the frame; window targets
	// also present it. An error means the frame was lost and the
	// device is likely unusable; the frame slot stays usable.
	EndFrame() error

	// SwapBuffers finishes the frame cycle: window targets apply a
	// pending recreation; offscreen targets wait until the frame is
	// complete, so that the image can be read.
	SwapBuffers()

	// Resize resizes the target. Resizing to the current size does nothing.
	// On error the target renders no frames until a later resize succeeds.
	Resize(size image.Point) error

	// RenderPass returns the render pass for the given clear mode.
	RenderPass(mode ClearMode) driver.RenderPass

	// RenderPassGeneration changes whenever the render passes are rebuilt.
	RenderPassGeneration() int

	// AttachmentSet returns the attachments the render passes are built for.
	AttachmentSet() AttachmentSet

	// CreatePipeline creates a pipeline for the target's
	// [ClearAll] render pass and winding order.
	CreatePipeline(cfg *PipelineConfig) (*Pipeline, error)

	// CurrentFramebuffer returns the framebuffer of the frame being recorded.
	CurrentFramebuffer() driver.Framebuffer

	// CommandBuffer returns the command buffer of the frame being recorded.
	CommandBuffer() driver.CommandBuffer

	// Extent returns the size of the framebuffers.
	Extent() image.Point

	// Viewport returns the viewport covering the framebuffer.
	Viewport() driver.Viewport

	// FrontFace returns the winding of front facing triangles.
	FrontFace() driver.FrontFace

	// Release waits for the device to go idle and releases the target.
	Release()
}

// Window is the platform window a [WindowTarget] presents to.
type Window interface {

	// FramebufferSize returns the current size of the window in pixels.
	// A zero size means the window is minimized.
	FramebufferSize() image.Point
}

// SurfaceEvent is a change of a window surface reported by the platform.
type SurfaceEvent struct {

	// new framebuffer size of the window
	Size image.Point
}
