// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"testing"

	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffscreenSingleSample(t *testing.T) {
	d, ot := newTestOffscreenTarget(t, 1)
	assert.Nil(t, ot.Resolve)
	assert.Same(t, ot.Color, ot.ColorImage())
	assert.NotZero(t, ot.Color.Usage&driver.UsageSampled)

	fb := d.Framebuffers[ot.Framebuffer]
	assert.Equal(t, []driver.ImageView{ot.Color.View, ot.Depth.View}, fb.Attachments)
	assert.Equal(t, driver.Extent2D{Width: 256, Height: 128}, fb.Extent)
	assert.Equal(t, driver.LayoutDepthStencilAttachmentOptimal, ot.Depth.Layout)
	assert.Equal(t, 0, d.Created["Semaphore"])
}

func TestOffscreenMultisample(t *testing.T) {
	d, ot := newTestOffscreenTarget(t, 6)
	set := ot.AttachmentSet()
	assert.Equal(t, driver.Samples4, set.Samples)
	require.NotNil(t, ot.Resolve)
	assert.Same(t, ot.Resolve, ot.ColorImage())
	assert.Equal(t, driver.Samples4, d.Images[ot.Color.Image].Samples)
	assert.Equal(t, driver.Samples4, d.Images[ot.Depth.Image].Samples)
	assert.Equal(t, driver.Samples1, d.Images[ot.Resolve.Image].Samples)
	assert.NotZero(t, ot.Color.Usage&driver.UsageTransientAttachment)
	assert.NotZero(t, ot.Resolve.Usage&driver.UsageSampled)

	fb := d.Framebuffers[ot.Framebuffer]
	assert.Equal(t, []driver.ImageView{ot.Color.View, ot.Depth.View, ot.Resolve.View}, fb.Attachments)
	assert.Len(t, fb.Attachments, set.AttachmentCount())

	pl, err := ot.CreatePipeline(&PipelineConfig{Name: "msaa", SampleShading: true})
	require.NoError(t, err)
	info := d.Pipelines[pl.Handle]
	assert.Equal(t, driver.Samples4, info.Samples)
	assert.True(t, info.SampleShading)
	assert.Equal(t, driver.FrontFaceClockwise, info.FrontFace)
	pl.Release()
}

func TestOffscreenFrames(t *testing.T) {
	d, ot := newTestOffscreenTarget(t, 1)
	for range 10 {
		require.True(t, ot.BeginFrame())
		require.NoError(t, ot.EndFrame())
		assert.LessOrEqual(t, d.InFlight(), MaxFramesInFlight)
	}
	assert.Equal(t, MaxFramesInFlight, d.MaxInFlight)

	ot.SwapBuffers()
	last := ot.Frames.Slots[(ot.Frames.Current+MaxFramesInFlight-1)%MaxFramesInFlight].InFlight
	done, err := d.FenceStatus(0, last)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, driver.LayoutShaderReadOnlyOptimal, ot.ColorImage().Layout)

	// waiting again is harmless
	ot.SwapBuffers()
	assert.Equal(t, 0, d.Presents)
	assert.Empty(t, d.Violations)
}

func TestOffscreenResize(t *testing.T) {
	d, ot := newTestOffscreenTarget(t, 4)
	images := d.Created["Image"]
	passes := d.Created["RenderPass"]

	require.NoError(t, ot.Resize(image.Pt(256, 128)))
	assert.Equal(t, images, d.Created["Image"])

	require.NoError(t, ot.Resize(image.Pt(512, 512)))
	assert.Equal(t, images+3, d.Created["Image"])
	assert.Equal(t, 3, d.Live("Image"))
	assert.Equal(t, passes, d.Created["RenderPass"])
	assert.Equal(t, driver.Extent2D{Width: 512, Height: 512}, d.Framebuffers[ot.Framebuffer].Extent)
	assert.Equal(t, image.Pt(512, 512), ot.Extent())

	require.NoError(t, ot.Resize(image.Point{}))
	assert.False(t, ot.BeginFrame())
	require.NoError(t, ot.Resize(image.Pt(64, 64)))
	require.True(t, ot.BeginFrame())
	require.NoError(t, ot.EndFrame())
	ot.SwapBuffers()
	assert.Empty(t, d.Violations)
}

func TestOffscreenResizeFailure(t *testing.T) {
	d, ot := newTestOffscreenTarget(t, 1)
	d.FailCreate["Image"] = driver.ErrorOutOfDeviceMemory.Err()
	err := ot.Resize(image.Pt(128, 128))
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, image.Point{}, ot.Extent())
	assert.Zero(t, ot.Framebuffer)
	assert.Nil(t, ot.ColorImage())
	assert.Equal(t, 0, d.Live("Image"))

	assert.False(t, ot.BeginFrame())
	ot.SwapBuffers()

	delete(d.FailCreate, "Image")
	require.NoError(t, ot.Resize(image.Pt(128, 128)))
	require.True(t, ot.BeginFrame())
	require.NoError(t, ot.EndFrame())
	ot.SwapBuffers()
	assert.Equal(t, driver.Extent2D{Width: 128, Height: 128}, d.Framebuffers[ot.Framebuffer].Extent)
	assert.Empty(t, d.Violations)
}

func TestOffscreenSubmitFailure(t *testing.T) {
	d, ot := newTestOffscreenTarget(t, 1)
	require.True(t, ot.BeginFrame())
	d.SubmitErrors = []error{driver.ErrorDeviceLost.Err()}
	assert.ErrorIs(t, ot.EndFrame(), driver.ErrDeviceLost)
	ot.SwapBuffers()

	for range 10 {
		require.True(t, ot.BeginFrame())
		require.NoError(t, ot.EndFrame())
	}
	ot.SwapBuffers()
	assert.Equal(t, driver.LayoutShaderReadOnlyOptimal, ot.ColorImage().Layout)
	assert.Empty(t, d.Violations)
}

func TestOffscreenOrientation(t *testing.T) {
	_, ot := newTestOffscreenTarget(t, 1)
	vp := ot.Viewport()
	assert.Equal(t, driver.Viewport{Width: 256, Height: 128, MaxDepth: 1}, vp)
	assert.Equal(t, driver.FrontFaceClockwise, ot.FrontFace())
}

func TestOffscreenContract(t *testing.T) {
	_, ot := newTestOffscreenTarget(t, 1)
	assert.PanicsWithValue(t, ErrNotRecording, func() { ot.EndFrame() })
	require.True(t, ot.BeginFrame())
	assert.Panics(t, func() { ot.BeginFrame() })
	ot.EndFrame()
}
