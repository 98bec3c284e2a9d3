// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"image/color"
	"testing"

	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/hogletgames/genesis/gpu/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindowRenderer(t *testing.T) (*drivertest.Driver, *FrameRenderer, *testWindow) {
	t.Helper()
	d, gc := newTestContext(t, nil)
	win := &testWindow{size: image.Pt(800, 600)}
	fr, err := NewWindowRenderer(gc, drivertest.Surface, win)
	require.NoError(t, err)
	t.Cleanup(func() {
		fr.Release()
		gc.Release()
	})
	return d, fr, win
}

func TestRendererFrame(t *testing.T) {
	d, fr, _ := newTestWindowRenderer(t)
	fr.SetClearColor(color.RGBA{255, 0, 0, 255})
	for mode := range ClearModesN {
		require.True(t, fr.BeginFrame(mode))
		fr.EndFrame()
		fr.SwapBuffers()
		bi := d.BeginInfos[len(d.BeginInfos)-1]
		assert.Equal(t, fr.Target.RenderPass(mode), bi.RenderPass)
		assert.Equal(t, driver.Extent2D{Width: 800, Height: 600}, bi.Area.Extent)
		require.Len(t, bi.ClearValues, 2)
		assert.InDelta(t, 1, bi.ClearValues[0].Color[0], 1e-5)
		assert.InDelta(t, 0, bi.ClearValues[0].Color[1], 1e-5)
		assert.True(t, bi.ClearValues[1].IsDepth)
		assert.Equal(t, float32(1), bi.ClearValues[1].Depth)
	}
	assert.Equal(t, FrameStats{Frames: 4}, fr.Stats())
	assert.Empty(t, d.Violations)
}

func TestRendererOutOfDate(t *testing.T) {
	d, fr, _ := newTestWindowRenderer(t)
	d.AcquireResults = []driver.Result{driver.ErrorOutOfDate}
	assert.False(t, fr.BeginFrame(ClearAll))
	require.True(t, fr.BeginFrame(ClearAll))
	fr.EndFrame()
	fr.SwapBuffers()
	assert.Equal(t, FrameStats{Frames: 1, Skipped: 1, Recreations: 1}, fr.Stats())
	assert.Equal(t, 2, d.Created["Swapchain"])
}

func TestRendererLostFrame(t *testing.T) {
	d, fr, _ := newTestWindowRenderer(t)
	require.True(t, fr.BeginFrame(ClearAll))
	d.SubmitErrors = []error{driver.ErrorDeviceLost.Err()}
	err := fr.EndFrame()
	assert.ErrorIs(t, err, driver.ErrDeviceLost)
	fr.SwapBuffers()

	for range 5 {
		require.True(t, fr.BeginFrame(ClearAll))
		require.NoError(t, fr.EndFrame())
		fr.SwapBuffers()
	}
	assert.Equal(t, FrameStats{Frames: 6, Lost: 1, Recreations: 1}, fr.Stats())
	assert.Equal(t, err, fr.Err())
	assert.Empty(t, d.Violations)
}

func TestRendererRebuildsPipelines(t *testing.T) {
	d, fr, _ := newTestWindowRenderer(t)
	pl, err := fr.CreatePipeline(&PipelineConfig{Name: "quad"})
	require.NoError(t, err)
	old := pl.RenderPass

	// the same format keeps the render passes and pipelines
	require.NoError(t, fr.Resize(image.Pt(640, 480)))
	assert.Equal(t, old, pl.RenderPass)
	assert.Equal(t, 1, d.Created["Pipeline"])

	d.Formats = []driver.SurfaceFormat{{Format: driver.FormatR8G8B8A8Unorm, ColorSpace: driver.ColorSpaceSRGBNonlinear}}
	fr.OnSurfaceEvent(SurfaceEvent{Size: image.Pt(800, 600)})
	require.True(t, fr.BeginFrame(ClearAll))
	assert.NotEqual(t, old, pl.RenderPass)
	assert.Equal(t, fr.Target.RenderPass(ClearAll), pl.RenderPass)
	assert.Equal(t, 2, d.Created["Pipeline"])
	assert.Equal(t, 1, d.Live("Pipeline"))
	fr.EndFrame()
	fr.SwapBuffers()

	fr.ReleasePipeline(pl)
	assert.Empty(t, fr.Pipelines)
	assert.Equal(t, 0, d.Live("Pipeline"))
	assert.Equal(t, 0, d.Live("PipelineLayout"))
	assert.Empty(t, d.Violations)
}

func TestRendererOffscreen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 4
	d, gc := newTestContext(t, cfg)
	fr, err := NewOffscreenRenderer(gc, image.Pt(128, 128), driver.FormatR8G8B8A8Unorm)
	require.NoError(t, err)
	defer gc.Release()
	defer fr.Release()

	fr.OnSurfaceEvent(SurfaceEvent{Size: image.Pt(1, 1)})
	require.True(t, fr.BeginFrame(ClearColor))
	fr.EndFrame()
	fr.SwapBuffers()

	bi := d.BeginInfos[0]
	assert.Equal(t, fr.Target.RenderPass(ClearColor), bi.RenderPass)
	assert.Len(t, bi.ClearValues, 3)
	assert.Equal(t, 0, d.Presents)
	assert.Equal(t, FrameStats{Frames: 1}, fr.Stats())
	assert.PanicsWithValue(t, ErrNotRecording, func() { fr.EndFrame() })
}

func TestClearColorValue(t *testing.T) {
	c := color.RGBA{0, 128, 255, 128}
	v := ClearColorValue(c, false)
	assert.InDeltaSlice(t, []float32{0, 128.0 / 255, 1, 128.0 / 255}, v[:], 1e-6)

	v = ClearColorValue(c, true)
	assert.InDelta(t, 0, v[0], 1e-6)
	assert.InDelta(t, 0.2158605, v[1], 1e-4)
	assert.InDelta(t, 1, v[2], 1e-5)
	assert.InDelta(t, 128.0/255, v[3], 1e-6)

	assert.InDelta(t, 0.04/12.92, SRGBToLinear(0.04), 1e-7)
}
