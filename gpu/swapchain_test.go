// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"testing"

	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	unorm := driver.SurfaceFormat{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSRGBNonlinear}
	srgb := driver.SurfaceFormat{Format: driver.FormatB8G8R8A8SRGB, ColorSpace: driver.ColorSpaceSRGBNonlinear}
	rgba := driver.SurfaceFormat{Format: driver.FormatR8G8B8A8SRGB, ColorSpace: driver.ColorSpaceSRGBNonlinear}

	assert.Equal(t, srgb, ChooseSurfaceFormat([]driver.SurfaceFormat{unorm, srgb}))
	assert.Equal(t, rgba, ChooseSurfaceFormat([]driver.SurfaceFormat{rgba, unorm}))
}

func TestChoosePresentMode(t *testing.T) {
	modes := []driver.PresentMode{driver.PresentModeImmediate, driver.PresentModeFIFO, driver.PresentModeMailbox}
	assert.Equal(t, driver.PresentModeMailbox, ChoosePresentMode(modes, true))
	assert.Equal(t, driver.PresentModeFIFO, ChoosePresentMode(modes, false))
	assert.Equal(t, driver.PresentModeFIFO, ChoosePresentMode(modes[:2], true))
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 0, 3},
		{5, 0, 6},
		{2, 8, 3},
		{3, 3, 3},
		{2, 3, 3},
	}
	for _, tt := range tests {
		caps := &driver.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		assert.Equal(t, tt.want, ChooseImageCount(caps), "min %d max %d", tt.min, tt.max)
	}
}

func TestChooseExtent(t *testing.T) {
	caps := &driver.SurfaceCapabilities{
		CurrentExtent:  driver.Extent2D{Width: driver.UndefinedExtent, Height: driver.UndefinedExtent},
		MinImageExtent: driver.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: driver.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, driver.Extent2D{Width: 800, Height: 600}, ChooseExtent(caps, image.Pt(800, 600)))
	assert.Equal(t, driver.Extent2D{Width: 4096, Height: 1}, ChooseExtent(caps, image.Pt(10000, 0)))

	caps.CurrentExtent = driver.Extent2D{Width: 1024, Height: 768}
	assert.Equal(t, driver.Extent2D{Width: 1024, Height: 768}, ChooseExtent(caps, image.Pt(800, 600)))
}

func TestSwapchainCreateInfo(t *testing.T) {
	d, wt, _ := newTestWindowTarget(t)
	sc := wt.Swapchain
	assert.Equal(t, SwapchainReady, sc.State)
	assert.Equal(t, driver.FormatB8G8R8A8SRGB, sc.Format.Format)
	assert.Equal(t, driver.PresentModeMailbox, sc.PresentMode)
	assert.Equal(t, image.Pt(800, 600), sc.Extent)
	assert.Len(t, sc.Images, 3)
	info := d.SwapchainInfos[0]
	assert.Equal(t, uint32(3), info.MinImageCount)
	assert.Equal(t, driver.CompositeAlphaOpaque, info.CompositeAlpha)
	assert.Empty(t, info.QueueFamilies)
	assert.True(t, info.Clipped)
}
