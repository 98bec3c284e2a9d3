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

func TestPlanTransition(t *testing.T) {
	type access struct{ src, dst driver.AccessFlags }
	legal := map[layoutPair]access{
		{driver.LayoutUndefined, driver.LayoutTransferDstOptimal}:                        {0, driver.AccessTransferWrite},
		{driver.LayoutUndefined, driver.LayoutDepthStencilAttachmentOptimal}:             {0, driver.AccessDepthStencilAttachmentRead | driver.AccessDepthStencilAttachmentWrite},
		{driver.LayoutUndefined, driver.LayoutGeneral}:                                   {0, driver.AccessShaderRead | driver.AccessShaderWrite},
		{driver.LayoutGeneral, driver.LayoutTransferDstOptimal}:                          {driver.AccessShaderRead, driver.AccessTransferWrite},
		{driver.LayoutGeneral, driver.LayoutShaderReadOnlyOptimal}:                       {driver.AccessShaderWrite, driver.AccessShaderRead},
		{driver.LayoutTransferSrcOptimal, driver.LayoutShaderReadOnlyOptimal}:            {driver.AccessTransferRead, driver.AccessShaderRead},
		{driver.LayoutTransferDstOptimal, driver.LayoutShaderReadOnlyOptimal}:            {driver.AccessTransferWrite, driver.AccessShaderRead},
		{driver.LayoutTransferDstOptimal, driver.LayoutGeneral}:                          {driver.AccessTransferWrite, driver.AccessMemoryRead},
		{driver.LayoutDepthStencilAttachmentOptimal, driver.LayoutShaderReadOnlyOptimal}: {driver.AccessDepthStencilAttachmentWrite, driver.AccessShaderRead},
		{driver.LayoutShaderReadOnlyOptimal, driver.LayoutTransferSrcOptimal}:            {driver.AccessShaderRead, driver.AccessTransferRead},
	}
	for _, from := range driver.Layouts {
		for _, to := range driver.Layouts {
			tr, err := PlanTransition(from, to)
			want, ok := legal[layoutPair{from, to}]
			if !ok {
				assert.ErrorIs(t, err, ErrUnsupportedLayoutTransition, "%v to %v", from, to)
				assert.Zero(t, tr)
				continue
			}
			require.NoError(t, err, "%v to %v", from, to)
			assert.Equal(t, want.src, tr.SrcAccess, "%v to %v", from, to)
			assert.Equal(t, want.dst, tr.DstAccess, "%v to %v", from, to)
			assert.NotZero(t, tr.SrcStage)
			assert.NotZero(t, tr.DstStage)
		}
	}
}

func TestAspectMask(t *testing.T) {
	assert.Equal(t, driver.AspectDepth, AspectMask(driver.FormatD32SFloat))
	assert.Equal(t, driver.AspectDepth|driver.AspectStencil, AspectMask(driver.FormatD24UnormS8Uint))
	assert.Equal(t, driver.AspectDepth|driver.AspectStencil, AspectMask(driver.FormatD32SFloatS8Uint))
	assert.Equal(t, driver.AspectColor, AspectMask(driver.FormatB8G8R8A8SRGB))
}

func TestImageTransition(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	im, err := NewImage(dev, ImageFormat{Size: image.Pt(64, 64), Format: driver.FormatR8G8B8A8SRGB}, driver.UsageTransferDst|driver.UsageSampled)
	require.NoError(t, err)
	require.NoError(t, im.Transition(driver.LayoutTransferDstOptimal))
	require.NoError(t, im.Transition(driver.LayoutShaderReadOnlyOptimal))
	assert.Equal(t, driver.LayoutShaderReadOnlyOptimal, im.Layout)

	require.Len(t, d.Barriers, 2)
	b := d.Barriers[1]
	assert.Equal(t, driver.LayoutTransferDstOptimal, b.OldLayout)
	assert.Equal(t, driver.LayoutShaderReadOnlyOptimal, b.NewLayout)
	assert.Equal(t, driver.StageTransfer, b.Src)
	assert.Equal(t, driver.StageFragmentShader, b.Dst)
	assert.Equal(t, driver.AspectColor, b.Aspect)

	assert.PanicsWithError(t, "gpu: unsupported layout transition: ShaderReadOnlyOptimal to ColorAttachmentOptimal", func() {
		im.Transition(driver.LayoutColorAttachmentOptimal)
	})
	im.Release()
	assert.Equal(t, 0, d.Live("Image"))
	assert.Equal(t, 0, d.Live("Memory"))
	assert.Equal(t, 0, d.Live("ImageView"))
	assert.Empty(t, d.Violations)
}

func TestImageAllocationFailure(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	d.FailCreate["ImageView"] = driver.ErrorOutOfDeviceMemory.Err()
	_, err = NewImage(dev, ImageFormat{Size: image.Pt(8, 8), Format: driver.FormatR8G8B8A8Unorm}, driver.UsageSampled)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.ErrorIs(t, err, driver.ErrNoDeviceMemory)
	assert.Equal(t, 0, d.Live("Image"))
	assert.Equal(t, 0, d.Live("Memory"))
}
