// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/hogletgames/genesis/gpu/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOps(t *testing.T) {
	dc, cl := driver.LoadOpDontCare, driver.LoadOpClear
	want := [ClearModesN][2]driver.LoadOp{
		ClearNone:  {dc, dc},
		ClearColor: {cl, dc},
		ClearDepth: {dc, cl},
		ClearAll:   {cl, cl},
	}
	for mode := range ClearModesN {
		c, d := LoadOps(mode, false)
		assert.Equal(t, want[mode], [2]driver.LoadOp{c, d}, mode.String())
		c, d = LoadOps(mode, true)
		assert.Equal(t, [2]driver.LoadOp{cl, cl}, [2]driver.LoadOp{c, d}, mode.String())
	}
}

func testAttachmentSet(samples driver.SampleCount) AttachmentSet {
	return AttachmentSet{
		ColorFormat: driver.FormatB8G8R8A8SRGB,
		DepthFormat: driver.FormatD32SFloat,
		Samples:     samples,
		FinalLayout: driver.LayoutPresentSrc,
	}
}

// loadOpTable returns the color and depth load ops of each pass.
func loadOpTable(t *testing.T, d *drivertest.Driver, rc *RenderPassCache) [ClearModesN][2]driver.LoadOp {
	t.Helper()
	var tbl [ClearModesN][2]driver.LoadOp
	for mode := range ClearModesN {
		info := d.RenderPasses[rc.Get(mode)]
		require.GreaterOrEqual(t, len(info.Attachments), 2)
		tbl[mode] = [2]driver.LoadOp{info.Attachments[0].LoadOp, info.Attachments[1].LoadOp}
	}
	return tbl
}

func TestRenderPassInfo(t *testing.T) {
	set := testAttachmentSet(driver.Samples1)
	info := set.RenderPassInfo(ClearColor)
	require.Len(t, info.Attachments, 2)
	color, depth := info.Attachments[0], info.Attachments[1]
	assert.Equal(t, driver.StoreOpStore, color.StoreOp)
	assert.Equal(t, driver.LayoutPresentSrc, color.FinalLayout)
	assert.Equal(t, driver.StoreOpDontCare, depth.StoreOp)
	assert.Equal(t, driver.LayoutDepthStencilAttachmentOptimal, depth.FinalLayout)
	require.Len(t, info.Subpasses, 1)
	require.NotNil(t, info.Subpasses[0].DepthStencilAttachment)
	assert.Equal(t, uint32(1), info.Subpasses[0].DepthStencilAttachment.Attachment)
	assert.Empty(t, info.Subpasses[0].ResolveAttachments)

	require.Len(t, info.Dependencies, 2)
	for _, dep := range info.Dependencies {
		assert.Equal(t, driver.DependencyByRegion, dep.Flags)
	}
	assert.Equal(t, driver.SubpassExternal, info.Dependencies[0].SrcSubpass)
	assert.Equal(t, driver.AccessShaderRead, info.Dependencies[0].SrcAccess)
	assert.Equal(t, driver.AccessColorAttachmentWrite, info.Dependencies[0].DstAccess)
	assert.Equal(t, driver.SubpassExternal, info.Dependencies[1].DstSubpass)
	assert.Equal(t, driver.AccessColorAttachmentWrite, info.Dependencies[1].SrcAccess)
	assert.Equal(t, driver.AccessShaderRead, info.Dependencies[1].DstAccess)

	set.DepthSampled = true
	info = set.RenderPassInfo(ClearAll)
	assert.Equal(t, driver.StoreOpStore, info.Attachments[1].StoreOp)
	assert.Equal(t, driver.LayoutShaderReadOnlyOptimal, info.Attachments[1].FinalLayout)

	ms := testAttachmentSet(driver.Samples4)
	ms.FinalLayout = driver.LayoutShaderReadOnlyOptimal
	info = ms.RenderPassInfo(ClearNone)
	require.Len(t, info.Attachments, 3)
	assert.Equal(t, 3, ms.AttachmentCount())
	assert.Equal(t, driver.Samples4, info.Attachments[0].Samples)
	assert.Equal(t, driver.LayoutColorAttachmentOptimal, info.Attachments[0].FinalLayout)
	assert.Equal(t, driver.Samples1, info.Attachments[2].Samples)
	assert.Equal(t, driver.LayoutShaderReadOnlyOptimal, info.Attachments[2].FinalLayout)
	require.Len(t, info.Subpasses[0].ResolveAttachments, 1)
	assert.Equal(t, uint32(2), info.Subpasses[0].ResolveAttachments[0].Attachment)

	dup := testAttachmentSet(driver.Samples1)
	dup.ColorFormat = driver.FormatD24UnormS8Uint
	assert.Panics(t, func() { dup.RenderPassInfo(ClearAll) })
}

func TestRenderPassCacheRoundTrip(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	set := testAttachmentSet(driver.Samples1)
	rc, err := NewRenderPassCache(dev, set)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Live("RenderPass"))
	before := loadOpTable(t, d, rc)

	dc, cl := driver.LoadOpDontCare, driver.LoadOpClear
	assert.Equal(t, [ClearModesN][2]driver.LoadOp{{dc, dc}, {cl, dc}, {dc, cl}, {cl, cl}}, before)

	// the same set is a no-op
	rebuilt, err := rc.Rebuild(set)
	require.NoError(t, err)
	assert.False(t, rebuilt)
	assert.Equal(t, 4, d.Created["RenderPass"])

	rc.Release()
	assert.Equal(t, 0, d.Live("RenderPass"))
	rebuilt, err = rc.Rebuild(set)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 4, d.Live("RenderPass"))
	assert.Equal(t, before, loadOpTable(t, d, rc))
	assert.Equal(t, 2, rc.Generation)

	other := set
	other.ColorFormat = driver.FormatB8G8R8A8Unorm
	rebuilt, err = rc.Rebuild(other)
	require.NoError(t, err)
	assert.True(t, rebuilt)
	assert.Equal(t, 3, rc.Generation)
	assert.Equal(t, 4, d.Live("RenderPass"))
	rc.Release()
}

func TestRenderPassCacheMultisample(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	set := testAttachmentSet(driver.Samples4)
	rc, err := NewRenderPassCache(dev, set)
	require.NoError(t, err)
	defer rc.Release()

	all := d.RenderPasses[rc.Get(ClearAll)]
	for mode := range ClearModesN {
		assert.Equal(t, all, d.RenderPasses[rc.Get(mode)], mode.String())
	}
	cl := driver.LoadOpClear
	for _, ops := range loadOpTable(t, d, rc) {
		assert.Equal(t, [2]driver.LoadOp{cl, cl}, ops)
	}
}

func TestRenderPassCreationFailure(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	d.FailCreate["RenderPass"] = driver.ErrorOutOfHostMemory.Err()
	_, err = NewRenderPassCache(dev, testAttachmentSet(driver.Samples1))
	assert.ErrorIs(t, err, ErrRenderPassCreation)
	assert.Equal(t, 0, d.Live("RenderPass"))
}
