// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"

	"github.com/hogletgames/genesis/gpu/driver"
)

// ClearMode selects which attachments are cleared when a render pass begins.
type ClearMode int32

const (
	// ClearNone clears nothing; previous contents are undefined.
	ClearNone ClearMode = iota

	// ClearColor clears only the color attachment.
	ClearColor

	// ClearDepth clears only the depth attachment.
	ClearDepth

	// ClearAll clears both color and depth attachments.
	ClearAll

	// ClearModesN is the number of clear modes.
	ClearModesN
)

func (cm ClearMode) String() string {
	switch cm {
	case ClearNone:
		return "None"
	case ClearColor:
		return "Color"
	case ClearDepth:
		return "Depth"
	case ClearAll:
		return "All"
	}
	return fmt.Sprintf("ClearMode(%d)", int32(cm))
}

// LoadOps returns the color and depth load operations for mode.
// With multisampling every mode clears everything, because the
// resolve needs a full pass.
func LoadOps(mode ClearMode, multisample bool) (color, depth driver.LoadOp) {
	if multisample {
		mode = ClearAll
	}
	color, depth = driver.LoadOpDontCare, driver.LoadOpDontCare
	if mode == ClearColor || mode == ClearAll {
		color = driver.LoadOpClear
	}
	if mode == ClearDepth || mode == ClearAll {
		depth = driver.LoadOpClear
	}
	return
}

// AttachmentSet describes the attachments of a render target.
// Render passes built from equal sets are compatible.
type AttachmentSet struct {

	// format of the color attachment
	ColorFormat driver.Format

	// format of the depth attachment, or [driver.FormatUndefined] for none
	DepthFormat driver.Format

	// samples of the color and depth attachments; with more than one,
	// a single sampled resolve attachment is added
	Samples driver.SampleCount

	// layout the presented or sampled color image ends in
	FinalLayout driver.ImageLayout

	// whether the depth attachment is read after the pass
	DepthSampled bool
}

// Multisample returns whether the set renders with more than one sample.
func (as *AttachmentSet) Multisample() bool {
	return as.Samples > driver.Samples1
}

// HasDepth returns whether the set has a depth attachment.
func (as *AttachmentSet) HasDepth() bool {
	return as.DepthFormat != driver.FormatUndefined
}

// AttachmentCount returns the number of framebuffer attachments:
// color, then depth if any, then resolve if multisampled.
func (as *AttachmentSet) AttachmentCount() int {
	n := 1
	if as.HasDepth() {
		n++
	}
	if as.Multisample() {
		n++
	}
	return n
}

// RenderPassInfo returns the render pass description for mode.
// A depth format in the color slot is a second depth attachment,
// which is a contract violation and panics.
func (as *AttachmentSet) RenderPassInfo(mode ClearMode) *driver.RenderPassCreateInfo {
	if as.ColorFormat.IsDepth() {
		panic(fmt.Errorf("%w: color attachment has format %v", ErrDuplicateDepthAttachment, as.ColorFormat))
	}
	colorLoad, depthLoad := LoadOps(mode, as.Multisample())
	samples := max(as.Samples, driver.Samples1)

	colorFinal := as.FinalLayout
	if as.Multisample() {
		colorFinal = driver.LayoutColorAttachmentOptimal
	}
	info := &driver.RenderPassCreateInfo{}
	info.Attachments = append(info.Attachments, driver.AttachmentDescription{
		Format:         as.ColorFormat,
		Samples:        samples,
		LoadOp:         colorLoad,
		StoreOp:        driver.StoreOpStore,
		StencilLoadOp:  driver.LoadOpDontCare,
		StencilStoreOp: driver.StoreOpDontCare,
		InitialLayout:  driver.LayoutUndefined,
		FinalLayout:    colorFinal,
	})
	sub := driver.SubpassDescription{
		ColorAttachments: []driver.AttachmentReference{{Attachment: 0, Layout: driver.LayoutColorAttachmentOptimal}},
	}
	if as.HasDepth() {
		depthStore := driver.StoreOpDontCare
		depthFinal := driver.LayoutDepthStencilAttachmentOptimal
		if as.DepthSampled {
			depthStore = driver.StoreOpStore
			depthFinal = driver.LayoutShaderReadOnlyOptimal
		}
		info.Attachments = append(info.Attachments, driver.AttachmentDescription{
			Format:         as.DepthFormat,
			Samples:        samples,
			LoadOp:         depthLoad,
			StoreOp:        depthStore,
			StencilLoadOp:  driver.LoadOpDontCare,
			StencilStoreOp: driver.StoreOpDontCare,
			InitialLayout:  driver.LayoutUndefined,
			FinalLayout:    depthFinal,
		})
		sub.DepthStencilAttachment = &driver.AttachmentReference{
			Attachment: uint32(len(info.Attachments) - 1),
			Layout:     driver.LayoutDepthStencilAttachmentOptimal,
		}
	}
	if as.Multisample() {
		info.Attachments = append(info.Attachments, driver.AttachmentDescription{
			Format:         as.ColorFormat,
			Samples:        driver.Samples1,
			LoadOp:         driver.LoadOpDontCare,
			StoreOp:        driver.StoreOpStore,
			StencilLoadOp:  driver.LoadOpDontCare,
			StencilStoreOp: driver.StoreOpDontCare,
			InitialLayout:  driver.LayoutUndefined,
			FinalLayout:    as.FinalLayout,
		})
		sub.ResolveAttachments = []driver.AttachmentReference{{
			Attachment: uint32(len(info.Attachments) - 1),
			Layout:     driver.LayoutColorAttachmentOptimal,
		}}
	}
	info.Subpasses = []driver.SubpassDescription{sub}
	info.Dependencies = []driver.SubpassDependency{
		{
			SrcSubpass: driver.SubpassExternal,
			DstSubpass: 0,
			SrcStage:   driver.StageFragmentShader,
			DstStage:   driver.StageColorAttachmentOutput,
			SrcAccess:  driver.AccessShaderRead,
			DstAccess:  driver.AccessColorAttachmentWrite,
			Flags:      driver.DependencyByRegion,
		},
		{
			SrcSubpass: 0,
			DstSubpass: driver.SubpassExternal,
			SrcStage:   driver.StageColorAttachmentOutput,
			DstStage:   driver.StageFragmentShader,
			SrcAccess:  driver.AccessColorAttachmentWrite,
			DstAccess:  driver.AccessShaderRead,
			Flags:      driver.DependencyByRegion,
		},
	}
	return info
}

// RenderPassCache holds the render pass of every [ClearMode] for one
// [AttachmentSet]. There is exactly one pass per mode; the passes live
// as long as the cache and are rebuilt only when the set changes.
type RenderPassCache struct {

	// device the passes are created on
	Device *Device

	// attachments the passes are built for
	Set AttachmentSet

	// incremented every time the passes are rebuilt, so that
	// pipelines created against an older pass can be recreated
	Generation int

	passes [ClearModesN]driver.RenderPass
}

// NewRenderPassCache builds the passes for every clear mode of set.
func NewRenderPassCache(dev *Device, set AttachmentSet) (*RenderPassCache, error) {
	rc := &RenderPassCache{Device: dev, Set: set}
	if err := rc.build(); err != nil {
		return nil, err
	}
	return rc, nil
}

func (rc *RenderPassCache) build() error {
	for mode := range ClearModesN {
		rp, err := rc.Device.Driver.CreateRenderPass(rc.Device.Handle, rc.Set.RenderPassInfo(mode))
		if err != nil {
			rc.Release()
			return fmt.Errorf("%w: clear mode %v: %w", ErrRenderPassCreation, mode, err)
		}
		rc.passes[mode] = rp
	}
	rc.Generation++
	return nil
}

// Get returns the render pass for mode.
func (rc *RenderPassCache) Get(mode ClearMode) driver.RenderPass {
	return rc.passes[mode]
}

// Rebuild rebuilds the passes for set if it differs from the current
// set, and reports whether it did. Only call it while the device is idle.
func (rc *RenderPassCache) Rebuild(set AttachmentSet) (bool, error) {
	if set == rc.Set && rc.passes[ClearAll] != 0 {
		return false, nil
	}
	slog.Debug("gpu: rebuilding render passes", "color", set.ColorFormat, "depth", set.DepthFormat, "samples", set.Samples)
	rc.Release()
	rc.Set = set
	return true, rc.build()
}

// Release destroys all passes. Only call it while the device is idle.
func (rc *RenderPassCache) Release() {
	for i, rp := range rc.passes {
		if rp != 0 {
			rc.Device.Driver.DestroyRenderPass(rc.Device.Handle, rp)
			rc.passes[i] = 0
		}
	}
}
