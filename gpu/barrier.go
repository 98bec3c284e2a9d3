// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"github.com/hogletgames/genesis/gpu/driver"
)

// Transition is the memory dependency of an image layout transition:
// the accesses and stages that must complete before the new layout
// is used, and the accesses and stages that wait for it.
type Transition struct {
	SrcAccess driver.AccessFlags
	DstAccess driver.AccessFlags
	SrcStage  driver.PipelineStageFlags
	DstStage  driver.PipelineStageFlags
}

type layoutPair struct {
	from, to driver.ImageLayout
}

// transitions is the table of legal layout transitions. Depth
// attachments use the combined depth/stencil layout for both the
// depth-only and depth/stencil cases.
var transitions = map[layoutPair]Transition{
	{driver.LayoutUndefined, driver.LayoutTransferDstOptimal}: {
		DstAccess: driver.AccessTransferWrite,
		SrcStage:  driver.StageTopOfPipe,
		DstStage:  driver.StageTransfer,
	},
	{driver.LayoutUndefined, driver.LayoutDepthStencilAttachmentOptimal}: {
		DstAccess: driver.AccessDepthStencilAttachmentRead | driver.AccessDepthStencilAttachmentWrite,
		SrcStage:  driver.StageTopOfPipe,
		DstStage:  driver.StageEarlyFragmentTests,
	},
	{driver.LayoutUndefined, driver.LayoutGeneral}: {
		DstAccess: driver.AccessShaderRead | driver.AccessShaderWrite,
		SrcStage:  driver.StageTopOfPipe,
		DstStage:  driver.StageFragmentShader | driver.StageComputeShader,
	},
	{driver.LayoutGeneral, driver.LayoutTransferDstOptimal}: {
		SrcAccess: driver.AccessShaderRead,
		DstAccess: driver.AccessTransferWrite,
		SrcStage:  driver.StageFragmentShader | driver.StageComputeShader,
		DstStage:  driver.StageTransfer,
	},
	{driver.LayoutGeneral, driver.LayoutShaderReadOnlyOptimal}: {
		SrcAccess: driver.AccessShaderWrite,
		DstAccess: driver.AccessShaderRead,
		SrcStage:  driver.StageComputeShader,
		DstStage:  driver.StageFragmentShader,
	},
	{driver.LayoutTransferSrcOptimal, driver.LayoutShaderReadOnlyOptimal}: {
		SrcAccess: driver.AccessTransferRead,
		DstAccess: driver.AccessShaderRead,
		SrcStage:  driver.StageTransfer,
		DstStage:  driver.StageFragmentShader,
	},
	{driver.LayoutTransferDstOptimal, driver.LayoutShaderReadOnlyOptimal}: {
		SrcAccess: driver.AccessTransferWrite,
		DstAccess: driver.AccessShaderRead,
		SrcStage:  driver.StageTransfer,
		DstStage:  driver.StageFragmentShader,
	},
	{driver.LayoutTransferDstOptimal, driver.LayoutGeneral}: {
		SrcAccess: driver.AccessTransferWrite,
		DstAccess: driver.AccessMemoryRead,
		SrcStage:  driver.StageTransfer,
		DstStage:  driver.StageFragmentShader | driver.StageComputeShader,
	},
	{driver.LayoutDepthStencilAttachmentOptimal, driver.LayoutShaderReadOnlyOptimal}: {
		SrcAccess: driver.AccessDepthStencilAttachmentWrite,
		DstAccess: driver.AccessShaderRead,
		SrcStage:  driver.StageLateFragmentTests,
		DstStage:  driver.StageFragmentShader,
	},
	{driver.LayoutShaderReadOnlyOptimal, driver.LayoutTransferSrcOptimal}: {
		SrcAccess: driver.AccessShaderRead,
		DstAccess: driver.AccessTransferRead,
		SrcStage:  driver.StageFragmentShader,
		DstStage:  driver.StageTransfer,
	},
}

// PlanTransition returns the memory dependency for transitioning an
// image between the given layouts, or an error wrapping
// [ErrUnsupportedLayoutTransition] if the pair is not in the table.
// There is no default: an unlisted pair is always a caller bug.
func PlanTransition(from, to driver.ImageLayout) (Transition, error) {
	tr, ok := transitions[layoutPair{from, to}]
	if !ok {
		return Transition{}, fmt.Errorf("%w: %v to %v", ErrUnsupportedLayoutTransition, from, to)
	}
	return tr, nil
}

// AspectMask returns the aspects of an image of the given format.
func AspectMask(format driver.Format) driver.ImageAspectFlags {
	switch {
	case format.IsDepth() && format.HasStencil():
		return driver.AspectDepth | driver.AspectStencil
	case format.IsDepth():
		return driver.AspectDepth
	default:
		return driver.AspectColor
	}
}

// CmdTransitionImage records a barrier transitioning all mips and
// layers of img between the given layouts. An illegal transition panics.
func CmdTransitionImage(drv driver.Driver, cb driver.CommandBuffer, img driver.Image, format driver.Format, mips, layers uint32, from, to driver.ImageLayout) {
	tr, err := PlanTransition(from, to)
	if err != nil {
		panic(err)
	}
	drv.CmdPipelineBarrier(cb, tr.SrcStage, tr.DstStage, []driver.ImageMemoryBarrier{{
		SrcAccess:  tr.SrcAccess,
		DstAccess:  tr.DstAccess,
		OldLayout:  from,
		NewLayout:  to,
		Image:      img,
		Aspect:     AspectMask(format),
		MipLevels:  mips,
		LayerCount: layers,
	}})
}
