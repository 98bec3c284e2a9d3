// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import "github.com/hogletgames/genesis/base/errors"

// Construction errors. They are returned from the function that
// failed, wrapped with details, and are fatal for the object being
// constructed.
var (
	// ErrNoSuitableDevice means that no physical device has the
	// queue families, extensions and features the renderer needs.
	ErrNoSuitableDevice = errors.New("gpu: no suitable device")

	// ErrAllocationFailed means that a GPU object or its memory
	// could not be allocated.
	ErrAllocationFailed = errors.New("gpu: allocation failed")

	// ErrRenderPassCreation means that a render pass variant could
	// not be created.
	ErrRenderPassCreation = errors.New("gpu: render pass creation failed")

	// ErrNoFormat means that none of the candidate formats is supported.
	ErrNoFormat = errors.New("gpu: no supported format")
)

// Per-frame errors. They are handled inside the swapchain and window
// target by scheduling a recreation; callers only see a skipped frame.
var (
	ErrSwapchainOutOfDate  = errors.New("gpu: swapchain out of date")
	ErrSwapchainSuboptimal = errors.New("gpu: swapchain suboptimal")
)

// Contract errors. These are raised as panics: they indicate a bug in
// the caller, not a state to recover from.
var (
	ErrUnsupportedLayoutTransition = errors.New("gpu: unsupported layout transition")
	ErrDuplicateDepthAttachment    = errors.New("gpu: duplicate depth attachment")
	ErrNotRecording                = errors.New("gpu: no frame is being recorded")
)
