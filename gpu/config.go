// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image/color"

	"github.com/hogletgames/genesis/gpu/driver"
)

// MaxFramesInFlight is the number of frame slots in the ring of every
// render target: the CPU records at most this many frames ahead of the GPU.
const MaxFramesInFlight = 3

// Config holds the render settings consumed by the gpu package.
type Config struct {

	// number of frame slots, between 1 and [MaxFramesInFlight]
	FramesInFlight int

	// number of samples per pixel for offscreen targets; window
	// targets always render with one sample
	Samples int

	// use mailbox presentation when the surface supports it, else FIFO
	PreferMailbox bool

	// whether the depth attachment is read after the render pass,
	// which keeps its contents and makes it shader readable
	DepthSampled bool

	// enables the validation layer and routes its messages to slog
	Validation bool

	// color the color attachment is cleared to
	ClearColor color.RGBA
}

// DefaultConfig returns the default [Config].
func DefaultConfig() *Config {
	return &Config{
		FramesInFlight: MaxFramesInFlight,
		Samples:        1,
		PreferMailbox:  true,
		ClearColor:     color.RGBA{0, 0, 0, 255},
	}
}

// frames returns the sanitized number of frame slots.
func (cf *Config) frames() int {
	return min(max(cf.FramesInFlight, 1), MaxFramesInFlight)
}

// SampleCount returns the configured samples as a [driver.SampleCount],
// rounded down to a power of two and limited to the given supported counts.
func (cf *Config) SampleCount(supported driver.SampleCount) driver.SampleCount {
	sc := driver.Samples1
	for s := driver.Samples64; s > driver.Samples1; s >>= 1 {
		if int(s) <= cf.Samples && supported&s != 0 {
			sc = s
			break
		}
	}
	return sc
}
