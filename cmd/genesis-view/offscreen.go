// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/config"
	"github.com/hogletgames/genesis/gpu"
	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/hogletgames/genesis/gpu/driver/vkdriver"
	"github.com/spf13/cobra"
)

// parseSize parses a WxH size.
func parseSize(s string) (image.Point, error) {
	var sz image.Point
	if _, err := fmt.Sscanf(s, "%dx%d", &sz.X, &sz.Y); err != nil || sz.X <= 0 || sz.Y <= 0 {
		return sz, fmt.Errorf("invalid size %q: want WxH", s)
	}
	return sz, nil
}

// newHeadlessContext loads vulkan without a window system
// and creates a graphics context.
func newHeadlessContext(cf *config.Config) (*gpu.GraphicsContext, error) {
	if err := vkdriver.InitHeadless(); err != nil {
		return nil, err
	}
	return gpu.NewGraphicsContext(vkdriver.New(), "genesis-view", nil, cf.Render.GPU())
}

func newOffscreenCmd(cf *config.Config, opts *options) *cobra.Command {
	var size string
	var samples int
	cmd := &cobra.Command{
		Use:   "offscreen",
		Short: "Render frames to an offscreen target",
		RunE: func(cmd *cobra.Command, args []string) error {
			sz, err := parseSize(size)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("samples") {
				cf.Render.SampleCount = samples
			}
			return errors.Log(runOffscreen(cf, sz, max(opts.frames, 1)))
		},
	}
	cmd.Flags().StringVar(&size, "size", "1024x768", "size of the target as WxH")
	cmd.Flags().IntVar(&samples, "samples", 1, "samples per pixel")
	return cmd
}

func runOffscreen(cf *config.Config, size image.Point, frames int) error {
	gc, err := newHeadlessContext(cf)
	if err != nil {
		return err
	}
	defer gc.Release()
	fr, err := gpu.NewOffscreenRenderer(gc, size, driver.FormatR8G8B8A8SRGB)
	if err != nil {
		return err
	}
	defer fr.Release()

	for range frames {
		if !fr.BeginFrame(gpu.ClearAll) {
			continue
		}
		if err := fr.EndFrame(); err != nil {
			return err
		}
		fr.SwapBuffers()
	}
	ot := fr.Target.(*gpu.OffscreenTarget)
	img := ot.ColorImage()
	st := fr.Stats()
	slog.Info("genesis-view: rendered offscreen", "frames", st.Frames, "skipped", st.Skipped,
		"size", img.Size, "samples", ot.AttachmentSet().Samples, "layout", img.Layout)
	return nil
}
