// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"
	"testing"

	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/hogletgames/genesis/gpu/driver/drivertest"
	"github.com/stretchr/testify/require"
)

type testWindow struct {
	size image.Point
}

func (w *testWindow) FramebufferSize() image.Point { return w.size }

// newTestContext returns a context on a fake driver with one good device.
func newTestContext(t *testing.T, cfg *Config) (*drivertest.Driver, *GraphicsContext) {
	t.Helper()
	d := drivertest.New(drivertest.GoodDevice("fake"))
	gc, err := NewGraphicsContext(d, "test", nil, cfg)
	require.NoError(t, err)
	return d, gc
}

func newTestWindowTarget(t *testing.T) (*drivertest.Driver, *WindowTarget, *testWindow) {
	t.Helper()
	d, gc := newTestContext(t, nil)
	win := &testWindow{size: image.Pt(800, 600)}
	wt, err := NewWindowTarget(gc, drivertest.Surface, win)
	require.NoError(t, err)
	t.Cleanup(func() {
		wt.Release()
		gc.Release()
	})
	return d, wt, win
}

func newTestOffscreenTarget(t *testing.T, samples int) (*drivertest.Driver, *OffscreenTarget) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Samples = samples
	d, gc := newTestContext(t, cfg)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	ot, err := NewOffscreenTarget(dev, image.Pt(256, 128), driver.FormatR8G8B8A8SRGB, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		ot.Release()
		gc.Release()
	})
	return d, ot
}
