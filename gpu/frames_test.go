// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSynchronizer(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	fs, err := NewFrameSynchronizer(dev, 2, true)
	require.NoError(t, err)
	fs.ResetImages(3)
	assert.Equal(t, 2, d.Live("Fence"))
	assert.Equal(t, 4, d.Live("Semaphore"))

	// slot 0 renders to image 1
	require.NoError(t, fs.Wait())
	require.NoError(t, fs.WaitImage(1))
	_, err = fs.Begin()
	require.NoError(t, err)
	require.NoError(t, fs.End())
	require.NoError(t, fs.Submit(dev.GraphicsQueue))
	slot0 := fs.Slot().InFlight
	fs.Advance()
	assert.Equal(t, 1, d.InFlight())

	// slot 1 gets image 1 too and must wait for slot 0
	require.NoError(t, fs.Wait())
	require.NoError(t, fs.WaitImage(1))
	assert.Equal(t, 0, d.InFlight())
	assert.Equal(t, fs.Slot().InFlight, fs.ImageFences[1])
	assert.NotEqual(t, slot0, fs.ImageFences[1])

	require.NoError(t, fs.WaitAll())
	require.NoError(t, dev.WaitIdle())
	fs.Release()
	assert.Equal(t, 0, d.Live("Fence"))
	assert.Equal(t, 0, d.Live("Semaphore"))
	assert.Equal(t, 0, d.Live("CommandBuffer"))
	assert.Empty(t, d.Violations)
}

func TestFrameSubmitFailure(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	fs, err := NewFrameSynchronizer(dev, 2, false)
	require.NoError(t, err)
	defer fs.Release()
	fs.ResetImages(1)

	require.NoError(t, fs.Wait())
	require.NoError(t, fs.WaitImage(0))
	old := fs.Slot().InFlight
	_, err = fs.Begin()
	require.NoError(t, err)
	require.NoError(t, fs.End())

	d.SubmitErrors = []error{driver.ErrorDeviceLost.Err()}
	assert.ErrorIs(t, fs.Submit(dev.GraphicsQueue), driver.ErrDeviceLost)

	// the slot gets a signaled fence and can be waited on again
	assert.NotEqual(t, old, fs.Slot().InFlight)
	assert.Equal(t, fs.Slot().InFlight, fs.ImageFences[0])
	assert.Equal(t, 2, d.Live("Fence"))
	require.NoError(t, fs.Wait())

	_, err = fs.Begin()
	require.NoError(t, err)
	require.NoError(t, fs.End())
	require.NoError(t, fs.Submit(dev.GraphicsQueue))
	require.NoError(t, fs.WaitAll())
	assert.Empty(t, d.Violations)
}

func TestConfigSampleCount(t *testing.T) {
	supported := driver.Samples1 | driver.Samples2 | driver.Samples4
	tests := []struct {
		samples int
		want    driver.SampleCount
	}{
		{0, driver.Samples1},
		{1, driver.Samples1},
		{2, driver.Samples2},
		{3, driver.Samples2},
		{8, driver.Samples4},
		{64, driver.Samples4},
	}
	for _, tt := range tests {
		cfg := &Config{Samples: tt.samples}
		assert.Equal(t, tt.want, cfg.SampleCount(supported), "samples %d", tt.samples)
	}

	assert.Equal(t, 1, (&Config{FramesInFlight: 0}).frames())
	assert.Equal(t, MaxFramesInFlight, (&Config{FramesInFlight: 9}).frames())
}
