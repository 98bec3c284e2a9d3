// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"testing"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/hogletgames/genesis/gpu/driver/drivertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectsFirstSuitableDevice(t *testing.T) {
	noSwapchain := drivertest.GoodDevice("no swapchain")
	noSwapchain.Extensions = nil
	good := drivertest.GoodDevice("good")
	d := drivertest.New(noSwapchain, good)

	gc, err := NewGraphicsContext(d, "test", nil, nil)
	require.NoError(t, err)
	dev, err := gc.InitDevice(drivertest.Surface)
	require.NoError(t, err)
	assert.Equal(t, "good", dev.Properties.Name)
	gc.Release()
	assert.Equal(t, 0, d.Live("Device"))
	assert.Equal(t, 0, d.Live("CommandPool"))
}

func TestDeviceRequirements(t *testing.T) {
	noGraphics := drivertest.GoodDevice("compute only")
	noGraphics.Families[0].Flags = driver.QueueCompute
	noPresent := drivertest.GoodDevice("no present")
	noPresent.PresentFamilies = nil
	noFeatures := drivertest.GoodDevice("no features")
	noFeatures.Features.SampleRateShading = false

	for _, pd := range []*drivertest.PhysicalDevice{noGraphics, noPresent, noFeatures} {
		d := drivertest.New(pd)
		_, err := NewDevice(d, 1, drivertest.Surface, DefaultRequirements(true))
		assert.ErrorIs(t, err, ErrNoSuitableDevice, pd.Properties.Name)
	}

	// presenting is only required with a surface
	d := drivertest.New(noPresent)
	dev, err := NewDevice(d, 1, 0, DefaultRequirements(false))
	require.NoError(t, err)
	assert.Equal(t, -1, dev.Families.Present)
	dev.Release()
}

func TestQueueFamilies(t *testing.T) {
	pd := drivertest.GoodDevice("split")
	pd.Families = []driver.QueueFamilyProperties{
		{Flags: driver.QueueTransfer, Count: 1},
		{Flags: driver.QueueGraphics | driver.QueueCompute, Count: 1},
		{Flags: driver.QueueGraphics, Count: 1},
	}
	pd.PresentFamilies = []uint32{2}
	d := drivertest.New(pd)
	dev, err := NewDevice(d, 1, drivertest.Surface, DefaultRequirements(true))
	require.NoError(t, err)
	defer dev.Release()

	assert.Equal(t, QueueFamilies{Graphics: 1, Present: 2, Transfer: 0, Compute: 1}, dev.Families)
	assert.Equal(t, []uint32{1, 2, 0}, dev.Families.Unique())
	require.Len(t, d.DeviceInfos, 1)
	info := d.DeviceInfos[0]
	assert.Len(t, info.Queues, 3)
	for _, q := range info.Queues {
		assert.Equal(t, []float32{1.0}, q.Priorities)
	}
	assert.True(t, info.Features.SamplerAnisotropy)
	assert.Contains(t, info.Extensions, driver.SwapchainExtension)
}

func TestDeviceFormats(t *testing.T) {
	d, gc := newTestContext(t, nil)
	dev, err := gc.InitDevice(0)
	require.NoError(t, err)
	defer gc.Release()

	depth, err := dev.FindDepthFormat()
	require.NoError(t, err)
	assert.Equal(t, driver.FormatD32SFloat, depth)

	delete(d.Devices[0].Formats, driver.FormatD32SFloat)
	depth, err = dev.FindDepthFormat()
	require.NoError(t, err)
	assert.Equal(t, driver.FormatD24UnormS8Uint, depth)

	delete(d.Devices[0].Formats, driver.FormatD24UnormS8Uint)
	_, err = dev.FindDepthFormat()
	assert.ErrorIs(t, err, ErrNoFormat)

	assert.Equal(t, driver.Samples8, dev.MaxUsableSampleCount())

	mt, err := dev.FindMemoryType(0b11, driver.MemoryDeviceLocal)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), mt)
	_, err = dev.FindMemoryType(0b01, driver.MemoryDeviceLocal)
	assert.ErrorIs(t, err, ErrAllocationFailed)
}

func TestValidationContext(t *testing.T) {
	d := drivertest.New(drivertest.GoodDevice("fake"))
	cfg := DefaultConfig()
	cfg.Validation = true
	gc, err := NewGraphicsContext(d, "test", []string{driver.SurfaceExtension}, cfg)
	require.NoError(t, err)
	defer gc.Release()
	require.NotNil(t, d.DebugCallback)
	assert.NotPanics(t, func() {
		d.DebugCallback(driver.DebugError, "bad thing")
		d.DebugCallback(driver.DebugInformation, "fyi")
	})

	d.FailCreate["Instance"] = errors.New("no driver")
	_, err = NewGraphicsContext(d, "test", nil, nil)
	assert.Error(t, err)
}

func TestListDevices(t *testing.T) {
	noFeatures := drivertest.GoodDevice("no features")
	noFeatures.Features.SamplerAnisotropy = false
	d := drivertest.New(noFeatures, drivertest.GoodDevice("good"))
	gc, err := NewGraphicsContext(d, "test", nil, nil)
	require.NoError(t, err)
	defer gc.Release()

	infos, err := ListDevices(d, gc.Instance)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "no features", infos[0].Properties.Name)
	assert.Error(t, infos[0].Reason)
	assert.Equal(t, "good", infos[1].Properties.Name)
	assert.NoError(t, infos[1].Reason)
	assert.Equal(t, 0, infos[1].Families.Graphics)
}
