// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/gpu/driver"
	"github.com/stretchr/testify/assert"
)

func TestHandleTable(t *testing.T) {
	d := New()
	assert.Equal(t, "vulkan", d.Name())

	h := d.put(uint32(7))
	assert.NotZero(t, h)
	assert.Equal(t, uint32(7), get[uint32](d, h))
	assert.Equal(t, "", get[string](d, h), "wrong type gives the null object")
	assert.Equal(t, uint32(0), get[uint32](d, 0))

	h2 := d.put(uint32(9))
	assert.Equal(t, []uint32{9, 7, 0}, getAll[uint32](d, []driver.Image{driver.Image(h2), driver.Image(h), 0}))

	assert.True(t, d.drop(h))
	assert.False(t, d.drop(h))
	assert.Equal(t, uint32(0), get[uint32](d, h))
}

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, "main\x00", safeString("main\x00"))
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b\x00"}))
}

func TestAvailable(t *testing.T) {
	have := []string{driver.SurfaceExtension, driver.DebugReportExtension}
	act := available("extension", []string{driver.SurfaceExtension, "VK_missing"}, have)
	assert.Equal(t, []string{driver.SurfaceExtension + "\x00"}, act)
}

func TestBytecode(t *testing.T) {
	code := bytecode([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, code)
}

func TestResult(t *testing.T) {
	assert.NoError(t, check(vk.Success))
	assert.ErrorIs(t, check(vk.ErrorOutOfDate), driver.ErrOutOfDate)
	assert.ErrorIs(t, check(vk.ErrorDeviceLost), driver.ErrDeviceLost)
	assert.Equal(t, driver.Suboptimal, result(vk.Suboptimal))
}

func TestNullHandles(t *testing.T) {
	d := New()
	// destroying null or unknown handles does not reach vulkan
	d.DestroyFence(0, 0)
	d.DestroyImage(0, 42)
	d.DestroySwapchain(0, 0)
	assert.Empty(t, d.objects)
}
