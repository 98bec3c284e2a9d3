// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// Init initializes glfw and loads vulkan through it.
// It must be called on the main thread before creating a [Driver].
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Log(err)
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	return errors.Log(vk.Init())
}

// Terminate shuts down glfw. It must be called on the main thread.
func Terminate() {
	glfw.Terminate()
}

// RequiredInstanceExtensions returns the instance extensions
// needed to present to glfw windows.
func RequiredInstanceExtensions(win *glfw.Window) []string {
	return win.GetRequiredInstanceExtensions()
}

// CreateSurface creates a presentation surface for a glfw window.
func (d *Driver) CreateSurface(ih driver.Instance, win *glfw.Window) (driver.Surface, error) {
	addr, err := win.CreateWindowSurface(d.Instance(ih), nil)
	if err != nil {
		return 0, err
	}
	return d.AddSurface(vk.SurfaceFromPointer(addr)), nil
}
