// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu is the frame rendering and presentation core: it selects
// and owns the logical device, manages swapchains and offscreen
// attachments, synchronizes frames in flight with the GPU, caches the
// render pass variants for each clear mode, and plans image layout
// transitions. All GPU access goes through a [driver.Driver].
//
// The package is driven from a single goroutine. The only blocking
// calls on the frame path are the fence waits at the start of a frame.
package gpu

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/hogletgames/genesis/gpu/driver"
)

// GraphicsContext is the root of all GPU state for the process:
// it owns the driver instance and the [Device], and is passed by
// pointer to everything that needs them. It is created once at
// startup and released last.
type GraphicsContext struct {

	// backend all GPU calls go through
	Driver driver.Driver

	// driver instance
	Instance driver.Instance

	// logical device, set by [GraphicsContext.InitDevice]
	Device *Device

	// render settings
	Config *Config
}

// NewGraphicsContext creates the driver instance for the given
// application name, enabling the given instance extensions, which
// typically come from the window system. If cfg is nil, [DefaultConfig]
// is used. With [Config.Validation] set, the validation layer is enabled
// and its messages are logged through slog.
func NewGraphicsContext(drv driver.Driver, appName string, extensions []string, cfg *Config) (*GraphicsContext, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	info := &driver.InstanceCreateInfo{
		AppName:    appName,
		Extensions: slices.Clone(extensions),
	}
	if cfg.Validation {
		info.Layers = append(info.Layers, driver.ValidationLayer)
		info.Extensions = append(info.Extensions, driver.DebugReportExtension)
		info.Debug = logValidation
	}
	inst, err := drv.CreateInstance(info)
	if err != nil {
		return nil, fmt.Errorf("gpu: creating %s instance: %w", drv.Name(), err)
	}
	return &GraphicsContext{Driver: drv, Instance: inst, Config: cfg}, nil
}

func logValidation(flags driver.DebugReportFlags, msg string) {
	switch {
	case flags&driver.DebugError != 0:
		slog.Error("validation", "msg", msg)
	case flags&(driver.DebugWarning|driver.DebugPerformanceWarning) != 0:
		slog.Warn("validation", "msg", msg)
	default:
		slog.Debug("validation", "msg", msg)
	}
}

// InitDevice selects a physical device and creates the logical device.
// If surface is non-null, the device must be able to present to it.
// A failure is fatal: there is no retry with relaxed requirements.
func (gc *GraphicsContext) InitDevice(surface driver.Surface) (*Device, error) {
	dev, err := NewDevice(gc.Driver, gc.Instance, surface, DefaultRequirements(surface != 0))
	if err != nil {
		return nil, err
	}
	gc.Device = dev
	return dev, nil
}

// Release releases the device and then the instance. Every render
// target must have been released before.
func (gc *GraphicsContext) Release() {
	if gc.Device != nil {
		gc.Device.Release()
		gc.Device = nil
	}
	if gc.Instance != 0 {
		gc.Driver.DestroyInstance(gc.Instance)
		gc.Instance = 0
	}
}
