// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package system provides the desktop window layer for the renderer.
// It initializes glfw and the Vulkan driver, creates windows with a
// [gpu.FrameRenderer] each, and delivers framebuffer size changes to
// them as [gpu.SurfaceEvent]s.
//
// All functions in this package must be called on the main thread.
package system

import (
	"log/slog"
	"slices"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu"
	"github.com/hogletgames/genesis/gpu/driver/vkdriver"
)

// App owns the graphics context and the open windows.
type App struct {

	// name of the application, passed to the driver instance
	Name string

	// vulkan driver
	Driver *vkdriver.Driver

	// graphics context shared by all windows
	GPU *gpu.GraphicsContext

	// open windows
	Windows []*Window

	// hidden window used to query the required instance extensions
	shareWin *glfw.Window
}

// NewApp initializes glfw and vulkan and creates the graphics context.
// If cfg is nil, [gpu.DefaultConfig] is used.
func NewApp(name string, cfg *gpu.Config) (*App, error) {
	if err := vkdriver.Init(); err != nil {
		return nil, err
	}
	a := &App{Name: name, Driver: vkdriver.New()}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)
	var err error
	a.shareWin, err = glfw.CreateWindow(16, 16, "Share Window", nil, nil)
	if err != nil {
		vkdriver.Terminate()
		return nil, err
	}
	exts := vkdriver.RequiredInstanceExtensions(a.shareWin)
	a.GPU, err = gpu.NewGraphicsContext(a.Driver, name, exts, cfg)
	if err != nil {
		a.shareWin.Destroy()
		vkdriver.Terminate()
		return nil, err
	}
	return a, nil
}

// NewWindow opens a window and creates its surface and renderer.
func (a *App) NewWindow(opts *WindowOptions) (*Window, error) {
	if opts == nil {
		opts = &WindowOptions{}
	}
	opts.Fixup()
	glw, err := newGlfwWindow(opts)
	if err != nil {
		return nil, err
	}
	w := &Window{App: a, Title: opts.Title, glw: glw}
	surf, err := a.Driver.CreateSurface(a.GPU.Instance, glw)
	if err != nil {
		glw.Destroy()
		return nil, err
	}
	w.Renderer, err = gpu.NewWindowRenderer(a.GPU, surf, w)
	if err != nil {
		glw.Destroy()
		return nil, err
	}
	glw.SetFramebufferSizeCallback(w.fbResized)
	glw.Show()
	a.Windows = append(a.Windows, w)
	slog.Info("system: opened window", "title", opts.Title, "size", w.FramebufferSize())
	return w, nil
}

// removeWindow forgets a closed window.
func (a *App) removeWindow(w *Window) {
	if i := slices.Index(a.Windows, w); i >= 0 {
		a.Windows = slices.Delete(a.Windows, i, i+1)
	}
}

// PollEvents processes pending window events, which may call the
// framebuffer size callbacks of the windows.
func (a *App) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents blocks until at least one window event arrives,
// for example while every window is minimized.
func (a *App) WaitEvents() {
	glfw.WaitEvents()
}

// Quit closes all windows, releases the graphics context and
// terminates glfw.
func (a *App) Quit() {
	for len(a.Windows) > 0 {
		a.Windows[len(a.Windows)-1].Close()
	}
	if a.GPU != nil {
		a.GPU.Release()
		a.GPU = nil
	}
	if a.shareWin != nil {
		a.shareWin.Destroy()
		a.shareWin = nil
	}
	vkdriver.Terminate()
}

// Devices returns a description of each physical device and whether
// it is suitable for offscreen rendering.
func (a *App) Devices() []gpu.DeviceInfo {
	return errors.Log1(gpu.ListDevices(a.GPU.Driver, a.GPU.Instance))
}
