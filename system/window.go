// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package system

import (
	"image"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hogletgames/genesis/gpu"
)

// WindowOptions are the options for [App.NewWindow].
type WindowOptions struct {

	// title of the window
	Title string

	// initial size in screen coordinates
	Size image.Point

	// whether the user can resize the window
	Resizable bool
}

// Fixup sets defaults for unset options.
func (o *WindowOptions) Fixup() {
	if o.Title == "" {
		o.Title = "genesis"
	}
	if o.Size.X <= 0 {
		o.Size.X = 800
	}
	if o.Size.Y <= 0 {
		o.Size.Y = 600
	}
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func newGlfwWindow(opts *WindowOptions) (*glfw.Window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(opts.Resizable))
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Focused, glfw.True)
	return glfw.CreateWindow(opts.Size.X, opts.Size.Y, opts.Title, nil, nil)
}

// Window is an OS window with a renderer presenting to it.
// It implements [gpu.Window].
type Window struct {

	// app the window belongs to
	App *App

	// title of the window
	Title string

	// renderer presenting to the window surface
	Renderer *gpu.FrameRenderer

	glw *glfw.Window
}

// FramebufferSize returns the size of the window in pixels,
// which is zero while the window is minimized.
func (w *Window) FramebufferSize() image.Point {
	if w.glw == nil {
		return image.Point{}
	}
	x, y := w.glw.GetFramebufferSize()
	return image.Pt(x, y)
}

// ShouldClose returns whether the user asked to close the window.
func (w *Window) ShouldClose() bool {
	return w.glw == nil || w.glw.ShouldClose()
}

// SetTitle sets the title of the window.
func (w *Window) SetTitle(title string) {
	w.Title = title
	if w.glw != nil {
		w.glw.SetTitle(title)
	}
}

// SetSize requests a new window size in screen coordinates.
// The renderer is told once the framebuffer changes.
func (w *Window) SetSize(size image.Point) {
	if w.glw != nil {
		w.glw.SetSize(size.X, size.Y)
	}
}

func (w *Window) fbResized(gw *glfw.Window, width, height int) {
	slog.Debug("system: framebuffer resized", "window", w.Title, "width", width, "height", height)
	if w.Renderer != nil {
		w.Renderer.OnSurfaceEvent(gpu.SurfaceEvent{Size: image.Pt(width, height)})
	}
}

// Close releases the renderer and destroys the window.
func (w *Window) Close() {
	if w.Renderer != nil {
		w.Renderer.Release()
		w.Renderer = nil
	}
	if w.glw != nil {
		w.glw.Destroy()
		w.glw = nil
	}
	if w.App != nil {
		w.App.removeWindow(w)
	}
}
