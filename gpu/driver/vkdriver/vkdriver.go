// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vkdriver implements [driver.Driver] on Vulkan through
// github.com/goki/vulkan. Vulkan objects are kept in a handle table
// and referred to by the driver's opaque handles.
//
// [Init] must be called on the main thread before any other use.
package vkdriver

import (
	"log/slog"
	"strings"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// Driver is the Vulkan [driver.Driver].
type Driver struct {

	// vulkan objects by handle
	objects map[uint64]any

	// last handle issued
	next uint64

	// handles of physical devices, stable across enumerations
	physical map[vk.PhysicalDevice]uint64

	// handles of device queues by device, family and index
	queues map[queueKey]uint64

	// image handles of each swapchain
	swapImages map[driver.Swapchain][]driver.Image

	// debug report callback of each instance
	debug map[driver.Instance]vk.DebugReportCallback
}

type queueKey struct {
	dev           driver.Device
	family, index uint32
}

// New returns a new Vulkan driver.
func New() *Driver {
	return &Driver{
		objects:    map[uint64]any{},
		physical:   map[vk.PhysicalDevice]uint64{},
		queues:     map[queueKey]uint64{},
		swapImages: map[driver.Swapchain][]driver.Image{},
		debug:      map[driver.Instance]vk.DebugReportCallback{},
	}
}

// InitHeadless loads the system vulkan library without a window
// system, for offscreen rendering. Use [Init] to present to windows.
func InitHeadless() error {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return errors.Log(err)
	}
	return errors.Log(vk.Init())
}

func (d *Driver) Name() string { return "vulkan" }

// put registers a vulkan object and returns its handle.
func (d *Driver) put(v any) uint64 {
	d.next++
	d.objects[d.next] = v
	return d.next
}

// get returns the vulkan object of a handle, or the null object of
// type T for the null handle and for handles of another type.
func get[T any](d *Driver, h uint64) T {
	v, _ := d.objects[h].(T)
	return v
}

func getAll[T any, H ~uint64](d *Driver, hs []H) []T {
	vs := make([]T, len(hs))
	for i, h := range hs {
		vs[i] = get[T](d, uint64(h))
	}
	return vs
}

// drop forgets a handle and reports whether it was live.
func (d *Driver) drop(h uint64) bool {
	if _, ok := d.objects[h]; !ok {
		return false
	}
	delete(d.objects, h)
	return true
}

// result converts a vulkan result code.
func result(ret vk.Result) driver.Result {
	return driver.Result(ret)
}

// check returns the error for a vulkan result code.
func check(ret vk.Result) error {
	return result(ret).Err()
}

// safeString returns s null terminated, as vulkan expects.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = safeString(s)
	}
	return out
}

// InstanceExtensions returns the names of the available instance extensions.
func InstanceExtensions() ([]string, error) {
	var count uint32
	if err := check(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.ExtensionProperties, count)
	if err := check(vk.EnumerateInstanceExtensionProperties("", &count, list)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, nil
}

// Layers returns the names of the available instance layers.
func Layers() ([]string, error) {
	var count uint32
	if err := check(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	list := make([]vk.LayerProperties, count)
	if err := check(vk.EnumerateInstanceLayerProperties(&count, list)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// available returns the requested names that are in have,
// logging the ones that are missing.
func available(kind string, req, have []string) []string {
	var act []string
	for _, r := range req {
		found := false
		for _, h := range have {
			if h == r {
				found = true
				break
			}
		}
		if found {
			act = append(act, safeString(r))
		} else {
			slog.Warn("vulkan: missing "+kind, "name", r)
		}
	}
	return act
}

func (d *Driver) CreateInstance(info *driver.InstanceCreateInfo) (driver.Instance, error) {
	exts := safeStrings(info.Extensions)
	if have, err := InstanceExtensions(); err == nil {
		exts = available("instance extension", info.Extensions, have)
	}
	layers := safeStrings(info.Layers)
	if have, err := Layers(); err == nil {
		layers = available("layer", info.Layers, have)
	}
	slog.Debug("vulkan: creating instance", "extensions", len(exts), "layers", len(layers))

	var inst vk.Instance
	err := check(vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 2, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(info.AppName),
			PEngineName:        "genesis\x00",
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}, nil, &inst))
	if err != nil {
		return 0, err
	}
	if err := vk.InitInstance(inst); err != nil {
		vk.DestroyInstance(inst, nil)
		return 0, err
	}
	h := driver.Instance(d.put(inst))
	if info.Debug != nil {
		d.setupDebug(h, inst, info.Debug)
	}
	return h, nil
}

func (d *Driver) setupDebug(h driver.Instance, inst vk.Instance, fn func(driver.DebugReportFlags, string)) {
	var cb vk.DebugReportCallback
	ret := vk.CreateDebugReportCallback(inst, &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit | vk.DebugReportWarningBit | vk.DebugReportErrorBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint,
			messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			fn(driver.DebugReportFlags(flags), message)
			return vk.False
		},
	}, nil, &cb)
	if errors.Log(check(ret)) == nil {
		d.debug[h] = cb
	}
}

func (d *Driver) DestroyInstance(h driver.Instance) {
	inst := get[vk.Instance](d, uint64(h))
	if !d.drop(uint64(h)) {
		return
	}
	if cb, ok := d.debug[h]; ok {
		vk.DestroyDebugReportCallback(inst, cb, nil)
		delete(d.debug, h)
	}
	vk.DestroyInstance(inst, nil)
}

// Instance returns the vulkan instance of a handle,
// for window systems that create surfaces.
func (d *Driver) Instance(h driver.Instance) vk.Instance {
	return get[vk.Instance](d, uint64(h))
}

// AddSurface registers a surface created by a window system.
func (d *Driver) AddSurface(s vk.Surface) driver.Surface {
	return driver.Surface(d.put(s))
}

func (d *Driver) DestroySurface(ih driver.Instance, sh driver.Surface) {
	s := get[vk.Surface](d, uint64(sh))
	if !d.drop(uint64(sh)) {
		return
	}
	vk.DestroySurface(get[vk.Instance](d, uint64(ih)), s, nil)
}
