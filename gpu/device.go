// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"
	"math/bits"
	"slices"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// QueueFamilies holds the queue family index chosen for each role,
// or -1 when no family was found. Roles may share a family.
type QueueFamilies struct {
	Graphics int
	Present  int
	Transfer int
	Compute  int
}

func (qf *QueueFamilies) complete(present bool) bool {
	return qf.Graphics >= 0 && qf.Transfer >= 0 && qf.Compute >= 0 && (!present || qf.Present >= 0)
}

// Unique returns the distinct family indices in use, in role order.
func (qf *QueueFamilies) Unique() []uint32 {
	var fams []uint32
	for _, f := range []int{qf.Graphics, qf.Present, qf.Transfer, qf.Compute} {
		if f >= 0 && !slices.Contains(fams, uint32(f)) {
			fams = append(fams, uint32(f))
		}
	}
	return fams
}

// FindQueueFamilies picks, independently for each role, the first
// family that satisfies it. The search stops as soon as every role
// is filled. Transfer and compute fall back to the graphics family,
// which implicitly supports both.
func FindQueueFamilies(drv driver.Driver, pd driver.PhysicalDevice, surface driver.Surface) (QueueFamilies, error) {
	qf := QueueFamilies{Graphics: -1, Present: -1, Transfer: -1, Compute: -1}
	present := surface != 0
	for i, fam := range drv.QueueFamilyProperties(pd) {
		if fam.Count == 0 {
			continue
		}
		if qf.Graphics < 0 && fam.Flags&driver.QueueGraphics != 0 {
			qf.Graphics = i
		}
		if qf.Transfer < 0 && fam.Flags&driver.QueueTransfer != 0 {
			qf.Transfer = i
		}
		if qf.Compute < 0 && fam.Flags&driver.QueueCompute != 0 {
			qf.Compute = i
		}
		if present && qf.Present < 0 {
			ok, err := drv.SurfaceSupport(pd, uint32(i), surface)
			if err != nil {
				return qf, fmt.Errorf("querying present support: %w", err)
			}
			if ok {
				qf.Present = i
			}
		}
		if qf.complete(present) {
			break
		}
	}
	if qf.Transfer < 0 {
		qf.Transfer = qf.Graphics
	}
	if qf.Compute < 0 {
		qf.Compute = qf.Graphics
	}
	return qf, nil
}

// Requirements are what a physical device must offer to be selected.
type Requirements struct {

	// device extensions that must all be present
	Extensions []string

	// features that must all be supported; they are enabled on the device
	Features driver.DeviceFeatures
}

// DefaultRequirements returns the renderer's requirements; presenting
// devices additionally need the swapchain extension.
func DefaultRequirements(present bool) Requirements {
	req := Requirements{
		Features: driver.DeviceFeatures{
			SamplerAnisotropy: true,
			SampleRateShading: true,
			IndependentBlend:  true,
		},
	}
	if present {
		req.Extensions = []string{driver.SwapchainExtension}
	}
	return req
}

// CheckPhysicalDevice returns the queue families of pd and a nil error
// if pd is suitable, or an error naming the first unmet requirement.
func CheckPhysicalDevice(drv driver.Driver, pd driver.PhysicalDevice, surface driver.Surface, req Requirements) (QueueFamilies, error) {
	qf, err := FindQueueFamilies(drv, pd, surface)
	if err != nil {
		return qf, err
	}
	if qf.Graphics < 0 {
		return qf, errors.New("no graphics queue family")
	}
	if surface != 0 && qf.Present < 0 {
		return qf, errors.New("no present queue family")
	}
	exts, err := drv.DeviceExtensions(pd)
	if err != nil {
		return qf, fmt.Errorf("listing extensions: %w", err)
	}
	for _, ext := range req.Extensions {
		if !slices.Contains(exts, ext) {
			return qf, fmt.Errorf("missing extension %s", ext)
		}
	}
	if !drv.PhysicalDeviceFeatures(pd).Satisfies(req.Features) {
		return qf, errors.New("missing required features")
	}
	if surface != 0 {
		formats, err := drv.SurfaceFormats(pd, surface)
		if err != nil {
			return qf, fmt.Errorf("querying surface formats: %w", err)
		}
		modes, err := drv.SurfacePresentModes(pd, surface)
		if err != nil {
			return qf, fmt.Errorf("querying present modes: %w", err)
		}
		if len(formats) == 0 || len(modes) == 0 {
			return qf, errors.New("surface has no formats or present modes")
		}
	}
	return qf, nil
}

// DeviceInfo describes a physical device and its suitability
// for offscreen rendering.
type DeviceInfo struct {
	Properties driver.PhysicalDeviceProperties
	Families   QueueFamilies

	// unmet requirement, or nil if the device is suitable
	Reason error
}

// ListDevices describes every physical device of inst.
func ListDevices(drv driver.Driver, inst driver.Instance) ([]DeviceInfo, error) {
	pds, err := drv.EnumeratePhysicalDevices(inst)
	if err != nil {
		return nil, fmt.Errorf("gpu: enumerating devices: %w", err)
	}
	infos := make([]DeviceInfo, len(pds))
	for i, pd := range pds {
		qf, err := CheckPhysicalDevice(drv, pd, 0, DefaultRequirements(false))
		infos[i] = DeviceInfo{Properties: drv.PhysicalDeviceProperties(pd), Families: qf, Reason: err}
	}
	return infos, nil
}

// Device is the logical device together with its queues and the
// command pool used for all command buffers. It is owned by the
// [GraphicsContext]; everything created from it must be released
// before [Device.Release].
type Device struct {

	// backend
	Driver driver.Driver

	// selected physical device
	Physical driver.PhysicalDevice

	// logical device
	Handle driver.Device

	// properties of the physical device
	Properties driver.PhysicalDeviceProperties

	// memory types of the physical device
	Memory driver.MemoryProperties

	// queue families by role
	Families QueueFamilies

	GraphicsQueue driver.Queue
	PresentQueue  driver.Queue
	TransferQueue driver.Queue
	ComputeQueue  driver.Queue

	// command pool on the graphics family; not safe for concurrent use
	CmdPool driver.CommandPool
}

// NewDevice selects the first physical device that satisfies req
// (and can present to surface, if non-null) and creates the logical
// device with one queue per distinct family at priority 1.0.
func NewDevice(drv driver.Driver, inst driver.Instance, surface driver.Surface, req Requirements) (*Device, error) {
	pds, err := drv.EnumeratePhysicalDevices(inst)
	if err != nil {
		return nil, fmt.Errorf("gpu: enumerating devices: %w", err)
	}
	for _, pd := range pds {
		props := drv.PhysicalDeviceProperties(pd)
		qf, err := CheckPhysicalDevice(drv, pd, surface, req)
		if err != nil {
			slog.Debug("gpu: skipping device", "device", props.Name, "reason", err)
			continue
		}
		dv := &Device{Driver: drv, Physical: pd, Properties: props, Families: qf}
		if err := dv.init(req); err != nil {
			return nil, err
		}
		slog.Info("gpu: selected device", "device", props.Name, "type", props.Type, "graphics", qf.Graphics, "present", qf.Present)
		return dv, nil
	}
	return nil, fmt.Errorf("%w: none of %d devices qualify", ErrNoSuitableDevice, len(pds))
}

func (dv *Device) init(req Requirements) error {
	drv := dv.Driver
	info := &driver.DeviceCreateInfo{
		PhysicalDevice: dv.Physical,
		Extensions:     req.Extensions,
		Features:       req.Features,
	}
	for _, fam := range dv.Families.Unique() {
		info.Queues = append(info.Queues, driver.QueueCreateInfo{Family: fam, Priorities: []float32{1.0}})
	}
	var err error
	dv.Handle, err = drv.CreateDevice(info)
	if err != nil {
		return fmt.Errorf("gpu: creating device: %w", err)
	}
	queue := func(fam int) driver.Queue {
		if fam < 0 {
			return 0
		}
		return drv.DeviceQueue(dv.Handle, uint32(fam), 0)
	}
	dv.GraphicsQueue = queue(dv.Families.Graphics)
	dv.PresentQueue = queue(dv.Families.Present)
	dv.TransferQueue = queue(dv.Families.Transfer)
	dv.ComputeQueue = queue(dv.Families.Compute)
	dv.Memory = drv.MemoryProperties(dv.Physical)

	dv.CmdPool, err = drv.CreateCommandPool(dv.Handle, uint32(dv.Families.Graphics))
	if err != nil {
		drv.DestroyDevice(dv.Handle)
		dv.Handle = 0
		return fmt.Errorf("%w: command pool: %w", ErrAllocationFailed, err)
	}
	return nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (dv *Device) WaitIdle() error {
	return dv.Driver.DeviceWaitIdle(dv.Handle)
}

// Release waits for the device to go idle and destroys it.
// Failing to reach idle is unrecoverable and panics.
func (dv *Device) Release() {
	if dv.Handle == 0 {
		return
	}
	errors.Must(dv.WaitIdle())
	dv.Driver.DestroyCommandPool(dv.Handle, dv.CmdPool)
	dv.Driver.DestroyDevice(dv.Handle)
	dv.CmdPool = 0
	dv.Handle = 0
}

// FindMemoryType returns the index of the first memory type allowed
// by typeBits that has all of props.
func (dv *Device) FindMemoryType(typeBits uint32, props driver.MemoryPropertyFlags) (uint32, error) {
	for i, mt := range dv.Memory.Types {
		if typeBits&(1<<uint(i)) != 0 && mt.Properties&props == props {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("%w: no memory type for bits %b with properties %x", ErrAllocationFailed, typeBits, props)
}

// FindSupportedFormat returns the first candidate whose tiling supports features.
func (dv *Device) FindSupportedFormat(candidates []driver.Format, tiling driver.ImageTiling, features driver.FormatFeatureFlags) (driver.Format, error) {
	for _, f := range candidates {
		props := dv.Driver.FormatProperties(dv.Physical, f)
		have := props.OptimalTiling
		if tiling == driver.TilingLinear {
			have = props.LinearTiling
		}
		if have&features == features {
			return f, nil
		}
	}
	return driver.FormatUndefined, fmt.Errorf("%w: none of %v", ErrNoFormat, candidates)
}

// FindDepthFormat returns the preferred depth attachment format.
func (dv *Device) FindDepthFormat() (driver.Format, error) {
	return dv.FindSupportedFormat(
		[]driver.Format{driver.FormatD32SFloat, driver.FormatD32SFloatS8Uint, driver.FormatD24UnormS8Uint},
		driver.TilingOptimal, driver.FeatureDepthStencilAttachment)
}

// MaxUsableSampleCount returns the highest sample count supported by
// both color and depth attachments.
func (dv *Device) MaxUsableSampleCount() driver.SampleCount {
	counts := uint32(dv.Properties.FramebufferSamples)
	if counts == 0 {
		return driver.Samples1
	}
	return driver.SampleCount(1 << (31 - bits.LeadingZeros32(counts)))
}

// BeginSingleTimeCommands allocates a command buffer and begins it
// for one submission. Finish it with [Device.EndSingleTimeCommands].
func (dv *Device) BeginSingleTimeCommands() (driver.CommandBuffer, error) {
	cbs, err := dv.Driver.AllocateCommandBuffers(dv.Handle, dv.CmdPool, 1)
	if err != nil {
		return 0, fmt.Errorf("%w: command buffer: %w", ErrAllocationFailed, err)
	}
	cb := cbs[0]
	if err := dv.Driver.BeginCommandBuffer(cb, true); err != nil {
		dv.Driver.FreeCommandBuffers(dv.Handle, dv.CmdPool, cbs)
		return 0, err
	}
	return cb, nil
}

// EndSingleTimeCommands ends cb, submits it to the graphics queue,
// waits for it to complete and frees it.
func (dv *Device) EndSingleTimeCommands(cb driver.CommandBuffer) error {
	defer dv.Driver.FreeCommandBuffers(dv.Handle, dv.CmdPool, []driver.CommandBuffer{cb})
	if err := dv.Driver.EndCommandBuffer(cb); err != nil {
		return err
	}
	err := dv.Driver.QueueSubmit(dv.GraphicsQueue, []driver.SubmitInfo{{CommandBuffers: []driver.CommandBuffer{cb}}}, 0)
	if err != nil {
		return fmt.Errorf("gpu: submitting commands: %w", err)
	}
	return dv.Driver.QueueWaitIdle(dv.GraphicsQueue)
}
