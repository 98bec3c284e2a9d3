// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"github.com/hogletgames/genesis/base/errors"
	"github.com/hogletgames/genesis/gpu/driver"
)

// FrameSlot is the set of objects one frame in flight needs.
type FrameSlot struct {

	// command buffer the frame is recorded into
	Cmd driver.CommandBuffer

	// signaled when the GPU has finished the frame; created signaled
	InFlight driver.Fence

	// signaled when the swapchain image is ready to be rendered to;
	// null for offscreen targets
	ImageAvailable driver.Semaphore

	// signaled when rendering is done and the image can be presented;
	// null for offscreen targets
	RenderFinished driver.Semaphore
}

// FrameSynchronizer owns the fixed ring of [FrameSlot]s of a render
// target, and for window targets the fence that last used each
// swapchain image. A slot is only reused after its fence signaled,
// so at most len(Slots) frames are in flight.
type FrameSynchronizer struct {

	// device the slots are created on
	Device *Device

	// the ring of frame slots
	Slots []FrameSlot

	// index of the current slot
	Current int

	// fence of the frame that last rendered to each swapchain image;
	// null when the image has not been used
	ImageFences []driver.Fence
}

// NewFrameSynchronizer creates n frame slots. With present, each slot
// also gets the semaphores that order rendering against presentation.
func NewFrameSynchronizer(dev *Device, n int, present bool) (*FrameSynchronizer, error) {
	fs := &FrameSynchronizer{Device: dev, Slots: make([]FrameSlot, n)}
	if err := fs.create(present); err != nil {
		fs.Release()
		return nil, err
	}
	return fs, nil
}

func (fs *FrameSynchronizer) create(present bool) error {
	drv := fs.Device.Driver
	dev := fs.Device.Handle
	cbs, err := drv.AllocateCommandBuffers(dev, fs.Device.CmdPool, len(fs.Slots))
	if err != nil {
		return fmt.Errorf("%w: frame command buffers: %w", ErrAllocationFailed, err)
	}
	for i := range fs.Slots {
		sl := &fs.Slots[i]
		sl.Cmd = cbs[i]
		if sl.InFlight, err = drv.CreateFence(dev, true); err != nil {
			return fmt.Errorf("%w: frame fence: %w", ErrAllocationFailed, err)
		}
		if !present {
			continue
		}
		if sl.ImageAvailable, err = drv.CreateSemaphore(dev); err != nil {
			return fmt.Errorf("%w: frame semaphore: %w", ErrAllocationFailed, err)
		}
		if sl.RenderFinished, err = drv.CreateSemaphore(dev); err != nil {
			return fmt.Errorf("%w: frame semaphore: %w", ErrAllocationFailed, err)
		}
	}
	return nil
}

// Slot returns the current frame slot.
func (fs *FrameSynchronizer) Slot() *FrameSlot {
	return &fs.Slots[fs.Current]
}

// Wait blocks until the GPU has finished the frame last submitted
// with the current slot.
func (fs *FrameSynchronizer) Wait() error {
	err := fs.Device.Driver.WaitForFences(fs.Device.Handle, []driver.Fence{fs.Slot().InFlight}, driver.NoTimeout)
	if err != nil {
		return fmt.Errorf("gpu: waiting for frame slot %d: %w", fs.Current, err)
	}
	return nil
}

// WaitImage waits until the frame that last rendered to swapchain
// image idx has finished, if that was a different slot, and then
// records the current slot as its user.
func (fs *FrameSynchronizer) WaitImage(idx uint32) error {
	fence := fs.Slot().InFlight
	if prev := fs.ImageFences[idx]; prev != 0 && prev != fence {
		err := fs.Device.Driver.WaitForFences(fs.Device.Handle, []driver.Fence{prev}, driver.NoTimeout)
		if err != nil {
			return fmt.Errorf("gpu: waiting for image %d: %w", idx, err)
		}
	}
	fs.ImageFences[idx] = fence
	return nil
}

// ResetImages forgets the users of all swapchain images and sizes the
// table for n images. Call it whenever the swapchain is (re)created.
func (fs *FrameSynchronizer) ResetImages(n int) {
	fs.ImageFences = make([]driver.Fence, n)
}

// Begin resets and begins the current slot's command buffer.
func (fs *FrameSynchronizer) Begin() (driver.CommandBuffer, error) {
	cb := fs.Slot().Cmd
	if err := fs.Device.Driver.ResetCommandBuffer(cb); err != nil {
		return 0, err
	}
	if err := fs.Device.Driver.BeginCommandBuffer(cb, true); err != nil {
		return 0, err
	}
	return cb, nil
}

// End ends the current slot's command buffer.
func (fs *FrameSynchronizer) End() error {
	return fs.Device.Driver.EndCommandBuffer(fs.Slot().Cmd)
}

// Submit resets the current slot's fence and submits the slot's
// command buffer to q, signaling the fence. If the slot has
// semaphores, the submission waits for ImageAvailable at color output
// and signals RenderFinished. When the submission fails the fence is
// replaced by a signaled one, so that the slot can be waited on again.
func (fs *FrameSynchronizer) Submit(q driver.Queue) error {
	sl := fs.Slot()
	drv := fs.Device.Driver
	if err := drv.ResetFences(fs.Device.Handle, []driver.Fence{sl.InFlight}); err != nil {
		return fmt.Errorf("gpu: resetting fence of frame slot %d: %w", fs.Current, err)
	}
	si := driver.SubmitInfo{CommandBuffers: []driver.CommandBuffer{sl.Cmd}}
	if sl.ImageAvailable != 0 {
		si.WaitSemaphores = []driver.Semaphore{sl.ImageAvailable}
		si.WaitStages = []driver.PipelineStageFlags{driver.StageColorAttachmentOutput}
		si.SignalSemaphores = []driver.Semaphore{sl.RenderFinished}
	}
	if err := drv.QueueSubmit(q, []driver.SubmitInfo{si}, sl.InFlight); err != nil {
		errors.Log(fs.renewFence())
		return fmt.Errorf("gpu: submitting frame slot %d: %w", fs.Current, err)
	}
	return nil
}

// renewFence replaces the unsignaled fence of the current slot by a
// signaled one, also for the swapchain images last used by the slot.
func (fs *FrameSynchronizer) renewFence() error {
	sl := fs.Slot()
	drv := fs.Device.Driver
	f, err := drv.CreateFence(fs.Device.Handle, true)
	if err != nil {
		return fmt.Errorf("%w: fence: %w", ErrAllocationFailed, err)
	}
	for i, imf := range fs.ImageFences {
		if imf == sl.InFlight {
			fs.ImageFences[i] = f
		}
	}
	drv.DestroyFence(fs.Device.Handle, sl.InFlight)
	sl.InFlight = f
	return nil
}

// Abandon gives up the frame of the current slot after a swapchain
// image was acquired but nothing was submitted: an empty batch on q
// waits on ImageAvailable, so that the semaphore is unsignaled before
// the slot acquires again.
func (fs *FrameSynchronizer) Abandon(q driver.Queue) error {
	sl := fs.Slot()
	if sl.ImageAvailable == 0 {
		return nil
	}
	err := fs.Device.Driver.QueueSubmit(q, []driver.SubmitInfo{{
		WaitSemaphores: []driver.Semaphore{sl.ImageAvailable},
		WaitStages:     []driver.PipelineStageFlags{driver.StageColorAttachmentOutput},
	}}, 0)
	if err != nil {
		return fmt.Errorf("gpu: abandoning frame slot %d: %w", fs.Current, err)
	}
	return nil
}

// Advance moves to the next slot in the ring.
func (fs *FrameSynchronizer) Advance() {
	fs.Current = (fs.Current + 1) % len(fs.Slots)
}

// WaitAll blocks until every slot's frame has finished.
func (fs *FrameSynchronizer) WaitAll() error {
	fences := make([]driver.Fence, 0, len(fs.Slots))
	for _, sl := range fs.Slots {
		if sl.InFlight != 0 {
			fences = append(fences, sl.InFlight)
		}
	}
	return fs.Device.Driver.WaitForFences(fs.Device.Handle, fences, driver.NoTimeout)
}

// Release destroys all slots. The device must be idle.
func (fs *FrameSynchronizer) Release() {
	drv := fs.Device.Driver
	dev := fs.Device.Handle
	var cbs []driver.CommandBuffer
	for i := range fs.Slots {
		sl := &fs.Slots[i]
		if sl.Cmd != 0 {
			cbs = append(cbs, sl.Cmd)
		}
		if sl.InFlight != 0 {
			drv.DestroyFence(dev, sl.InFlight)
		}
		if sl.ImageAvailable != 0 {
			drv.DestroySemaphore(dev, sl.ImageAvailable)
		}
		if sl.RenderFinished != 0 {
			drv.DestroySemaphore(dev, sl.RenderFinished)
		}
		*sl = FrameSlot{}
	}
	if len(cbs) > 0 {
		drv.FreeCommandBuffers(dev, fs.Device.CmdPool, cbs)
	}
	fs.ImageFences = nil
}
