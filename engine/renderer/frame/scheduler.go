package frame

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// MaxFramesInFlight is the number of frame slots, and so the number of frames the CPU may run ahead of the GPU.
const MaxFramesInFlight uint32 = 2

// Target is the backend side of a frame. Each call maps to one step of RenderFrame.
type Target interface {
	// WaitForSlot blocks until the previous frame that used slot has completed on the GPU.
	WaitForSlot(ctx context.Context, slot uint32) error
	// AcquireImage returns the swapchain image to render into, or ErrSwapchainStale.
	AcquireImage(slot uint32) (uint32, error)
	UpdateUniforms(slot uint32, camera metadata.CameraMatrices) error
	// Record writes the draw commands for objects and returns the number of draws.
	Record(slot uint32, image uint32, objects []metadata.RenderObject) (int, error)
	// Submit resets the slot fence and submits the recorded work.
	// Any wait it has to do for an earlier frame honours ctx.
	Submit(ctx context.Context, slot uint32, image uint32) error
	// Present queues the image, or returns ErrSwapchainStale when the swapchain no longer matches the surface.
	Present(slot uint32, image uint32) error
	// Recreate rebuilds the swapchain and its dependents. ErrSwapchainStale means the surface has zero size.
	Recreate() error
}

// Scheduler paces frames over a fixed ring of slots and owns the swapchain recreation policy.
type Scheduler struct {
	framesInFlight uint32
	frameNumber    uint64
	resized        atomic.Bool
	camera         metadata.CameraMatrices
	recreations    uint64
	last           metadata.FrameStats
}

func NewScheduler(framesInFlight uint32) *Scheduler {
	if framesInFlight == 0 {
		framesInFlight = MaxFramesInFlight
	}
	return &Scheduler{
		framesInFlight: framesInFlight,
		camera:         metadata.DefaultCameraMatrices(),
	}
}

func (s *Scheduler) FramesInFlight() uint32 {
	return s.framesInFlight
}

// FrameNumber counts frames that reached presentation.
func (s *Scheduler) FrameNumber() uint64 {
	return s.frameNumber
}

// Slot is the frame slot the next RenderFrame will use.
func (s *Scheduler) Slot() uint32 {
	return uint32(s.frameNumber % uint64(s.framesInFlight))
}

// NotifyResized flags the swapchain for recreation. Safe to call from any goroutine.
func (s *Scheduler) NotifyResized() {
	s.resized.Store(true)
}

func (s *Scheduler) ResizePending() bool {
	return s.resized.Load()
}

func (s *Scheduler) SetViewMatrix(m mgl32.Mat4) {
	s.camera.View = m
}

func (s *Scheduler) SetProjectionMatrix(m mgl32.Mat4) {
	s.camera.Projection = m
}

func (s *Scheduler) Camera() metadata.CameraMatrices {
	return s.camera
}

// Recreations counts successful swapchain rebuilds.
func (s *Scheduler) Recreations() uint64 {
	return s.recreations
}

func (s *Scheduler) LastFrame() metadata.FrameStats {
	return s.last
}

// RenderFrame runs one frame against target. A stale swapchain never surfaces as an
// error: the swapchain is rebuilt and the frame is skipped. Fence timeouts and any
// other backend failure are returned. The swapchain is rebuilt at most once per call;
// a second stale report in the same frame is carried over to the next one.
func (s *Scheduler) RenderFrame(ctx context.Context, target Target, objects []metadata.RenderObject) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slot := s.Slot()
	stats := metadata.FrameStats{FrameNumber: s.frameNumber}
	defer func() { s.last = stats }()

	if err := target.WaitForSlot(ctx, slot); err != nil {
		return fmt.Errorf("waiting on frame %d (slot %d): %w", s.frameNumber, slot, err)
	}

	if s.resized.Load() {
		ok, err := s.recreate(target)
		if err != nil {
			return err
		}
		if !ok {
			core.LogDebug("surface has no area, skipping frame %d", s.frameNumber)
			stats.Skipped = true
			return nil
		}
		stats.Recreated = true
	}

	image, err := target.AcquireImage(slot)
	if errors.Is(err, core.ErrSwapchainStale) {
		core.LogDebug("swapchain stale on acquire, skipping frame %d", s.frameNumber)
		stats.Skipped = true
		if stats.Recreated {
			s.resized.Store(true)
			return nil
		}
		stats.Recreated, err = s.recreate(target)
		return err
	}
	if err != nil {
		return fmt.Errorf("acquiring image for frame %d: %w", s.frameNumber, err)
	}

	if err := target.UpdateUniforms(slot, s.camera); err != nil {
		return err
	}
	draws, err := target.Record(slot, image, objects)
	if err != nil {
		return err
	}
	stats.Draws = draws
	if err := target.Submit(ctx, slot, image); err != nil {
		return err
	}

	err = target.Present(slot, image)
	stale := errors.Is(err, core.ErrSwapchainStale)
	if err != nil && !stale {
		return fmt.Errorf("presenting frame %d: %w", s.frameNumber, err)
	}
	s.frameNumber++

	if !stale && !s.resized.Load() {
		return nil
	}
	if stats.Recreated {
		s.resized.Store(true)
		return nil
	}
	stats.Recreated, err = s.recreate(target)
	return err
}

// recreate clears the resize flag before rebuilding so a notification racing the rebuild is not lost.
func (s *Scheduler) recreate(target Target) (bool, error) {
	s.resized.Store(false)
	err := target.Recreate()
	if errors.Is(err, core.ErrSwapchainStale) {
		// zero sized surface, try again on a later frame
		s.resized.Store(true)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.recreations++
	return true, nil
}
