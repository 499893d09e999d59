package vulkan

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	emath "github.com/cbabos/VulkanGameEngineExperiment/engine/math"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/queue"
)

/** @brief The set 0 uniform block: layout(set = 0, binding = 0) uniform Global { mat4 projection; mat4 view; }. */
type GlobalUniformObject struct {
	Projection mgl32.Mat4
	View       mgl32.Mat4
}

const globalUniformSize = vk.DeviceSize(unsafe.Sizeof(GlobalUniformObject{}))

/** @brief Everything one frame in flight owns. */
type VulkanFrame struct {
	CommandBuffer *VulkanCommandBuffer
	// Signaled by acquire, waited on by submit.
	ImageAvailable vk.Semaphore
	// Signaled by submit, waited on by present.
	RenderFinished vk.Semaphore
	// Created signaled so the first wait on the slot returns at once.
	InFlight *VulkanFence
	// Host visible and persistently mapped.
	Uniforms  *VulkanBuffer
	GlobalSet vk.DescriptorSet
}

func FrameCreate(context *VulkanContext) (*VulkanFrame, error) {
	frame := &VulkanFrame{}
	var err error
	if frame.CommandBuffer, err = NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true); err != nil {
		return nil, err
	}
	if frame.ImageAvailable, err = createSemaphore(context); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	if frame.RenderFinished, err = createSemaphore(context); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	if frame.InFlight, err = NewFence(context, true); err != nil {
		frame.Destroy(context)
		return nil, err
	}

	frame.Uniforms, err = BufferCreate(context, globalUniformSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		frame.Destroy(context)
		return nil, err
	}
	if _, err = frame.Uniforms.LockMemory(context); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	if frame.GlobalSet, err = context.Descriptors.AllocateGlobalSet(context, frame.Uniforms); err != nil {
		frame.Destroy(context)
		return nil, err
	}
	return frame, nil
}

func createSemaphore(context *VulkanContext) (vk.Semaphore, error) {
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	err := context.LockPool.SafeCall(SynchronizationManagement, func() error {
		if res := vk.CreateSemaphore(context.Device.LogicalDevice, &semaphoreCreateInfo, context.Allocator, &semaphore); res != vk.Success {
			return vulkanError("vkCreateSemaphore", res)
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return semaphore, nil
}

// Destroy is idempotent. The global set is freed with its pool.
func (f *VulkanFrame) Destroy(context *VulkanContext) {
	if f.Uniforms != nil {
		f.Uniforms.Destroy(context)
		f.Uniforms = nil
	}
	f.GlobalSet = nil
	if f.InFlight != nil {
		f.InFlight.FenceDestroy(context)
		f.InFlight = nil
	}
	if f.RenderFinished != nil {
		vk.DestroySemaphore(context.Device.LogicalDevice, f.RenderFinished, context.Allocator)
		f.RenderFinished = nil
	}
	if f.ImageAvailable != nil {
		vk.DestroySemaphore(context.Device.LogicalDevice, f.ImageAvailable, context.Allocator)
		f.ImageAvailable = nil
	}
	if f.CommandBuffer != nil {
		f.CommandBuffer.Free(context, context.Device.GraphicsCommandPool)
		f.CommandBuffer = nil
	}
}

func (vr *VulkanRenderer) WaitForSlot(ctx context.Context, slot uint32) error {
	return vr.context.Frames[slot].InFlight.FenceWait(vr.context, ctx, vr.config.FenceTimeout)
}

func (vr *VulkanRenderer) AcquireImage(slot uint32) (uint32, error) {
	frame := vr.context.Frames[slot]
	return vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, vr.config.FenceTimeout, frame.ImageAvailable)
}

func (vr *VulkanRenderer) UpdateUniforms(slot uint32, camera metadata.CameraMatrices) error {
	// Vulkan clip space has Y pointing down.
	ubo := GlobalUniformObject{
		Projection: emath.VulkanProjection(camera.Projection),
		View:       camera.View,
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(&ubo)), globalUniformSize)
	return vr.context.Frames[slot].Uniforms.LoadData(vr.context, 0, data)
}

func (vr *VulkanRenderer) Record(slot uint32, image uint32, objects []metadata.RenderObject) (int, error) {
	frame := vr.context.Frames[slot]
	commandBuffer := frame.CommandBuffer
	if err := commandBuffer.Reset(); err != nil {
		return 0, err
	}
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return 0, err
	}

	// Dynamic state
	extent := vr.context.Swapchain.Extent
	viewport, scissor := fullViewport(extent)
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[image].Handle, extent)

	rec := &commandRecorder{
		context:       vr.context,
		commandBuffer: commandBuffer,
		globalSet:     frame.GlobalSet,
	}
	draws, err := queue.Record[*VulkanMesh, *VulkanTexture](rec, vr.pool, objects)

	// The pass is closed even after a failed draw so the buffer can be reset next frame.
	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	if endErr := commandBuffer.End(); err == nil {
		err = endErr
	}
	return draws, err
}

func (vr *VulkanRenderer) Submit(ctx context.Context, slot uint32, image uint32) error {
	frame := vr.context.Frames[slot]

	// Make sure the previous frame is not using this image (i.e. its fence is being waited on)
	if inFlight := vr.context.ImagesInFlight[image]; inFlight != nil && inFlight != frame.InFlight {
		if err := inFlight.FenceWait(vr.context, ctx, vr.config.FenceTimeout); err != nil {
			return err
		}
	}
	// Mark the image fence as in-use by this frame.
	vr.context.ImagesInFlight[image] = frame.InFlight

	// Reset the fence for use on the next frame
	if err := frame.InFlight.FenceReset(vr.context); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{frame.CommandBuffer.Handle},
		// Wait semaphore ensures that the operation cannot begin until the image is available.
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.ImageAvailable},
		// VK_PIPELINE_STAGE_COLOR_ATTACHMENT_OUTPUT_BIT prevents subsequent colour attachment
		// writes from executing until the semaphore signals (i.e. one frame is presented at a time)
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.RenderFinished},
	}

	err := vr.context.LockPool.SafeQueueCall(uint32(vr.context.Device.GraphicsQueueIndex), func() error {
		if res := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, frame.InFlight.Handle); res != vk.Success {
			return vulkanError("vkQueueSubmit", res)
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	frame.CommandBuffer.UpdateSubmitted()
	return nil
}

func (vr *VulkanRenderer) Present(slot uint32, image uint32) error {
	// Give the image back to the swapchain.
	return vr.context.Swapchain.SwapchainPresent(vr.context, vr.context.Frames[slot].RenderFinished, image)
}

// Recreate rebuilds the swapchain, its depth attachment and framebuffers at the surface's current size.
func (vr *VulkanRenderer) Recreate() error {
	width, height := vr.surface.GetFramebufferSize()
	// Detect if the window is too small to be drawn to
	if width <= 0 || height <= 0 {
		core.LogDebug("swapchain recreation deferred: window is %dx%d", width, height)
		return core.ErrSwapchainStale
	}

	err := vr.context.LockPool.SafeCall(SwapchainManagement, func() error {
		// Wait for any operations to complete.
		if res := vk.DeviceWaitIdle(vr.context.Device.LogicalDevice); res != vk.Success {
			return vulkanError("vkDeviceWaitIdle", res)
		}

		sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, uint32(width), uint32(height), vr.config.PreferMailbox)
		if err != nil {
			return err
		}
		vr.context.Swapchain = sc
		vr.context.FramebufferWidth = sc.Extent.Width
		vr.context.FramebufferHeight = sc.Extent.Height

		if err := regenerateFramebuffers(vr.context); err != nil {
			return err
		}
		// Fences of the old images no longer mean anything.
		vr.context.ImagesInFlight = make([]*VulkanFence, sc.ImageCount)
		return nil
	})
	if err != nil {
		return fmt.Errorf("recreating swapchain at %dx%d: %w", width, height, err)
	}
	core.LogInfo("Swapchain recreated at %dx%d.", vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	return nil
}
