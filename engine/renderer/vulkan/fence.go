package vulkan

import (
	"context"
	"fmt"
	"time"

	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

// fenceWaitSlice bounds a single vkWaitForFences call so cancellation is noticed.
const fenceWaitSlice = 100 * time.Millisecond

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	err := context.LockPool.SafeCall(SynchronizationManagement, func() error {
		if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
			return vulkanError("vkCreateFence", res)
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	fence.Handle = pFence
	return fence, nil
}

func (vf *VulkanFence) FenceDestroy(context *VulkanContext) {
	if vf.Handle != vk.NullFence {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = vk.NullFence
	}
	vf.IsSignaled = false
}

// FenceWait blocks until the fence is signaled. It gives up with core.ErrSynchronizationTimeout
// after timeout, and returns ctx's error if ctx is cancelled first.
func (vf *VulkanFence) FenceWait(vc *VulkanContext, ctx context.Context, timeout time.Duration) error {
	if vf.IsSignaled {
		// If already signaled, do not wait.
		return nil
	}

	deadline := time.Now().Add(timeout)
	for {
		slice := min(time.Until(deadline), fenceWaitSlice)
		if slice < 0 {
			slice = 0
		}
		result := vk.WaitForFences(vc.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, uint64(slice.Nanoseconds()))
		switch result {
		case vk.Success:
			vf.IsSignaled = true
			return nil
		case vk.Timeout:
			if err := ctx.Err(); err != nil {
				return err
			}
			if !time.Now().Before(deadline) {
				err := fmt.Errorf("%w: fence not signaled after %s", core.ErrSynchronizationTimeout, timeout)
				core.LogError(err.Error())
				return err
			}
		default:
			err := vulkanError("vkWaitForFences", result)
			core.LogError(err.Error())
			return err
		}
	}
}

func (vf *VulkanFence) FenceReset(context *VulkanContext) error {
	if vf.IsSignaled {
		if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
			err := vulkanError("vkResetFences", res)
			core.LogError(err.Error())
			return err
		}
		vf.IsSignaled = false
	}
	return nil
}
