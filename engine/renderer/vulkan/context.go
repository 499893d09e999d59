package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	// only set when validation is enabled
	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass
	Pipeline       *VulkanPipeline
	Descriptors    *VulkanDescriptors

	// Shared by every texture descriptor set.
	Sampler vk.Sampler

	Frames []*VulkanFrame

	// Holds pointers to fences which exist and are owned by Frames.
	ImagesInFlight []*VulkanFence

	LockPool *VulkanLockPool
}

func NewVulkanContext() *VulkanContext {
	return &VulkanContext{
		Allocator: nil,
		Device:    &VulkanDevice{GraphicsQueueIndex: -1, PresentQueueIndex: -1, TransferQueueIndex: -1},
		LockPool:  NewVulkanLockPool(),
	}
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that has all propertyFlags.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) (uint32, error) {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryType := memoryProperties.MemoryTypes[i]
		memoryType.Deref()
		if typeFilter&(1<<i) != 0 && memoryType.PropertyFlags&propertyFlags == propertyFlags {
			return i, nil
		}
	}
	err := fmt.Errorf("unable to find suitable memory type (filter 0x%x, flags 0x%x)", typeFilter, uint32(propertyFlags))
	core.LogWarn(err.Error())
	return 0, err
}
