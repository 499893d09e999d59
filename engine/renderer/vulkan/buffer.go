package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

type VulkanBuffer struct {
	Handle              vk.Buffer
	Memory              vk.DeviceMemory
	Size                vk.DeviceSize
	Usage               vk.BufferUsageFlags
	MemoryPropertyFlags vk.MemoryPropertyFlags
	// Set while the whole buffer is persistently mapped.
	Mapped unsafe.Pointer
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		Size:                size,
		Usage:               usage,
		MemoryPropertyFlags: memoryFlags,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &buffer.Handle); res != vk.Success {
		err := vulkanError("vkCreateBuffer", res)
		core.LogError(err.Error())
		return nil, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy(context)
		return nil, fmt.Errorf("unable to create vulkan buffer: %w", err)
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryIndex,
	}
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &buffer.Memory); res != vk.Success {
		buffer.Destroy(context)
		err := vulkanError("vkAllocateMemory", res)
		core.LogError(err.Error())
		return nil, err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy(context)
		err := vulkanError("vkBindBufferMemory", res)
		core.LogError(err.Error())
		return nil, err
	}
	return buffer, nil
}

// Destroy is idempotent.
func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Mapped != nil {
		vb.UnlockMemory(context)
	}
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	vb.Size = 0
}

// LockMemory maps the whole buffer until UnlockMemory.
func (vb *VulkanBuffer) LockMemory(context *VulkanContext) (unsafe.Pointer, error) {
	if vb.Mapped != nil {
		return vb.Mapped, nil
	}
	var data unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vb.Size, 0, &data); res != vk.Success {
		err := vulkanError("vkMapMemory", res)
		core.LogError(err.Error())
		return nil, err
	}
	vb.Mapped = data
	return data, nil
}

func (vb *VulkanBuffer) UnlockMemory(context *VulkanContext) {
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	vb.Mapped = nil
}

// LoadData copies data into host-visible memory at offset.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset vk.DeviceSize, data []byte) error {
	if offset+vk.DeviceSize(len(data)) > vb.Size {
		return fmt.Errorf("load of %d bytes at offset %d overflows buffer of %d bytes", len(data), offset, vb.Size)
	}
	if vb.Mapped != nil {
		vk.Memcopy(unsafe.Add(vb.Mapped, offset), data)
		return nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, offset, vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		err := vulkanError("vkMapMemory", res)
		core.LogError(err.Error())
		return err
	}
	if n := vk.Memcopy(ptr, data); n != len(data) {
		core.LogWarn("buffer load copied %d of %d bytes", n, len(data))
	}
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

// CopyTo copies size bytes into dest through a single-use command buffer on the graphics queue,
// and waits for the copy to finish.
func (vb *VulkanBuffer) CopyTo(context *VulkanContext, dest *VulkanBuffer, size vk.DeviceSize) error {
	commandBuffer, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}
	vk.CmdCopyBuffer(commandBuffer.Handle, vb.Handle, dest.Handle, 1, []vk.BufferCopy{{Size: size}})
	return commandBuffer.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue, uint32(context.Device.GraphicsQueueIndex))
}

// UploadStaged creates a device-local buffer holding data. The host-visible staging buffer
// is released on every path.
func UploadStaged(context *VulkanContext, usage vk.BufferUsageFlags, data []byte) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))
	staging, err := BufferCreate(context, size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		return nil, err
	}

	buffer, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if err := staging.CopyTo(context, buffer, size); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}
