package vulkan

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"
)

// commandRecorder writes draw commands into a frame's command buffer, inside the main render pass.
type commandRecorder struct {
	context       *VulkanContext
	commandBuffer *VulkanCommandBuffer
	globalSet     vk.DescriptorSet
}

func (r *commandRecorder) BindGlobals() error {
	r.context.Pipeline.Bind(r.commandBuffer, vk.PipelineBindPointGraphics)
	vk.CmdBindDescriptorSets(r.commandBuffer.Handle, vk.PipelineBindPointGraphics, r.context.Pipeline.PipelineLayout,
		GLOBAL_DESCRIPTOR_SET, 1, []vk.DescriptorSet{r.globalSet}, 0, nil)
	return nil
}

func (r *commandRecorder) BindMesh(mesh *VulkanMesh) error {
	vk.CmdBindVertexBuffers(r.commandBuffer.Handle, 0, 1, []vk.Buffer{mesh.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(r.commandBuffer.Handle, mesh.IndexBuffer.Handle, 0, vk.IndexTypeUint32)
	return nil
}

func (r *commandRecorder) BindTexture(texture *VulkanTexture) error {
	vk.CmdBindDescriptorSets(r.commandBuffer.Handle, vk.PipelineBindPointGraphics, r.context.Pipeline.PipelineLayout,
		TEXTURE_DESCRIPTOR_SET, 1, []vk.DescriptorSet{texture.DescriptorSet}, 0, nil)
	return nil
}

func (r *commandRecorder) PushTransform(transform mgl32.Mat4) error {
	vk.CmdPushConstants(r.commandBuffer.Handle, r.context.Pipeline.PipelineLayout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, PUSH_CONSTANT_SIZE, unsafe.Pointer(&transform[0]))
	return nil
}

func (r *commandRecorder) DrawIndexed(indexCount uint32) error {
	vk.CmdDrawIndexed(r.commandBuffer.Handle, indexCount, 1, 0, 0, 0)
	return nil
}
