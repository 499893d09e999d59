package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// textureFormat is the format of every sampled texture; texels arrive as sRGB RGBA8.
const textureFormat = vk.FormatR8g8b8a8Srgb

/** @brief Device-local vertex and index buffers of one mesh. */
type VulkanMesh struct {
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	IndexCount   uint32
}

/** @brief A sampled texture and the set 1 descriptor that binds it. */
type VulkanTexture struct {
	Image         *VulkanImage
	DescriptorSet vk.DescriptorSet
}

func MeshCreate(context *VulkanContext, vertices []metadata.Vertex, indices []uint32) (*VulkanMesh, error) {
	vertexBuffer, err := UploadStaged(context, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), metadata.VertexBytes(vertices))
	if err != nil {
		return nil, err
	}
	indexBuffer, err := UploadStaged(context, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), metadata.IndexBytes(indices))
	if err != nil {
		vertexBuffer.Destroy(context)
		return nil, err
	}
	return &VulkanMesh{
		VertexBuffer: vertexBuffer,
		IndexBuffer:  indexBuffer,
		IndexCount:   uint32(len(indices)),
	}, nil
}

// Destroy is idempotent.
func (m *VulkanMesh) Destroy(context *VulkanContext) {
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(context)
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
		m.IndexBuffer = nil
	}
}

// TextureCreate uploads width*height RGBA8 texels, leaves the image in SHADER_READ_ONLY_OPTIMAL,
// and writes its descriptor set.
func TextureCreate(context *VulkanContext, width, height uint32, pixels []byte) (*VulkanTexture, error) {
	staging, err := BufferCreate(context, vk.DeviceSize(len(pixels)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, pixels); err != nil {
		return nil, err
	}

	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width,
		height,
		textureFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit))
	if err != nil {
		return nil, err
	}
	texture := &VulkanTexture{Image: image}

	if err := uploadTexels(context, image, staging); err != nil {
		texture.Destroy(context)
		return nil, err
	}

	set, err := context.Descriptors.AllocateTextureSet(context, image.View, context.Sampler)
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}
	texture.DescriptorSet = set
	return texture, nil
}

func uploadTexels(context *VulkanContext, image *VulkanImage, staging *VulkanBuffer) error {
	pool := context.Device.GraphicsCommandPool
	commandBuffer, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}
	if err := image.ImageTransitionLayout(commandBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
		commandBuffer.Free(context, pool)
		return err
	}
	image.ImageCopyFromBuffer(staging.Handle, commandBuffer)
	if err := image.ImageTransitionLayout(commandBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		commandBuffer.Free(context, pool)
		return err
	}
	return commandBuffer.EndSingleUse(context, pool, context.Device.GraphicsQueue, uint32(context.Device.GraphicsQueueIndex))
}

// Destroy is idempotent. The descriptor set goes back with its pool.
func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.Image != nil {
		t.Image.ImageDestroy(context)
		t.Image = nil
	}
	t.DescriptorSet = nil
}

// SamplerCreate builds the linear, repeating sampler shared by every texture.
func SamplerCreate(context *VulkanContext) (vk.Sampler, error) {
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	if context.Device.Features.SamplerAnisotropy.B() {
		samplerInfo.AnisotropyEnable = vk.True
		samplerInfo.MaxAnisotropy = context.Device.Properties.Limits.MaxSamplerAnisotropy
	}

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		err := vulkanError("vkCreateSampler", res)
		core.LogError(err.Error())
		return nil, err
	}
	return sampler, nil
}
