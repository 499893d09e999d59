package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

/**
 * @brief Descriptor layouts and pools used by the single graphics pipeline.
 * Set 0 holds the per-frame view/projection uniform buffer, set 1 one sampled texture.
 */
type VulkanDescriptors struct {
	GlobalLayout  vk.DescriptorSetLayout
	TextureLayout vk.DescriptorSetLayout

	/** @brief Sized for one global set per frame in flight. */
	GlobalPool vk.DescriptorPool
	/** @brief Texture pools; a new one is chained on when the last is full. */
	TexturePools []vk.DescriptorPool

	texturePoolSize uint32
	// Sets handed out from the last texture pool.
	texturePoolUsed uint32
}

func DescriptorsCreate(context *VulkanContext, framesInFlight, texturePoolSize uint32) (*VulkanDescriptors, error) {
	if texturePoolSize == 0 {
		return nil, fmt.Errorf("texture descriptor pool size must be positive")
	}
	descriptors := &VulkanDescriptors{texturePoolSize: texturePoolSize}

	globalBinding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}
	layout, err := createSetLayout(context, globalBinding)
	if err != nil {
		return nil, err
	}
	descriptors.GlobalLayout = layout

	samplerBinding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
	if layout, err = createSetLayout(context, samplerBinding); err != nil {
		descriptors.Destroy(context)
		return nil, err
	}
	descriptors.TextureLayout = layout

	pool, err := createPool(context, vk.DescriptorTypeUniformBuffer, framesInFlight)
	if err != nil {
		descriptors.Destroy(context)
		return nil, err
	}
	descriptors.GlobalPool = pool

	if err := descriptors.addTexturePool(context); err != nil {
		descriptors.Destroy(context)
		return nil, err
	}
	return descriptors, nil
}

func createSetLayout(context *VulkanContext, binding vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		err := vulkanError("vkCreateDescriptorSetLayout", res)
		core.LogError(err.Error())
		return nil, err
	}
	return layout, nil
}

func createPool(context *VulkanContext, descriptorType vk.DescriptorType, maxSets uint32) (vk.DescriptorPool, error) {
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{{Type: descriptorType, DescriptorCount: maxSets}},
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		err := vulkanError("vkCreateDescriptorPool", res)
		core.LogError(err.Error())
		return nil, err
	}
	return pool, nil
}

func (vd *VulkanDescriptors) addTexturePool(context *VulkanContext) error {
	pool, err := createPool(context, vk.DescriptorTypeCombinedImageSampler, vd.texturePoolSize)
	if err != nil {
		return err
	}
	vd.TexturePools = append(vd.TexturePools, pool)
	vd.texturePoolUsed = 0
	core.LogDebug("texture descriptor pool %d created (%d sets)", len(vd.TexturePools), vd.texturePoolSize)
	return nil
}

func allocateSet(context *VulkanContext, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &sets[0]); res != vk.Success {
		return nil, vulkanError("vkAllocateDescriptorSets", res)
	}
	return sets[0], nil
}

// AllocateGlobalSet allocates a set 0 descriptor pointing at a frame's uniform buffer.
func (vd *VulkanDescriptors) AllocateGlobalSet(context *VulkanContext, uniforms *VulkanBuffer) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	err := context.LockPool.SafeCall(DescriptorManagement, func() error {
		var err error
		if set, err = allocateSet(context, vd.GlobalPool, vd.GlobalLayout); err != nil {
			return err
		}
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: uniforms.Handle,
				Offset: 0,
				Range:  uniforms.Size,
			}},
		}
		vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return set, nil
}

// AllocateTextureSet allocates a set 1 descriptor for view and the shared sampler, and writes it once.
func (vd *VulkanDescriptors) AllocateTextureSet(context *VulkanContext, view vk.ImageView, sampler vk.Sampler) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	err := context.LockPool.SafeCall(DescriptorManagement, func() error {
		if vd.texturePoolUsed >= vd.texturePoolSize {
			if err := vd.addTexturePool(context); err != nil {
				return err
			}
		}
		var err error
		if set, err = allocateSet(context, vd.TexturePools[len(vd.TexturePools)-1], vd.TextureLayout); err != nil {
			return err
		}
		vd.texturePoolUsed++

		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler:     sampler,
				ImageView:   view,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		}
		vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return set, nil
}

// Destroy releases the pools, which frees every set allocated from them, then the layouts.
func (vd *VulkanDescriptors) Destroy(context *VulkanContext) {
	for _, pool := range vd.TexturePools {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, pool, context.Allocator)
	}
	vd.TexturePools = nil
	if vd.GlobalPool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, vd.GlobalPool, context.Allocator)
		vd.GlobalPool = nil
	}
	if vd.TextureLayout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, vd.TextureLayout, context.Allocator)
		vd.TextureLayout = nil
	}
	if vd.GlobalLayout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, vd.GlobalLayout, context.Allocator)
		vd.GlobalLayout = nil
	}
}
