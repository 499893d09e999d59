package vulkan

import (
	"fmt"
	"path/filepath"

	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets/loaders"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage loads compiled SPIR-V from dir/fileName and wraps it in a shader module.
func NewShaderStage(context *VulkanContext, dir, fileName string, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	path := filepath.Join(dir, fileName)
	code, err := loaders.LoadSPIRV(path)
	if err != nil {
		err = fmt.Errorf("unable to read shader module %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}

	shaderStage := &VulkanShaderStage{}
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &shaderStage.Handle); res != vk.Success {
		err := vulkanError("vkCreateShaderModule", res)
		core.LogError(err.Error())
		return nil, err
	}

	// Shader stage info
	shaderStage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: shaderStage.Handle,
		PName:  VulkanSafeString("main"),
	}
	core.LogDebug("shader module %s loaded (%d words)", fileName, len(code))
	return shaderStage, nil
}

// Destroy releases the module. The pipeline keeps its own copy of the code.
func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = nil
	}
}
