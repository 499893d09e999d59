package vulkan

import "unsafe"

const (
	VALIDATION_LAYER_NAME = "VK_LAYER_KHRONOS_validation"
	PORTABILITY_SUBSET    = "VK_KHR_portability_subset"
)

/** @brief Size of the model matrix pushed per draw. */
const PUSH_CONSTANT_SIZE = uint32(unsafe.Sizeof([16]float32{}))

/** @brief Descriptor set indices in the pipeline layout. */
const (
	GLOBAL_DESCRIPTOR_SET  uint32 = 0
	TEXTURE_DESCRIPTOR_SET uint32 = 1
)

/** @brief Compiled shader file names, relative to the configured shader directory. */
const (
	VERTEX_SHADER_FILE   = "shader.vert.spv"
	FRAGMENT_SHADER_FILE = "shader.frag.spv"
)
