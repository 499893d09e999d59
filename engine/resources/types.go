package resources

import (
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

/**
 * @brief A registered mesh. GPU holds the backend representation
 * (buffers for Vulkan, a CPU copy for the headless backend).
 */
type MeshRecord[M any] struct {
	ID          core.Identifier
	Name        string
	VertexCount uint32
	IndexCount  uint32
	GPU         M
}

/** @brief A registered texture. */
type TextureRecord[T any] struct {
	ID     core.Identifier
	Name   string
	Width  uint32
	Height uint32
	GPU    T
}

// Registry answers whether handles are known. The render queue validates submissions against it.
type Registry interface {
	HasMesh(h metadata.MeshHandle) bool
	HasTexture(h metadata.TextureHandle) bool
}
