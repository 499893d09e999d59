package metadata

import (
	"time"
	"unsafe"
)

/**
 * @brief The window a backend presents into. The platform window implements it.
 */
type Surface interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
	GetFramebufferSize() (width int, height int)
	/** @brief The loader entry point (vkGetInstanceProcAddr) exposed by the windowing library. */
	GetVulkanProcAddr() unsafe.Pointer
}

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Enables validation layers and the debug report callback. */
	Validation bool
	/** @brief Use MAILBOX presentation when the surface supports it; FIFO otherwise. */
	PreferMailbox bool
	/** @brief How long a frame waits on its slot fence before giving up. */
	FenceTimeout time.Duration
	/** @brief Directory holding shader.vert.spv and shader.frag.spv. */
	ShaderDir string
	/** @brief Texture descriptor sets per descriptor pool; pools are chained when exhausted. */
	TextureDescriptorPoolSize uint32
	/** @brief RGBA clear colour of the colour attachment. */
	ClearColor [4]float32
}

func DefaultRendererBackendConfig() RendererBackendConfig {
	return RendererBackendConfig{
		ApplicationName:           "Darkest Planet",
		Validation:                true,
		PreferMailbox:             true,
		FenceTimeout:              5 * time.Second,
		ShaderDir:                 "assets/shaders",
		TextureDescriptorPoolSize: 64,
		ClearColor:                [4]float32{0.01, 0.01, 0.03, 1},
	}
}

/** @brief Per-frame draw statistics. */
type FrameStats struct {
	FrameNumber uint64
	Draws       int
	Skipped     bool
	Recreated   bool
}
