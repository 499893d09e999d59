package engine

import (
	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/systems"
)

// Game is the set of callbacks the engine drives. FnInitialize, FnUpdate and FnRender are required.
type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize.
	Assets *assets.AssetManager
	// Decodes off the loop thread; callbacks run before FnUpdate. Set by the engine.
	Jobs             *systems.JobSystem
	State            interface{}
	FnInitialize     Initialize
	FnUpdate         Update
	FnRender         Render
	FnOnResize       OnResize
	FnOnAssetChanged OnAssetChanged
	FnShutdown       Shutdown
}

// Initialize runs once the renderer is set up; resources are created here.
type Initialize func(driver renderer.RendererBackend) error
type Update func(deltaTime float64) error

// Render submits this frame's draws. The render queue has already been cleared.
type Render func(driver renderer.RendererBackend, deltaTime float64) error
type OnResize func(width uint32, height uint32) error

// OnAssetChanged is called on the loop thread with the absolute path of a modified asset.
type OnAssetChanged func(driver renderer.RendererBackend, path string) error
type Shutdown func() error
