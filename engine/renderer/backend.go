package renderer

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// RendererBackend is the graphics driver seen by the engine and the game.
// All methods except NotifyResized must be called from the render thread.
type RendererBackend interface {
	// Setup brings the device, swapchain, pipeline and frame slots up. Errors wrap core.ErrInitialization.
	Setup(surface metadata.Surface) error
	// Destruct waits for the GPU to go idle and releases everything Setup and the resource calls created.
	Destruct() error
	// RenderFrame draws the current render queue. Stale swapchains are handled internally;
	// returned errors are fatal.
	RenderFrame(ctx context.Context) error
	// NotifyResized schedules a swapchain recreation. Safe from any goroutine.
	NotifyResized()
	LoadMesh(path string) (metadata.MeshHandle, error)
	LoadTexture(path string) (metadata.TextureHandle, error)
	CreateMesh(vertices []metadata.Vertex, indices []uint32) (metadata.MeshHandle, error)
	// CreateTexture uploads width*height RGBA8 texels.
	CreateTexture(width, height uint32, pixels []byte) (metadata.TextureHandle, error)
	DefaultTexture() metadata.TextureHandle
	// SubmitRenderObject queues a draw for the next RenderFrame. Unknown handles fail with core.ErrResourceNotRegistered.
	SubmitRenderObject(mesh metadata.MeshHandle, texture metadata.TextureHandle, transform mgl32.Mat4) error
	ClearRenderQueue()
	SetViewMatrix(m mgl32.Mat4)
	SetProjectionMatrix(m mgl32.Mat4)
	LastFrame() metadata.FrameStats
}
