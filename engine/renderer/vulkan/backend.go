package vulkan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets/loaders"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/frame"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/queue"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/resources"
)

// VulkanRenderer draws the render queue through a single graphics pipeline, with
// frame.MaxFramesInFlight frames in flight.
type VulkanRenderer struct {
	config    metadata.RendererBackendConfig
	surface   metadata.Surface
	context   *VulkanContext
	pool      *resources.Pool[*VulkanMesh, *VulkanTexture]
	queue     *queue.RenderQueue
	scheduler *frame.Scheduler

	validation bool
	isSetup    bool
	destroyed  bool
}

var (
	_ frame.Target                                       = (*VulkanRenderer)(nil)
	_ queue.CommandRecorder[*VulkanMesh, *VulkanTexture] = (*commandRecorder)(nil)
)

func New(config metadata.RendererBackendConfig) *VulkanRenderer {
	defaults := metadata.DefaultRendererBackendConfig()
	if config.FenceTimeout <= 0 {
		config.FenceTimeout = defaults.FenceTimeout
	}
	if config.TextureDescriptorPoolSize == 0 {
		config.TextureDescriptorPoolSize = defaults.TextureDescriptorPoolSize
	}
	if config.ShaderDir == "" {
		config.ShaderDir = defaults.ShaderDir
	}
	return &VulkanRenderer{
		config:    config,
		context:   NewVulkanContext(),
		pool:      resources.NewPool[*VulkanMesh, *VulkanTexture](),
		queue:     queue.NewRenderQueue(64),
		scheduler: frame.NewScheduler(frame.MaxFramesInFlight),
	}
}

// Setup creates everything in dependency order. On failure whatever was created is released
// and the error wraps core.ErrInitialization.
func (vr *VulkanRenderer) Setup(surface metadata.Surface) error {
	if vr.isSetup || vr.destroyed {
		return fmt.Errorf("%w: vulkan renderer already set up", core.ErrInitialization)
	}
	if surface == nil {
		return fmt.Errorf("%w: vulkan renderer needs a surface", core.ErrInitialization)
	}
	vr.surface = surface

	if err := vr.initialize(); err != nil {
		core.LogError("Vulkan renderer initialization failed: %s", err)
		vr.teardown()
		return fmt.Errorf("%w: %w", core.ErrInitialization, err)
	}
	vr.isSetup = true
	core.LogInfo("Vulkan renderer initialized successfully (validation: %t).", vr.validation)
	return nil
}

func (vr *VulkanRenderer) initialize() error {
	if err := loadVulkan(vr.surface); err != nil {
		return err
	}

	width, height := vr.surface.GetFramebufferSize()
	vr.context.FramebufferWidth = uint32(max(width, 0))
	vr.context.FramebufferHeight = uint32(max(height, 0))

	validation, err := createInstance(vr.context, vr.config, vr.surface)
	vr.validation = validation
	if err != nil {
		return err
	}

	// Surface
	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.surface.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		return fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	if surface == 0 {
		return errors.New("vulkan surface creation returned a null surface")
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		return err
	}

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.config.PreferMailbox)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height

	rp, err := RenderpassCreate(vr.context, vr.config.ClearColor, 1.0, 0)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	// Swapchain framebuffers.
	if err := regenerateFramebuffers(vr.context); err != nil {
		return err
	}

	descriptors, err := DescriptorsCreate(vr.context, vr.scheduler.FramesInFlight(), vr.config.TextureDescriptorPoolSize)
	if err != nil {
		return err
	}
	vr.context.Descriptors = descriptors

	if vr.context.Sampler, err = SamplerCreate(vr.context); err != nil {
		return err
	}

	pipeline, err := MainPipelineCreate(vr.context, vr.config.ShaderDir)
	if err != nil {
		return err
	}
	vr.context.Pipeline = pipeline

	// Frame slots: command buffer, sync objects and uniforms.
	vr.context.Frames = make([]*VulkanFrame, 0, vr.scheduler.FramesInFlight())
	for i := uint32(0); i < vr.scheduler.FramesInFlight(); i++ {
		f, err := FrameCreate(vr.context)
		if err != nil {
			return err
		}
		vr.context.Frames = append(vr.context.Frames, f)
	}

	// Entries point at fences owned by Frames; nil until an image is first submitted.
	vr.context.ImagesInFlight = make([]*VulkanFence, vr.context.Swapchain.ImageCount)

	def, err := vr.createTexture(metadata.DEFAULT_TEXTURE_NAME, 1, 1, metadata.DefaultTexturePixels())
	if err != nil {
		return fmt.Errorf("default texture: %w", err)
	}
	return vr.pool.SetDefaultTexture(def)
}

// teardownStep is one stage of releasing the renderer. Each tolerates a partial setup.
type teardownStep struct {
	name string
	run  func(vc *VulkanContext)
}

// teardownSteps lists the release order: frame slots and the swapchain, then the resource pool,
// then the device.
func (vr *VulkanRenderer) teardownSteps() []teardownStep {
	return []teardownStep{
		{"frame slots", func(vc *VulkanContext) {
			for _, f := range vc.Frames {
				f.Destroy(vc)
			}
			vc.Frames = nil
			vc.ImagesInFlight = nil
		}},
		// Framebuffers go with the swapchain.
		{"swapchain", func(vc *VulkanContext) {
			if vc.Swapchain != nil {
				vc.Swapchain.SwapchainDestroy(vc)
				vc.Swapchain = nil
			}
		}},
		{"resource pool", func(vc *VulkanContext) {
			vr.pool.Release(
				func(m *VulkanMesh) { m.Destroy(vc) },
				func(t *VulkanTexture) { t.Destroy(vc) },
			)
		}},
		{"pipeline", func(vc *VulkanContext) {
			if vc.Pipeline != nil {
				_ = vc.Pipeline.Destroy(vc)
				vc.Pipeline = nil
			}
			if vc.Sampler != nil {
				vk.DestroySampler(vc.Device.LogicalDevice, vc.Sampler, vc.Allocator)
				vc.Sampler = nil
			}
			if vc.Descriptors != nil {
				vc.Descriptors.Destroy(vc)
				vc.Descriptors = nil
			}
			if vc.MainRenderpass != nil {
				vc.MainRenderpass.RenderpassDestroy(vc)
				vc.MainRenderpass = nil
			}
		}},
		{"device", func(vc *VulkanContext) {
			core.LogDebug("Destroying Vulkan device...")
			DeviceDestroy(vc)
			destroyInstance(vc)
		}},
	}
}

func (vr *VulkanRenderer) teardown() {
	vc := vr.context
	live := vc.Device.LogicalDevice != nil
	if live {
		vk.DeviceWaitIdle(vc.Device.LogicalDevice)
	}
	for _, step := range vr.teardownSteps() {
		// Without a logical device only the device step has anything to release.
		if !live && step.name != "device" {
			continue
		}
		step.run(vc)
	}
}

// Destruct waits for the GPU, then releases every resource and the device. It runs once.
func (vr *VulkanRenderer) Destruct() error {
	if !vr.isSetup {
		return errors.New("vulkan renderer is not set up")
	}
	if vr.destroyed {
		return errors.New("vulkan renderer already destroyed")
	}
	vr.queue.Clear()
	vr.teardown()
	vr.destroyed = true
	core.LogInfo("Vulkan renderer destroyed.")
	return nil
}

func (vr *VulkanRenderer) RenderFrame(ctx context.Context) error {
	if !vr.isSetup || vr.destroyed {
		return fmt.Errorf("%w: render frame without a live device", core.ErrInitialization)
	}
	return vr.scheduler.RenderFrame(ctx, vr, vr.queue.Objects())
}

func (vr *VulkanRenderer) NotifyResized() {
	vr.scheduler.NotifyResized()
}

func (vr *VulkanRenderer) LoadMesh(path string) (metadata.MeshHandle, error) {
	data, err := loaders.LoadMeshData(path)
	if err != nil {
		return metadata.MeshHandle{}, err
	}
	return vr.createMesh(filepath.Base(path), data.Vertices, data.Indices)
}

func (vr *VulkanRenderer) LoadTexture(path string) (metadata.TextureHandle, error) {
	data, err := loaders.LoadTextureData(path)
	if err != nil {
		return metadata.TextureHandle{}, err
	}
	return vr.createTexture(filepath.Base(path), data.Width, data.Height, data.Pixels)
}

func (vr *VulkanRenderer) CreateMesh(vertices []metadata.Vertex, indices []uint32) (metadata.MeshHandle, error) {
	return vr.createMesh("", vertices, indices)
}

func (vr *VulkanRenderer) createMesh(name string, vertices []metadata.Vertex, indices []uint32) (metadata.MeshHandle, error) {
	if err := resources.ValidateMesh(vertices, indices); err != nil {
		core.LogError(err.Error())
		return metadata.MeshHandle{}, err
	}
	var mesh *VulkanMesh
	err := vr.context.LockPool.SafeCall(ResourceManagement, func() error {
		var err error
		mesh, err = MeshCreate(vr.context, vertices, indices)
		return err
	})
	if err != nil {
		return metadata.MeshHandle{}, fmt.Errorf("%w: uploading mesh %q: %w", core.ErrResourceLoad, name, err)
	}
	h := vr.pool.AddMesh(name, uint32(len(vertices)), uint32(len(indices)), mesh)
	core.LogDebug("%s uploaded (%d vertices, %d indices)", h, len(vertices), len(indices))
	return h, nil
}

func (vr *VulkanRenderer) CreateTexture(width, height uint32, pixels []byte) (metadata.TextureHandle, error) {
	return vr.createTexture("", width, height, pixels)
}

func (vr *VulkanRenderer) createTexture(name string, width, height uint32, pixels []byte) (metadata.TextureHandle, error) {
	if err := resources.ValidateTexture(width, height, pixels); err != nil {
		core.LogError(err.Error())
		return metadata.TextureHandle{}, err
	}
	var texture *VulkanTexture
	err := vr.context.LockPool.SafeCall(ResourceManagement, func() error {
		var err error
		texture, err = TextureCreate(vr.context, width, height, pixels)
		return err
	})
	if err != nil {
		return metadata.TextureHandle{}, fmt.Errorf("%w: uploading texture %q: %w", core.ErrResourceLoad, name, err)
	}
	h := vr.pool.AddTexture(name, width, height, texture)
	core.LogDebug("%s uploaded (%dx%d)", h, width, height)
	return h, nil
}

func (vr *VulkanRenderer) DefaultTexture() metadata.TextureHandle {
	return vr.pool.DefaultTexture()
}

func (vr *VulkanRenderer) SubmitRenderObject(mesh metadata.MeshHandle, texture metadata.TextureHandle, transform mgl32.Mat4) error {
	return vr.queue.Submit(mesh, texture, transform, vr.pool)
}

func (vr *VulkanRenderer) ClearRenderQueue() {
	vr.queue.Clear()
}

func (vr *VulkanRenderer) SetViewMatrix(m mgl32.Mat4) {
	vr.scheduler.SetViewMatrix(m)
}

func (vr *VulkanRenderer) SetProjectionMatrix(m mgl32.Mat4) {
	vr.scheduler.SetProjectionMatrix(m)
}

func (vr *VulkanRenderer) LastFrame() metadata.FrameStats {
	return vr.scheduler.LastFrame()
}
