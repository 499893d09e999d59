package headless

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets/loaders"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/frame"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/queue"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/resources"
)

// swapchainImages mirrors the usual min+1 image count of a FIFO swapchain.
const swapchainImages = 3

type headlessMesh struct {
	name     string
	vertices []metadata.Vertex
	indices  []uint32
}

type headlessTexture struct {
	name   string
	width  uint32
	height uint32
	pixels []byte
}

// DrawCall is one recorded indexed draw.
type DrawCall struct {
	Mesh       string
	Texture    string
	IndexCount uint32
	Transform  mgl32.Mat4
}

// HeadlessRenderer runs the full frame protocol without a GPU. Resources are kept in
// CPU memory so tests can read them back.
type HeadlessRenderer struct {
	config    metadata.RendererBackendConfig
	surface   metadata.Surface
	pool      *resources.Pool[*headlessMesh, *headlessTexture]
	queue     *queue.RenderQueue
	scheduler *frame.Scheduler

	isSetup   bool
	destroyed bool

	width       uint32
	height      uint32
	staleFrames int
	camera      metadata.CameraMatrices
	recording   []DrawCall
	lastDraws   []DrawCall
	submits     uint64
}

func New(config metadata.RendererBackendConfig) *HeadlessRenderer {
	return &HeadlessRenderer{
		config:    config,
		pool:      resources.NewPool[*headlessMesh, *headlessTexture](),
		queue:     queue.NewRenderQueue(64),
		scheduler: frame.NewScheduler(frame.MaxFramesInFlight),
	}
}

// Setup accepts a nil surface; the swapchain extent then stays at 1x1.
func (r *HeadlessRenderer) Setup(surface metadata.Surface) error {
	if r.isSetup {
		return fmt.Errorf("%w: headless renderer already set up", core.ErrInitialization)
	}
	r.surface = surface
	r.width, r.height = 1, 1
	if surface != nil {
		w, h := surface.GetFramebufferSize()
		r.width, r.height = uint32(w), uint32(h)
	}

	def, err := r.createTexture(metadata.DEFAULT_TEXTURE_NAME, 1, 1, metadata.DefaultTexturePixels())
	if err != nil {
		return fmt.Errorf("%w: default texture: %w", core.ErrInitialization, err)
	}
	if err := r.pool.SetDefaultTexture(def); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInitialization, err)
	}
	r.isSetup = true
	core.LogInfo("Headless renderer initialized (%dx%d).", r.width, r.height)
	return nil
}

func (r *HeadlessRenderer) Destruct() error {
	if !r.isSetup {
		return errors.New("headless renderer is not set up")
	}
	if r.destroyed {
		return errors.New("headless renderer already destroyed")
	}
	r.pool.Release(
		func(m *headlessMesh) { m.vertices, m.indices = nil, nil },
		func(t *headlessTexture) { t.pixels = nil },
	)
	r.queue.Clear()
	r.destroyed = true
	core.LogInfo("Headless renderer destroyed.")
	return nil
}

func (r *HeadlessRenderer) RenderFrame(ctx context.Context) error {
	if !r.isSetup || r.destroyed {
		return fmt.Errorf("%w: render frame without a live device", core.ErrInitialization)
	}
	return r.scheduler.RenderFrame(ctx, r, r.queue.Objects())
}

func (r *HeadlessRenderer) NotifyResized() {
	r.scheduler.NotifyResized()
}

func (r *HeadlessRenderer) LoadMesh(path string) (metadata.MeshHandle, error) {
	data, err := loaders.LoadMeshData(path)
	if err != nil {
		return metadata.MeshHandle{}, err
	}
	return r.createMesh(filepath.Base(path), data.Vertices, data.Indices)
}

func (r *HeadlessRenderer) LoadTexture(path string) (metadata.TextureHandle, error) {
	data, err := loaders.LoadTextureData(path)
	if err != nil {
		return metadata.TextureHandle{}, err
	}
	return r.createTexture(filepath.Base(path), data.Width, data.Height, data.Pixels)
}

func (r *HeadlessRenderer) CreateMesh(vertices []metadata.Vertex, indices []uint32) (metadata.MeshHandle, error) {
	return r.createMesh("", vertices, indices)
}

func (r *HeadlessRenderer) createMesh(name string, vertices []metadata.Vertex, indices []uint32) (metadata.MeshHandle, error) {
	if err := resources.ValidateMesh(vertices, indices); err != nil {
		core.LogError(err.Error())
		return metadata.MeshHandle{}, err
	}
	m := &headlessMesh{
		name:     name,
		vertices: append([]metadata.Vertex(nil), vertices...),
		indices:  append([]uint32(nil), indices...),
	}
	h := r.pool.AddMesh(name, uint32(len(vertices)), uint32(len(indices)), m)
	if m.name == "" {
		m.name = h.String()
	}
	return h, nil
}

func (r *HeadlessRenderer) CreateTexture(width, height uint32, pixels []byte) (metadata.TextureHandle, error) {
	return r.createTexture("", width, height, pixels)
}

func (r *HeadlessRenderer) createTexture(name string, width, height uint32, pixels []byte) (metadata.TextureHandle, error) {
	if err := resources.ValidateTexture(width, height, pixels); err != nil {
		core.LogError(err.Error())
		return metadata.TextureHandle{}, err
	}
	t := &headlessTexture{
		name:   name,
		width:  width,
		height: height,
		pixels: append([]byte(nil), pixels...),
	}
	h := r.pool.AddTexture(name, width, height, t)
	if t.name == "" {
		t.name = h.String()
	}
	return h, nil
}

func (r *HeadlessRenderer) DefaultTexture() metadata.TextureHandle {
	return r.pool.DefaultTexture()
}

func (r *HeadlessRenderer) SubmitRenderObject(mesh metadata.MeshHandle, texture metadata.TextureHandle, transform mgl32.Mat4) error {
	return r.queue.Submit(mesh, texture, transform, r.pool)
}

func (r *HeadlessRenderer) ClearRenderQueue() {
	r.queue.Clear()
}

func (r *HeadlessRenderer) SetViewMatrix(m mgl32.Mat4) {
	r.scheduler.SetViewMatrix(m)
}

func (r *HeadlessRenderer) SetProjectionMatrix(m mgl32.Mat4) {
	r.scheduler.SetProjectionMatrix(m)
}

func (r *HeadlessRenderer) LastFrame() metadata.FrameStats {
	return r.scheduler.LastFrame()
}

// QueueLen is the number of objects waiting for the next frame.
func (r *HeadlessRenderer) QueueLen() int {
	return r.queue.Len()
}

// LastDraws returns the draws recorded by the last frame that reached recording.
func (r *HeadlessRenderer) LastDraws() []DrawCall {
	return r.lastDraws
}

// MeshIndices reads back the index data stored for h.
func (r *HeadlessRenderer) MeshIndices(h metadata.MeshHandle) ([]uint32, error) {
	rec, err := r.pool.Mesh(h)
	if err != nil {
		return nil, err
	}
	return append([]uint32(nil), rec.GPU.indices...), nil
}

// MeshCounts returns the vertex and index counts registered for h.
func (r *HeadlessRenderer) MeshCounts(h metadata.MeshHandle) (uint32, uint32, error) {
	rec, err := r.pool.Mesh(h)
	if err != nil {
		return 0, 0, err
	}
	return rec.VertexCount, rec.IndexCount, nil
}

// TexturePixels reads back the texels stored for h.
func (r *HeadlessRenderer) TexturePixels(h metadata.TextureHandle) ([]byte, error) {
	rec, err := r.pool.Texture(h)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), rec.GPU.pixels...), nil
}

// Recreations counts swapchain rebuilds.
func (r *HeadlessRenderer) Recreations() uint64 {
	return r.scheduler.Recreations()
}

// SimulateStaleSwapchain makes the next n acquires report an out of date swapchain.
func (r *HeadlessRenderer) SimulateStaleSwapchain(n int) {
	r.staleFrames = n
}

func (r *HeadlessRenderer) Camera() metadata.CameraMatrices {
	return r.camera
}
