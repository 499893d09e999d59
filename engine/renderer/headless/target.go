package headless

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/queue"
)

func (r *HeadlessRenderer) WaitForSlot(ctx context.Context, slot uint32) error {
	return ctx.Err()
}

func (r *HeadlessRenderer) AcquireImage(slot uint32) (uint32, error) {
	if r.staleFrames > 0 {
		r.staleFrames--
		return 0, core.ErrSwapchainStale
	}
	return uint32(r.submits % swapchainImages), nil
}

func (r *HeadlessRenderer) UpdateUniforms(slot uint32, camera metadata.CameraMatrices) error {
	r.camera = camera
	return nil
}

func (r *HeadlessRenderer) Record(slot uint32, image uint32, objects []metadata.RenderObject) (int, error) {
	r.recording = r.recording[:0]
	draws, err := queue.Record[*headlessMesh, *headlessTexture](&recorder{r: r}, r.pool, objects)
	if err != nil {
		return draws, err
	}
	r.lastDraws = append([]DrawCall(nil), r.recording...)
	return draws, nil
}

func (r *HeadlessRenderer) Submit(ctx context.Context, slot uint32, image uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.submits++
	return nil
}

func (r *HeadlessRenderer) Present(slot uint32, image uint32) error {
	return nil
}

func (r *HeadlessRenderer) Recreate() error {
	if r.surface == nil {
		return nil
	}
	w, h := r.surface.GetFramebufferSize()
	if w == 0 || h == 0 {
		return core.ErrSwapchainStale
	}
	r.width, r.height = uint32(w), uint32(h)
	core.LogDebug("headless swapchain recreated at %dx%d", w, h)
	return nil
}

type recorder struct {
	r       *HeadlessRenderer
	mesh    *headlessMesh
	texture *headlessTexture
	model   mgl32.Mat4
}

func (c *recorder) BindGlobals() error {
	return nil
}

func (c *recorder) BindMesh(mesh *headlessMesh) error {
	c.mesh = mesh
	return nil
}

func (c *recorder) BindTexture(texture *headlessTexture) error {
	c.texture = texture
	return nil
}

func (c *recorder) PushTransform(transform mgl32.Mat4) error {
	c.model = transform
	return nil
}

func (c *recorder) DrawIndexed(indexCount uint32) error {
	if c.mesh == nil || c.texture == nil {
		return fmt.Errorf("draw without bound mesh and texture")
	}
	c.r.recording = append(c.r.recording, DrawCall{
		Mesh:       c.mesh.name,
		Texture:    c.texture.name,
		IndexCount: indexCount,
		Transform:  c.model,
	})
	return nil
}
