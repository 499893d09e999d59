package queue

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/resources"
)

// RenderQueue holds the draw requests of the current frame in submission order.
type RenderQueue struct {
	objects []metadata.RenderObject
}

func NewRenderQueue(capacity int) *RenderQueue {
	return &RenderQueue{
		objects: make([]metadata.RenderObject, 0, capacity),
	}
}

// Submit appends a draw request. Both handles must be known to registry, otherwise
// the queue is left untouched and ErrResourceNotRegistered is returned.
func (q *RenderQueue) Submit(mesh metadata.MeshHandle, texture metadata.TextureHandle, transform mgl32.Mat4, registry resources.Registry) error {
	if !registry.HasMesh(mesh) {
		return fmt.Errorf("%w: submit with %s", core.ErrResourceNotRegistered, mesh)
	}
	if !registry.HasTexture(texture) {
		return fmt.Errorf("%w: submit with %s", core.ErrResourceNotRegistered, texture)
	}
	q.objects = append(q.objects, metadata.RenderObject{
		Mesh:      mesh,
		Texture:   texture,
		Transform: transform,
	})
	return nil
}

// Clear empties the queue and keeps its storage.
func (q *RenderQueue) Clear() {
	q.objects = q.objects[:0]
}

func (q *RenderQueue) Len() int {
	return len(q.objects)
}

// Objects returns the queued requests in submission order. The slice is only valid until the next Submit or Clear.
func (q *RenderQueue) Objects() []metadata.RenderObject {
	return q.objects
}
