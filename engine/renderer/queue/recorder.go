package queue

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/resources"
)

// CommandRecorder receives the draw commands of one frame. M and T are the backend mesh and texture types.
type CommandRecorder[M any, T any] interface {
	// BindGlobals binds the pipeline and the per-frame view/projection set.
	BindGlobals() error
	BindMesh(mesh M) error
	BindTexture(texture T) error
	// PushTransform uploads the model matrix as a push constant.
	PushTransform(transform mgl32.Mat4) error
	DrawIndexed(indexCount uint32) error
}

// Record emits one indexed draw per object, in order, and returns how many draws were recorded.
func Record[M any, T any](rec CommandRecorder[M, T], pool *resources.Pool[M, T], objects []metadata.RenderObject) (int, error) {
	if err := rec.BindGlobals(); err != nil {
		return 0, err
	}
	draws := 0
	for _, obj := range objects {
		mesh, err := pool.Mesh(obj.Mesh)
		if err != nil {
			return draws, err
		}
		texture, err := pool.Texture(obj.Texture)
		if err != nil {
			return draws, err
		}
		if err := rec.BindMesh(mesh.GPU); err != nil {
			return draws, err
		}
		if err := rec.BindTexture(texture.GPU); err != nil {
			return draws, err
		}
		if err := rec.PushTransform(obj.Transform); err != nil {
			return draws, err
		}
		if err := rec.DrawIndexed(mesh.IndexCount); err != nil {
			return draws, err
		}
		draws++
	}
	if draws > 0 {
		core.LogDebug("recorded %d draws", draws)
	}
	return draws, nil
}
