package resources

import (
	"fmt"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/containers"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// Pool owns every mesh and texture a backend created. Entries live until Release.
type Pool[M any, T any] struct {
	meshes         *containers.Arena[*MeshRecord[M]]
	textures       *containers.Arena[*TextureRecord[T]]
	defaultTexture metadata.TextureHandle
}

func NewPool[M any, T any]() *Pool[M, T] {
	return &Pool[M, T]{
		meshes:   containers.NewArena[*MeshRecord[M]](16),
		textures: containers.NewArena[*TextureRecord[T]](16),
	}
}

func (p *Pool[M, T]) AddMesh(name string, vertexCount, indexCount uint32, gpu M) metadata.MeshHandle {
	rec := &MeshRecord[M]{
		ID:          core.IdentifierAquireNewID(),
		Name:        name,
		VertexCount: vertexCount,
		IndexCount:  indexCount,
		GPU:         gpu,
	}
	h := metadata.MeshHandle(p.meshes.Insert(rec))
	core.LogDebug("registered %s `%s` (%s): %d vertices, %d indices", h, name, core.IdentifierShort(rec.ID), vertexCount, indexCount)
	return h
}

// Mesh resolves h, failing with ErrResourceNotRegistered when h is unknown or stale.
func (p *Pool[M, T]) Mesh(h metadata.MeshHandle) (*MeshRecord[M], error) {
	rec, ok := p.meshes.Get(containers.Handle(h))
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrResourceNotRegistered, h)
	}
	return rec, nil
}

func (p *Pool[M, T]) HasMesh(h metadata.MeshHandle) bool {
	return p.meshes.Contains(containers.Handle(h))
}

func (p *Pool[M, T]) MeshCount() int {
	return p.meshes.Len()
}

func (p *Pool[M, T]) AddTexture(name string, width, height uint32, gpu T) metadata.TextureHandle {
	rec := &TextureRecord[T]{
		ID:     core.IdentifierAquireNewID(),
		Name:   name,
		Width:  width,
		Height: height,
		GPU:    gpu,
	}
	h := metadata.TextureHandle(p.textures.Insert(rec))
	core.LogDebug("registered %s `%s` (%s): %dx%d", h, name, core.IdentifierShort(rec.ID), width, height)
	return h
}

// Texture resolves h, failing with ErrResourceNotRegistered when h is unknown or stale.
func (p *Pool[M, T]) Texture(h metadata.TextureHandle) (*TextureRecord[T], error) {
	rec, ok := p.textures.Get(containers.Handle(h))
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrResourceNotRegistered, h)
	}
	return rec, nil
}

func (p *Pool[M, T]) HasTexture(h metadata.TextureHandle) bool {
	return p.textures.Contains(containers.Handle(h))
}

func (p *Pool[M, T]) TextureCount() int {
	return p.textures.Len()
}

func (p *Pool[M, T]) SetDefaultTexture(h metadata.TextureHandle) error {
	if !p.HasTexture(h) {
		return fmt.Errorf("%w: default %s", core.ErrResourceNotRegistered, h)
	}
	p.defaultTexture = h
	return nil
}

// DefaultTexture is the 1x1 white texture created at setup. Zero before setup.
func (p *Pool[M, T]) DefaultTexture() metadata.TextureHandle {
	return p.defaultTexture
}

// Release hands every GPU value to the destroy callbacks exactly once and empties the pool.
// Outstanding handles become stale.
func (p *Pool[M, T]) Release(destroyMesh func(M), destroyTexture func(T)) {
	p.meshes.Each(func(_ containers.Handle, rec *MeshRecord[M]) bool {
		if destroyMesh != nil {
			destroyMesh(rec.GPU)
		}
		return true
	})
	p.textures.Each(func(_ containers.Handle, rec *TextureRecord[T]) bool {
		if destroyTexture != nil {
			destroyTexture(rec.GPU)
		}
		return true
	})
	core.LogDebug("released %d meshes and %d textures", p.meshes.Len(), p.textures.Len())
	p.meshes.Clear()
	p.textures.Clear()
	p.defaultTexture = metadata.TextureHandle{}
}
