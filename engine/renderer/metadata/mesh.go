package metadata

import "github.com/cbabos/VulkanGameEngineExperiment/engine/containers"

// MeshHandle refers to a mesh registered with a renderer backend.
type MeshHandle containers.Handle

// TextureHandle refers to a texture registered with a renderer backend.
type TextureHandle containers.Handle

func (h MeshHandle) IsValid() bool {
	return !containers.Handle(h).IsZero()
}

func (h MeshHandle) String() string {
	return "mesh " + containers.Handle(h).String()
}

func (h TextureHandle) IsValid() bool {
	return !containers.Handle(h).IsZero()
}

func (h TextureHandle) String() string {
	return "texture " + containers.Handle(h).String()
}
