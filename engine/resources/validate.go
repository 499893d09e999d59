package resources

import (
	"fmt"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// ValidateMesh checks geometry before any GPU work is done for it.
func ValidateMesh(vertices []metadata.Vertex, indices []uint32) error {
	if len(vertices) == 0 {
		return fmt.Errorf("%w: mesh has no vertices", core.ErrResourceLoad)
	}
	if len(indices) == 0 {
		return fmt.Errorf("%w: mesh has no indices", core.ErrResourceLoad)
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("%w: index %d at position %d is out of range (%d vertices)", core.ErrResourceLoad, idx, i, len(vertices))
		}
	}
	return nil
}

// ValidateTexture checks that pixels holds exactly width*height RGBA8 texels.
func ValidateTexture(width, height uint32, pixels []byte) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: texture size %dx%d", core.ErrResourceLoad, width, height)
	}
	want := uint64(width) * uint64(height) * metadata.TextureChannelCount
	if uint64(len(pixels)) != want {
		return fmt.Errorf("%w: texture %dx%d needs %d bytes, got %d", core.ErrResourceLoad, width, height, want, len(pixels))
	}
	return nil
}
