package renderer

import (
	"fmt"
	"strings"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/headless"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/vulkan"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
	// Headless records draws without a GPU. Used by tests and CI.
	Headless
)

func (t RendererType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case Headless:
		return "headless"
	}
	return fmt.Sprintf("RendererType(%d)", uint8(t))
}

func ParseRendererType(name string) (RendererType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "vulkan":
		return Vulkan, nil
	case "headless", "none", "dummy":
		return Headless, nil
	}
	return Vulkan, fmt.Errorf("unknown renderer backend `%s`", name)
}

// New builds the backend selected by kind. Setup still has to be called.
func New(kind RendererType, config metadata.RendererBackendConfig) (RendererBackend, error) {
	switch kind {
	case Vulkan:
		return vulkan.New(config), nil
	case Headless:
		return headless.New(config), nil
	}
	return nil, fmt.Errorf("unsupported renderer backend %s", kind)
}
