package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name    string
		formats []vk.SurfaceFormat
		want    vk.SurfaceFormat
	}{
		{"preferred present", []vk.SurfaceFormat{unorm, rgba, srgb}, srgb},
		{"falls back to first", []vk.SurfaceFormat{rgba, unorm}, rgba},
		{"nothing advertised", nil, srgb},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chooseSurfaceFormat(tt.formats))
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	all := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo, vk.PresentModeMailbox}

	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(all, true))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(all, false))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeFifo}, true))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(nil, true))
}

func TestChooseExtent(t *testing.T) {
	t.Run("fixed by the surface", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{
			CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
		}
		assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, chooseExtent(caps, 1024, 768))
	})

	t.Run("chosen by the application", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{
			CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
			MinImageExtent: vk.Extent2D{Width: 64, Height: 64},
			MaxImageExtent: vk.Extent2D{Width: 2048, Height: 2048},
		}
		assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, chooseExtent(caps, 1024, 768))
		assert.Equal(t, vk.Extent2D{Width: 2048, Height: 64}, chooseExtent(caps, 5000, 10))
	})

	t.Run("minimized window", func(t *testing.T) {
		caps := vk.SurfaceCapabilities{
			CurrentExtent: vk.Extent2D{Width: 0, Height: 0},
		}
		got := chooseExtent(caps, 0, 0)
		assert.Zero(t, got.Width)
		assert.Zero(t, got.Height)
	})
}

func TestChooseImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(3), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), chooseImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}
