package vulkan

import (
	"context"
	"sync"
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

type fakeSurface struct {
	extensions []string
	procAddr   unsafe.Pointer
}

func (s *fakeSurface) GetRequiredInstanceExtensions() []string { return s.extensions }

func (s *fakeSurface) CreateWindowSurface(interface{}, unsafe.Pointer) (uintptr, error) {
	return 0, nil
}

func (s *fakeSurface) GetFramebufferSize() (int, int) { return 640, 480 }

func (s *fakeSurface) GetVulkanProcAddr() unsafe.Pointer { return s.procAddr }

func TestRequiredInstanceExtensions(t *testing.T) {
	platform := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}

	got := requiredInstanceExtensions(platform, "linux", false)
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, got)

	got = requiredInstanceExtensions(platform, "linux", true)
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtensionName}, got)

	got = requiredInstanceExtensions([]string{"VK_EXT_metal_surface"}, "darwin", false)
	assert.Equal(t, []string{
		"VK_KHR_surface",
		"VK_EXT_metal_surface",
		"VK_KHR_portability_enumeration",
		"VK_KHR_get_physical_device_properties2",
	}, got)
}

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate, false))
	assert.Contains(t, VulkanResultString(vk.ErrorDeviceLost, true), "lost")
	assert.Equal(t, "VkResult(-12345)", VulkanResultString(vk.Result(-12345), false))

	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))

	assert.EqualError(t, vulkanError("vkQueueSubmit", vk.ErrorDeviceLost), "vkQueueSubmit failed with VK_ERROR_DEVICE_LOST")
}

func TestVulkanSafeString(t *testing.T) {
	assert.Equal(t, "main\x00", VulkanSafeString("main"))
	assert.Equal(t, "main\x00", VulkanSafeString("main\x00"))
	assert.Equal(t, "\x00", VulkanSafeString(""))

	in := []string{"a", "b\x00"}
	out := VulkanSafeStrings(in)
	assert.Equal(t, []string{"a\x00", "b\x00"}, out)
	assert.Equal(t, "a", in[0], "input must not be modified")
}

func TestLockPoolSerializesGroup(t *testing.T) {
	pool := NewVulkanLockPool()

	var wg sync.WaitGroup
	inside := 0
	maxInside := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pool.SafeCall(ResourceManagement, func() error {
				inside++
				maxInside = max(maxInside, inside)
				inside--
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInside)
}

func TestLockPoolQueueCallsAreIndependentOfGroups(t *testing.T) {
	pool := NewVulkanLockPool()

	// A queue call made while a group lock is held must not deadlock.
	err := pool.SafeCall(SwapchainManagement, func() error {
		return pool.SafeQueueCall(0, func() error {
			return pool.SafeQueueCall(1, func() error { return nil })
		})
	})
	require.NoError(t, err)
	assert.Same(t, pool.queueLock(0), pool.queueLock(0))
	assert.NotSame(t, pool.queueLock(0), pool.queueLock(1))
}

func TestVertexAttributesMatchVertexLayout(t *testing.T) {
	attrs := vertexAttributes()
	require.Len(t, attrs, 3)
	for i, a := range attrs {
		assert.Equal(t, uint32(i), a.Location)
		assert.Equal(t, uint32(0), a.Binding)
	}
	assert.Equal(t, uint32(0), attrs[0].Offset)
	assert.Equal(t, uint32(12), attrs[1].Offset)
	assert.Equal(t, uint32(24), attrs[2].Offset)
	assert.Equal(t, vk.FormatR32g32Sfloat, attrs[2].Format)
	assert.Equal(t, uint32(32), metadata.VertexSize)
}

func TestUniformAndPushConstantSizes(t *testing.T) {
	assert.Equal(t, vk.DeviceSize(128), globalUniformSize)
	assert.Equal(t, uint32(64), PUSH_CONSTANT_SIZE)
}

func TestFullViewport(t *testing.T) {
	viewport, scissor := fullViewport(vk.Extent2D{Width: 1280, Height: 720})
	assert.Equal(t, float32(1280), viewport.Width)
	assert.Equal(t, float32(720), viewport.Height)
	assert.Equal(t, float32(1), viewport.MaxDepth)
	assert.Equal(t, vk.Extent2D{Width: 1280, Height: 720}, scissor.Extent)
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(metadata.RendererBackendConfig{ApplicationName: "test"})
	defaults := metadata.DefaultRendererBackendConfig()
	assert.Equal(t, defaults.FenceTimeout, r.config.FenceTimeout)
	assert.Equal(t, defaults.TextureDescriptorPoolSize, r.config.TextureDescriptorPoolSize)
	assert.Equal(t, defaults.ShaderDir, r.config.ShaderDir)
	assert.Equal(t, "test", r.config.ApplicationName)
}

func TestLifecycleGuards(t *testing.T) {
	r := New(metadata.DefaultRendererBackendConfig())

	assert.ErrorIs(t, r.RenderFrame(context.Background()), core.ErrInitialization)
	assert.Error(t, r.Destruct())
	assert.ErrorIs(t, r.Setup(nil), core.ErrInitialization)
}

func TestSetupWithoutLoaderFails(t *testing.T) {
	r := New(metadata.DefaultRendererBackendConfig())

	err := r.Setup(&fakeSurface{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInitialization)
	assert.True(t, core.IsFatal(err))
	assert.Error(t, r.Destruct(), "a failed setup leaves nothing to destruct")
}

func TestTeardownReleasesSwapchainBeforeResourcesBeforeDevice(t *testing.T) {
	vr := New(metadata.DefaultRendererBackendConfig())

	var names []string
	for _, step := range vr.teardownSteps() {
		names = append(names, step.name)
	}
	assert.Equal(t, []string{"frame slots", "swapchain", "resource pool", "pipeline", "device"}, names)
}

func TestSynchronizationGroupHasItsOwnLock(t *testing.T) {
	pool := NewVulkanLockPool()
	syncLock := pool.lockFor(SynchronizationManagement)

	assert.Same(t, syncLock, pool.lockFor(SynchronizationManagement))
	for _, group := range []LockGroup{ResourceManagement, CommandBufferManagement, DescriptorManagement, PipelineManagement, SwapchainManagement} {
		assert.NotSame(t, syncLock, pool.lockFor(group), "%s", group)
	}
}
