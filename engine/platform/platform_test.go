package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

func TestTranslateKey(t *testing.T) {
	assert.Equal(t, core.KEY_ESCAPE, translateKey(glfw.KeyEscape))
	assert.Equal(t, core.KEY_W, translateKey(glfw.KeyW))
	assert.Equal(t, core.KEY_UNKNOWN, translateKey(glfw.KeyKP5))
}

func TestFramebufferSizeCallbackFiresResize(t *testing.T) {
	require.True(t, core.EventSystemInitialize())
	defer core.EventSystemShutdown()

	var got *core.SystemEvent
	core.EventRegister(core.EVENT_CODE_RESIZED, func(ctx core.EventContext) {
		got = ctx.Data.(*core.SystemEvent)
	})

	framebufferSizeCallback(nil, 800, 600)
	require.NotNil(t, got)
	assert.Equal(t, uint32(800), got.WindowWidth)
	assert.Equal(t, uint32(600), got.WindowHeight)

	framebufferSizeCallback(nil, -1, 0)
	assert.Zero(t, got.WindowWidth)
}

func TestKeyCallbackUpdatesInput(t *testing.T) {
	require.NoError(t, core.InputInitialize())
	defer core.InputShutdown()

	keyCallback(nil, glfw.KeyA, 0, glfw.Press, 0)
	assert.True(t, core.InputIsKeyDown(core.KEY_A))

	keyCallback(nil, glfw.KeyA, 0, glfw.Repeat, 0)
	assert.True(t, core.InputIsKeyDown(core.KEY_A))

	keyCallback(nil, glfw.KeyA, 0, glfw.Release, 0)
	assert.True(t, core.InputIsKeyUp(core.KEY_A))
}

func TestUnstartedPlatformHasNoFramebuffer(t *testing.T) {
	p := New()
	w, h := p.GetFramebufferSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
}
