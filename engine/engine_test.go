package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/headless"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// fakeWindow runs script[n] during the n-th pump and reports a close after maxPumps.
type fakeWindow struct {
	width, height int
	maxPumps      int
	pumps         int
	waits         int
	script        map[int]func(w *fakeWindow)
	started       bool
	shutdown      bool
}

func (w *fakeWindow) Startup(string, uint32, uint32, uint32, uint32) error {
	w.started = true
	return nil
}

func (w *fakeWindow) PumpMessages() bool {
	w.pumps++
	if f := w.script[w.pumps]; f != nil {
		f(w)
	}
	return w.pumps <= w.maxPumps
}

func (w *fakeWindow) WaitMessages(time.Duration) { w.waits++ }
func (w *fakeWindow) GetAbsoluteTime() float64   { return float64(w.pumps) / 60 }
func (w *fakeWindow) Shutdown() error            { w.shutdown = true; return nil }

func (w *fakeWindow) GetRequiredInstanceExtensions() []string { return nil }

func (w *fakeWindow) CreateWindowSurface(interface{}, unsafe.Pointer) (uintptr, error) {
	return 0, nil
}

func (w *fakeWindow) GetFramebufferSize() (int, int)    { return w.width, w.height }
func (w *fakeWindow) GetVulkanProcAddr() unsafe.Pointer { return nil }

func (w *fakeWindow) resize(width, height int) {
	w.width, w.height = width, height
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: uint32(width), WindowHeight: uint32(height)},
	})
}

type recordingGame struct {
	mesh    metadata.MeshHandle
	renders int
	draws   []int
	resizes [][2]uint32
	stopped bool
}

func headlessConfig(t *testing.T) *ApplicationConfig {
	config := DefaultApplicationConfig()
	config.Renderer.Backend = renderer.Headless.String()
	config.Renderer.Validation = false
	config.Assets.Root = t.TempDir()
	config.Assets.Watch = false
	return config
}

func newTestGame(t *testing.T, state *recordingGame) *Game {
	return &Game{
		ApplicationConfig: headlessConfig(t),
		FnInitialize: func(driver renderer.RendererBackend) error {
			var err error
			state.mesh, err = driver.CreateMesh([]metadata.Vertex{
				{Position: mgl32.Vec3{0, 0, 0}},
				{Position: mgl32.Vec3{1, 0, 0}},
				{Position: mgl32.Vec3{0, 1, 0}},
			}, []uint32{0, 1, 2})
			return err
		},
		FnUpdate: func(float64) error { return nil },
		FnRender: func(driver renderer.RendererBackend, _ float64) error {
			state.renders++
			state.draws = append(state.draws, driver.LastFrame().Draws)
			return driver.SubmitRenderObject(state.mesh, driver.DefaultTexture(), mgl32.Ident4())
		},
		FnOnResize: func(width, height uint32) error {
			state.resizes = append(state.resizes, [2]uint32{width, height})
			return nil
		},
		FnShutdown: func() error {
			state.stopped = true
			return nil
		},
	}
}

func TestEngineRunsFramesUntilWindowCloses(t *testing.T) {
	state := &recordingGame{}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 3}

	e, err := newEngine(newTestGame(t, state), window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.True(t, window.started)
	assert.Equal(t, [][2]uint32{{800, 600}}, state.resizes)

	require.NoError(t, e.Run())

	assert.Equal(t, 3, state.renders)
	// The previous frame's draw count is visible from the next render callback.
	assert.Equal(t, []int{0, 1, 1}, state.draws)
	assert.True(t, state.stopped)
	assert.True(t, window.shutdown)
	assert.Equal(t, EngineStageStopped, e.Stage())
}

func TestEngineResizeAndMinimize(t *testing.T) {
	state := &recordingGame{}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 6}
	window.script = map[int]func(w *fakeWindow){
		2: func(w *fakeWindow) { w.resize(1024, 768) },
		3: func(w *fakeWindow) { w.resize(0, 0) },
		5: func(w *fakeWindow) { w.resize(640, 480) },
	}

	e, err := newEngine(newTestGame(t, state), window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	driver := e.Driver().(*headless.HeadlessRenderer)
	require.NoError(t, e.Run())

	// Pumps 3 and 4 happen while minimized.
	assert.Equal(t, 4, state.renders)
	assert.Equal(t, 2, window.waits)
	assert.Equal(t, [][2]uint32{{800, 600}, {1024, 768}, {640, 480}}, state.resizes)
	assert.Equal(t, uint64(2), driver.Recreations())
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
}

func TestEngineEscapeQuits(t *testing.T) {
	state := &recordingGame{}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 100}
	window.script = map[int]func(w *fakeWindow){
		2: func(*fakeWindow) { _ = core.InputProcessKey(core.KEY_ESCAPE, true) },
	}

	e, err := newEngine(newTestGame(t, state), window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	// The quit lands during pump 2, after which that frame still runs.
	assert.Equal(t, 2, state.renders)
	assert.Equal(t, 2, window.pumps)
}

func TestEngineShutdownFromAnotherGoroutine(t *testing.T) {
	state := &recordingGame{}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 1 << 30}

	e, err := newEngine(newTestGame(t, state), window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	window.script = map[int]func(w *fakeWindow){
		5: func(*fakeWindow) {
			done := make(chan struct{})
			go func() {
				e.Shutdown()
				close(done)
			}()
			<-done
		},
	}
	require.NoError(t, e.Run())
	assert.LessOrEqual(t, state.renders, 5)
	assert.True(t, state.stopped)
}

func TestEngineFatalRenderErrorStopsLoop(t *testing.T) {
	state := &recordingGame{}
	game := newTestGame(t, state)
	game.FnUpdate = func(float64) error { return core.ErrSynchronizationTimeout }
	window := &fakeWindow{width: 800, height: 600, maxPumps: 10}

	e, err := newEngine(game, window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	err = e.Run()
	assert.ErrorIs(t, err, core.ErrSynchronizationTimeout)
	assert.Equal(t, 1, window.pumps)
	assert.True(t, window.shutdown)
}

func TestEngineRecoverableRenderErrorContinues(t *testing.T) {
	state := &recordingGame{}
	game := newTestGame(t, state)
	game.FnRender = func(driver renderer.RendererBackend, _ float64) error {
		state.renders++
		return driver.SubmitRenderObject(metadata.MeshHandle{}, driver.DefaultTexture(), mgl32.Ident4())
	}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 3}

	e, err := newEngine(game, window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())
	assert.Equal(t, 3, state.renders)
}

func TestEngineInitializeFailureTearsDown(t *testing.T) {
	state := &recordingGame{}
	game := newTestGame(t, state)
	boom := errors.New("boom")
	game.FnInitialize = func(renderer.RendererBackend) error { return boom }
	window := &fakeWindow{width: 800, height: 600}

	e, err := newEngine(game, window)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Initialize(), boom)
	assert.True(t, window.shutdown)
	assert.Equal(t, EngineStageStopped, e.Stage())
	assert.Error(t, e.Run())
}

func TestNewEngineRequiresCallbacks(t *testing.T) {
	_, err := newEngine(&Game{}, &fakeWindow{})
	assert.Error(t, err)

	game := newTestGame(t, &recordingGame{})
	game.ApplicationConfig.Renderer.Backend = "opengl"
	_, err = newEngine(game, &fakeWindow{})
	assert.Error(t, err)
}

func TestEngineDeliversJobResultsOnLoopThread(t *testing.T) {
	state := &recordingGame{}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 100000}
	game := newTestGame(t, state)

	var e *Engine
	submitted := false
	var result interface{}
	game.FnUpdate = func(float64) error {
		if !submitted {
			submitted = true
			return game.Jobs.Submit(metadata.JobTask{
				Name:       "answer",
				EntryPoint: func() (interface{}, error) { return 42, nil },
				OnSuccess:  func(r interface{}) { result = r },
			})
		}
		if result != nil {
			e.Shutdown()
			return nil
		}
		time.Sleep(time.Millisecond)
		return nil
	}

	var err error
	e, err = newEngine(game, window)
	require.NoError(t, err)
	require.NotNil(t, game.Jobs)
	require.NoError(t, e.Initialize())
	require.NoError(t, e.Run())

	assert.Equal(t, 42, result)
	assert.Less(t, window.pumps, 100000)
}

func TestEngineFiresAssetChangedEvents(t *testing.T) {
	state := &recordingGame{}
	window := &fakeWindow{width: 800, height: 600, maxPumps: 100000}
	game := newTestGame(t, state)
	game.ApplicationConfig.Assets.Watch = true

	var e *Engine
	var fired, delivered []string
	game.FnOnAssetChanged = func(_ renderer.RendererBackend, path string) error {
		delivered = append(delivered, path)
		return nil
	}
	written := false
	game.FnUpdate = func(float64) error {
		if !written {
			written = true
			return os.WriteFile(filepath.Join(game.ApplicationConfig.Assets.Root, "cube.obj"), []byte("v 0 0 0\n"), 0o644)
		}
		if len(delivered) > 0 {
			e.Shutdown()
			return nil
		}
		time.Sleep(time.Millisecond)
		return nil
	}

	var err error
	e, err = newEngine(game, window)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, func(context core.EventContext) {
		fired = append(fired, context.Data.(*core.AssetEvent).Path)
	})
	require.NoError(t, e.Run())

	require.NotEmpty(t, delivered)
	assert.Equal(t, delivered, fired)
	assert.Equal(t, filepath.Join(game.Assets.Root(), "cube.obj"), delivered[0])
}
