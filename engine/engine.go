package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/platform"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Everything has been released
	EngineStageStopped
)

// How long a minimized window blocks on the event queue before the loop checks for a stop.
const suspendedWait = 100 * time.Millisecond

// Window is what the engine needs from the platform layer.
type Window interface {
	metadata.Surface
	Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error
	PumpMessages() bool
	WaitMessages(timeout time.Duration)
	GetAbsoluteTime() float64
	Shutdown() error
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	isRunning    atomic.Bool
	isSuspended  bool
	platform     Window
	assetManager *assets.AssetManager
	jobSystem    *systems.JobSystem
	driver       renderer.RendererBackend
	width        uint32
	height       uint32
	clock        *core.Clock
	metrics      *core.Metrics
	lastTime     float64
	lastFPSLog   float64
	sessionID    core.Identifier

	ctx    context.Context
	cancel context.CancelFunc
}

const (
	jobWorkers   = 2
	jobQueueSize = 16
)

func New(g *Game) (*Engine, error) {
	return newEngine(g, platform.New())
}

func newEngine(g *Game, window Window) (*Engine, error) {
	if g == nil || g.FnInitialize == nil || g.FnUpdate == nil || g.FnRender == nil {
		return nil, errors.New("game must provide initialize, update and render callbacks")
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	kind, _ := g.ApplicationConfig.RendererType()
	backendConfig, _ := g.ApplicationConfig.BackendConfig()
	driver, err := renderer.New(kind, backendConfig)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	js, err := systems.NewJobSystem(jobWorkers, jobQueueSize)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	g.Assets = am
	g.Jobs = js

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		platform:     window,
		assetManager: am,
		jobSystem:    js,
		driver:       driver,
		width:        g.ApplicationConfig.Window.Width,
		height:       g.ApplicationConfig.Window.Height,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		sessionID:    core.IdentifierAquireNewID(),
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Initialize brings up input, events, the window, the asset index and the renderer, then
// hands the driver to the game. On failure everything already started is torn down.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	if level, err := config.LogLevel(); err == nil {
		core.SetLogLevel(level)
	}
	core.LogInfo("Starting %s (session %s, backend %s)", config.Window.Name, core.IdentifierShort(e.sessionID), config.Renderer.Backend)

	if err := e.initialize(config); err != nil {
		core.LogError("engine initialization failed: %s", err)
		e.teardown()
		return err
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) initialize(config *ApplicationConfig) error {
	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(config.Window.Name, config.Window.X, config.Window.Y, config.Window.Width, config.Window.Height); err != nil {
		return err
	}
	if w, h := e.platform.GetFramebufferSize(); w > 0 && h > 0 {
		e.width, e.height = uint32(w), uint32(h)
	}

	if err := e.assetManager.Initialize(config.Assets.Root, config.Assets.Watch); err != nil {
		return err
	}

	if err := e.driver.Setup(e.platform); err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(e.driver); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the frame loop until the window closes, a quit is requested or a fatal error
// occurs. Everything is released before it returns.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	defer e.teardown()

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			break
		}
		if e.isSuspended {
			e.platform.WaitMessages(suspendedWait)
			continue
		}
		if err := e.frame(); err != nil {
			core.LogFatal("frame failed, shutting down: %s", err)
			return err
		}
	}
	return nil
}

func (e *Engine) frame() error {
	for _, path := range e.assetManager.PollChanges() {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_ASSET_CHANGED, Data: &core.AssetEvent{Path: path}})
		if e.gameInstance.FnOnAssetChanged == nil {
			continue
		}
		if err := e.gameInstance.FnOnAssetChanged(e.driver, path); err != nil {
			core.LogWarn("reloading `%s` failed: %s", path, err)
		}
	}

	e.jobSystem.Update()

	// Update clock and get delta time.
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	frameStartTime := e.platform.GetAbsoluteTime()

	if err := e.gameInstance.FnUpdate(delta); err != nil {
		return fmt.Errorf("game update: %w", err)
	}

	e.driver.ClearRenderQueue()
	if err := e.gameInstance.FnRender(e.driver, delta); err != nil {
		if core.IsFatal(err) {
			return fmt.Errorf("game render: %w", err)
		}
		core.LogWarn("game render: %s", err)
	}

	if err := e.driver.RenderFrame(e.ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if core.IsFatal(err) {
			return err
		}
		core.LogWarn(err.Error())
	}

	frameElapsedTime := e.platform.GetAbsoluteTime() - frameStartTime
	e.metrics.Update(frameElapsedTime)
	if currentTime-e.lastFPSLog >= 1.0 {
		fps, frameTime := e.metrics.Frame()
		core.LogDebug("FPS: %5.1f (%4.1fms), draws: %d", fps, frameTime, e.driver.LastFrame().Draws)
		e.lastFPSLog = currentTime
	}

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded; I.E. before this line.
	core.InputUpdate(delta)

	e.lastTime = currentTime
	return nil
}

// Shutdown asks the loop to stop. Safe from any goroutine; teardown happens on the loop thread.
func (e *Engine) Shutdown() {
	e.isRunning.Store(false)
	e.cancel()
}

func (e *Engine) teardown() {
	if e.currentStage == EngineStageStopped {
		return
	}
	e.currentStage = EngineStageShuttingDown
	e.cancel()

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if err := e.jobSystem.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.driver.Destruct(); err != nil {
		core.LogDebug("renderer: %s", err)
	}
	if err := e.assetManager.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := core.EventSystemShutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := core.InputShutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.platform.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	e.currentStage = EngineStageStopped
	core.LogInfo("Engine stopped.")
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

// Driver exposes the graphics backend, mostly for tests.
func (e *Engine) Driver() renderer.RendererBackend {
	return e.driver
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.driver.NotifyResized()
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
}
