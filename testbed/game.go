package testbed

import (
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets/loaders"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/math"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/components"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

const (
	// Relative to the asset root. Generated when missing.
	grassTexturePath = "textures/grass.png"
	grassTextureSize = 64

	rotationSpeed = 90.0 // degrees per second
	fieldOfView   = 45.0
	nearClip      = 0.1
	farClip       = 20.0
	cameraSpeed   = 2.0
	turnSpeed     = 1.5
)

var cameraStart = mgl32.Vec3{3, 3, 2.5}

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	cube          metadata.MeshHandle
	cubeTransform *math.Transform
	texture       metadata.TextureHandle

	angle  float32
	paused bool
	width  uint32
	height uint32
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				WorldCamera:   components.NewCamera(),
				cubeTransform: math.TransformCreate(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnOnAssetChanged = tg.OnAssetChanged
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize(driver renderer.RendererBackend) error {
	core.LogDebug("TestGame Initialize fn....")
	state := g.state()

	vertices, indices := GenerateCubeMesh(1.0)
	cube, err := driver.CreateMesh(vertices, indices)
	if err != nil {
		return err
	}
	state.cube = cube

	state.texture, err = g.loadGrass(driver)
	if err != nil {
		return err
	}

	g.resetCamera()
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, g.gameOnKey)
	return nil
}

// loadGrass prefers the texture on disk and falls back to a generated one.
func (g *TestGame) loadGrass(driver renderer.RendererBackend) (metadata.TextureHandle, error) {
	if g.Assets != nil {
		path := g.Assets.Resolve(grassTexturePath)
		if _, err := os.Stat(path); err == nil {
			h, err := driver.LoadTexture(path)
			if err == nil {
				return h, nil
			}
			core.LogWarn("falling back to generated grass: %s", err)
		}
	}
	return driver.CreateTexture(grassTextureSize, grassTextureSize, GenerateGrassTexture(grassTextureSize, grassTextureSize))
}

func (g *TestGame) resetCamera() {
	camera := g.state().WorldCamera
	camera.Reset()
	camera.SetPosition(cameraStart)
	camera.LookAt(mgl32.Vec3{})
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	dt := float32(deltaTime)

	if !state.paused {
		state.angle += rotationSpeed * dt
		if state.angle >= 360 {
			state.angle -= 360
		}
		state.cubeTransform.SetRotation(mgl32.QuatRotate(mgl32.DegToRad(state.angle), mgl32.Vec3{0, 1, 0}))
	}

	camera := state.WorldCamera
	if core.InputIsKeyDown(core.KEY_A) || core.InputIsKeyDown(core.KEY_LEFT) {
		camera.Yaw(turnSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_D) || core.InputIsKeyDown(core.KEY_RIGHT) {
		camera.Yaw(-turnSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_UP) {
		camera.Pitch(turnSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_DOWN) {
		camera.Pitch(-turnSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_W) {
		camera.MoveForward(cameraSpeed * dt)
	}
	if core.InputIsKeyDown(core.KEY_S) {
		camera.MoveBackward(cameraSpeed * dt)
	}
	return nil
}

func (g *TestGame) Render(driver renderer.RendererBackend, deltaTime float64) error {
	state := g.state()

	driver.SetViewMatrix(state.WorldCamera.GetView())
	driver.SetProjectionMatrix(math.Perspective(fieldOfView, math.Aspect(state.width, state.height), nearClip, farClip))

	return driver.SubmitRenderObject(state.cube, state.texture, state.cubeTransform.GetWorld())
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

// OnAssetChanged swaps in the grass texture when it changes on disk. Decoding runs on the
// job system; the upload happens when the result is collected on the loop thread. The previous
// texture stays registered until the renderer is destroyed.
func (g *TestGame) OnAssetChanged(driver renderer.RendererBackend, path string) error {
	if g.Assets == nil || filepath.Clean(path) != g.Assets.Resolve(grassTexturePath) {
		return nil
	}
	if g.Jobs == nil {
		h, err := driver.LoadTexture(path)
		if err != nil {
			return err
		}
		g.swapGrass(h)
		return nil
	}

	queued, err := g.Jobs.TrySubmit(metadata.JobTask{
		Name: "decode " + grassTexturePath,
		EntryPoint: func() (interface{}, error) {
			return loaders.LoadTextureData(path)
		},
		OnSuccess: func(result interface{}) {
			data := result.(*metadata.TextureData)
			h, err := driver.CreateTexture(data.Width, data.Height, data.Pixels)
			if err != nil {
				core.LogWarn("uploading %s: %s", grassTexturePath, err)
				return
			}
			g.swapGrass(h)
		},
		OnFail: func(err error) {
			core.LogWarn("keeping previous grass texture: %s", err)
		},
	})
	if err != nil {
		return err
	}
	if !queued {
		core.LogWarn("job queue full, skipping reload of %s", grassTexturePath)
	}
	return nil
}

func (g *TestGame) swapGrass(h metadata.TextureHandle) {
	g.state().texture = h
	core.LogInfo("reloaded %s", grassTexturePath)
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame Shutdown fn....")
	return nil
}

func (g *TestGame) gameOnKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return
	}
	switch ke.KeyCode {
	case core.KEY_P:
		g.state().paused = !g.state().paused
		core.LogDebug("rotation paused: %t", g.state().paused)
	case core.KEY_R:
		g.resetCamera()
	case core.KEY_F1:
		pos := g.state().WorldCamera.GetPosition()
		rot := g.state().WorldCamera.GetEulerRotation()
		core.LogInfo("Camera Pos: [%.3f, %.3f, %.3f] Rot: [%.3f, %.3f, %.3f]",
			pos.X(), pos.Y(), pos.Z(),
			mgl32.RadToDeg(rot.X()), mgl32.RadToDeg(rot.Y()), mgl32.RadToDeg(rot.Z()))
	}
}
