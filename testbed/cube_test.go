package testbed

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/assets"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/math"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/headless"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/systems"
)

func TestGenerateCubeMesh(t *testing.T) {
	vertices, indices := GenerateCubeMesh(2)
	require.Len(t, vertices, 24)
	require.Len(t, indices, 36)

	for _, v := range vertices {
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 1, mgl32.Abs(v.Position[i]), 1e-6)
		}
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, v.Color)
	}

	// Every triangle winds counter-clockwise seen from outside.
	for i := 0; i < len(indices); i += 3 {
		a := vertices[indices[i]].Position
		b := vertices[indices[i+1]].Position
		c := vertices[indices[i+2]].Position
		normal := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3)
		assert.Greater(t, normal.Dot(centroid), float32(0), "triangle %d faces inwards", i/3)
	}
}

func TestGenerateGrassTexture(t *testing.T) {
	pixels := GenerateGrassTexture(16, 8)
	require.Len(t, pixels, 16*8*4)
	for i := 0; i < len(pixels); i += 4 {
		assert.Equal(t, byte(255), pixels[i+3])
		assert.Greater(t, pixels[i+1], pixels[i+2], "green dominates blue")
	}
	assert.Equal(t, pixels, GenerateGrassTexture(16, 8))
}

func TestTestGameDrawsRotatingCube(t *testing.T) {
	driver := headless.New(metadata.DefaultRendererBackendConfig())
	require.NoError(t, driver.Setup(nil))
	defer driver.Destruct()

	game := NewTestGame(engine.DefaultApplicationConfig())
	require.NoError(t, game.FnInitialize(driver))
	require.NoError(t, game.FnOnResize(1280, 720))
	require.NoError(t, game.FnUpdate(0.5))

	driver.ClearRenderQueue()
	require.NoError(t, game.FnRender(driver, 0.5))
	require.NoError(t, driver.RenderFrame(context.Background()))

	draws := driver.LastDraws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(36), draws[0].IndexCount)
	assert.True(t, draws[0].Transform.ApproxEqualThreshold(math.RotationY(45), 1e-5))

	camera := driver.Camera()
	assert.Equal(t, game.state().WorldCamera.GetView(), camera.View)
	assert.Equal(t, math.Perspective(fieldOfView, 1280.0/720.0, nearClip, farClip), camera.Projection)
}

func TestTestGamePauseStopsRotation(t *testing.T) {
	game := NewTestGame(engine.DefaultApplicationConfig())
	game.state().paused = true
	require.NoError(t, game.FnUpdate(1))
	assert.Zero(t, game.state().angle)

	game.state().paused = false
	require.NoError(t, game.FnUpdate(5))
	assert.InDelta(t, 90, game.state().angle, 1e-3)
}

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestGrassReloadDecodesOnJobSystem(t *testing.T) {
	root := t.TempDir()
	grass := filepath.Join(root, filepath.FromSlash(grassTexturePath))
	writePNG(t, grass, color.RGBA{R: 10, G: 200, B: 20, A: 255})

	driver := headless.New(metadata.DefaultRendererBackendConfig())
	require.NoError(t, driver.Setup(nil))
	defer driver.Destruct()

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root, false))
	js, err := systems.NewJobSystem(1, 4)
	require.NoError(t, err)
	defer js.Shutdown()

	game := NewTestGame(engine.DefaultApplicationConfig())
	game.Assets = am
	game.Jobs = js
	require.NoError(t, game.FnInitialize(driver))

	first := game.state().texture
	pixels, err := driver.TexturePixels(first)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 200, 20, 255}, pixels[:4])

	// Unrelated assets are ignored.
	require.NoError(t, game.FnOnAssetChanged(driver, filepath.Join(root, "other.png")))

	writePNG(t, grass, color.RGBA{R: 200, G: 10, B: 20, A: 255})
	require.NoError(t, game.FnOnAssetChanged(driver, grass))
	require.Eventually(t, func() bool {
		js.Update()
		return game.state().texture != first
	}, 2*time.Second, time.Millisecond)

	pixels, err = driver.TexturePixels(game.state().texture)
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 10, 20, 255}, pixels[:4])
}
