package loaders

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJQuadIsFanTriangulated(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)

	// v is flipped, colour is white
	assert.Equal(t, mgl32.Vec2{0, 1}, mesh.Vertices[0].TexCoord)
	assert.Equal(t, mgl32.Vec2{1, 0}, mesh.Vertices[2].TexCoord)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, mesh.Vertices[3].Color)
}

func TestParseOBJDeduplicatesCorners(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
f 1 2 3
f 3 2 4
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, mesh.Indices)
}

func TestParseOBJMergesRepeatedPositions(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 0
f 1 2 3
f 4 2 3
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2}, mesh.Indices)
}

func TestParseOBJKeepsCornersWithDifferentTexCoords(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 1
f 1/1 2/1 3/1
f 1/2 2/1 3/1
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 3, 1, 2}, mesh.Indices)
}

func TestParseOBJNegativeIndicesAndNormalsOnly(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f -3//1 -2//1 -1//1
`
	mesh, err := ParseOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, mesh.Vertices[2].Position)
}

func TestParseOBJErrors(t *testing.T) {
	for name, src := range map[string]string{
		"no faces":     "v 0 0 0\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":    "v 0 x 0\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"bad texcoord": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n",
		"short vertex": "v 0 0\n",
	} {
		_, err := ParseOBJ(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestModelLoaderWrapsResourceLoad(t *testing.T) {
	_, err := LoadMeshData(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, core.ErrResourceLoad)

	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))
	mesh, err := LoadMeshData(path)
	require.NoError(t, err)
	assert.Equal(t, "quad.obj", mesh.Name)
	assert.Len(t, mesh.Indices, 6)
}

func TestDecodeTextureConvertsToRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	data, err := DecodeTexture(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), data.Width)
	assert.Equal(t, uint32(1), data.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 255, 0, 255}, data.Pixels)
}

func TestTextureLoaderRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err := LoadTextureData(path)
	assert.ErrorIs(t, err, core.ErrResourceLoad)
}

func TestLoadSPIRV(t *testing.T) {
	dir := t.TempDir()
	good := make([]byte, 8)
	binary.LittleEndian.PutUint32(good, SPIRVMagic)
	binary.LittleEndian.PutUint32(good[4:], 0x00010000)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.spv"), good, 0o644))

	code, err := LoadSPIRV(filepath.Join(dir, "ok.spv"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{SPIRVMagic, 0x00010000}, code)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "odd.spv"), good[:6], 0o644))
	_, err = LoadSPIRV(filepath.Join(dir, "odd.spv"))
	assert.ErrorIs(t, err, core.ErrResourceLoad)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "magic.spv"), make([]byte, 8), 0o644))
	_, err = LoadSPIRV(filepath.Join(dir, "magic.spv"))
	assert.ErrorIs(t, err, core.ErrResourceLoad)
}
