package resources

import (
	"testing"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct{ name string }

func TestPoolMeshes(t *testing.T) {
	p := NewPool[*fakeBuffer, int]()
	h := p.AddMesh("cube", 24, 36, &fakeBuffer{"cube"})
	require.True(t, h.IsValid())
	assert.True(t, p.HasMesh(h))
	assert.Equal(t, 1, p.MeshCount())

	rec, err := p.Mesh(h)
	require.NoError(t, err)
	assert.Equal(t, uint32(24), rec.VertexCount)
	assert.Equal(t, uint32(36), rec.IndexCount)
	assert.Equal(t, "cube", rec.GPU.name)

	_, err = p.Mesh(metadata.MeshHandle{Index: 9, Generation: 1})
	assert.ErrorIs(t, err, core.ErrResourceNotRegistered)
	_, err = p.Mesh(metadata.MeshHandle{})
	assert.ErrorIs(t, err, core.ErrResourceNotRegistered)
}

func TestPoolTexturesAndDefault(t *testing.T) {
	p := NewPool[int, string]()
	assert.False(t, p.DefaultTexture().IsValid())
	assert.ErrorIs(t, p.SetDefaultTexture(metadata.TextureHandle{}), core.ErrResourceNotRegistered)

	def := p.AddTexture(metadata.DEFAULT_TEXTURE_NAME, 1, 1, "white")
	require.NoError(t, p.SetDefaultTexture(def))
	assert.Equal(t, def, p.DefaultTexture())

	grass := p.AddTexture("grass", 256, 256, "grass")
	rec, err := p.Texture(grass)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), rec.Width)
	assert.NotEqual(t, rec.ID, core.Identifier{})
	assert.Equal(t, 2, p.TextureCount())
}

func TestPoolReleaseDestroysEachOnce(t *testing.T) {
	p := NewPool[*fakeBuffer, string]()
	m1 := p.AddMesh("a", 3, 3, &fakeBuffer{"a"})
	p.AddMesh("b", 3, 3, &fakeBuffer{"b"})
	tex := p.AddTexture("t", 1, 1, "t")
	require.NoError(t, p.SetDefaultTexture(tex))

	destroyed := map[string]int{}
	p.Release(
		func(b *fakeBuffer) { destroyed[b.name]++ },
		func(s string) { destroyed[s]++ },
	)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "t": 1}, destroyed)
	assert.Zero(t, p.MeshCount())
	assert.Zero(t, p.TextureCount())
	assert.False(t, p.HasMesh(m1))
	assert.False(t, p.DefaultTexture().IsValid())

	// a second release finds nothing left to destroy
	p.Release(
		func(b *fakeBuffer) { destroyed[b.name]++ },
		func(s string) { destroyed[s]++ },
	)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "t": 1}, destroyed)
}

func TestValidateMesh(t *testing.T) {
	verts := make([]metadata.Vertex, 3)
	assert.NoError(t, ValidateMesh(verts, []uint32{0, 1, 2}))
	assert.ErrorIs(t, ValidateMesh(nil, []uint32{0}), core.ErrResourceLoad)
	assert.ErrorIs(t, ValidateMesh(verts, nil), core.ErrResourceLoad)
	assert.ErrorIs(t, ValidateMesh(verts, []uint32{0, 1, 3}), core.ErrResourceLoad)
}

func TestValidateTexture(t *testing.T) {
	assert.NoError(t, ValidateTexture(1, 1, metadata.DefaultTexturePixels()))
	assert.NoError(t, ValidateTexture(2, 3, make([]byte, 24)))
	assert.ErrorIs(t, ValidateTexture(0, 1, nil), core.ErrResourceLoad)
	assert.ErrorIs(t, ValidateTexture(2, 2, make([]byte, 15)), core.ErrResourceLoad)
}
