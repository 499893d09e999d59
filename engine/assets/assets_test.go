package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeModel, determineAssetType("models/cube.obj"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("textures/grass.PNG"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("textures/sky.webp"))
	assert.Equal(t, metadata.ResourceTypeBinary, determineAssetType("shaders/shader.vert.spv"))
	assert.Equal(t, metadata.ResourceTypeNone, determineAssetType("shaders/shader.vert"))
}

func TestIndexAndLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "models", "tri.obj"), []byte(triangleOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644))

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root, false))
	defer am.Shutdown()

	assert.Equal(t, []string{filepath.Join(am.Root(), "models", "tri.obj")}, am.Assets())

	res, err := am.LoadAsset("models/tri.obj")
	require.NoError(t, err)
	mesh := res.Data.(*metadata.MeshData)
	assert.Len(t, mesh.Indices, 3)

	_, err = am.LoadAsset("README")
	assert.ErrorIs(t, err, core.ErrResourceLoad)
}

func TestMissingRootIsNotFatal(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(filepath.Join(t.TempDir(), "nope"), true))
	assert.Empty(t, am.Assets())
	assert.NoError(t, am.Shutdown())
}

func TestWatchReportsChanges(t *testing.T) {
	root := t.TempDir()
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(root, true))
	defer am.Shutdown()

	path := filepath.Join(am.Root(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte(triangleOBJ), 0o644))

	var changes []string
	require.Eventually(t, func() bool {
		changes = append(changes, am.PollChanges()...)
		return len(changes) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, path, changes[0])
	assert.Contains(t, am.Assets(), path)
}
