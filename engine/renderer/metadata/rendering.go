package metadata

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief One draw request: which mesh, which texture and the model transform.
 * Immutable once submitted to the render queue.
 */
type RenderObject struct {
	Mesh      MeshHandle
	Texture   TextureHandle
	Transform mgl32.Mat4
}

/**
 * @brief Camera state read at every uniform update.
 * Projection uses the GL clip-space convention; backends convert as needed.
 */
type CameraMatrices struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

func DefaultCameraMatrices() CameraMatrices {
	return CameraMatrices{
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
	}
}
