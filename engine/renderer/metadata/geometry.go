package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief A single vertex as laid out in the vertex buffer.
 * Attribute locations: 0 = Position, 1 = Color, 2 = TexCoord.
 */
type Vertex struct {
	/** @brief The position of the vertex in model space. */
	Position mgl32.Vec3
	/** @brief The vertex colour, multiplied with the sampled texel. */
	Color mgl32.Vec3
	/** @brief The texture coordinate. */
	TexCoord mgl32.Vec2
}

/** @brief The size in bytes of one Vertex, as uploaded to the GPU. */
const VertexSize = uint32(unsafe.Sizeof(Vertex{}))

const (
	VertexPositionOffset = uint32(unsafe.Offsetof(Vertex{}.Position))
	VertexColorOffset    = uint32(unsafe.Offsetof(Vertex{}.Color))
	VertexTexCoordOffset = uint32(unsafe.Offsetof(Vertex{}.TexCoord))
)

/** @brief CPU side geometry, as produced by loaders and generators. */
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// VertexBytes reinterprets the vertices as the raw bytes uploaded to a vertex buffer.
func VertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexSize))
}

// IndexBytes reinterprets the indices as the raw bytes uploaded to an index buffer.
func IndexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
