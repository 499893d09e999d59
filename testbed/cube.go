package testbed

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

type cubeFace struct {
	normal, u, v mgl32.Vec3
}

// u x v == normal for every face, so corners listed (-u-v, +u-v, +u+v, -u+v) wind
// counter-clockwise seen from outside.
var cubeFaces = [6]cubeFace{
	{normal: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{normal: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{normal: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{normal: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// GenerateCubeMesh builds an axis aligned cube of edge length size centred on the origin:
// 4 vertices per face so every face carries its own texture coordinates.
func GenerateCubeMesh(size float32) ([]metadata.Vertex, []uint32) {
	half := size / 2
	vertices := make([]metadata.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)

	corners := [4]struct{ su, sv, tu, tv float32 }{
		{-1, -1, 0, 1},
		{1, -1, 1, 1},
		{1, 1, 1, 0},
		{-1, 1, 0, 0},
	}
	for _, f := range cubeFaces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c.su)).Add(f.v.Mul(c.sv)).Mul(half)
			vertices = append(vertices, metadata.Vertex{
				Position: p,
				Color:    mgl32.Vec3{1, 1, 1},
				TexCoord: mgl32.Vec2{c.tu, c.tv},
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return vertices, indices
}

// GenerateGrassTexture returns width*height RGBA8 texels of speckled green. The pattern is
// deterministic so reloads look identical.
func GenerateGrassTexture(width, height uint32) []byte {
	pixels := make([]byte, 0, width*height*4)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			n := hash2(x, y)
			shade := float32(n&0xff) / 255
			r := 40 + shade*30
			g := 110 + shade*90
			b := 30 + shade*20
			// occasional dry blade
			if n>>8&0x1f == 0 {
				r, g, b = 150, 140, 60
			}
			pixels = append(pixels, byte(r), byte(g), byte(b), 255)
		}
	}
	return pixels
}

func hash2(x, y uint32) uint32 {
	h := x*0x8da6b343 ^ y*0xd8163841
	h ^= h >> 13
	h *= 0x85ebca6b
	h ^= h >> 16
	return h
}
