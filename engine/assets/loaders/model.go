package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// ModelLoader reads Wavefront OBJ geometry: positions, texture coordinates and faces.
// Normals and materials are ignored.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: opening `%s`: %w", core.ErrResourceLoad, path, err)
		core.LogError(err.Error())
		return nil, err
	}
	defer file.Close()

	mesh, err := ParseOBJ(file)
	if err != nil {
		err = fmt.Errorf("%w: parsing `%s`: %w", core.ErrResourceLoad, path, err)
		core.LogError(err.Error())
		return nil, err
	}
	mesh.Name = filepath.Base(path)

	return &metadata.Resource{
		Name:     mesh.Name,
		FullPath: path,
		Type:     metadata.ResourceTypeModel,
		DataSize: uint64(len(mesh.Vertices))*uint64(metadata.VertexSize) + uint64(len(mesh.Indices))*4,
		Data:     mesh,
	}, nil
}

func (ml *ModelLoader) Unload(*metadata.Resource) error {
	return nil
}

// LoadMeshData loads and parses the OBJ file at path.
func LoadMeshData(path string) (*metadata.MeshData, error) {
	res, err := (&ModelLoader{}).Load(path)
	if err != nil {
		return nil, err
	}
	return res.Data.(*metadata.MeshData), nil
}

type objCorner struct {
	position int
	texCoord int
}

// ParseOBJ triangulates every face as a fan and deduplicates identical corners.
// Texture v is flipped to match Vulkan's top-left image origin. Vertex colour is white.
func ParseOBJ(r io.Reader) (*metadata.MeshData, error) {
	var (
		positions []mgl32.Vec3
		texCoords []mgl32.Vec2
		mesh      = &metadata.MeshData{}
		unique    = map[metadata.Vertex]uint32{}
	)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			texCoords = append(texCoords, mgl32.Vec2{v[0], v[1]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(positions), len(texCoords))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				vert := metadata.Vertex{
					Position: positions[c.position],
					Color:    mgl32.Vec3{1, 1, 1},
				}
				if c.texCoord >= 0 {
					tc := texCoords[c.texCoord]
					vert.TexCoord = mgl32.Vec2{tc[0], 1 - tc[1]}
				}
				idx, ok := unique[vert]
				if !ok {
					idx = uint32(len(mesh.Vertices))
					mesh.Vertices = append(mesh.Vertices, vert)
					unique[vert] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner handles v, v/vt, v/vt/vn and v//vn, with 1-based or negative indices.
func parseCorner(field string, positionCount, texCoordCount int) (objCorner, error) {
	parts := strings.Split(field, "/")
	pos, err := resolveIndex(parts[0], positionCount)
	if err != nil {
		return objCorner{}, fmt.Errorf("position index: %w", err)
	}
	c := objCorner{position: pos, texCoord: -1}
	if len(parts) > 1 && parts[1] != "" {
		tc, err := resolveIndex(parts[1], texCoordCount)
		if err != nil {
			return objCorner{}, fmt.Errorf("texcoord index: %w", err)
		}
		c.texCoord = tc
	}
	return c, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d)", s, count)
	}
	return i, nil
}
