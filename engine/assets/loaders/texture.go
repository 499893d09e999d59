package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer/metadata"
)

// TextureLoader decodes PNG, JPEG, BMP, TIFF and WebP images into RGBA8 texel data.
type TextureLoader struct{}

func (tl *TextureLoader) Load(path string) (*metadata.Resource, error) {
	// Open and decode the texture image file
	file, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("%w: opening `%s`: %w", core.ErrResourceLoad, path, err)
		core.LogError(err.Error())
		return nil, err
	}
	defer file.Close()

	data, err := DecodeTexture(file)
	if err != nil {
		err = fmt.Errorf("%w: decoding `%s`: %w", core.ErrResourceLoad, path, err)
		core.LogError(err.Error())
		return nil, err
	}
	data.Name = filepath.Base(path)

	return &metadata.Resource{
		Name:     data.Name,
		FullPath: path,
		Type:     metadata.ResourceTypeImage,
		DataSize: uint64(len(data.Pixels)),
		Data:     data,
	}, nil
}

func (tl *TextureLoader) Unload(*metadata.Resource) error {
	return nil
}

// DecodeTexture decodes any registered image format and converts it to tightly packed RGBA8.
func DecodeTexture(r io.Reader) (*metadata.TextureData, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty %s image", format)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*metadata.TextureChannelCount || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	return &metadata.TextureData{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pixels: rgba.Pix,
	}, nil
}

// LoadTextureData loads and decodes the image at path.
func LoadTextureData(path string) (*metadata.TextureData, error) {
	res, err := (&TextureLoader{}).Load(path)
	if err != nil {
		return nil, err
	}
	return res.Data.(*metadata.TextureData), nil
}
