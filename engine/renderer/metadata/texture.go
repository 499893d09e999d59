package metadata

/** @brief The default texture name. */
const DEFAULT_TEXTURE_NAME string = "default"

/** @brief Bytes per texel; every texture is RGBA8. */
const TextureChannelCount = 4

/**
 * @brief Decoded texel data.
 * Pixels holds Width*Height RGBA8 texels, row-major, top row first.
 */
type TextureData struct {
	Name   string
	Width  uint32
	Height uint32
	Pixels []byte
}

// DefaultTexturePixels is one opaque white texel.
func DefaultTexturePixels() []byte {
	return []byte{0xFF, 0xFF, 0xFF, 0xFF}
}
