package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a recognised asset. */
	ResourceTypeNone ResourceType = iota
	/** @brief Binary resource type (SPIR-V shader bytecode). */
	ResourceTypeBinary
	/** @brief Image resource type, decoded to RGBA8. */
	ResourceTypeImage
	/** @brief Model resource type (Wavefront OBJ). */
	ResourceTypeModel
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeModel:
		return "model"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/**
	 * @brief The resource data.
	 * *MeshData for models, *TextureData for images, []uint32 for binaries.
	 */
	Data interface{}
}
