package metadata

type ResourceType int

/** @brief Resource types the asset manager can load. */
const (
	/** @brief Raw bytes, loaded as-is. */
	ResourceTypeBinary ResourceType = iota
	/** @brief Compiled SPIR-V shader bytecode. */
	ResourceTypeShader
	/** @brief Wavefront OBJ mesh, loaded into MeshData. */
	ResourceTypeMesh
	/** @brief Anything the asset manager does not recognise. */
	ResourceTypeUnknown
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeMesh:
		return "mesh"
	default:
		return "unknown"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The type of the loader which handled this resource. */
	Type ResourceType
	/** @brief The name of the resource (file name without directory). */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. []uint32 for shaders, *MeshData for meshes, []byte otherwise. */
	Data interface{}
}
