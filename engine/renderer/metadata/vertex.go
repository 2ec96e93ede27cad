package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved layout fed to the simple shader.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

const (
	VertexStride         = uint32(unsafe.Sizeof(Vertex{}))
	VertexPositionOffset = uint32(unsafe.Offsetof(Vertex{}.Position))
	VertexColorOffset    = uint32(unsafe.Offsetof(Vertex{}.Color))
	VertexNormalOffset   = uint32(unsafe.Offsetof(Vertex{}.Normal))
	VertexUVOffset       = uint32(unsafe.Offsetof(Vertex{}.UV))
)

// MeshData is CPU side geometry ready to be uploaded into vertex and index buffers.
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// HasIndices reports whether the mesh should be drawn indexed.
func (m *MeshData) HasIndices() bool {
	return len(m.Indices) > 0
}
