package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/core"
)

// NoMesh marks a game object that is not drawn.
const NoMesh = -1

/**
 * @brief An entity of the scene. Meshes are referenced by their index in the
 * application owned mesh arena.
 */
type GameObject struct {
	id uint32

	MeshID    int
	Color     mgl32.Vec3
	Transform Transform
}

// Map is the scene collection keyed by object identifier.
type Map map[uint32]*GameObject

func NewGameObject(generator *core.IDGenerator) *GameObject {
	return &GameObject{
		id:        generator.Next(),
		MeshID:    NoMesh,
		Transform: NewTransform(),
	}
}

func (g *GameObject) ID() uint32 {
	return g.id
}

func (g *GameObject) HasMesh() bool {
	return g.MeshID != NoMesh
}

// Add stores the object under its identifier.
func (m Map) Add(g *GameObject) {
	m[g.id] = g
}
