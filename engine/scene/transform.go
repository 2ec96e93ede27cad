package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an object in the world. Rotation holds Tait-Bryan angles in radians.
type Transform struct {
	Translation mgl32.Vec3
	Scale       mgl32.Vec3
	Rotation    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Scale: mgl32.Vec3{1, 1, 1},
	}
}

// Mat4 returns Translate * Ry * Rx * Rz * Scale.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.rotation()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// NormalMatrix is the rotation combined with the inverse scale, widened to a Mat4
// so it can be pushed next to the model matrix.
func (t Transform) NormalMatrix() mgl32.Mat4 {
	inverseScale := mgl32.Scale3D(1/t.Scale.X(), 1/t.Scale.Y(), 1/t.Scale.Z())
	return t.rotation().Mul4(inverseScale)
}

func (t Transform) rotation() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(t.Rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z()))
}
