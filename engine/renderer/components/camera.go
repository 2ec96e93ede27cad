package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief A viewer camera holding a projection and a view matrix.
 * Projections target Vulkan clip space: y points down and depth runs 0..1.
 */
type Camera struct {
	ProjectionMatrix mgl32.Mat4
	ViewMatrix       mgl32.Mat4
}

func NewCamera() *Camera {
	return &Camera{
		ProjectionMatrix: mgl32.Ident4(),
		ViewMatrix:       mgl32.Ident4(),
	}
}

// DefaultUp is the world up vector in the engine's y-down convention.
var DefaultUp = mgl32.Vec3{0, -1, 0}

func (c *Camera) SetOrthographicProjection(left, right, top, bottom, near, far float32) {
	c.ProjectionMatrix = mgl32.Ident4()
	c.ProjectionMatrix.Set(0, 0, 2/(right-left))
	c.ProjectionMatrix.Set(1, 1, 2/(bottom-top))
	c.ProjectionMatrix.Set(2, 2, 1/(far-near))
	c.ProjectionMatrix.Set(0, 3, -(right+left)/(right-left))
	c.ProjectionMatrix.Set(1, 3, -(bottom+top)/(bottom-top))
	c.ProjectionMatrix.Set(2, 3, -near/(far-near))
}

// SetPerspectiveProjection takes the vertical field of view in radians.
func (c *Camera) SetPerspectiveProjection(fovy, aspect, near, far float32) {
	core.Assert(gomath.Abs(float64(aspect)) > 1e-6, "aspect ratio must not be zero")

	tanHalfFovy := float32(gomath.Tan(float64(fovy) / 2))
	c.ProjectionMatrix = mgl32.Mat4{}
	c.ProjectionMatrix.Set(0, 0, 1/(aspect*tanHalfFovy))
	c.ProjectionMatrix.Set(1, 1, 1/tanHalfFovy)
	c.ProjectionMatrix.Set(2, 2, far/(far-near))
	c.ProjectionMatrix.Set(3, 2, 1)
	c.ProjectionMatrix.Set(2, 3, -(far*near)/(far-near))
}

// SetViewDirection points the camera from position along direction.
func (c *Camera) SetViewDirection(position, direction, up mgl32.Vec3) {
	w := direction.Normalize()
	u := w.Cross(up).Normalize()
	v := w.Cross(u)
	c.setView(position, u, v, w)
}

func (c *Camera) SetViewTarget(position, target, up mgl32.Vec3) {
	c.SetViewDirection(position, target.Sub(position), up)
}

// SetViewYXZ builds the view from a position and Tait-Bryan angles applied in Y, X, Z order.
func (c *Camera) SetViewYXZ(position, rotation mgl32.Vec3) {
	c3 := float32(gomath.Cos(float64(rotation.Z())))
	s3 := float32(gomath.Sin(float64(rotation.Z())))
	c2 := float32(gomath.Cos(float64(rotation.X())))
	s2 := float32(gomath.Sin(float64(rotation.X())))
	c1 := float32(gomath.Cos(float64(rotation.Y())))
	s1 := float32(gomath.Sin(float64(rotation.Y())))

	u := mgl32.Vec3{c1*c3 + s1*s2*s3, c2 * s3, c1*s2*s3 - c3*s1}
	v := mgl32.Vec3{c3*s1*s2 - c1*s3, c2 * c3, c1*c3*s2 + s1*s3}
	w := mgl32.Vec3{c2 * s1, -s2, c1 * c2}
	c.setView(position, u, v, w)
}

// setView writes the orthonormal basis u, v, w as the rows of the rotation part.
func (c *Camera) setView(position, u, v, w mgl32.Vec3) {
	c.ViewMatrix = mgl32.Ident4()
	c.ViewMatrix.SetRow(0, mgl32.Vec4{u.X(), u.Y(), u.Z(), -u.Dot(position)})
	c.ViewMatrix.SetRow(1, mgl32.Vec4{v.X(), v.Y(), v.Z(), -v.Dot(position)})
	c.ViewMatrix.SetRow(2, mgl32.Vec4{w.X(), w.Y(), w.Z(), -w.Dot(position)})
}

func (c *Camera) GetProjection() mgl32.Mat4 {
	return c.ProjectionMatrix
}

func (c *Camera) GetView() mgl32.Mat4 {
	return c.ViewMatrix
}
