package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func project(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	clip := m.Mul4x1(p.Vec4(1))
	return clip.Vec3().Mul(1 / clip.W())
}

func TestPerspectiveProjectionDepthRange(t *testing.T) {
	c := NewCamera()
	c.SetPerspectiveProjection(mgl32.DegToRad(50), 800.0/600.0, 0.1, 100)

	tests := []struct {
		name  string
		point mgl32.Vec3
		wantZ float32
	}{
		{"near plane", mgl32.Vec3{0, 0, 0.1}, 0},
		{"far plane", mgl32.Vec3{0, 0, 100}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := project(c.GetProjection(), tt.point)
			if !mgl32.FloatEqualThreshold(got.Z(), tt.wantZ, eps) {
				t.Errorf("projected z = %v, want %v", got.Z(), tt.wantZ)
			}
		})
	}

	if got := c.GetProjection().At(3, 2); got != 1 {
		t.Errorf("projection w row = %v, want 1", got)
	}
}

func TestOrthographicProjection(t *testing.T) {
	c := NewCamera()
	c.SetOrthographicProjection(-2, 2, -1, 1, 0.1, 10)

	tests := []struct {
		name  string
		point mgl32.Vec3
		want  mgl32.Vec3
	}{
		{"left top near", mgl32.Vec3{-2, -1, 0.1}, mgl32.Vec3{-1, -1, 0}},
		{"right bottom far", mgl32.Vec3{2, 1, 10}, mgl32.Vec3{1, 1, 1}},
		{"center", mgl32.Vec3{0, 0, 5.05}, mgl32.Vec3{0, 0, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := project(c.GetProjection(), tt.point)
			if !got.ApproxEqualThreshold(tt.want, eps) {
				t.Errorf("project(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestSetViewTarget(t *testing.T) {
	position := mgl32.Vec3{-1, -2, 2}
	target := mgl32.Vec3{0, 0, 2.5}

	c := NewCamera()
	c.SetViewTarget(position, target, DefaultUp)

	if got := project(c.GetView(), position); !got.ApproxEqualThreshold(mgl32.Vec3{}, eps) {
		t.Errorf("camera position in view space = %v, want origin", got)
	}

	want := mgl32.Vec3{0, 0, target.Sub(position).Len()}
	if got := project(c.GetView(), target); !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("target in view space = %v, want %v", got, want)
	}
}

func TestSetViewYXZ(t *testing.T) {
	tests := []struct {
		name     string
		position mgl32.Vec3
		rotation mgl32.Vec3
	}{
		{"identity", mgl32.Vec3{}, mgl32.Vec3{}},
		{"translated", mgl32.Vec3{0, 0, -2.5}, mgl32.Vec3{}},
		{"rotated", mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0.3, 0.7, 0.1}},
		{"looking down", mgl32.Vec3{0, -1, -2}, mgl32.Vec3{-1.5, 3.1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera()
			c.SetViewYXZ(tt.position, tt.rotation)

			world := mgl32.Translate3D(tt.position.X(), tt.position.Y(), tt.position.Z()).
				Mul4(mgl32.HomogRotate3DY(tt.rotation.Y())).
				Mul4(mgl32.HomogRotate3DX(tt.rotation.X())).
				Mul4(mgl32.HomogRotate3DZ(tt.rotation.Z()))
			want := world.Inv()

			if got := c.GetView(); !got.ApproxEqualThreshold(want, eps) {
				t.Errorf("SetViewYXZ() view = %v, want %v", got, want)
			}
		})
	}
}
