package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/core"
)

const eps = 1e-4

func TestTransformMat4(t *testing.T) {
	tests := []struct {
		name      string
		transform Transform
	}{
		{"identity", NewTransform()},
		{"translated", Transform{Translation: mgl32.Vec3{-.5, .5, 0}, Scale: mgl32.Vec3{3, 1.5, 3}}},
		{"rotated", Transform{Translation: mgl32.Vec3{1, 2, 3}, Scale: mgl32.Vec3{1, 2, 0.5}, Rotation: mgl32.Vec3{0.3, -1.2, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.transform
			want := mgl32.Translate3D(tr.Translation.X(), tr.Translation.Y(), tr.Translation.Z()).
				Mul4(mgl32.HomogRotate3DY(tr.Rotation.Y())).
				Mul4(mgl32.HomogRotate3DX(tr.Rotation.X())).
				Mul4(mgl32.HomogRotate3DZ(tr.Rotation.Z())).
				Mul4(mgl32.Scale3D(tr.Scale.X(), tr.Scale.Y(), tr.Scale.Z()))
			if got := tr.Mat4(); !got.ApproxEqualThreshold(want, eps) {
				t.Errorf("Mat4() = %v, want %v", got, want)
			}
		})
	}
}

func TestNormalMatrixIsInverseTransposeOfModel(t *testing.T) {
	tr := Transform{
		Translation: mgl32.Vec3{4, -1, 2},
		Scale:       mgl32.Vec3{3, 1.5, 0.25},
		Rotation:    mgl32.Vec3{0.4, 1.1, -0.7},
	}

	want := tr.Mat4().Mat3().Inv().Transpose()
	if got := tr.NormalMatrix().Mat3(); !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("NormalMatrix() = %v, want %v", got, want)
	}
}

func TestNewGameObject(t *testing.T) {
	gen := core.NewIDGenerator()
	objects := Map{}

	first := NewGameObject(gen)
	second := NewGameObject(gen)
	objects.Add(first)
	objects.Add(second)

	if first.ID() == second.ID() {
		t.Fatalf("identifiers collide: %d", first.ID())
	}
	if first.HasMesh() {
		t.Errorf("new object should have no mesh")
	}
	if first.Transform.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("default scale = %v", first.Transform.Scale)
	}
	if objects[second.ID()] != second || len(objects) != 2 {
		t.Errorf("map does not hold both objects: %v", objects)
	}
}

func TestArena(t *testing.T) {
	arena := NewArena[string]()
	a := arena.Add("cube")
	b := arena.Add("quad")

	tests := []struct {
		name    string
		index   int
		want    string
		wantErr bool
	}{
		{"first", a, "cube", false},
		{"second", b, "quad", false},
		{"negative", -1, "", true},
		{"past the end", 2, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := arena.Get(tt.index)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get(%d) error = %v, wantErr %v", tt.index, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
			}
		})
	}

	visited := 0
	arena.Each(func(int, string) { visited++ })
	if visited != arena.Len() {
		t.Errorf("Each visited %d of %d", visited, arena.Len())
	}
	arena.Clear()
	if arena.Len() != 0 {
		t.Errorf("Len() after Clear = %d", arena.Len())
	}
}
