package metadata

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVertexLayout(t *testing.T) {
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"stride", VertexStride, 44},
		{"position", VertexPositionOffset, 0},
		{"color", VertexColorOffset, 12},
		{"normal", VertexNormalOffset, 24},
		{"uv", VertexUVOffset, 36},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestGlobalUboBytes(t *testing.T) {
	ubo := NewGlobalUbo()
	ubo.Projection = mgl32.Perspective(mgl32.DegToRad(50), 4.0/3.0, 0.1, 100)
	ubo.View = mgl32.Translate3D(1, 2, 3)

	data := ubo.Bytes()
	if uint64(len(data)) != GlobalUboSize {
		t.Fatalf("len(Bytes()) = %d, want %d", len(data), GlobalUboSize)
	}
	if GlobalUboSize != 176 {
		t.Errorf("GlobalUboSize = %d, want 176", GlobalUboSize)
	}

	readFloat := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
	}

	tests := []struct {
		name   string
		offset int
		want   float32
	}{
		{"projection[0]", 0, ubo.Projection[0]},
		{"projection[14]", 14 * 4, ubo.Projection[14]},
		{"view translation x", 64 + 12*4, 1},
		{"view translation z", 64 + 14*4, 3},
		{"ambient intensity", 128 + 12, 0.02},
		{"light position x", 144, -1},
		{"padding", 156, 0},
		{"light color r", 160, 1},
		{"light intensity", 172, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readFloat(tt.offset); got != tt.want {
				t.Errorf("float at %d = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestGetAligned(t *testing.T) {
	tests := []struct {
		operand, granularity, want uint64
	}{
		{0, 256, 0},
		{1, 256, 256},
		{176, 64, 192},
		{256, 256, 256},
		{176, 0, 176},
	}
	for _, tt := range tests {
		if got := GetAligned(tt.operand, tt.granularity); got != tt.want {
			t.Errorf("GetAligned(%d, %d) = %d, want %d", tt.operand, tt.granularity, got, tt.want)
		}
	}
}

func TestResourceTypeString(t *testing.T) {
	if got := ResourceTypeShader.String(); got != "shader" {
		t.Errorf("ResourceTypeShader.String() = %q", got)
	}
	if got := ResourceType(42).String(); got != "unknown" {
		t.Errorf("ResourceType(42).String() = %q", got)
	}
}
