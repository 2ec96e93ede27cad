package vulkan

import (
	"encoding/binary"
	"math"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func TestVertexBytesLayout(t *testing.T) {
	vertices := []metadata.Vertex{
		{Position: [3]float32{1, 2, 3}, Color: [3]float32{0.5, 0.25, 0.125}},
		{Position: [3]float32{-1, -2, -3}, UV: [2]float32{0.75, 1}},
	}
	data := vertexBytes(vertices)
	if len(data) != 2*int(metadata.VertexStride) {
		t.Fatalf("len(vertexBytes) = %d, want %d", len(data), 2*metadata.VertexStride)
	}

	readFloat := func(offset uint32) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
	}

	tests := []struct {
		name   string
		offset uint32
		want   float32
	}{
		{"first position x", metadata.VertexPositionOffset, 1},
		{"first position z", metadata.VertexPositionOffset + 8, 3},
		{"first color g", metadata.VertexColorOffset + 4, 0.25},
		{"second position y", metadata.VertexStride + metadata.VertexPositionOffset + 4, -2},
		{"second uv u", metadata.VertexStride + metadata.VertexUVOffset, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readFloat(tt.offset); got != tt.want {
				t.Errorf("float at %d = %v, want %v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestVertexAttributeDescriptions(t *testing.T) {
	attributes := VertexAttributeDescriptions()
	if len(attributes) != 4 {
		t.Fatalf("got %d attributes, want 4", len(attributes))
	}
	for i, a := range attributes {
		if a.Location != uint32(i) {
			t.Errorf("attribute %d location = %d", i, a.Location)
		}
		if a.Offset >= metadata.VertexStride {
			t.Errorf("attribute %d offset %d outside the stride", i, a.Offset)
		}
	}
	if attributes[3].Format != vk.FormatR32g32Sfloat {
		t.Errorf("uv format = %v, want R32G32_SFLOAT", attributes[3].Format)
	}

	bindings := VertexBindingDescriptions()
	if len(bindings) != 1 || bindings[0].Stride != metadata.VertexStride {
		t.Errorf("VertexBindingDescriptions() = %+v", bindings)
	}
}

func TestIndexBytes(t *testing.T) {
	data := indexBytes([]uint32{0, 1, 0xdeadbeef})
	if len(data) != 12 {
		t.Fatalf("len(indexBytes) = %d, want 12", len(data))
	}
	if got := binary.LittleEndian.Uint32(data[8:]); got != 0xdeadbeef {
		t.Errorf("third index = %#x", got)
	}
}
