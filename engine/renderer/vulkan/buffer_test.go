package vulkan

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// hostBuffer returns a buffer whose mapped range is ordinary Go memory.
func hostBuffer(instanceSize uint64, instanceCount uint32, alignment uint64) (*VulkanBuffer, []byte) {
	aligned := metadata.GetAligned(instanceSize, alignment)
	backing := make([]byte, aligned*uint64(instanceCount))
	return &VulkanBuffer{
		InstanceSize:  instanceSize,
		InstanceCount: instanceCount,
		AlignmentSize: aligned,
		BufferSize:    uint64(len(backing)),
		mapped:        unsafe.Pointer(&backing[0]),
	}, backing
}

func TestGlobalUboRoundTrip(t *testing.T) {
	ubo := metadata.NewGlobalUbo()
	ubo.Projection = mgl32.Perspective(mgl32.DegToRad(50), 800.0/600.0, 0.1, 100)
	ubo.View = mgl32.LookAtV(mgl32.Vec3{-1, -2, 2}, mgl32.Vec3{0, 0, 2.5}, mgl32.Vec3{0, -1, 0})
	want := ubo.Bytes()

	buffer, _ := hostBuffer(metadata.GlobalUboSize, 1, 1)
	buffer.WriteToBuffer(want, 0)

	if got := buffer.ReadFromBuffer(metadata.GlobalUboSize, 0); !bytes.Equal(got, want) {
		t.Errorf("ReadFromBuffer() = %x, want %x", got, want)
	}
}

func TestWriteToIndexUsesAlignedSlots(t *testing.T) {
	buffer, backing := hostBuffer(4, 3, 16)
	if buffer.AlignmentSize != 16 || buffer.BufferSize != 48 {
		t.Fatalf("alignment = %d, size = %d, want 16 and 48", buffer.AlignmentSize, buffer.BufferSize)
	}

	tests := []struct {
		name  string
		index uint32
		data  []byte
	}{
		{"first", 0, []byte{1, 2, 3, 4}},
		{"second", 1, []byte{5, 6, 7, 8}},
		{"third", 2, []byte{9, 10, 11, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer.WriteToIndex(tt.data, tt.index)
			offset := uint64(tt.index) * buffer.AlignmentSize
			if got := backing[offset : offset+4]; !bytes.Equal(got, tt.data) {
				t.Errorf("slot %d = %v, want %v", tt.index, got, tt.data)
			}
		})
	}

	if got := buffer.ReadFromBuffer(12, 4); !bytes.Equal(got, make([]byte, 12)) {
		t.Errorf("padding after first slot = %v, want zeros", got)
	}
}

func TestDescriptorInfoCoversBuffer(t *testing.T) {
	buffer, _ := hostBuffer(metadata.GlobalUboSize, 1, 64)
	info := buffer.DescriptorInfo()
	if uint64(info.Range) != 192 || info.Offset != 0 {
		t.Errorf("DescriptorInfo() range = %d offset = %d, want 192 and 0", info.Range, info.Offset)
	}
}
