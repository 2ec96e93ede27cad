package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestShaderModuleCreateInfo(t *testing.T) {
	tests := []struct {
		name     string
		code     []uint32
		wantSize uint64
	}{
		{"header only", []uint32{0x07230203, 0x10000, 0, 8, 0}, 20},
		{"single word", []uint32{0x07230203}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := shaderModuleCreateInfo(tt.code)
			if info.SType != vk.StructureTypeShaderModuleCreateInfo {
				t.Errorf("SType = %v, want ShaderModuleCreateInfo", info.SType)
			}
			if info.CodeSize != tt.wantSize {
				t.Errorf("CodeSize = %d bytes, want %d", info.CodeSize, tt.wantSize)
			}
			if len(info.PCode) != len(tt.code) {
				t.Errorf("PCode has %d words, want %d", len(info.PCode), len(tt.code))
			}
		})
	}
}
