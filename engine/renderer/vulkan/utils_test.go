package vulkan

import (
	"strings"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestVulkanResultString(t *testing.T) {
	tests := []struct {
		name   string
		result vk.Result
		want   string
	}{
		{"success", vk.Success, "VK_SUCCESS"},
		{"suboptimal", vk.Suboptimal, "VK_SUBOPTIMAL_KHR"},
		{"out of date", vk.ErrorOutOfDate, "VK_ERROR_OUT_OF_DATE_KHR"},
		{"device lost", vk.ErrorDeviceLost, "VK_ERROR_DEVICE_LOST"},
		{"unrecognized", vk.Result(-12345), "VK_RESULT_UNRECOGNIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VulkanResultString(tt.result, false); got != tt.want {
				t.Errorf("VulkanResultString(%d, false) = %q, want %q", tt.result, got, tt.want)
			}
			if got := VulkanResultString(tt.result, true); !strings.HasPrefix(got, tt.want+" ") {
				t.Errorf("VulkanResultString(%d, true) = %q, want prefix %q", tt.result, got, tt.want)
			}
		})
	}
}

func TestVulkanSafeStrings(t *testing.T) {
	in := []string{"VK_LAYER_KHRONOS_validation", "VK_KHR_swapchain\x00", ""}
	got := VulkanSafeStrings(in)

	want := []string{"VK_LAYER_KHRONOS_validation\x00", "VK_KHR_swapchain\x00", "\x00"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("VulkanSafeStrings()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if in[0] != "VK_LAYER_KHRONOS_validation" {
		t.Errorf("VulkanSafeStrings modified its input: %q", in[0])
	}
}
