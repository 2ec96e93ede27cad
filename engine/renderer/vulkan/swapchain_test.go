package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/renderer"
)

func TestChooseSurfaceFormat(t *testing.T) {
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name      string
		available []vk.SurfaceFormat
		want      vk.SurfaceFormat
	}{
		{"preferred first", []vk.SurfaceFormat{srgb, unorm}, srgb},
		{"preferred later", []vk.SurfaceFormat{unorm, rgba, srgb}, srgb},
		{"fallback to first", []vk.SurfaceFormat{rgba, unorm}, rgba},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseSurfaceFormat(tt.available)
			if got.Format != tt.want.Format || got.ColorSpace != tt.want.ColorSpace {
				t.Errorf("chooseSurfaceFormat() = %v/%v, want %v/%v", got.Format, got.ColorSpace, tt.want.Format, tt.want.ColorSpace)
			}
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	tests := []struct {
		name      string
		available []vk.PresentMode
		preferred vk.PresentMode
		want      vk.PresentMode
	}{
		{"preferred immediate", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeImmediate, vk.PresentModeMailbox}, vk.PresentModeImmediate, vk.PresentModeImmediate},
		{"mailbox when preferred missing", []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}, vk.PresentModeImmediate, vk.PresentModeMailbox},
		{"fifo fallback", []vk.PresentMode{vk.PresentModeFifo}, vk.PresentModeMailbox, vk.PresentModeFifo},
		{"fifo requested", []vk.PresentMode{vk.PresentModeMailbox, vk.PresentModeFifo}, vk.PresentModeFifo, vk.PresentModeFifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := choosePresentMode(tt.available, tt.preferred); got != tt.want {
				t.Errorf("choosePresentMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChooseExtent(t *testing.T) {
	bounds := func(current vk.Extent2D) vk.SurfaceCapabilities {
		return vk.SurfaceCapabilities{
			CurrentExtent:  current,
			MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
			MaxImageExtent: vk.Extent2D{Width: 1920, Height: 1080},
		}
	}
	undefined := vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}

	tests := []struct {
		name         string
		capabilities vk.SurfaceCapabilities
		window       renderer.Extent
		want         vk.Extent2D
	}{
		{"surface decides", bounds(vk.Extent2D{Width: 800, Height: 600}), renderer.Extent{Width: 1024, Height: 768}, vk.Extent2D{Width: 800, Height: 600}},
		{"window within bounds", bounds(undefined), renderer.Extent{Width: 1024, Height: 768}, vk.Extent2D{Width: 1024, Height: 768}},
		{"window clamped up", bounds(undefined), renderer.Extent{Width: 10, Height: 50}, vk.Extent2D{Width: 100, Height: 100}},
		{"window clamped down", bounds(undefined), renderer.Extent{Width: 4000, Height: 3000}, vk.Extent2D{Width: 1920, Height: 1080}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chooseExtent(tt.capabilities, tt.window)
			if got.Width != tt.want.Width || got.Height != tt.want.Height {
				t.Errorf("chooseExtent() = %dx%d, want %dx%d", got.Width, got.Height, tt.want.Width, tt.want.Height)
			}
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		name     string
		min, max uint32
		want     uint32
	}{
		{"unbounded", 2, 0, 3},
		{"below max", 2, 8, 3},
		{"capped by max", 3, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
			if got := chooseImageCount(caps); got != tt.want {
				t.Errorf("chooseImageCount(min=%d, max=%d) = %d, want %d", tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestCompareFormats(t *testing.T) {
	base := &VulkanSwapchain{
		ImageFormat: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb},
		DepthFormat: vk.FormatD32Sfloat,
	}

	tests := []struct {
		name  string
		other renderer.Swapchain
		want  bool
	}{
		{"same formats", &VulkanSwapchain{ImageFormat: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb}, DepthFormat: vk.FormatD32Sfloat}, true},
		{"color changed", &VulkanSwapchain{ImageFormat: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm}, DepthFormat: vk.FormatD32Sfloat}, false},
		{"depth changed", &VulkanSwapchain{ImageFormat: vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb}, DepthFormat: vk.FormatD24UnormS8Uint}, false},
		{"nil swapchain", (*VulkanSwapchain)(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.CompareFormats(tt.other); got != tt.want {
				t.Errorf("CompareFormats() = %v, want %v", got, tt.want)
			}
		})
	}
}
