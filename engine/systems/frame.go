package systems

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// FrameInfo is everything a render system needs to record one frame.
type FrameInfo struct {
	FrameIndex int
	// Seconds since the previous frame.
	FrameTime           float32
	CommandBuffer       renderer.CommandBuffer
	Camera              *components.Camera
	GlobalDescriptorSet vk.DescriptorSet
	GameObjects         scene.Map
	Meshes              *scene.Arena[*vulkan.VulkanModel]
}
