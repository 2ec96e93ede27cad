package systems

import (
	"runtime"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

/** @brief Configuration of the systems the viewer runs. */
type SystemManagerConfig struct {
	Shaders ShaderSystemConfig
	// Decoding workers, 0 picks one per CPU.
	Workers   int
	MoveSpeed float32
	LookSpeed float32
}

// SystemManager owns the engine systems and shuts them down in reverse order of creation.
type SystemManager struct {
	JobSystem          *JobSystem
	ShaderSystem       *ShaderSystem
	MeshLoaderSystem   *MeshLoaderSystem
	SimpleRenderSystem *SimpleRenderSystem
	MovementController *KeyboardMovementController
}

func NewSystemManager(
	config SystemManagerConfig,
	context *vulkan.VulkanContext,
	renderpass *vulkan.VulkanRenderpass,
	globalSetLayout vk.DescriptorSetLayout,
	shaderSource ShaderSource,
	meshSource MeshSource,
) (*SystemManager, error) {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	js, err := NewJobSystem(workers, workers)
	if err != nil {
		return nil, err
	}

	ss, err := NewShaderSystem(config.Shaders, context, shaderSource)
	if err != nil {
		js.Shutdown()
		return nil, err
	}

	rs, err := NewSimpleRenderSystem(context, ss, renderpass, globalSetLayout)
	if err != nil {
		js.Shutdown()
		return nil, err
	}

	return &SystemManager{
		JobSystem:          js,
		ShaderSystem:       ss,
		MeshLoaderSystem:   NewMeshLoaderSystem(js, meshSource),
		SimpleRenderSystem: rs,
		MovementController: NewKeyboardMovementController(config.MoveSpeed, config.LookSpeed),
	}, nil
}

func (sm *SystemManager) Shutdown() {
	if sm.SimpleRenderSystem != nil {
		sm.SimpleRenderSystem.Destroy()
	}
	if sm.JobSystem != nil {
		sm.JobSystem.Shutdown()
	}
}
