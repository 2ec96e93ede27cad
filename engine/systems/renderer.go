package systems

import (
	"maps"
	"slices"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// SimplePushConstantData is pushed once per drawn object.
type SimplePushConstantData struct {
	ModelMatrix  mgl32.Mat4
	NormalMatrix mgl32.Mat4
}

const simplePushConstantSize = uint32(unsafe.Sizeof(SimplePushConstantData{}))

var simplePushConstantStages = vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit)

/**
 * @brief Draws every game object that has a mesh with one pipeline, binding the
 * global uniforms at set 0 and the object transform as push constants.
 */
type SimpleRenderSystem struct {
	context         *vulkan.VulkanContext
	shaders         *ShaderSystem
	globalSetLayout vk.DescriptorSetLayout
	pipeline        *vulkan.VulkanPipeline
}

func NewSimpleRenderSystem(
	context *vulkan.VulkanContext,
	shaders *ShaderSystem,
	renderpass *vulkan.VulkanRenderpass,
	globalSetLayout vk.DescriptorSetLayout,
) (*SimpleRenderSystem, error) {
	rs := &SimpleRenderSystem{
		context:         context,
		shaders:         shaders,
		globalSetLayout: globalSetLayout,
	}
	pipeline, err := rs.createPipeline(renderpass)
	if err != nil {
		return nil, err
	}
	rs.pipeline = pipeline
	return rs, nil
}

func (rs *SimpleRenderSystem) createPipeline(renderpass *vulkan.VulkanRenderpass) (*vulkan.VulkanPipeline, error) {
	stages, err := rs.shaders.CreateStages()
	if err != nil {
		return nil, err
	}
	defer rs.shaders.DestroyStages(stages)

	config := vulkan.DefaultPipelineConfig(renderpass)
	config.Stride = metadata.VertexStride
	config.Attributes = vulkan.VertexAttributeDescriptions()
	config.DescriptorSetLayouts = []vk.DescriptorSetLayout{rs.globalSetLayout}
	config.Stages = stages
	config.PushConstantRanges = []vk.PushConstantRange{{
		StageFlags: simplePushConstantStages,
		Offset:     0,
		Size:       simplePushConstantSize,
	}}

	pipeline, err := vulkan.NewGraphicsPipeline(rs.context, config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the simple render pipeline")
	}
	return pipeline, nil
}

// Reload rebuilds the pipeline from the current shader files. On failure the
// previous pipeline stays in use. The device must be idle.
func (rs *SimpleRenderSystem) Reload(renderpass *vulkan.VulkanRenderpass) error {
	pipeline, err := rs.createPipeline(renderpass)
	if err != nil {
		return err
	}
	rs.pipeline.Destroy()
	rs.pipeline = pipeline
	core.LogInfo("simple render pipeline reloaded")
	return nil
}

func (rs *SimpleRenderSystem) RenderGameObjects(frameInfo *FrameInfo) {
	rs.pipeline.Bind(frameInfo.CommandBuffer)

	rs.pipeline.BindDescriptorSets(frameInfo.CommandBuffer, frameInfo.GlobalDescriptorSet)

	for _, id := range drawOrder(frameInfo.GameObjects) {
		obj := frameInfo.GameObjects[id]
		model, err := frameInfo.Meshes.Get(obj.MeshID)
		if err != nil {
			core.LogWarn("game object %d: %s", id, err)
			continue
		}

		push := pushConstants(obj)
		rs.pipeline.PushConstants(frameInfo.CommandBuffer, simplePushConstantStages, simplePushConstantSize, unsafe.Pointer(&push))
		model.Bind(frameInfo.CommandBuffer)
		model.Draw(frameInfo.CommandBuffer)
	}
}

func (rs *SimpleRenderSystem) Destroy() {
	if rs.pipeline != nil {
		rs.pipeline.Destroy()
		rs.pipeline = nil
	}
}

// drawOrder lists the identifiers of drawable objects in ascending order.
func drawOrder(objects scene.Map) []uint32 {
	ids := slices.Sorted(maps.Keys(objects))
	return slices.DeleteFunc(ids, func(id uint32) bool {
		return !objects[id].HasMesh()
	})
}

func pushConstants(obj *scene.GameObject) SimplePushConstantData {
	return SimplePushConstantData{
		ModelMatrix:  obj.Transform.Mat4(),
		NormalMatrix: obj.Transform.NormalMatrix(),
	}
}
