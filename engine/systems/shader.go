package systems

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

// ShaderSource loads a compiled shader resource by name.
type ShaderSource func(name string) (*metadata.Resource, error)

/** @brief The shader programs a pipeline is built from. */
type ShaderSystemConfig struct {
	/** @brief Compiled vertex shader, relative to the asset directory. */
	VertexShader string
	/** @brief Compiled fragment shader, relative to the asset directory. */
	FragmentShader string
}

/**
 * @brief Turns compiled SPIR-V assets into shader stages.
 * Stages only live until the pipeline using them is created.
 */
type ShaderSystem struct {
	Config  ShaderSystemConfig
	context *vulkan.VulkanContext
	source  ShaderSource
}

func NewShaderSystem(config ShaderSystemConfig, context *vulkan.VulkanContext, source ShaderSource) (*ShaderSystem, error) {
	if config.VertexShader == "" || config.FragmentShader == "" {
		return nil, errors.New("both a vertex and a fragment shader are required")
	}
	return &ShaderSystem{
		Config:  config,
		context: context,
		source:  source,
	}, nil
}

// Uses reports whether the named asset is one of the configured shaders.
func (ss *ShaderSystem) Uses(name string) bool {
	return name == ss.Config.VertexShader || name == ss.Config.FragmentShader
}

// CreateStages loads both shaders and wraps them in vertex and fragment stages.
func (ss *ShaderSystem) CreateStages() ([]*vulkan.VulkanShaderStage, error) {
	vertex, err := ss.createStage(ss.Config.VertexShader, vk.ShaderStageVertexBit)
	if err != nil {
		return nil, err
	}
	fragment, err := ss.createStage(ss.Config.FragmentShader, vk.ShaderStageFragmentBit)
	if err != nil {
		vertex.Destroy(ss.context)
		return nil, err
	}
	return []*vulkan.VulkanShaderStage{vertex, fragment}, nil
}

// DestroyStages releases shader modules once the pipeline exists.
func (ss *ShaderSystem) DestroyStages(stages []*vulkan.VulkanShaderStage) {
	for _, stage := range stages {
		stage.Destroy(ss.context)
	}
}

func (ss *ShaderSystem) createStage(name string, stage vk.ShaderStageFlagBits) (*vulkan.VulkanShaderStage, error) {
	code, err := ss.loadCode(name)
	if err != nil {
		return nil, err
	}
	shaderStage, err := vulkan.NewShaderStage(ss.context, code, stage)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s", name)
	}
	core.LogDebug("shader stage created from %s (%d words)", name, len(code))
	return shaderStage, nil
}

func (ss *ShaderSystem) loadCode(name string) ([]uint32, error) {
	res, err := ss.source(name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load shader %s", name)
	}
	code, ok := res.Data.([]uint32)
	if !ok || res.Type != metadata.ResourceTypeShader {
		return nil, errors.Wrapf(core.ErrInvalidSPIRV, "%s is a %s resource", name, res.Type)
	}
	return code, nil
}
