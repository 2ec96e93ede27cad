package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/core"
)

/**
 * @brief A descriptor set layout together with the bindings it was built from,
 * so writers can validate the descriptors they are asked to write.
 */
type VulkanDescriptorSetLayout struct {
	context  *VulkanContext
	Handle   vk.DescriptorSetLayout
	Bindings map[uint32]vk.DescriptorSetLayoutBinding
}

type DescriptorSetLayoutBuilder struct {
	context  *VulkanContext
	bindings map[uint32]vk.DescriptorSetLayoutBinding
}

func NewDescriptorSetLayoutBuilder(context *VulkanContext) *DescriptorSetLayoutBuilder {
	return &DescriptorSetLayoutBuilder{
		context:  context,
		bindings: make(map[uint32]vk.DescriptorSetLayoutBinding),
	}
}

func (b *DescriptorSetLayoutBuilder) AddBinding(binding uint32, descriptorType vk.DescriptorType, stageFlags vk.ShaderStageFlags, count uint32) *DescriptorSetLayoutBuilder {
	_, exists := b.bindings[binding]
	core.Assert(!exists, "binding %d already in use", binding)
	b.bindings[binding] = vk.DescriptorSetLayoutBinding{
		Binding:         binding,
		DescriptorType:  descriptorType,
		DescriptorCount: count,
		StageFlags:      stageFlags,
	}
	return b
}

func (b *DescriptorSetLayoutBuilder) Build() (*VulkanDescriptorSetLayout, error) {
	bindings := make([]vk.DescriptorSetLayoutBinding, 0, len(b.bindings))
	for _, binding := range b.bindings {
		bindings = append(bindings, binding)
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var handle vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(b.context.Device.LogicalDevice, &layoutInfo, b.context.Allocator, &handle); res != vk.Success {
		return nil, resultError(res, "failed to create descriptor set layout")
	}
	return &VulkanDescriptorSetLayout{
		context:  b.context,
		Handle:   handle,
		Bindings: b.bindings,
	}, nil
}

func (l *VulkanDescriptorSetLayout) Destroy() {
	if l.Handle != nil {
		vk.DestroyDescriptorSetLayout(l.context.Device.LogicalDevice, l.Handle, l.context.Allocator)
		l.Handle = nil
	}
}

type VulkanDescriptorPool struct {
	context *VulkanContext
	Handle  vk.DescriptorPool
}

type DescriptorPoolBuilder struct {
	context   *VulkanContext
	poolSizes []vk.DescriptorPoolSize
	maxSets   uint32
	flags     vk.DescriptorPoolCreateFlags
}

func NewDescriptorPoolBuilder(context *VulkanContext) *DescriptorPoolBuilder {
	return &DescriptorPoolBuilder{
		context: context,
		maxSets: 1000,
	}
}

func (b *DescriptorPoolBuilder) AddPoolSize(descriptorType vk.DescriptorType, count uint32) *DescriptorPoolBuilder {
	b.poolSizes = append(b.poolSizes, vk.DescriptorPoolSize{
		Type:            descriptorType,
		DescriptorCount: count,
	})
	return b
}

func (b *DescriptorPoolBuilder) SetPoolFlags(flags vk.DescriptorPoolCreateFlags) *DescriptorPoolBuilder {
	b.flags = flags
	return b
}

func (b *DescriptorPoolBuilder) SetMaxSets(count uint32) *DescriptorPoolBuilder {
	b.maxSets = count
	return b
}

func (b *DescriptorPoolBuilder) Build() (*VulkanDescriptorPool, error) {
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         b.flags,
		MaxSets:       b.maxSets,
		PoolSizeCount: uint32(len(b.poolSizes)),
		PPoolSizes:    b.poolSizes,
	}

	var handle vk.DescriptorPool
	if res := vk.CreateDescriptorPool(b.context.Device.LogicalDevice, &poolInfo, b.context.Allocator, &handle); res != vk.Success {
		return nil, resultError(res, "failed to create descriptor pool")
	}
	return &VulkanDescriptorPool{context: b.context, Handle: handle}, nil
}

// AllocateDescriptor allocates one set with layout from the pool.
func (p *VulkanDescriptorPool) AllocateDescriptor(layout *VulkanDescriptorSetLayout) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.Handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.Handle},
	}

	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(p.context.Device.LogicalDevice, &allocInfo, &sets[0]); res != vk.Success {
		return nil, resultError(res, "failed to allocate descriptor set")
	}
	return sets[0], nil
}

func (p *VulkanDescriptorPool) ResetPool() error {
	if res := vk.ResetDescriptorPool(p.context.Device.LogicalDevice, p.Handle, 0); res != vk.Success {
		return resultError(res, "failed to reset descriptor pool")
	}
	return nil
}

func (p *VulkanDescriptorPool) Destroy() {
	if p.Handle != nil {
		vk.DestroyDescriptorPool(p.context.Device.LogicalDevice, p.Handle, p.context.Allocator)
		p.Handle = nil
	}
}

// DescriptorWriter collects writes for one descriptor set and applies them in a single update.
type DescriptorWriter struct {
	layout *VulkanDescriptorSetLayout
	pool   *VulkanDescriptorPool
	writes []vk.WriteDescriptorSet
}

func NewDescriptorWriter(layout *VulkanDescriptorSetLayout, pool *VulkanDescriptorPool) *DescriptorWriter {
	return &DescriptorWriter{layout: layout, pool: pool}
}

func (w *DescriptorWriter) WriteBuffer(binding uint32, bufferInfo vk.DescriptorBufferInfo) *DescriptorWriter {
	description, ok := w.layout.Bindings[binding]
	core.Assert(ok, "layout does not contain binding %d", binding)
	core.Assert(description.DescriptorCount == 1, "binding %d expects %d descriptors, but a single buffer was written", binding, description.DescriptorCount)

	w.writes = append(w.writes, vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      binding,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  description.DescriptorType,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	})
	return w
}

// Build allocates a set from the pool and writes every collected descriptor into it.
func (w *DescriptorWriter) Build() (vk.DescriptorSet, error) {
	set, err := w.pool.AllocateDescriptor(w.layout)
	if err != nil {
		return nil, errors.Wrap(err, "descriptor writer")
	}
	w.Overwrite(set)
	return set, nil
}

func (w *DescriptorWriter) Overwrite(set vk.DescriptorSet) {
	for i := range w.writes {
		w.writes[i].DstSet = set
	}
	vk.UpdateDescriptorSets(w.pool.context.Device.LogicalDevice, uint32(len(w.writes)), w.writes, 0, nil)
}
