package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Equivalent of VK_WHOLE_SIZE.
const wholeSize = vk.DeviceSize(^uint64(0))

/**
 * @brief A Vulkan buffer holding instanceCount elements of instanceSize bytes.
 * Each element starts at a multiple of the requested minimum offset alignment.
 */
type VulkanBuffer struct {
	context *VulkanContext

	Handle vk.Buffer
	Memory vk.DeviceMemory

	BufferSize          uint64
	InstanceSize        uint64
	InstanceCount       uint32
	AlignmentSize       uint64
	UsageFlags          vk.BufferUsageFlags
	MemoryPropertyFlags vk.MemoryPropertyFlags

	// Host address of the mapped range, nil when unmapped.
	mapped unsafe.Pointer
}

func NewBuffer(
	context *VulkanContext,
	instanceSize uint64,
	instanceCount uint32,
	usage vk.BufferUsageFlags,
	memoryProperties vk.MemoryPropertyFlags,
	minOffsetAlignment uint64,
) (*VulkanBuffer, error) {
	alignment := metadata.GetAligned(instanceSize, minOffsetAlignment)
	buffer := &VulkanBuffer{
		context:             context,
		InstanceSize:        instanceSize,
		InstanceCount:       instanceCount,
		AlignmentSize:       alignment,
		BufferSize:          alignment * uint64(instanceCount),
		UsageFlags:          usage,
		MemoryPropertyFlags: memoryProperties,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(buffer.BufferSize),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	device := context.Device.LogicalDevice
	var handle vk.Buffer
	if res := vk.CreateBuffer(device, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError(res, "failed to create buffer of %d bytes", buffer.BufferSize)
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, handle, &requirements)
	requirements.Deref()

	memoryType, err := context.FindMemoryIndex(requirements.MemoryTypeBits, memoryProperties)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(device, &allocInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy()
		return nil, resultError(res, "failed to allocate buffer memory")
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(device, handle, memory, 0); res != vk.Success {
		buffer.Destroy()
		return nil, resultError(res, "failed to bind buffer memory")
	}
	return buffer, nil
}

// NewDeviceLocalBuffer uploads data into device local memory through a staging buffer.
func NewDeviceLocalBuffer(context *VulkanContext, data []byte, instanceSize uint64, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	instanceCount := uint32(uint64(len(data)) / instanceSize)

	staging, err := NewBuffer(
		context,
		instanceSize,
		instanceCount,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
		1,
	)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	if err := staging.Map(); err != nil {
		return nil, err
	}
	staging.WriteToBuffer(data, 0)

	buffer, err := NewBuffer(
		context,
		instanceSize,
		instanceCount,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		1,
	)
	if err != nil {
		return nil, err
	}

	if err := CopyBuffer(context, staging, buffer, buffer.BufferSize); err != nil {
		buffer.Destroy()
		return nil, err
	}
	return buffer, nil
}

// CopyBuffer records and waits for a single transfer on the graphics queue.
func CopyBuffer(context *VulkanContext, src, dst *VulkanBuffer, size uint64) error {
	pool := context.Device.GraphicsCommandPool
	cb, err := AllocateAndBeginSingleUse(context, pool)
	if err != nil {
		return err
	}

	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cb.Handle, src.Handle, dst.Handle, 1, []vk.BufferCopy{region})

	return cb.EndSingleUse(context, pool, context.Device.GraphicsQueue)
}

// Map maps the whole buffer into host memory.
func (b *VulkanBuffer) Map() error {
	core.Assert(b.Handle != nil && b.Memory != nil, "called map on buffer before create")
	var data unsafe.Pointer
	if res := vk.MapMemory(b.context.Device.LogicalDevice, b.Memory, 0, wholeSize, 0, &data); res != vk.Success {
		return resultError(res, "failed to map buffer memory")
	}
	b.mapped = data
	return nil
}

func (b *VulkanBuffer) Unmap() {
	if b.mapped != nil {
		vk.UnmapMemory(b.context.Device.LogicalDevice, b.Memory)
		b.mapped = nil
	}
}

func (b *VulkanBuffer) IsMapped() bool {
	return b.mapped != nil
}

// WriteToBuffer copies data into the mapped range starting at offset.
func (b *VulkanBuffer) WriteToBuffer(data []byte, offset uint64) {
	core.Assert(b.mapped != nil, "cannot copy to unmapped buffer")
	core.Assert(offset+uint64(len(data)) <= b.BufferSize, "write of %d bytes at %d overflows buffer of %d bytes", len(data), offset, b.BufferSize)
	vk.Memcopy(unsafe.Add(b.mapped, offset), data)
}

// ReadFromBuffer copies size bytes out of the mapped range starting at offset.
func (b *VulkanBuffer) ReadFromBuffer(size, offset uint64) []byte {
	core.Assert(b.mapped != nil, "cannot read from unmapped buffer")
	core.Assert(offset+size <= b.BufferSize, "read of %d bytes at %d overflows buffer of %d bytes", size, offset, b.BufferSize)
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(unsafe.Add(b.mapped, offset)), size))
	return out
}

// WriteToIndex writes one instance at its aligned slot.
func (b *VulkanBuffer) WriteToIndex(data []byte, index uint32) {
	b.WriteToBuffer(data, uint64(index)*b.AlignmentSize)
}

// Flush makes host writes to the whole buffer visible to the device. Only
// needed for memory that is not host coherent.
func (b *VulkanBuffer) Flush() error {
	if b.MemoryPropertyFlags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0 {
		return nil
	}
	mappedRange := vk.MappedMemoryRange{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: b.Memory,
		Offset: 0,
		Size:   wholeSize,
	}
	if res := vk.FlushMappedMemoryRanges(b.context.Device.LogicalDevice, 1, []vk.MappedMemoryRange{mappedRange}); res != vk.Success {
		return resultError(res, "failed to flush mapped buffer memory")
	}
	return nil
}

// DescriptorInfo describes the whole buffer for a descriptor write.
func (b *VulkanBuffer) DescriptorInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: b.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(b.BufferSize),
	}
}

func (b *VulkanBuffer) Destroy() {
	b.Unmap()
	device := b.context.Device.LogicalDevice
	if b.Handle != nil {
		vk.DestroyBuffer(device, b.Handle, b.context.Allocator)
		b.Handle = nil
	}
	if b.Memory != nil {
		vk.FreeMemory(device, b.Memory, b.context.Allocator)
		b.Memory = nil
	}
}
