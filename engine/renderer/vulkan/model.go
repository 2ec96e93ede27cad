package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

/**
 * @brief GPU side mesh: a device local vertex buffer and an optional index buffer.
 */
type VulkanModel struct {
	Name string

	vertexBuffer *VulkanBuffer
	vertexCount  uint32

	indexBuffer *VulkanBuffer
	indexCount  uint32
}

func NewVulkanModel(context *VulkanContext, mesh *metadata.MeshData) (*VulkanModel, error) {
	if len(mesh.Vertices) < 3 {
		return nil, errors.Newf("mesh %q needs at least 3 vertices, got %d", mesh.Name, len(mesh.Vertices))
	}

	model := &VulkanModel{
		Name:        mesh.Name,
		vertexCount: uint32(len(mesh.Vertices)),
	}

	vertexBuffer, err := NewDeviceLocalBuffer(
		context,
		vertexBytes(mesh.Vertices),
		uint64(metadata.VertexStride),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upload vertices of %q", mesh.Name)
	}
	model.vertexBuffer = vertexBuffer

	if mesh.HasIndices() {
		indexBuffer, err := NewDeviceLocalBuffer(
			context,
			indexBytes(mesh.Indices),
			4,
			vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
		)
		if err != nil {
			model.Destroy()
			return nil, errors.Wrapf(err, "failed to upload indices of %q", mesh.Name)
		}
		model.indexBuffer = indexBuffer
		model.indexCount = uint32(len(mesh.Indices))
	}

	core.LogDebug("model %q uploaded: %d vertices, %d indices", mesh.Name, model.vertexCount, model.indexCount)
	return model, nil
}

func (m *VulkanModel) Bind(cb renderer.CommandBuffer) {
	handle := commandBufferHandle(cb).Handle
	vk.CmdBindVertexBuffers(handle, 0, 1, []vk.Buffer{m.vertexBuffer.Handle}, []vk.DeviceSize{0})
	if m.indexBuffer != nil {
		vk.CmdBindIndexBuffer(handle, m.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	}
}

func (m *VulkanModel) Draw(cb renderer.CommandBuffer) {
	handle := commandBufferHandle(cb).Handle
	if m.indexBuffer != nil {
		vk.CmdDrawIndexed(handle, m.indexCount, 1, 0, 0, 0)
		return
	}
	vk.CmdDraw(handle, m.vertexCount, 1, 0, 0)
}

func (m *VulkanModel) Destroy() {
	if m.indexBuffer != nil {
		m.indexBuffer.Destroy()
		m.indexBuffer = nil
	}
	if m.vertexBuffer != nil {
		m.vertexBuffer.Destroy()
		m.vertexBuffer = nil
	}
}

// VertexBindingDescriptions describes the single interleaved vertex stream.
func VertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    metadata.VertexStride,
		InputRate: vk.VertexInputRateVertex,
	}}
}

// VertexAttributeDescriptions maps shader locations 0..3 to position, color, normal and uv.
func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: metadata.VertexPositionOffset},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: metadata.VertexColorOffset},
		{Location: 2, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: metadata.VertexNormalOffset},
		{Location: 3, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: metadata.VertexUVOffset},
	}
}

func vertexBytes(vertices []metadata.Vertex) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(metadata.VertexStride))
}

func indexBytes(indices []uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}
