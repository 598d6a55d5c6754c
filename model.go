package lve

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Vertex is the per-vertex input layout shared by every pipeline in the
// module: interleaved position and color.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

const vertexStride = uint32(unsafe.Sizeof(Vertex{}))

func vertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    vertexStride,
		InputRate: vk.VertexInputRateVertex,
	}}
}

func vertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{{
		Location: 0,
		Binding:  0,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   uint32(unsafe.Offsetof(Vertex{}.Position)),
	}, {
		Location: 1,
		Binding:  0,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
	}}
}

// CoreModel owns a device-visible vertex buffer built from a vertex slice.
type CoreModel struct {
	device       *CoreDevice
	vertexBuffer vk.Buffer
	vertexMemory vk.DeviceMemory
	vertexCount  uint32
}

// NewCoreModel uploads the vertices into a host-visible vertex buffer.
func NewCoreModel(device *CoreDevice, vertices []Vertex) (*CoreModel, error) {
	if len(vertices) < 3 {
		return nil, errors.Errorf("model needs at least 3 vertices, got %d", len(vertices))
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])),
		int(vertexStride)*len(vertices))
	buffer, memory, err := device.CreateBuffer(data, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, errors.Wrap(err, "vertex buffer")
	}
	return &CoreModel{
		device:       device,
		vertexBuffer: buffer,
		vertexMemory: memory,
		vertexCount:  uint32(len(vertices)),
	}, nil
}

// Bind binds the vertex buffer for subsequent draws.
func (m *CoreModel) Bind(cmd vk.CommandBuffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1,
		[]vk.Buffer{m.vertexBuffer}, []vk.DeviceSize{0})
}

// Draw issues a non-indexed draw over every vertex.
func (m *CoreModel) Draw(cmd vk.CommandBuffer) {
	vk.CmdDraw(cmd, m.vertexCount, 1, 0, 0)
}

func (m *CoreModel) Destroy() {
	if m.vertexBuffer != vk.NullBuffer {
		m.device.DestroyBuffer(m.vertexBuffer)
		m.vertexBuffer = vk.NullBuffer
	}
	if m.vertexMemory != vk.NullDeviceMemory {
		m.device.FreeMemory(m.vertexMemory)
		m.vertexMemory = vk.NullDeviceMemory
	}
}
