package lve

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PushConstantData is the per-object payload handed to the vertex shader.
type PushConstantData struct {
	ModelMatrix mgl32.Mat4
}

const pushConstantSize = uint32(unsafe.Sizeof(PushConstantData{}))

// RenderObject pairs a model with its transform for one draw.
type RenderObject struct {
	Model     *CoreModel
	Transform mgl32.Mat4
}

// RenderSystem renders objects with the module's basic push-constant
// pipeline. It owns the pipeline and its layout; the render pass belongs to
// the chain.
type RenderSystem struct {
	device         *CoreDevice
	pipeline       *CorePipeline
	pipelineLayout vk.PipelineLayout
}

// NewRenderSystem builds the pipeline layout and pipeline against the given
// render pass, loading shaders from the two SPIR-V paths.
func NewRenderSystem(device *CoreDevice, renderPass vk.RenderPass, vertPath, fragPath string) (*RenderSystem, error) {
	rs := &RenderSystem{device: device}

	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(device.Handle(), &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       pushConstantSize,
		}},
	}, nil, &layout)
	if err := errors.Wrap(NewError(ret), "vkCreatePipelineLayout"); err != nil {
		return nil, err
	}
	rs.pipelineLayout = layout

	config := DefaultPipelineConfig()
	config.Layout = layout
	config.RenderPass = renderPass
	pipeline, err := NewCorePipeline(device, vertPath, fragPath, config)
	if err != nil {
		rs.Destroy()
		return nil, err
	}
	rs.pipeline = pipeline
	return rs, nil
}

// Render binds the pipeline once and draws every object with its transform
// pushed as a constant.
func (rs *RenderSystem) Render(cmd vk.CommandBuffer, objects []RenderObject) {
	rs.pipeline.Bind(cmd)
	for i := range objects {
		push := PushConstantData{ModelMatrix: objects[i].Transform}
		vk.CmdPushConstants(cmd, rs.pipelineLayout,
			vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			0, pushConstantSize, unsafe.Pointer(&push))
		objects[i].Model.Bind(cmd)
		objects[i].Model.Draw(cmd)
	}
}

func (rs *RenderSystem) Destroy() {
	if rs.pipeline != nil {
		rs.pipeline.Destroy()
		rs.pipeline = nil
	}
	if rs.pipelineLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(rs.device.Handle(), rs.pipelineLayout, nil)
		rs.pipelineLayout = vk.NullPipelineLayout
	}
}
