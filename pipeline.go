package lve

import (
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PipelineConfig collects the fixed-function state for a graphics pipeline.
// Callers start from DefaultPipelineConfig and override what they need, then
// must fill in Layout and RenderPass before constructing the pipeline.
type PipelineConfig struct {
	InputAssembly        vk.PipelineInputAssemblyStateCreateInfo
	Rasterization        vk.PipelineRasterizationStateCreateInfo
	Multisample          vk.PipelineMultisampleStateCreateInfo
	ColorBlendAttachment vk.PipelineColorBlendAttachmentState
	DepthStencil         vk.PipelineDepthStencilStateCreateInfo
	DynamicStates        []vk.DynamicState
	Layout               vk.PipelineLayout
	RenderPass           vk.RenderPass
	Subpass              uint32
}

// DefaultPipelineConfig returns the state for an opaque triangle-list
// pipeline with depth testing and dynamic viewport/scissor, so the pipeline
// survives chain rebuilds without being recreated.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		InputAssembly: vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		Rasterization: vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			LineWidth:   1,
			CullMode:    vk.CullModeFlags(vk.CullModeNone),
			FrontFace:   vk.FrontFaceClockwise,
		},
		Multisample: vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		ColorBlendAttachment: vk.PipelineColorBlendAttachmentState{
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
				vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
			BlendEnable: vk.False,
		},
		DepthStencil: vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  vk.True,
			DepthWriteEnable: vk.True,
			DepthCompareOp:   vk.CompareOpLess,
			MaxDepthBounds:   1,
		},
		DynamicStates: []vk.DynamicState{
			vk.DynamicStateViewport,
			vk.DynamicStateScissor,
		},
	}
}

// CorePipeline wraps a graphics pipeline together with its shader modules.
type CorePipeline struct {
	device     *CoreDevice
	pipeline   vk.Pipeline
	vertShader vk.ShaderModule
	fragShader vk.ShaderModule
}

// NewCorePipeline loads the SPIR-V shaders from disk and builds the graphics
// pipeline against config.RenderPass.
func NewCorePipeline(device *CoreDevice, vertPath, fragPath string, config *PipelineConfig) (p *CorePipeline, err error) {
	if config.Layout == vk.NullPipelineLayout {
		return nil, errors.New("pipeline config has no layout")
	}
	if config.RenderPass == vk.NullRenderPass {
		return nil, errors.New("pipeline config has no render pass")
	}

	p = &CorePipeline{device: device}
	defer func() {
		if err != nil {
			p.Destroy()
		}
	}()

	if p.vertShader, err = loadShaderModule(device, vertPath); err != nil {
		return nil, err
	}
	if p.fragShader, err = loadShaderModule(device, fragPath); err != nil {
		return nil, err
	}

	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: p.vertShader,
		PName:  "main\x00",
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: p.fragShader,
		PName:  "main\x00",
	}}

	bindings := vertexBindingDescriptions()
	attributes := vertexAttributeDescriptions()
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	// Counts only; the actual rects are set per frame via dynamic state.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{config.ColorBlendAttachment},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(config.DynamicStates)),
		PDynamicStates:    config.DynamicStates,
	}

	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(device.Handle(), vk.NullPipelineCache, 1,
		[]vk.GraphicsPipelineCreateInfo{{
			SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount:          uint32(len(stages)),
			PStages:             stages,
			PVertexInputState:   &vertexInput,
			PInputAssemblyState: &config.InputAssembly,
			PViewportState:      &viewportState,
			PRasterizationState: &config.Rasterization,
			PMultisampleState:   &config.Multisample,
			PDepthStencilState:  &config.DepthStencil,
			PColorBlendState:    &colorBlend,
			PDynamicState:       &dynamicState,
			Layout:              config.Layout,
			RenderPass:          config.RenderPass,
			Subpass:             config.Subpass,
			BasePipelineIndex:   -1,
		}}, nil, pipelines)
	if err = errors.Wrap(NewError(ret), "vkCreateGraphicsPipelines"); err != nil {
		return nil, err
	}
	p.pipeline = pipelines[0]
	return p, nil
}

func loadShaderModule(device *CoreDevice, path string) (vk.ShaderModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vk.NullShaderModule, errors.Wrapf(err, "read shader %s", path)
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device.Handle(), &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    sliceUint32(data),
	}, nil, &module)
	if err := errors.Wrapf(NewError(ret), "shader module %s", path); err != nil {
		return vk.NullShaderModule, err
	}
	return module, nil
}

// Bind binds the pipeline for subsequent draw commands.
func (p *CorePipeline) Bind(cmd vk.CommandBuffer) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, p.pipeline)
}

func (p *CorePipeline) Destroy() {
	if p.vertShader != vk.NullShaderModule {
		vk.DestroyShaderModule(p.device.Handle(), p.vertShader, nil)
		p.vertShader = vk.NullShaderModule
	}
	if p.fragShader != vk.NullShaderModule {
		vk.DestroyShaderModule(p.device.Handle(), p.fragShader, nil)
		p.fragShader = vk.NullShaderModule
	}
	if p.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(p.device.Handle(), p.pipeline, nil)
		p.pipeline = vk.NullPipeline
	}
}
