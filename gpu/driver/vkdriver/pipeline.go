// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vkdriver

import (
	"errors"

	vk "github.com/goki/vulkan"
	"github.com/hogletgames/genesis/gpu/driver"
)

// bytecode converts SPIR-V bytes to little endian words.
func bytecode(b []byte) []uint32 {
	code := make([]uint32, len(b)/4)
	for i := range code {
		j := i * 4
		code[i] = uint32(b[j]) | uint32(b[j+1])<<8 | uint32(b[j+2])<<16 | uint32(b[j+3])<<24
	}
	return code
}

func (d *Driver) CreateShaderModule(h driver.Device, code []byte) (driver.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return 0, errors.New("vkdriver: shader code size is not a multiple of 4")
	}
	var sm vk.ShaderModule
	ret := vk.CreateShaderModule(get[vk.Device](d, uint64(h)), &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    bytecode(code),
	}, nil, &sm)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.ShaderModule(d.put(sm)), nil
}

func (d *Driver) DestroyShaderModule(h driver.Device, smh driver.ShaderModule) {
	sm := get[vk.ShaderModule](d, uint64(smh))
	if d.drop(uint64(smh)) {
		vk.DestroyShaderModule(get[vk.Device](d, uint64(h)), sm, nil)
	}
}

func (d *Driver) CreatePipelineLayout(h driver.Device, info *driver.PipelineLayoutCreateInfo) (driver.PipelineLayout, error) {
	pli := &vk.PipelineLayoutCreateInfo{SType: vk.StructureTypePipelineLayoutCreateInfo}
	if info.PushConstantSize > 0 {
		pli.PushConstantRangeCount = 1
		pli.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(info.PushConstantStages),
			Size:       info.PushConstantSize,
		}}
	}
	var pl vk.PipelineLayout
	if err := check(vk.CreatePipelineLayout(get[vk.Device](d, uint64(h)), pli, nil, &pl)); err != nil {
		return 0, err
	}
	return driver.PipelineLayout(d.put(pl)), nil
}

func (d *Driver) DestroyPipelineLayout(h driver.Device, plh driver.PipelineLayout) {
	pl := get[vk.PipelineLayout](d, uint64(plh))
	if d.drop(uint64(plh)) {
		vk.DestroyPipelineLayout(get[vk.Device](d, uint64(h)), pl, nil)
	}
}

func (d *Driver) CreateGraphicsPipeline(h driver.Device, info *driver.GraphicsPipelineCreateInfo) (driver.Pipeline, error) {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(info.Stages))
	for i, st := range info.Stages {
		entry := st.Entry
		if entry == "" {
			entry = "main"
		}
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFlagBits(st.Stage),
			Module: get[vk.ShaderModule](d, uint64(st.Module)),
			PName:  safeString(entry),
		}
	}
	bindings := make([]vk.VertexInputBindingDescription, len(info.VertexBindings))
	for i, b := range info.VertexBindings {
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRateVertex,
		}
	}
	attrs := make([]vk.VertexInputAttributeDescription, len(info.VertexAttributes))
	for i, a := range info.VertexAttributes {
		attrs[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		}
	}
	lineWidth := info.LineWidth
	if lineWidth == 0 {
		lineWidth = 1
	}
	blends := make([]vk.PipelineColorBlendAttachmentState, info.ColorAttachments)
	for i := range blends {
		blends[i] = vk.PipelineColorBlendAttachmentState{
			ColorWriteMask:      vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
			BlendEnable:         bool32(info.BlendEnable),
			SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
			DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
			ColorBlendOp:        vk.BlendOpAdd,
			SrcAlphaBlendFactor: vk.BlendFactorOne,
			DstAlphaBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
			AlphaBlendOp:        vk.BlendOpAdd,
		}
	}
	dynamic := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}

	infos := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount:   uint32(len(bindings)),
			PVertexBindingDescriptions:      bindings,
			VertexAttributeDescriptionCount: uint32(len(attrs)),
			PVertexAttributeDescriptions:    attrs,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopology(info.Topology),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonMode(info.PolygonMode),
			CullMode:    vk.CullModeFlags(info.CullMode),
			FrontFace:   vk.FrontFace(info.FrontFace),
			LineWidth:   lineWidth,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCountFlagBits(info.Samples),
			SampleShadingEnable:  bool32(info.SampleShading),
			MinSampleShading:     info.MinSampleShading,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  bool32(info.DepthTest),
			DepthWriteEnable: bool32(info.DepthWrite),
			DepthCompareOp:   vk.CompareOp(info.DepthCompare),
			MaxDepthBounds:   1,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOp:         vk.LogicOpCopy,
			AttachmentCount: uint32(len(blends)),
			PAttachments:    blends,
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(dynamic)),
			PDynamicStates:    dynamic,
		},
		Layout:     get[vk.PipelineLayout](d, uint64(info.Layout)),
		RenderPass: get[vk.RenderPass](d, uint64(info.RenderPass)),
		Subpass:    info.Subpass,
	}}
	pipelines := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(get[vk.Device](d, uint64(h)), vk.PipelineCache(vk.NullHandle),
		1, infos, nil, pipelines)
	if err := check(ret); err != nil {
		return 0, err
	}
	return driver.Pipeline(d.put(pipelines[0])), nil
}

func (d *Driver) DestroyPipeline(h driver.Device, ph driver.Pipeline) {
	pl := get[vk.Pipeline](d, uint64(ph))
	if d.drop(uint64(ph)) {
		vk.DestroyPipeline(get[vk.Device](d, uint64(h)), pl, nil)
	}
}
