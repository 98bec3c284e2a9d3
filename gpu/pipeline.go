// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"github.com/hogletgames/genesis/gpu/driver"
)

// ShaderConfig is the compiled code of one shader stage.
type ShaderConfig struct {

	// stage the shader runs in
	Stage driver.ShaderStageFlags

	// compiled shader code, e.g. SPIR-V
	Code []byte

	// entry point; "main" if empty
	Entry string
}

// PipelineConfig describes a graphics pipeline, as supplied by the
// shader subsystem. The render pass, sample count and winding come
// from the render target the pipeline is created for.
type PipelineConfig struct {

	// name of the pipeline, for logging
	Name string

	// shader stages
	Shaders []ShaderConfig

	// vertex input layout
	VertexBindings   []driver.VertexBinding
	VertexAttributes []driver.VertexAttribute

	// primitive topology
	Topology driver.Topology

	// polygon rasterization mode
	PolygonMode driver.PolygonMode

	// which faces to cull
	CullMode driver.CullMode

	// rendering line width; 0 means 1
	LineWidth float32

	// depth testing and writing
	DepthTest  bool
	DepthWrite bool

	// standard alpha blending of the color attachment
	AlphaBlend bool

	// per sample shading when multisampled
	SampleShading bool

	// size of the push constant block, in bytes
	PushConstantSize uint32
}

// Defaults sets the default configuration: filled triangle lists with
// back face culling, depth testing and alpha blending.
func (pc *PipelineConfig) Defaults() {
	pc.Topology = driver.TopologyTriangleList
	pc.PolygonMode = driver.PolygonFill
	pc.CullMode = driver.CullBack
	pc.LineWidth = 1
	pc.DepthTest = true
	pc.DepthWrite = true
	pc.AlphaBlend = true
}

// Pipeline is a graphics pipeline created for one render target.
type Pipeline struct {

	// configuration the pipeline was created from
	Config PipelineConfig

	// device the pipeline is created on
	Device *Device

	// pipeline handle
	Handle driver.Pipeline

	// layout handle
	Layout driver.PipelineLayout

	// render pass the pipeline is compatible with
	RenderPass driver.RenderPass

	// winding of front facing triangles
	FrontFace driver.FrontFace

	// rasterization samples
	Samples driver.SampleCount
}

// NewPipeline creates a pipeline for render pass rp.
func NewPipeline(dev *Device, rp driver.RenderPass, frontFace driver.FrontFace, samples driver.SampleCount, cfg *PipelineConfig) (*Pipeline, error) {
	pl := &Pipeline{Config: *cfg, Device: dev, RenderPass: rp, FrontFace: frontFace, Samples: samples}
	var err error
	pl.Layout, err = dev.Driver.CreatePipelineLayout(dev.Handle, &driver.PipelineLayoutCreateInfo{
		PushConstantSize:   cfg.PushConstantSize,
		PushConstantStages: driver.ShaderVertex | driver.ShaderFragment,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: layout of pipeline %q: %w", ErrAllocationFailed, cfg.Name, err)
	}
	if err := pl.create(); err != nil {
		pl.Release()
		return nil, err
	}
	return pl, nil
}

func (pl *Pipeline) create() error {
	drv := pl.Device.Driver
	dev := pl.Device.Handle
	cf := &pl.Config
	stages := make([]driver.ShaderStage, 0, len(cf.Shaders))
	defer func() {
		for _, st := range stages {
			drv.DestroyShaderModule(dev, st.Module)
		}
	}()
	for _, sh := range cf.Shaders {
		sm, err := drv.CreateShaderModule(dev, sh.Code)
		if err != nil {
			return fmt.Errorf("gpu: shader module of pipeline %q: %w", cf.Name, err)
		}
		entry := sh.Entry
		if entry == "" {
			entry = "main"
		}
		stages = append(stages, driver.ShaderStage{Stage: sh.Stage, Module: sm, Entry: entry})
	}
	lw := cf.LineWidth
	if lw == 0 {
		lw = 1
	}
	multisample := pl.Samples > driver.Samples1
	var err error
	pl.Handle, err = drv.CreateGraphicsPipeline(dev, &driver.GraphicsPipelineCreateInfo{
		Stages:           stages,
		VertexBindings:   cf.VertexBindings,
		VertexAttributes: cf.VertexAttributes,
		Topology:         cf.Topology,
		PolygonMode:      cf.PolygonMode,
		CullMode:         cf.CullMode,
		FrontFace:        pl.FrontFace,
		LineWidth:        lw,
		Samples:          pl.Samples,
		SampleShading:    cf.SampleShading && multisample,
		MinSampleShading: 0.2,
		DepthTest:        cf.DepthTest,
		DepthWrite:       cf.DepthWrite,
		DepthCompare:     driver.CompareLess,
		BlendEnable:      cf.AlphaBlend,
		ColorAttachments: 1,
		Layout:           pl.Layout,
		RenderPass:       pl.RenderPass,
	})
	if err != nil {
		return fmt.Errorf("gpu: creating pipeline %q: %w", cf.Name, err)
	}
	return nil
}

// Rebuild recreates the pipeline against a new render pass,
// keeping its layout. The device must be idle.
func (pl *Pipeline) Rebuild(rp driver.RenderPass) error {
	if pl.Handle != 0 {
		pl.Device.Driver.DestroyPipeline(pl.Device.Handle, pl.Handle)
		pl.Handle = 0
	}
	pl.RenderPass = rp
	return pl.create()
}

// CmdBind binds the pipeline on cb.
func (pl *Pipeline) CmdBind(cb driver.CommandBuffer) {
	pl.Device.Driver.CmdBindPipeline(cb, pl.Handle)
}

// CmdDraw binds the pipeline and draws vertices without vertex buffers,
// with vertex positions generated in the vertex shader.
func (pl *Pipeline) CmdDraw(cb driver.CommandBuffer, vertices, instances int) {
	pl.CmdBind(cb)
	pl.Device.Driver.CmdDraw(cb, uint32(vertices), uint32(instances), 0, 0)
}

// Release destroys the pipeline and its layout.
func (pl *Pipeline) Release() {
	drv := pl.Device.Driver
	if pl.Handle != 0 {
		drv.DestroyPipeline(pl.Device.Handle, pl.Handle)
		pl.Handle = 0
	}
	if pl.Layout != 0 {
		drv.DestroyPipelineLayout(pl.Device.Handle, pl.Layout)
		pl.Layout = 0
	}
}
