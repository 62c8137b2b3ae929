package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded video quad shader source.
//
//go:embed shaders/video_quad.wgsl
var videoQuadShaderSource string

// videoVertexStride is the byte stride per vertex in the video pipeline.
// Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
//
// Total = 16 bytes per vertex.
const videoVertexStride = 16

// VideoUniformSize is the byte size of the per-draw uniform buffer.
// Layout: rect (vec4<f32>) = 16 bytes + surface_size (vec2<f32>) = 8 bytes
// + pad (vec2<f32>) = 8 bytes = 32 bytes.
const VideoUniformSize = 32

// quadVertexCount is the unit quad's vertex count (one triangle strip).
const quadVertexCount = 4

// VideoPipeline owns the GPU objects for drawing channel textures into
// viewport rectangles: the compiled shader, bind group layout, one render
// pipeline per supported target format, the shared sampler and the shared
// unit quad vertex buffer.
//
// Per-draw objects (uniform buffer, bind group) are built by the session
// each frame; the pipeline only holds what outlives frames.
type VideoPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout

	// One pipeline per target format the compositor can present to.
	pipelineRGBA hal.RenderPipeline
	pipelineBGRA hal.RenderPipeline

	sampler hal.Sampler
	quadBuf hal.Buffer
}

// NewVideoPipeline compiles the video quad shader and creates every
// pipeline object up front. Any failure here is fatal to construction so
// render calls never discover a missing pipeline.
func NewVideoPipeline(device hal.Device, queue hal.Queue) (*VideoPipeline, error) {
	p := &VideoPipeline{device: device, queue: queue}
	if err := p.create(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *VideoPipeline) create() error {
	if videoQuadShaderSource == "" {
		return fmt.Errorf("video_quad shader source is empty")
	}

	spirv, err := compileWGSL(videoQuadShaderSource)
	if err != nil {
		return fmt.Errorf("compile video_quad shader: %w", err)
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "video_quad_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create video_quad shader module: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: VideoUniforms (uniform buffer, vertex)
	//   Binding 1: frame texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "video_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create video uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "video_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create video pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	// Linear filtering: channel frames rarely match their viewport size,
	// so every draw is a scale.
	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "video_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create video sampler: %w", err)
	}
	p.sampler = sampler

	quadBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "video_unit_quad",
		Size:  uint64(len(unitQuadVertexData())),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create unit quad buffer: %w", err)
	}
	p.quadBuf = quadBuf
	p.queue.WriteBuffer(quadBuf, 0, unitQuadVertexData())

	p.pipelineRGBA, err = p.createPipelineFor(gputypes.TextureFormatRGBA8Unorm, "video_pipeline_rgba8")
	if err != nil {
		return err
	}
	p.pipelineBGRA, err = p.createPipelineFor(gputypes.TextureFormatBGRA8Unorm, "video_pipeline_bgra8")
	if err != nil {
		return err
	}

	Logger().Info("gpu: video pipelines created")
	return nil
}

// createPipelineFor builds the render pipeline variant for one target
// format. Both variants share the shader, layout, sampler and quad.
func (p *VideoPipeline) createPipelineFor(format gputypes.TextureFormat, label string) (hal.RenderPipeline, error) {
	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    videoVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return pipeline, nil
}

// PipelineFor returns the pipeline variant matching the target format.
func (p *VideoPipeline) PipelineFor(format gputypes.TextureFormat) (hal.RenderPipeline, bool) {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
		return p.pipelineRGBA, true
	case gputypes.TextureFormatBGRA8Unorm:
		return p.pipelineBGRA, true
	default:
		return nil, false
	}
}

// RecordDraws records one draw per bind group into an existing render
// pass. All draws share the pipeline variant and the unit quad; each bind
// group carries its own uniform rectangle and frame texture.
func (p *VideoPipeline) RecordDraws(rp hal.RenderPassEncoder, pipeline hal.RenderPipeline, bindGroups []hal.BindGroup) {
	if len(bindGroups) == 0 {
		return
	}
	rp.SetPipeline(pipeline)
	rp.SetVertexBuffer(0, p.quadBuf, 0)
	for _, bg := range bindGroups {
		rp.SetBindGroup(0, bg, nil)
		rp.Draw(quadVertexCount, 1, 0, 0)
	}
}

// Destroy releases all pipeline resources in reverse creation order. Safe
// to call multiple times or on a partially constructed pipeline.
func (p *VideoPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipelineBGRA != nil {
		p.device.DestroyRenderPipeline(p.pipelineBGRA)
		p.pipelineBGRA = nil
	}
	if p.pipelineRGBA != nil {
		p.device.DestroyRenderPipeline(p.pipelineRGBA)
		p.pipelineRGBA = nil
	}
	if p.quadBuf != nil {
		p.device.DestroyBuffer(p.quadBuf)
		p.quadBuf = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// videoVertexLayout returns the vertex buffer layout for the video
// pipeline. Matches VertexInput in video_quad.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
func videoVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: videoVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}

// unitQuadVertexData serializes the unit quad as a 4-vertex triangle
// strip. Positions and texture coordinates coincide: the uniform rectangle
// does all placement, the quad never changes.
func unitQuadVertexData() []byte {
	verts := [quadVertexCount][4]float32{
		{0, 0, 0, 0},
		{1, 0, 1, 0},
		{0, 1, 0, 1},
		{1, 1, 1, 1},
	}
	data := make([]byte, 0, quadVertexCount*videoVertexStride)
	var buf [4]byte
	for _, v := range verts {
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
			data = append(data, buf[:]...)
		}
	}
	return data
}

// BuildVideoUniform serializes the per-draw uniform: the viewport
// rectangle in surface pixels and the surface size. Matches VideoUniforms
// in video_quad.wgsl.
func BuildVideoUniform(x, y, w, h, surfaceW, surfaceH float32) []byte {
	vals := [8]float32{x, y, w, h, surfaceW, surfaceH, 0, 0}
	buf := make([]byte, VideoUniformSize)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// compileWGSL compiles WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
