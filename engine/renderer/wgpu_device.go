package renderer

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// SurfaceSource provides what the renderer needs from a window.
type SurfaceSource interface {
	// SurfaceDescriptor returns the platform surface descriptor.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Width returns the drawable width in pixels.
	Width() int

	// Height returns the drawable height in pixels.
	Height() int
}

type wgpuProgram struct {
	desc      ProgramDesc
	block     *uniformBlock
	module    *wgpu.ShaderModule
	bgLayout  *wgpu.BindGroupLayout
	layout    *wgpu.PipelineLayout
	bindGroup *wgpu.BindGroup
	fill      *wgpu.RenderPipeline
	wire      *wgpu.RenderPipeline
}

type wgpuVertexArray struct {
	label    string
	vertex   *wgpu.Buffer
	index    *wgpu.Buffer
	indices  []uint32
	lines    *wgpu.Buffer
	lineKey  int
	lineSize uint32
}

type wgpuDevice struct {
	device   *wgpu.Device
	queue    *wgpu.Queue
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentModeSetting   PresentMode
	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
	logger               *zap.Logger

	ringSize   uint64
	ring       uniformRing
	ringBuffer *wgpu.Buffer

	programs     []*wgpuProgram
	vertexArrays []*wgpuVertexArray
	current      ProgramID
	bound        VertexArrayID
	wireframe    bool

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ Renderer = &wgpuDevice{}

// NewRenderer creates a WebGPU Renderer presenting to the surface of src.
// The calling goroutine is locked to its OS thread, as the windowing system
// requires for surface work.
//
// Parameters:
//   - src: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: an error if no adapter or device could be acquired
func NewRenderer(src SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	runtime.LockOSThread()
	d := &wgpuDevice{
		sampleCount: MSAA4x,
		ringSize:    defaultUniformRingSize,
		logger:      common.Logger(),
	}
	for _, opt := range options {
		opt(d)
	}
	d.setPresentMode(d.presentModeSetting)

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(src.SurfaceDescriptor())

	a, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	d.adapter = a

	dev, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.ring = uniformRing{size: d.ringSize}
	d.ringBuffer, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Ring",
		Size:  d.ringSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create uniform ring: %w", err)
	}

	if err := d.configureSurface(src.Width(), src.Height()); err != nil {
		return nil, err
	}
	d.logger.Info("renderer ready",
		zap.Int("width", src.Width()),
		zap.Int("height", src.Height()),
		zap.Uint32("msaa", uint32(d.sampleCount)),
	)
	return d, nil
}

func (d *wgpuDevice) setPresentMode(mode PresentMode) {
	switch mode {
	case PresentModeUncapped:
		d.presentMode = wgpu.PresentModeImmediate
	default:
		d.presentMode = wgpu.PresentModeFifo
	}
}

func (d *wgpuDevice) configureSurface(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	d.releaseTargets()
	count := uint32(d.sampleCount)
	msaaEnabled := count > 1
	size := wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}

	var err error
	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		d.msaaTexture, err = d.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "MSAA Texture",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        d.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("renderer: create msaa texture: %w", err)
		}
		d.msaaTextureView, err = d.msaaTexture.CreateView(nil)
		if err != nil {
			return fmt.Errorf("renderer: create msaa view: %w", err)
		}
	}

	// Depth texture sample count must match the color attachment.
	d.depthTexture, err = d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("renderer: create depth texture: %w", err)
	}
	d.depthTextureView, err = d.depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("renderer: create depth view: %w", err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	d.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    d.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            d.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (d *wgpuDevice) releaseTargets() {
	if d.msaaTextureView != nil {
		d.msaaTextureView.Release()
		d.msaaTextureView = nil
	}
	if d.msaaTexture != nil {
		d.msaaTexture.Release()
		d.msaaTexture = nil
	}
	if d.depthTextureView != nil {
		d.depthTextureView.Release()
		d.depthTextureView = nil
	}
	if d.depthTexture != nil {
		d.depthTexture.Release()
		d.depthTexture = nil
	}
}

func (d *wgpuDevice) Resize(width, height int) {
	if err := d.configureSurface(width, height); err != nil {
		d.logger.Error("resize failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
	}
}

func (d *wgpuDevice) CreateProgram(desc ProgramDesc) (ProgramID, error) {
	p := &wgpuProgram{desc: desc, block: newUniformBlock(desc)}

	var err error
	p.module, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("renderer: %s: create shader module: %w", desc.Label, err)
	}

	var layouts []*wgpu.BindGroupLayout
	if desc.BlockSize > 0 {
		p.bgLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: desc.Label + " Parameters",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
					Buffer: wgpu.BufferBindingLayout{
						Type:             wgpu.BufferBindingTypeUniform,
						HasDynamicOffset: true,
						MinBindingSize:   desc.BlockSize,
					},
				},
			},
		})
		if err != nil {
			return 0, fmt.Errorf("renderer: %s: create bind group layout: %w", desc.Label, err)
		}
		p.bindGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  desc.Label + " Parameters",
			Layout: p.bgLayout,
			Entries: []wgpu.BindGroupEntry{
				{
					Binding: 0,
					Buffer:  d.ringBuffer,
					Offset:  0,
					Size:    desc.BlockSize,
				},
			},
		})
		if err != nil {
			return 0, fmt.Errorf("renderer: %s: create bind group: %w", desc.Label, err)
		}
		layouts = append(layouts, p.bgLayout)
	}

	p.layout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return 0, fmt.Errorf("renderer: %s: create pipeline layout: %w", desc.Label, err)
	}

	p.fill, err = d.createPipeline(p, wgpu.PrimitiveTopologyTriangleList)
	if err != nil {
		return 0, err
	}
	p.wire, err = d.createPipeline(p, wgpu.PrimitiveTopologyLineList)
	if err != nil {
		return 0, err
	}

	d.programs = append(d.programs, p)
	return ProgramID(len(d.programs)), nil
}

func (d *wgpuDevice) createPipeline(p *wgpuProgram, topology wgpu.PrimitiveTopology) (*wgpu.RenderPipeline, error) {
	desc := p.desc
	target := wgpu.ColorTargetState{
		Format:    d.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if desc.AlphaBlend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha},
			Alpha: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorZero},
		}
	}
	depthCompare := wgpu.CompareFunctionLess
	if desc.DepthTestOff {
		depthCompare = wgpu.CompareFunctionAlways
	}
	cull := desc.CullMode
	if topology == wgpu.PrimitiveTopologyLineList {
		cull = wgpu.CullModeNone
	}

	created, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label + " Render Pipeline",
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: desc.VertexEntry,
			Buffers:    desc.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: desc.FragmentEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(d.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: !desc.DepthWriteOff,
			DepthCompare:      depthCompare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: %s: create render pipeline: %w", desc.Label, err)
	}
	return created, nil
}

func (d *wgpuDevice) CreateVertexArray(desc VertexArrayDesc) (VertexArrayID, error) {
	va := &wgpuVertexArray{label: desc.Label, lineKey: -1}
	if len(desc.Vertices) > 0 {
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: desc.Label + " Vertex Buffer",
			Size:  uint64(len(desc.Vertices)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return 0, err
		}
		d.queue.WriteBuffer(buf, 0, desc.Vertices)
		va.vertex = buf
	}
	if len(desc.Indices) > 0 {
		buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: desc.Label + " Index Buffer",
			Size:  uint64(len(desc.Indices) * 4),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return 0, err
		}
		d.queue.WriteBuffer(buf, 0, common.SliceToBytes(desc.Indices))
		va.index = buf
		va.indices = desc.Indices
	}
	d.vertexArrays = append(d.vertexArrays, va)
	return VertexArrayID(len(d.vertexArrays)), nil
}

func (d *wgpuDevice) program(p ProgramID) *wgpuProgram {
	if p == 0 || int(p) > len(d.programs) {
		return nil
	}
	return d.programs[p-1]
}

func (d *wgpuDevice) UseProgram(p ProgramID) {
	d.current = p
}

func (d *wgpuDevice) pushed(p ProgramID, loc Location, ok bool) {
	if !ok && loc != NoLocation {
		d.logger.Debug("uniform push dropped", zap.Uint32("program", uint32(p)), zap.Int32("location", int32(loc)))
	}
}

func (d *wgpuDevice) block(p ProgramID) *uniformBlock {
	if prog := d.program(p); prog != nil {
		return prog.block
	}
	return &uniformBlock{}
}

func boolBits(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

func (d *wgpuDevice) SetBool(p ProgramID, loc Location, v bool) {
	d.pushed(p, loc, d.block(p).putUint32(loc, boolBits(v)))
}

func (d *wgpuDevice) SetInt(p ProgramID, loc Location, v int32) {
	d.pushed(p, loc, d.block(p).putUint32(loc, uint32(v)))
}

func (d *wgpuDevice) SetUint(p ProgramID, loc Location, v uint32) {
	d.pushed(p, loc, d.block(p).putUint32(loc, v))
}

func (d *wgpuDevice) SetFloat(p ProgramID, loc Location, v float32) {
	d.pushed(p, loc, d.block(p).putFloats(loc, v))
}

func (d *wgpuDevice) SetDouble(p ProgramID, loc Location, v float64) {
	d.pushed(p, loc, d.block(p).putDouble(loc, v))
}

func (d *wgpuDevice) SetVec2(p ProgramID, loc Location, v [2]float32) {
	d.pushed(p, loc, d.block(p).putFloats(loc, v[:]...))
}

func (d *wgpuDevice) SetVec3(p ProgramID, loc Location, v [3]float32) {
	d.pushed(p, loc, d.block(p).putFloats(loc, v[:]...))
}

func (d *wgpuDevice) SetVec4(p ProgramID, loc Location, v [4]float32) {
	d.pushed(p, loc, d.block(p).putFloats(loc, v[:]...))
}

func (d *wgpuDevice) SetMat3(p ProgramID, loc Location, m [9]float32) {
	d.pushed(p, loc, d.block(p).putMat3(loc, m))
}

func (d *wgpuDevice) SetMat4(p ProgramID, loc Location, m [16]float32) {
	d.pushed(p, loc, d.block(p).putFloats(loc, m[:]...))
}

func (d *wgpuDevice) BindVertexArray(va VertexArrayID) {
	d.bound = va
}

func (d *wgpuDevice) SetWireframe(enabled bool) {
	d.wireframe = enabled
}

func (d *wgpuDevice) Wireframe() bool {
	return d.wireframe
}

func (d *wgpuDevice) DrawArrays(count int) error {
	return d.draw(count, false)
}

func (d *wgpuDevice) DrawElements(count int) error {
	return d.draw(count, true)
}

func (d *wgpuDevice) draw(count int, indexed bool) error {
	if d.framePass == nil {
		return ErrNoFrame
	}
	prog := d.program(d.current)
	if prog == nil {
		return ErrNoProgram
	}
	if d.bound == 0 || int(d.bound) > len(d.vertexArrays) {
		return ErrNoVertexArray
	}
	va := d.vertexArrays[d.bound-1]
	if va.vertex == nil || (indexed && va.index == nil) {
		return ErrNoVertexArray
	}

	if prog.bindGroup != nil {
		off, ok := d.ring.alloc(uint64(len(prog.block.data)))
		if !ok {
			return ErrUniformRingFull
		}
		d.queue.WriteBuffer(d.ringBuffer, off, prog.block.data)
		d.framePass.SetBindGroup(0, prog.bindGroup, []uint32{uint32(off)})
	}
	d.framePass.SetVertexBuffer(0, va.vertex, 0, wgpu.WholeSize)

	if d.wireframe {
		lines, n, err := d.lineBuffer(va, count, indexed)
		if err != nil {
			return err
		}
		d.framePass.SetPipeline(prog.wire)
		d.framePass.SetIndexBuffer(lines, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		d.framePass.DrawIndexed(n, 1, 0, 0, 0)
		return nil
	}

	d.framePass.SetPipeline(prog.fill)
	if indexed {
		d.framePass.SetIndexBuffer(va.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		d.framePass.DrawIndexed(uint32(count), 1, 0, 0, 0)
		return nil
	}
	d.framePass.Draw(uint32(count), 1, 0, 0)
	return nil
}

// lineBuffer returns an index buffer tracing the triangle edges of va. It is
// built on first use and rebuilt only when the draw count changes.
func (d *wgpuDevice) lineBuffer(va *wgpuVertexArray, count int, indexed bool) (*wgpu.Buffer, uint32, error) {
	key := count
	if !indexed {
		key = -count - 2
	}
	if va.lines != nil && va.lineKey == key {
		return va.lines, va.lineSize, nil
	}
	var src []uint32
	if indexed {
		src = va.indices
	}
	lines := lineListIndices(src, count)
	if len(lines) == 0 {
		return nil, 0, fmt.Errorf("renderer: %s: nothing to draw as lines", va.label)
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: va.label + " Line Index Buffer",
		Size:  uint64(len(lines) * 4),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, err
	}
	d.queue.WriteBuffer(buf, 0, common.SliceToBytes(lines))
	if va.lines != nil {
		va.lines.Release()
	}
	va.lines, va.lineKey, va.lineSize = buf, key, uint32(len(lines))
	return buf, va.lineSize, nil
}

func (d *wgpuDevice) BeginFrame(clear [4]float32) error {
	if d.frameSurface != nil {
		return errors.New("renderer: previous frame surface not yet presented")
	}
	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &d.renderPassDescriptor.ColorAttachments[0]
	if d.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	attachment.ClearValue = wgpu.Color{
		R: float64(clear[0]), G: float64(clear[1]), B: float64(clear[2]), A: float64(clear[3]),
	}

	d.ring.reset()
	d.frameEncoder = encoder
	d.framePass = encoder.BeginRenderPass(d.renderPassDescriptor)
	d.frameSurface = surfaceTexture
	d.frameView = view
	return nil
}

func (d *wgpuDevice) EndFrame() error {
	if d.framePass == nil {
		return ErrNoFrame
	}
	d.framePass.End()
	d.framePass = nil

	commandBuffer, err := d.frameEncoder.Finish(nil)
	d.frameEncoder.Release()
	d.frameEncoder = nil
	if err != nil {
		d.frameView.Release()
		d.frameSurface.Release()
		d.frameSurface = nil
		d.frameView = nil
		return err
	}
	d.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (d *wgpuDevice) Present() {
	if d.frameSurface == nil {
		return
	}
	d.surface.Present()
	d.frameView.Release()
	d.frameSurface.Release()
	d.frameView = nil
	d.frameSurface = nil
}

func (d *wgpuDevice) Release() {
	for _, va := range d.vertexArrays {
		for _, b := range []*wgpu.Buffer{va.vertex, va.index, va.lines} {
			if b != nil {
				b.Release()
			}
		}
	}
	for _, p := range d.programs {
		p.fill.Release()
		p.wire.Release()
		if p.bindGroup != nil {
			p.bindGroup.Release()
			p.bgLayout.Release()
		}
		p.layout.Release()
		p.module.Release()
	}
	d.programs, d.vertexArrays = nil, nil
	d.releaseTargets()
	if d.ringBuffer != nil {
		d.ringBuffer.Release()
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.surface.Release()
	d.instance.Release()
}
