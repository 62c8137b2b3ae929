package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// defaultFenceTimeout bounds the post-submit wait when the caller does not
// set one.
const defaultFenceTimeout = 5 * time.Second

// DrawOp is one channel quad: the texture view to sample and the viewport
// rectangle to place it in, in surface pixels.
type DrawOp struct {
	View hal.TextureView
	X, Y float32
	W, H float32
}

// RenderParams describes one composited frame.
type RenderParams struct {
	// Target is the view rendered into, with its format and pixel size.
	Target       hal.TextureView
	TargetFormat gputypes.TextureFormat
	Width        uint32
	Height       uint32

	// Clear fills the whole target before any draw runs.
	Clear gputypes.Color

	// Draws run in order; later draws cover earlier ones where they
	// overlap.
	Draws []DrawOp

	// FenceTimeout bounds the wait for GPU completion after submit.
	FenceTimeout time.Duration
}

// Session records, submits and waits for composited frames on one device.
// It owns no per-frame GPU objects: uniform buffers and bind groups are
// created per draw and destroyed once the fence wait proves the GPU is
// done with them.
type Session struct {
	device   hal.Device
	queue    hal.Queue
	pipeline *VideoPipeline
}

// NewSession creates a session drawing through pipeline.
func NewSession(device hal.Device, queue hal.Queue, pipeline *VideoPipeline) *Session {
	return &Session{device: device, queue: queue, pipeline: pipeline}
}

// Render draws one composited frame and blocks until the GPU finished, so
// every texture referenced by params is idle again when it returns and the
// caller may present immediately.
func (s *Session) Render(p RenderParams) error {
	_, err := s.render(p, nil)
	return err
}

// RenderToPixels renders and reads the target back as tightly packed rows,
// four bytes per pixel in the target format's own channel order.
func (s *Session) RenderToPixels(p RenderParams, readTex hal.Texture) ([]byte, error) {
	return s.render(p, readTex)
}

func (s *Session) render(p RenderParams, readTex hal.Texture) ([]byte, error) {
	if p.Width == 0 || p.Height == 0 {
		return nil, nil
	}
	timeout := p.FenceTimeout
	if timeout <= 0 {
		timeout = defaultFenceTimeout
	}

	pipeline, ok := s.pipeline.PipelineFor(p.TargetFormat)
	if !ok {
		return nil, fmt.Errorf("no pipeline for target format %d", p.TargetFormat)
	}

	res, err := s.buildFrameResources(p.Draws, p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	defer res.destroy(s.device)

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "compositor_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("compositor_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "compositor_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       p.Target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: p.Clear,
		}},
	})
	s.pipeline.RecordDraws(rp, pipeline, res.bindGroups)
	rp.End()

	// Readback path: copy the target into a staging buffer inside the same
	// submission. Copies require 256-byte row alignment.
	var stagingBuf hal.Buffer
	var alignedBytesPerRow uint32
	if readTex != nil {
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: readTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})

		bytesPerRow := p.Width * 4
		const copyPitchAlignment = 256
		alignedBytesPerRow = (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
		stagingSize := uint64(alignedBytesPerRow) * uint64(p.Height)

		stagingBuf, err = s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "snapshot_staging",
			Size:  stagingSize,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return nil, fmt.Errorf("create staging buffer: %w", err)
		}
		defer s.device.DestroyBuffer(stagingBuf)

		encoder.CopyTextureToBuffer(readTex, stagingBuf, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: p.Height},
			TextureBase:  hal.ImageCopyTexture{Texture: readTex, MipLevel: 0},
			Size:         hal.Extent3D{Width: p.Width, Height: p.Height, DepthOrArrayLayers: 1},
		}})

		// Back to RenderAttachment so the next frame's pass finds the
		// texture in the layout it expects.
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: readTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	// Wait before returning: presentation happens right after this call,
	// and the per-draw resources and cached textures must be idle before
	// anyone reuses or destroys them.
	fenceOK, err := s.device.Wait(fence, 1, timeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	Logger().Debug("gpu: frame rendered",
		"draws", len(p.Draws), "width", p.Width, "height", p.Height)

	if readTex == nil {
		return nil, nil
	}

	stagingSize := uint64(alignedBytesPerRow) * uint64(p.Height)
	readback := make([]byte, stagingSize)
	if err := s.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}

	bytesPerRow := p.Width * 4
	if alignedBytesPerRow == bytesPerRow {
		return readback[:uint64(bytesPerRow)*uint64(p.Height)], nil
	}
	// Strip per-row alignment padding.
	tight := make([]byte, uint64(bytesPerRow)*uint64(p.Height))
	for row := uint32(0); row < p.Height; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(tight[dstOff:dstOff+int(bytesPerRow)], readback[srcOff:srcOff+int(bytesPerRow)])
	}
	return tight, nil
}

// buildFrameResources creates the per-draw uniform buffer and bind group
// for every draw op. On failure everything built so far is destroyed.
func (s *Session) buildFrameResources(draws []DrawOp, w, h uint32) (*frameResources, error) {
	res := &frameResources{
		uniformBufs: make([]hal.Buffer, 0, len(draws)),
		bindGroups:  make([]hal.BindGroup, 0, len(draws)),
	}
	for i, d := range draws {
		uniform := BuildVideoUniform(d.X, d.Y, d.W, d.H, float32(w), float32(h))
		ub, err := s.createAndUploadBuffer(fmt.Sprintf("video_uniform_%d", i), uniform,
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
		if err != nil {
			res.destroy(s.device)
			return nil, fmt.Errorf("create uniform buffer %d: %w", i, err)
		}
		res.uniformBufs = append(res.uniformBufs, ub)

		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  fmt.Sprintf("video_bind_%d", i),
			Layout: s.pipeline.uniformLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: ub.NativeHandle(), Offset: 0, Size: VideoUniformSize,
				}},
				{Binding: 1, Resource: gputypes.TextureViewBinding{
					TextureView: d.View.NativeHandle(),
				}},
				{Binding: 2, Resource: gputypes.SamplerBinding{
					Sampler: s.pipeline.sampler.NativeHandle(),
				}},
			},
		})
		if err != nil {
			res.destroy(s.device)
			return nil, fmt.Errorf("create bind group %d: %w", i, err)
		}
		res.bindGroups = append(res.bindGroups, bg)
	}
	return res, nil
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (s *Session) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// frameResources holds the per-draw GPU objects for one render call.
type frameResources struct {
	uniformBufs []hal.Buffer
	bindGroups  []hal.BindGroup
}

// destroy releases bind groups before the buffers they reference.
func (r *frameResources) destroy(device hal.Device) {
	for _, bg := range r.bindGroups {
		if bg != nil {
			device.DestroyBindGroup(bg)
		}
	}
	for _, ub := range r.uniformBufs {
		if ub != nil {
			device.DestroyBuffer(ub)
		}
	}
	r.bindGroups = nil
	r.uniformBufs = nil
}
