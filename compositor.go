package compositor

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/kcenon/blackbox-player-sub005/internal/gpu"
)

// Compositor renders multi-channel dashcam video onto a single drawable
// surface. Each Render call lays out the supplied frames according to the
// active layout mode, uploads them through a per-channel texture cache,
// and draws every channel in one GPU render pass.
//
// Compositor is NOT safe for concurrent use. Drive it from one goroutine,
// typically the playback loop that owns the decoded frames.
type Compositor struct {
	dev      *gpu.Device
	pipeline *gpu.VideoPipeline
	cache    *gpu.TextureCache
	session  *gpu.Session

	mode         LayoutMode
	focused      CameraPosition
	clearColor   gputypes.Color
	fenceTimeout time.Duration

	lastStats RenderStats
	closed    bool
}

// New opens a GPU device through the HAL backend registry and builds the
// render pipeline on it. Importing this package registers the Vulkan
// backend; WithBackend selects another registered backend.
//
// Returns ErrNoGPU when no adapter can be opened.
func New(opts ...Option) (*Compositor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	dev, err := gpu.OpenRegistry(o.backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGPU, err)
	}
	return newCompositor(dev, o)
}

// NewShared builds a compositor on a GPU device owned by the host
// application, typically a gogpu App's context provider. The provider
// must expose its HAL handles through HalDevice() any and HalQueue() any
// methods. Close leaves the shared device untouched.
func NewShared(provider gpucontext.DeviceProvider, opts ...Option) (*Compositor, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newCompositor(gpu.Borrow(device, queue), o)
}

// NewNoop builds a compositor on the in-process noop backend, which
// accepts every GPU call and renders nothing. Tests and headless smoke
// paths use it to exercise the full render flow without hardware.
func NewNoop(opts ...Option) (*Compositor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	dev, err := gpu.OpenNoop()
	if err != nil {
		return nil, fmt.Errorf("compositor: open noop device: %w", err)
	}
	return newCompositor(dev, o)
}

func newCompositor(dev *gpu.Device, o options) (*Compositor, error) {
	pipeline, err := gpu.NewVideoPipeline(dev.Handle(), dev.Queue())
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("compositor: build pipeline: %w", err)
	}
	maxDim := gputypes.DefaultLimits().MaxTextureDimension2D
	return &Compositor{
		dev:          dev,
		pipeline:     pipeline,
		cache:        gpu.NewTextureCache(dev.Handle(), dev.Queue(), maxDim),
		session:      gpu.NewSession(dev.Handle(), dev.Queue(), pipeline),
		mode:         o.layout,
		focused:      o.focused,
		clearColor:   o.clearColor,
		fenceTimeout: o.fenceTimeout,
	}, nil
}

// Render composites one frame set onto target and presents it. The call
// blocks until the GPU finished, so the frames' pixel buffers may be
// reused as soon as it returns.
//
// Channels whose frame fails validation or upload are skipped and counted
// in LastStats; the remaining channels still render. An empty frame set
// clears the target and presents it.
func (c *Compositor) Render(frames FrameSet, target Drawable) error {
	if c.closed {
		return ErrClosed
	}
	if target == nil {
		return ErrNilTarget
	}
	start := time.Now()

	width, height := target.Size()
	if width == 0 || height == 0 {
		c.lastStats = RenderStats{Duration: time.Since(start)}
		return target.Present()
	}

	draws, skipped := c.buildDraws(frames, width, height)
	err := c.session.Render(gpu.RenderParams{
		Target:       target.TextureView(),
		TargetFormat: target.Format(),
		Width:        width,
		Height:       height,
		Clear:        c.clearColor,
		Draws:        draws,
		FenceTimeout: c.fenceTimeout,
	})
	if err != nil {
		return fmt.Errorf("compositor: render: %w", err)
	}
	if err := target.Present(); err != nil {
		return fmt.Errorf("compositor: present: %w", err)
	}
	c.lastStats = RenderStats{
		ChannelsDrawn:   len(draws),
		ChannelsSkipped: skipped,
		Duration:        time.Since(start),
	}
	return nil
}

// Snapshot composites one frame set into a temporary offscreen target of
// the given size and reads the result back. The returned image is a fresh
// allocation the caller owns.
func (c *Compositor) Snapshot(frames FrameSet, width, height int) (*image.RGBA, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	start := time.Now()

	target, err := gpu.CreateTarget(c.dev.Handle(), uint32(width), uint32(height),
		gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, fmt.Errorf("compositor: create snapshot target: %w", err)
	}
	defer target.Destroy(c.dev.Handle())

	draws, skipped := c.buildDraws(frames, target.Width, target.Height)
	pix, err := c.session.RenderToPixels(gpu.RenderParams{
		Target:       target.View,
		TargetFormat: target.Format,
		Width:        target.Width,
		Height:       target.Height,
		Clear:        c.clearColor,
		Draws:        draws,
		FenceTimeout: c.fenceTimeout,
	}, target.Texture)
	if err != nil {
		return nil, fmt.Errorf("compositor: snapshot: %w", err)
	}
	c.lastStats = RenderStats{
		ChannelsDrawn:   len(draws),
		ChannelsSkipped: skipped,
		Duration:        time.Since(start),
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// buildDraws validates and uploads each active channel and returns the
// draw ops for those that made it, plus the count of those that did not.
// Channels whose viewport has no area are left out without counting as
// skipped; that is a layout outcome, not a failure.
func (c *Compositor) buildDraws(frames FrameSet, width, height uint32) ([]gpu.DrawOp, int) {
	positions := frames.activePositions()
	viewports := LayoutViewports(c.mode, c.focused, positions, float64(width), float64(height))

	draws := make([]gpu.DrawOp, 0, len(positions))
	skipped := 0
	for _, pos := range positions {
		vp := viewports[pos]
		if vp.Empty() {
			continue
		}
		frame := frames[pos]
		if err := frame.validate(); err != nil {
			Logger().Debug("compositor: channel skipped",
				"camera", pos.String(), "err", err)
			skipped++
			continue
		}
		view, err := c.cache.Acquire(pos.String(), toGPUFrame(frame))
		if err != nil {
			Logger().Debug("compositor: channel upload failed",
				"camera", pos.String(), "err", err)
			skipped++
			continue
		}
		draws = append(draws, gpu.DrawOp{
			View: view,
			X:    float32(vp.X), Y: float32(vp.Y),
			W: float32(vp.W), H: float32(vp.H),
		})
	}
	return draws, skipped
}

// NewOffscreenTarget creates a Drawable backed by a plain RGBA texture on
// the compositor's device. Close the target before closing the compositor.
func (c *Compositor) NewOffscreenTarget(width, height int) (*OffscreenTarget, error) {
	if c.closed {
		return nil, ErrClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	target, err := gpu.CreateTarget(c.dev.Handle(), uint32(width), uint32(height),
		gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, fmt.Errorf("compositor: create offscreen target: %w", err)
	}
	return &OffscreenTarget{target: target, device: c.dev.Handle()}, nil
}

// SetLayoutMode switches the layout applied by subsequent renders.
func (c *Compositor) SetLayoutMode(m LayoutMode) { c.mode = m }

// Layout returns the active layout mode.
func (c *Compositor) Layout() LayoutMode { return c.mode }

// SetFocusedPosition selects the channel LayoutFocus enlarges.
func (c *Compositor) SetFocusedPosition(p CameraPosition) { c.focused = p }

// Focused returns the channel LayoutFocus enlarges.
func (c *Compositor) Focused() CameraPosition { return c.focused }

// ReleaseChannel destroys the cached texture of one channel. Call it when
// a camera stream ends so its GPU memory is returned before the next
// render. Releasing a channel that has no texture is a no-op.
func (c *Compositor) ReleaseChannel(pos CameraPosition) {
	if c.closed {
		return
	}
	c.cache.Release(pos.String())
}

// LastStats returns what the most recent Render or Snapshot call did.
func (c *Compositor) LastStats() RenderStats { return c.lastStats }

// CacheStats returns the texture cache counters accumulated since the
// compositor was created.
func (c *Compositor) CacheStats() CacheStats {
	s := c.cache.Stats()
	return CacheStats{Hits: s.Hits, Misses: s.Misses, Evictions: s.Evictions}
}

// Close destroys the cached textures, the pipeline and, for compositors
// created with New or NewNoop, the GPU device. Shared devices are left
// untouched. Close is idempotent; Render and Snapshot return ErrClosed
// afterwards.
func (c *Compositor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.cache.Destroy()
	c.pipeline.Destroy()
	c.dev.Close()
	return nil
}

// toGPUFrame reinterprets a VideoFrame for the upload layer. The pixel
// slice is shared, not copied.
func toGPUFrame(f *VideoFrame) gpu.Frame {
	var format gpu.FrameFormat
	switch f.Format {
	case FormatRGBA8:
		format = gpu.FrameRGBA8
	case FormatBGRA8:
		format = gpu.FrameBGRA8
	case FormatYUV420:
		format = gpu.FrameYUV420
	}
	return gpu.Frame{
		Pixels: f.Pixels,
		Stride: f.Stride,
		Width:  f.Width,
		Height: f.Height,
		Format: format,
	}
}
