package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"
)

var (
	// errBadFrame marks frames whose geometry or buffer length prevents
	// upload.
	errBadFrame = errors.New("gpu: bad frame")

	// errUnsupportedFormat marks frame formats the cache cannot convert.
	errUnsupportedFormat = errors.New("gpu: unsupported frame format")
)

// CacheStats counts texture cache activity since construction.
type CacheStats struct {
	// Hits counts uploads that reused an existing texture.
	Hits uint64
	// Misses counts texture allocations.
	Misses uint64
	// Evictions counts textures destroyed by geometry changes or release.
	Evictions uint64
}

// cachedTexture is one channel's GPU texture and the geometry it was
// created with.
type cachedTexture struct {
	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
	format  gputypes.TextureFormat
}

// TextureCache keeps one GPU texture per channel and reuses it while the
// channel's frame geometry stays stable. A dimension or format change
// destroys and recreates the texture, which counts as an eviction plus a
// miss. Views handed out by Acquire are valid until the next Acquire or
// Release for the same key.
//
// Not safe for concurrent use; the compositor serializes access.
type TextureCache struct {
	device hal.Device
	queue  hal.Queue

	// maxDim caps texture dimensions. Frames larger than the device allows
	// are downscaled on the CPU before upload instead of failing.
	maxDim uint32

	entries map[string]*cachedTexture

	// scratch holds CPU-side RGBA conversion output between calls so
	// steady-state rendering does not reallocate per frame.
	scratch []byte

	stats CacheStats
}

// NewTextureCache creates an empty cache uploading through queue. maxDim
// of zero disables the dimension cap.
func NewTextureCache(device hal.Device, queue hal.Queue, maxDim uint32) *TextureCache {
	return &TextureCache{
		device:  device,
		queue:   queue,
		maxDim:  maxDim,
		entries: make(map[string]*cachedTexture),
	}
}

// Acquire uploads frame into key's texture, reallocating when the frame's
// geometry or format changed, and returns the texture view for binding.
//
// The view is borrowed for the current render call only: a later Acquire
// or Release for the same key may destroy the texture behind it.
func (c *TextureCache) Acquire(key string, frame Frame) (hal.TextureView, error) {
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pixels) == 0 {
		return nil, fmt.Errorf("%w: %dx%d, %d bytes", errBadFrame, frame.Width, frame.Height, len(frame.Pixels))
	}

	texFormat, err := textureFormatFor(frame.Format)
	if err != nil {
		return nil, err
	}

	upW, upH := clampDims(uint32(frame.Width), uint32(frame.Height), c.maxDim)
	direct := upW == uint32(frame.Width) && upH == uint32(frame.Height) && frame.Format != FrameYUV420

	entry, err := c.ensureTexture(key, upW, upH, texFormat)
	if err != nil {
		return nil, err
	}

	if direct {
		if frame.Stride < frame.Width*4 || len(frame.Pixels) < frame.Stride*frame.Height {
			return nil, fmt.Errorf("%w: stride %d for width %d, %d bytes",
				errBadFrame, frame.Stride, frame.Width, len(frame.Pixels))
		}
		c.writeTexture(entry, frame.Pixels, uint32(frame.Stride))
		return entry.view, nil
	}

	pix, err := c.frameToRGBA(frame, int(upW), int(upH))
	if err != nil {
		return nil, err
	}
	c.writeTexture(entry, pix, upW*4)
	return entry.view, nil
}

// Release destroys key's texture, if any. The next Acquire for the key
// allocates a fresh one.
func (c *TextureCache) Release(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	c.destroyEntry(entry)
	delete(c.entries, key)
	c.stats.Evictions++
	Logger().Debug("gpu: channel texture released", "channel", key)
}

// Stats returns a copy of the cache counters.
func (c *TextureCache) Stats() CacheStats {
	return c.stats
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	return len(c.entries)
}

// Destroy releases every cached texture. The cache stays usable; Destroy
// is also the Close path.
func (c *TextureCache) Destroy() {
	for key, entry := range c.entries {
		c.destroyEntry(entry)
		delete(c.entries, key)
	}
	c.scratch = nil
}

// ensureTexture returns key's texture when its geometry matches, otherwise
// destroys the stale one and allocates a replacement.
func (c *TextureCache) ensureTexture(key string, w, h uint32, format gputypes.TextureFormat) (*cachedTexture, error) {
	if entry, ok := c.entries[key]; ok {
		if entry.width == w && entry.height == h && entry.format == format {
			c.stats.Hits++
			return entry, nil
		}
		c.destroyEntry(entry)
		delete(c.entries, key)
		c.stats.Evictions++
		Logger().Debug("gpu: channel texture evicted",
			"channel", key, "width", w, "height", h)
	}

	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "video_" + key,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture for %s: %w", key, err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "video_" + key + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view for %s: %w", key, err)
	}

	entry := &cachedTexture{texture: tex, view: view, width: w, height: h, format: format}
	c.entries[key] = entry
	c.stats.Misses++
	return entry, nil
}

func (c *TextureCache) destroyEntry(entry *cachedTexture) {
	if entry.view != nil {
		c.device.DestroyTextureView(entry.view)
		entry.view = nil
	}
	if entry.texture != nil {
		c.device.DestroyTexture(entry.texture)
		entry.texture = nil
	}
}

// writeTexture uploads pix rows into the entry's full extent.
func (c *TextureCache) writeTexture(entry *cachedTexture, pix []byte, bytesPerRow uint32) {
	c.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  entry.texture,
			MipLevel: 0,
		},
		pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  bytesPerRow,
			RowsPerImage: entry.height,
		},
		&hal.Extent3D{Width: entry.width, Height: entry.height, DepthOrArrayLayers: 1},
	)
}

// frameToRGBA converts the frame to tightly packed RGBA at dstW x dstH in
// the reusable scratch buffer. Planar frames convert through image.YCbCr;
// packed frames only land here when they need downscaling, and scaling is
// channel-order agnostic so BGRA data stays BGRA.
func (c *TextureCache) frameToRGBA(frame Frame, dstW, dstH int) ([]byte, error) {
	src, err := frameImage(frame)
	if err != nil {
		return nil, err
	}

	need := dstW * 4 * dstH
	if cap(c.scratch) < need {
		c.scratch = make([]byte, need)
	}
	dst := &image.RGBA{
		Pix:    c.scratch[:need],
		Stride: dstW * 4,
		Rect:   image.Rect(0, 0, dstW, dstH),
	}

	if dstW == frame.Width && dstH == frame.Height {
		xdraw.Draw(dst, dst.Rect, src, image.Point{}, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
	}
	return dst.Pix, nil
}

// frameImage wraps the frame's pixel data in an image.Image without
// copying.
func frameImage(frame Frame) (image.Image, error) {
	switch frame.Format {
	case FrameRGBA8, FrameBGRA8:
		if frame.Stride < frame.Width*4 || len(frame.Pixels) < frame.Stride*frame.Height {
			return nil, fmt.Errorf("%w: stride %d for width %d, %d bytes",
				errBadFrame, frame.Stride, frame.Width, len(frame.Pixels))
		}
		return &image.RGBA{
			Pix:    frame.Pixels,
			Stride: frame.Stride,
			Rect:   image.Rect(0, 0, frame.Width, frame.Height),
		}, nil
	case FrameYUV420:
		if frame.Stride < frame.Width {
			return nil, fmt.Errorf("%w: stride %d for width %d", errBadFrame, frame.Stride, frame.Width)
		}
		cStride := (frame.Stride + 1) / 2
		cHeight := (frame.Height + 1) / 2
		ySize := frame.Stride * frame.Height
		cSize := cStride * cHeight
		if len(frame.Pixels) < ySize+2*cSize {
			return nil, fmt.Errorf("%w: %d bytes, need %d", errBadFrame, len(frame.Pixels), ySize+2*cSize)
		}
		return &image.YCbCr{
			Y:              frame.Pixels[:ySize],
			Cb:             frame.Pixels[ySize : ySize+cSize],
			Cr:             frame.Pixels[ySize+cSize : ySize+2*cSize],
			YStride:        frame.Stride,
			CStride:        cStride,
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           image.Rect(0, 0, frame.Width, frame.Height),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %v", errUnsupportedFormat, frame.Format)
	}
}

// textureFormatFor maps a frame format to the texture format it uploads
// as. Packed formats upload as-is; the sampler reads both as linear RGBA.
func textureFormatFor(format FrameFormat) (gputypes.TextureFormat, error) {
	switch format {
	case FrameRGBA8, FrameYUV420:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case FrameBGRA8:
		return gputypes.TextureFormatBGRA8Unorm, nil
	default:
		return 0, fmt.Errorf("%w: %v", errUnsupportedFormat, format)
	}
}

// clampDims shrinks dimensions proportionally so neither side exceeds
// maxDim. Zero maxDim disables the cap.
func clampDims(w, h, maxDim uint32) (uint32, uint32) {
	if maxDim == 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		nh := uint32(uint64(h) * uint64(maxDim) / uint64(w))
		if nh == 0 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := uint32(uint64(w) * uint64(maxDim) / uint64(h))
	if nw == 0 {
		nw = 1
	}
	return nw, maxDim
}
