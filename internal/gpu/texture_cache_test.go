package gpu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func rgbaFrame(w, h int) Frame {
	return Frame{
		Pixels: make([]byte, w*h*4),
		Stride: w * 4,
		Width:  w,
		Height: h,
		Format: FrameRGBA8,
	}
}

func TestTextureCacheAcquire(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	defer cache.Destroy()

	view, err := cache.Acquire("front", rgbaFrame(64, 48))
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if view == nil {
		t.Fatal("expected non-nil view")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}

	stats := cache.Stats()
	if stats.Misses != 1 || stats.Hits != 0 {
		t.Errorf("stats = %+v, want 1 miss 0 hits", stats)
	}

	// Same geometry reuses the texture.
	view2, err := cache.Acquire("front", rgbaFrame(64, 48))
	if err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if view2 != view {
		t.Error("expected the cached view to be reused")
	}
	stats = cache.Stats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}

	// Each key gets its own texture.
	if _, err := cache.Acquire("rear", rgbaFrame(64, 48)); err != nil {
		t.Fatalf("Acquire for second key failed: %v", err)
	}
	if cache.Len() != 2 {
		t.Errorf("Len = %d, want 2", cache.Len())
	}
}

func TestTextureCacheEvictsOnGeometryChange(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	defer cache.Destroy()

	if _, err := cache.Acquire("front", rgbaFrame(64, 48)); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := cache.Acquire("front", rgbaFrame(128, 96)); err != nil {
		t.Fatalf("resized Acquire failed: %v", err)
	}

	stats := cache.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.Misses != 2 {
		t.Errorf("Misses = %d, want 2", stats.Misses)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestTextureCacheEvictsOnFormatChange(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	defer cache.Destroy()

	if _, err := cache.Acquire("front", rgbaFrame(64, 48)); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	bgra := rgbaFrame(64, 48)
	bgra.Format = FrameBGRA8
	if _, err := cache.Acquire("front", bgra); err != nil {
		t.Fatalf("BGRA Acquire failed: %v", err)
	}

	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
	entry := cache.entries["front"]
	if entry.format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("entry format = %v, want BGRA8Unorm", entry.format)
	}
}

func TestTextureCacheRelease(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	defer cache.Destroy()

	if _, err := cache.Acquire("front", rgbaFrame(32, 32)); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	cache.Release("front")
	if cache.Len() != 0 {
		t.Errorf("Len = %d after release, want 0", cache.Len())
	}
	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}

	// Releasing a key with no texture changes nothing.
	cache.Release("front")
	if got := cache.Stats().Evictions; got != 1 {
		t.Errorf("Evictions after no-op release = %d, want 1", got)
	}
}

func TestTextureCacheDestroyLeavesCacheUsable(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	if _, err := cache.Acquire("front", rgbaFrame(32, 32)); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := cache.Acquire("rear", rgbaFrame(32, 32)); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	cache.Destroy()
	if cache.Len() != 0 {
		t.Errorf("Len = %d after Destroy, want 0", cache.Len())
	}

	if _, err := cache.Acquire("front", rgbaFrame(32, 32)); err != nil {
		t.Fatalf("Acquire after Destroy failed: %v", err)
	}
	cache.Destroy()
}

func TestTextureCacheRejectsBadFrames(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	defer cache.Destroy()

	tests := []struct {
		name  string
		frame Frame
		want  error
	}{
		{"zero width", Frame{
			Pixels: make([]byte, 16), Stride: 4, Width: 0, Height: 4, Format: FrameRGBA8,
		}, errBadFrame},
		{"no pixels", Frame{
			Stride: 16, Width: 4, Height: 4, Format: FrameRGBA8,
		}, errBadFrame},
		{"short buffer", Frame{
			Pixels: make([]byte, 16), Stride: 16, Width: 4, Height: 4, Format: FrameRGBA8,
		}, errBadFrame},
		{"unknown format", Frame{
			Pixels: make([]byte, 64), Stride: 16, Width: 4, Height: 4, Format: FrameFormat(9),
		}, errUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cache.Acquire("x", tt.frame); !errors.Is(err, tt.want) {
				t.Errorf("Acquire = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTextureCacheYUVConversion(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 0)
	defer cache.Destroy()

	// 2x2 frame, neutral chroma: converted RGBA must come out gray with
	// each channel equal to the pixel's luma.
	frame := Frame{
		Pixels: []byte{16, 128, 200, 235, 128, 128},
		Stride: 2,
		Width:  2,
		Height: 2,
		Format: FrameYUV420,
	}

	pix, err := cache.frameToRGBA(frame, 2, 2)
	if err != nil {
		t.Fatalf("frameToRGBA failed: %v", err)
	}
	want := []byte{
		16, 16, 16, 255,
		128, 128, 128, 255,
		200, 200, 200, 255,
		235, 235, 235, 255,
	}
	if !bytes.Equal(pix, want) {
		t.Errorf("converted pixels = %v, want %v", pix, want)
	}

	// The cache uploads YUV frames as RGBA.
	if _, err := cache.Acquire("interior", frame); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	entry := cache.entries["interior"]
	if entry.format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("entry format = %v, want RGBA8Unorm", entry.format)
	}
}

func TestTextureCacheDownscalesOversizedFrames(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	cache := NewTextureCache(device, queue, 2)
	defer cache.Destroy()

	frame := rgbaFrame(4, 4)
	for i := 0; i < len(frame.Pixels); i += 4 {
		frame.Pixels[i] = 10
		frame.Pixels[i+1] = 20
		frame.Pixels[i+2] = 30
		frame.Pixels[i+3] = 255
	}

	if _, err := cache.Acquire("front", frame); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	entry := cache.entries["front"]
	if entry.width != 2 || entry.height != 2 {
		t.Errorf("texture = %dx%d, want 2x2", entry.width, entry.height)
	}

	// Scaling a solid color frame keeps every pixel at that color.
	pix, err := cache.frameToRGBA(frame, 2, 2)
	if err != nil {
		t.Fatalf("frameToRGBA failed: %v", err)
	}
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 10 || pix[i+1] != 20 || pix[i+2] != 30 || pix[i+3] != 255 {
			t.Fatalf("pixel %d = %v, want [10 20 30 255]", i/4, pix[i:i+4])
		}
	}
}

func TestClampDims(t *testing.T) {
	tests := []struct {
		w, h, maxDim uint32
		wantW, wantH uint32
	}{
		{640, 480, 0, 640, 480},
		{640, 480, 1024, 640, 480},
		{2048, 1024, 1024, 1024, 512},
		{1024, 2048, 1024, 512, 1024},
		{4096, 16, 1024, 1024, 4},
		{8192, 1, 1024, 1024, 1},
	}
	for _, tt := range tests {
		gotW, gotH := clampDims(tt.w, tt.h, tt.maxDim)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("clampDims(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.maxDim, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestFrameFormatString(t *testing.T) {
	tests := []struct {
		format FrameFormat
		want   string
	}{
		{FrameRGBA8, "rgba8"},
		{FrameBGRA8, "bgra8"},
		{FrameYUV420, "yuv420"},
		{FrameFormat(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.format), got, tt.want)
		}
	}
}
