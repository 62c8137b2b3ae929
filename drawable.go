package compositor

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kcenon/blackbox-player-sub005/internal/gpu"
)

// Drawable is a surface the compositor renders into. The windowing layer
// implements it over a swapchain texture; OffscreenTarget implements it
// over a plain color texture for headless use.
//
// TextureView, Size and Format must describe the same underlying texture
// for the duration of one Render call.
type Drawable interface {
	// TextureView returns the view the current frame renders into.
	TextureView() hal.TextureView
	// Size returns the surface dimensions in pixels.
	Size() (width, height uint32)
	// Format returns the color format of the view.
	Format() gputypes.TextureFormat
	// Present makes the rendered frame visible. Implementations backed by
	// plain textures return nil without doing anything.
	Present() error
}

// OffscreenTarget is a Drawable backed by an ordinary color texture
// instead of a window surface, for headless rendering and tests. Create
// one with [Compositor.NewOffscreenTarget].
//
// The target must not outlive the compositor that created it.
type OffscreenTarget struct {
	target *gpu.Target
	device hal.Device
}

// TextureView returns the view of the target's color texture.
func (t *OffscreenTarget) TextureView() hal.TextureView {
	return t.target.View
}

// Size returns the target dimensions in pixels.
func (t *OffscreenTarget) Size() (width, height uint32) {
	return t.target.Width, t.target.Height
}

// Format returns the target's color format.
func (t *OffscreenTarget) Format() gputypes.TextureFormat {
	return t.target.Format
}

// Present is a no-op: offscreen pixels are already where they will stay.
func (t *OffscreenTarget) Present() error {
	return nil
}

// Close destroys the target's texture. Safe to call more than once.
func (t *OffscreenTarget) Close() error {
	if t.target != nil {
		t.target.Destroy(t.device)
		t.target = nil
	}
	return nil
}
