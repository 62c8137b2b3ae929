// Package compositor renders multi-channel dashcam video onto a single
// GPU surface.
//
// # Overview
//
// Dashcam recordings carry up to five simultaneous camera streams: front,
// rear, left, right and interior. The compositor takes one decoded frame
// per channel, arranges the channels according to a layout mode, and
// draws them in a single GPU render pass through gogpu/wgpu's HAL. Frame
// decoding, playback timing and windowing stay outside; the package's
// only job is turning a set of frames into one composited picture.
//
// # Quick Start
//
//	import compositor "github.com/kcenon/blackbox-player-sub005"
//
//	comp, err := compositor.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer comp.Close()
//
//	frames := compositor.FrameSet{
//	    compositor.Front: frontFrame,
//	    compositor.Rear:  rearFrame,
//	}
//	if err := comp.Render(frames, surface); err != nil {
//	    log.Fatal(err)
//	}
//
// # Layout Modes
//
// Three layouts are built in:
//   - LayoutGrid: near-square grid, row-major in camera order
//   - LayoutFocus: one enlarged channel on the left, the rest stacked in
//     a right-hand thumbnail column
//   - LayoutHorizontal: one row of equal-width cells
//
// The mode and the focused channel can be changed between renders.
//
// # Coordinate System
//
// Viewports use standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// # Architecture
//
// The package is organized into:
//   - Public API: Compositor, FrameSet, LayoutViewports, Drawable
//   - internal/gpu: device acquisition, render pipeline, per-channel
//     texture cache, frame submission
//   - cmd/compositordemo: headless demo writing composited PNGs
//
// # Rendering Model
//
// Render blocks until the GPU signals completion, so frame buffers and
// cached textures are idle again when it returns. The compositor never
// starts goroutines; callers own the playback loop and its pacing.
package compositor

// Version is the current version of the library.
const Version = "0.5.2"
