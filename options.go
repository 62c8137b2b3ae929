package compositor

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Option configures a Compositor during creation.
// Use functional options to customize behavior.
//
// Example:
//
//	// Default grid layout:
//	c, err := compositor.New()
//
//	// Focus layout with the rear camera enlarged:
//	c, err := compositor.New(
//	    compositor.WithLayoutMode(compositor.LayoutFocus),
//	    compositor.WithFocusedPosition(compositor.Rear),
//	)
type Option func(*options)

// options holds optional configuration for Compositor creation.
type options struct {
	layout       LayoutMode
	focused      CameraPosition
	clearColor   gputypes.Color
	backend      gputypes.Backend
	fenceTimeout time.Duration
}

// defaultOptions returns the default compositor options.
func defaultOptions() options {
	return options{
		layout:       LayoutGrid,
		focused:      Front,
		clearColor:   gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		backend:      gputypes.BackendVulkan,
		fenceTimeout: 5 * time.Second,
	}
}

// WithLayoutMode sets the initial layout mode. The default is LayoutGrid.
// The mode can be changed later with [Compositor.SetLayoutMode].
func WithLayoutMode(m LayoutMode) Option {
	return func(o *options) {
		o.layout = m
	}
}

// WithFocusedPosition sets the channel enlarged by LayoutFocus. The default
// is Front. The position can be changed later with
// [Compositor.SetFocusedPosition].
func WithFocusedPosition(p CameraPosition) Option {
	return func(o *options) {
		o.focused = p
	}
}

// WithClearColor sets the color the target is cleared to before channels
// are drawn. Components are in [0, 1]. The default is opaque black, which
// shows as letterboxing around cells whose frame aspect does not match.
func WithClearColor(r, g, b, a float64) Option {
	return func(o *options) {
		o.clearColor = gputypes.Color{R: r, G: g, B: b, A: a}
	}
}

// WithBackend selects the GPU backend New asks the registry for. The
// default is Vulkan. NewNoop and NewShared ignore this option.
func WithBackend(b gputypes.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithFenceTimeout sets how long Render waits for the GPU to finish before
// giving up. The default is 5 seconds.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fenceTimeout = d
		}
	}
}
