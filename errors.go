package compositor

import "errors"

var (
	// ErrNoGPU is returned by New when no usable GPU adapter is available.
	ErrNoGPU = errors.New("compositor: no usable GPU adapter")

	// ErrNilProvider is returned by NewShared when the device provider is nil.
	ErrNilProvider = errors.New("compositor: device provider is nil")

	// ErrNoHALAccess is returned by NewShared when the provider does not
	// expose its underlying device and queue handles.
	ErrNoHALAccess = errors.New("compositor: device provider does not expose HAL handles")

	// ErrClosed is returned by operations on a compositor after Close.
	ErrClosed = errors.New("compositor: closed")

	// ErrNilTarget is returned by Render when the drawable is nil.
	ErrNilTarget = errors.New("compositor: nil render target")

	// ErrInvalidFrame marks a frame whose dimensions, stride or buffer
	// length are inconsistent. Render treats it as a per-channel failure
	// and skips the channel.
	ErrInvalidFrame = errors.New("compositor: invalid frame")

	// ErrInvalidSize is returned when a target is requested with zero or
	// negative dimensions.
	ErrInvalidSize = errors.New("compositor: invalid target size")
)
