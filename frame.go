package compositor

import (
	"fmt"
	"time"
)

// PixelFormat describes the in-memory layout of a VideoFrame's pixel data.
type PixelFormat int

const (
	// FormatRGBA8 is 8-bit RGBA, four bytes per pixel, row-major.
	FormatRGBA8 PixelFormat = iota
	// FormatBGRA8 is 8-bit BGRA, four bytes per pixel, row-major.
	FormatBGRA8
	// FormatYUV420 is planar YCbCr 4:2:0: a full-resolution Y plane followed
	// by half-resolution Cb and Cr planes. This is what hardware decoders
	// hand back for H.264 dashcam streams.
	FormatYUV420
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatBGRA8:
		return "bgra8"
	case FormatYUV420:
		return "yuv420"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// VideoFrame is one decoded video frame from a single camera channel.
//
// For the packed formats Stride is the byte distance between rows and must
// be at least Width*4. For FormatYUV420 Stride is the Y plane stride; the
// chroma planes use stride (Stride+1)/2 and height (Height+1)/2 and follow
// the Y plane in Pixels, Cb first.
//
// The compositor reads Pixels only for the duration of the Render call that
// receives the frame; callers may recycle the buffer afterwards.
type VideoFrame struct {
	Pixels []byte
	Stride int
	Width  int
	Height int
	Format PixelFormat
	PTS    time.Duration
}

// FrameSet holds the frames to composite for one output image, keyed by the
// camera channel they came from. A nil entry is treated as an absent channel.
type FrameSet map[CameraPosition]*VideoFrame

// validate reports whether the frame's dimensions, stride and buffer length
// are consistent. Failures are per-channel: the compositor logs them and
// skips the channel rather than aborting the whole render.
func (f *VideoFrame) validate() error {
	if f == nil || len(f.Pixels) == 0 {
		return fmt.Errorf("%w: no pixel data", ErrInvalidFrame)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	switch f.Format {
	case FormatRGBA8, FormatBGRA8:
		if f.Stride < f.Width*4 {
			return fmt.Errorf("%w: stride %d < %d", ErrInvalidFrame, f.Stride, f.Width*4)
		}
		if need := f.Stride * f.Height; len(f.Pixels) < need {
			return fmt.Errorf("%w: %d bytes, need %d", ErrInvalidFrame, len(f.Pixels), need)
		}
	case FormatYUV420:
		cs := (f.Stride + 1) / 2
		ch := (f.Height + 1) / 2
		if f.Stride < f.Width {
			return fmt.Errorf("%w: stride %d < width %d", ErrInvalidFrame, f.Stride, f.Width)
		}
		if need := f.Stride*f.Height + 2*cs*ch; len(f.Pixels) < need {
			return fmt.Errorf("%w: %d bytes, need %d", ErrInvalidFrame, len(f.Pixels), need)
		}
	default:
		return fmt.Errorf("%w: unknown format %v", ErrInvalidFrame, f.Format)
	}
	return nil
}

// activePositions returns the channels present in the set, in canonical
// position order. Nil frames do not count as present.
func (s FrameSet) activePositions() []CameraPosition {
	positions := make([]CameraPosition, 0, len(s))
	for pos, frame := range s {
		if frame != nil {
			positions = append(positions, pos)
		}
	}
	sortPositions(positions)
	return positions
}
